// Package cli implements the kandang CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/cache"
	"github.com/rcliao/kandang/internal/config"
	"github.com/rcliao/kandang/internal/gateway"
	"github.com/rcliao/kandang/internal/model"
	"github.com/rcliao/kandang/internal/store"
)

var (
	dbPath  string
	apiURL  string
	timeout time.Duration
	verbose bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "kandang",
	Short: "Offline-first cache for poultry breeding records",
	Long:  "Reads breeding stock, breeding events and offspring from the farm spreadsheet, caching them in a local SQLite file so lists keep working offline.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Cache path (default: $KANDANG_DB or ~/.kandang/cache.db)")
	RootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Spreadsheet web-app URL (default: $KANDANG_SHEETS_URL)")
	RootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Remote request timeout (default: $KANDANG_TIMEOUT or 30s)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")
}

// loadConfig layers flags over the environment.
func loadConfig() config.Config {
	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		exitErr("config", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	return cfg
}

func openStore(cfg config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

// openService wires the cache over the configured remote. The returned
// store must be closed by the caller.
func openService() (*cache.Service, *store.SQLiteStore) {
	cfg := loadConfig()
	if err := cfg.RequireRemote(); err != nil {
		exitErr("remote", err)
	}
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	svc := cache.New(s, gateway.NewSheets(cfg.APIURL, cfg.Timeout), cache.WithLogger(cfg.Logger(os.Stderr)))
	return svc, s
}

func collectionArg(arg string) model.Collection {
	c, err := model.ParseCollection(arg)
	if err != nil {
		exitErr("collection", err)
	}
	return c
}

// parseAssignments turns key=value pairs into record fields.
func parseAssignments(pairs []string) (model.Record, error) {
	rec := model.Record{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		rec[k] = v
	}
	return rec, nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitErr("encode", err)
	}
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
