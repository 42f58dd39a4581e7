package cli

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/cache"
	"github.com/rcliao/kandang/internal/gateway"
	"github.com/rcliao/kandang/internal/httpapi"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cache as a local JSON API",
		Long:  "Serve the cache over HTTP for a local UI, with Prometheus metrics at /metrics.",
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: $KANDANG_ADDR or 127.0.0.1:8080)")
	cmd.Flags().Bool("demo", false, "Use an in-memory remote instead of the spreadsheet")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	demo, _ := cmd.Flags().GetBool("demo")

	cfg := loadConfig()
	if addr != "" {
		cfg.Addr = addr
	}
	log := cfg.Logger(os.Stderr)
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	var remote gateway.Gateway
	if demo {
		remote = gateway.NewMemory()
		log.Warn("demo mode: records live in memory only")
	} else {
		if err := cfg.RequireRemote(); err != nil {
			exitErr("remote", err)
		}
		remote = gateway.NewSheets(cfg.APIURL, cfg.Timeout)
	}

	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	svc := cache.New(s, remote, cache.WithLogger(log), cache.WithMetrics(cache.NewMetrics(reg)))

	if err := httpapi.New(svc, log, reg).ListenAndServe(cmd.Context(), cfg.Addr); err != nil {
		exitErr("serve", err)
	}
}
