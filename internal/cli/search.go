package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/lineage"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search breeding events by parent or offspring",
		Long:  "Search the breeding tree for a sire or dam kode or ras, or an offspring kode.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("json", false, "Output JSON")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	query := strings.Join(args, " ")

	svc, s := openService()
	defer s.Close()

	snap, err := lineage.Load(cmd.Context(), svc, false)
	if err != nil {
		exitErr("search", err)
	}
	if snap.Stale {
		fmt.Fprintln(os.Stderr, "warning: remote unavailable, searching cached data")
	}

	results := lineage.Search(snap.Tree(), query)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if asJSON {
		printJSON(results)
		return
	}
	writeTree(os.Stdout, results, time.Now())
}
