package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/freshness"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore(loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), freshness.Default())
	if err != nil {
		exitErr("stats", err)
	}
	printJSON(stats)
}
