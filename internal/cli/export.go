package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "dump [collection...]",
		Short: "Print the local cache as JSON",
		Long:  "Print cached records and fetch metadata without contacting the remote.",
		Run:   runDump,
	}

	RootCmd.AddCommand(cmd)
}

func runDump(cmd *cobra.Command, args []string) {
	only := make([]model.Collection, 0, len(args))
	for _, a := range args {
		only = append(only, collectionArg(a))
	}

	s, err := openStore(loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	export, err := s.ExportAll(cmd.Context(), only...)
	if err != nil {
		exitErr("dump", err)
	}
	printJSON(export)
}
