package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	c := collectionArg(args[0])
	id := args[1]

	svc, s := openService()
	defer s.Close()

	rec, ok := svc.Lookup(cmd.Context(), c, id)
	if !ok {
		exitErr("get", fmt.Errorf("%s %s not found", c, id))
	}
	printJSON(rec)
}
