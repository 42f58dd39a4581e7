package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <collection> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		Run:   runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	c := collectionArg(args[0])
	id := args[1]

	svc, s := openService()
	defer s.Close()

	if _, err := svc.Write(cmd.Context(), model.OpDelete, c, model.Record{"id": id}); err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"collection":%q,"id":%q}`+"\n", c, id)
}
