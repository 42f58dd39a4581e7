package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/model"
)

func init() {
	refresh := &cobra.Command{
		Use:   "refresh [collection...]",
		Short: "Fetch collections from the remote in parallel",
		Long:  "Fetch every collection (or those named) from the remote and replace the cache. One collection failing does not stop the others.",
		Run:   runRefresh,
	}

	invalidate := &cobra.Command{
		Use:   "invalidate <collection>",
		Short: "Mark a collection stale so the next read goes remote",
		Args:  cobra.ExactArgs(1),
		Run:   runInvalidate,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached record and fetch time",
		Run:   runClear,
	}

	RootCmd.AddCommand(refresh, invalidate, clearCmd)
}

func runRefresh(cmd *cobra.Command, args []string) {
	colls := make([]model.Collection, 0, len(args))
	for _, a := range args {
		colls = append(colls, collectionArg(a))
	}

	svc, s := openService()
	defer s.Close()

	outcome, err := svc.RefreshAll(cmd.Context(), colls...)
	printJSON(outcome)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runInvalidate(cmd *cobra.Command, args []string) {
	c := collectionArg(args[0])

	s, err := openStore(loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.Invalidate(cmd.Context(), c); err != nil {
		exitErr("invalidate", err)
	}
	fmt.Printf(`{"ok":true,"collection":%q}`+"\n", c)
}

func runClear(cmd *cobra.Command, args []string) {
	s, err := openStore(loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.ClearAll(cmd.Context()); err != nil {
		exitErr("clear", err)
	}
	fmt.Println(`{"ok":true}`)
}
