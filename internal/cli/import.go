package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import <collection>",
		Short: "Create records from a JSON array",
		Long:  "Create records from a JSON array on stdin. Each element is sent as its own create and validated first; ids are assigned by the remote.",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}

	cmd.Flags().Bool("keep-going", false, "Continue after a failed record")

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	c := collectionArg(args[0])
	keepGoing, _ := cmd.Flags().GetBool("keep-going")

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}

	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		exitErr("parse json", err)
	}

	svc, s := openService()
	defer s.Close()

	var (
		imported int
		errs     *multierror.Error
	)
	for i, rec := range records {
		delete(rec, "id")
		if _, err := svc.Write(cmd.Context(), model.OpCreate, c, rec); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("record %d: %w", i, err))
			if !keepGoing {
				break
			}
			continue
		}
		imported++
	}

	if err := errs.ErrorOrNil(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Printf(`{"ok":false,"imported":%d,"failed":%d}`+"\n", imported, len(errs.Errors))
		os.Exit(1)
	}
	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
}
