package cli

import (
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/model"
)

func init() {
	add := &cobra.Command{
		Use:   "add <collection> [field=value...]",
		Short: "Create a record",
		Long:  "Create a record. Fields are key=value args, or a JSON object piped via stdin.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAdd,
	}

	update := &cobra.Command{
		Use:   "update <collection> <id> [field=value...]",
		Short: "Update fields of a record",
		Long:  "Update a record. Only the given fields change. Fields are key=value args, or a JSON object piped via stdin.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runUpdate,
	}

	RootCmd.AddCommand(add, update)
}

// readFields takes fields from args first, then stdin.
func readFields(args []string) model.Record {
	if len(args) > 0 {
		rec, err := parseAssignments(args)
		if err != nil {
			exitErr("fields", err)
		}
		return rec
	}

	rec := model.Record{}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		if strings.TrimSpace(string(b)) != "" {
			if err := json.Unmarshal(b, &rec); err != nil {
				exitErr("parse json", err)
			}
		}
	}
	return rec
}

func runAdd(cmd *cobra.Command, args []string) {
	c := collectionArg(args[0])
	fields := readFields(args[1:])

	svc, s := openService()
	defer s.Close()

	res, err := svc.Write(cmd.Context(), model.OpCreate, c, fields)
	if err != nil {
		exitErr("add", err)
	}
	printJSON(res)
}

func runUpdate(cmd *cobra.Command, args []string) {
	c := collectionArg(args[0])
	fields := readFields(args[2:])
	fields["id"] = args[1]

	svc, s := openService()
	defer s.Close()

	res, err := svc.Write(cmd.Context(), model.OpUpdate, c, fields)
	if err != nil {
		exitErr("update", err)
	}
	printJSON(res)
}
