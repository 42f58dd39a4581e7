package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/freshness"
	"github.com/rcliao/kandang/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List collections with their sheet names and cache state",
		Run:   runCollections,
	}

	RootCmd.AddCommand(cmd)
}

type collectionRow struct {
	Collection model.Collection `json:"collection"`
	Sheet      string           `json:"sheet"`
	Count      int              `json:"count"`
	Fresh      bool             `json:"fresh"`
}

func runCollections(cmd *cobra.Command, args []string) {
	s, err := openStore(loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	policy := freshness.Default()
	rows := make([]collectionRow, 0, len(model.Collections))
	for _, c := range model.Collections {
		meta, err := s.GetMetadata(cmd.Context(), c)
		if err != nil {
			exitErr("metadata", err)
		}
		row := collectionRow{Collection: c, Sheet: c.Sheet(), Fresh: policy.Fresh(meta)}
		if meta != nil {
			row.Count = meta.Count
		}
		rows = append(rows, row)
	}
	printJSON(rows)
}
