package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/cache"
	"github.com/rcliao/kandang/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List a collection (cached while fresh)",
		Args:  cobra.ExactArgs(1),
		Run:   runList,
	}

	cmd.Flags().BoolP("refresh", "r", false, "Bypass the cache and fetch from the remote")
	cmd.Flags().String("breeding-id", "", "Offspring of one breeding event")
	cmd.Flags().StringArrayP("where", "w", nil, "Filter by field=value (repeatable)")
	cmd.Flags().Bool("ids-only", false, "Only output record ids")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	c := collectionArg(args[0])
	refresh, _ := cmd.Flags().GetBool("refresh")
	breedingID, _ := cmd.Flags().GetString("breeding-id")
	where, _ := cmd.Flags().GetStringArray("where")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	filter, err := parseAssignments(where)
	if err != nil {
		exitErr("where", err)
	}

	svc, s := openService()
	defer s.Close()

	var res *cache.ReadResult
	if breedingID != "" {
		if c != model.Offspring {
			exitErr("list", fmt.Errorf("--breeding-id applies to %s only", model.Offspring))
		}
		res, err = svc.ReadOffspring(cmd.Context(), breedingID, refresh)
	} else {
		res, err = svc.Read(cmd.Context(), c, refresh)
	}
	if err != nil {
		exitErr("list", err)
	}

	res.Records = matching(res.Records, filter)

	if idsOnly {
		for _, r := range res.Records {
			fmt.Println(r.ID())
		}
		return
	}
	printJSON(res)
}

func matching(records []model.Record, filter model.Record) []model.Record {
	if len(filter) == 0 {
		return records
	}
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		ok := true
		for k := range filter {
			if r.String(k) != filter.String(k) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}
