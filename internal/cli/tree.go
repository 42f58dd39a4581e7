package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/kandang/internal/lineage"
	"github.com/rcliao/kandang/internal/model"
)

func init() {
	tree := &cobra.Command{
		Use:   "tree",
		Short: "Show each breeding event with its parents and offspring",
		Run:   runTree,
	}
	tree.Flags().BoolP("refresh", "r", false, "Bypass the cache")
	tree.Flags().Bool("json", false, "Output JSON")

	workflow := &cobra.Command{
		Use:   "workflow",
		Short: "Show pending work: new hatches, offspring to record, offspring to promote",
		Run:   runWorkflow,
	}
	workflow.Flags().String("stage", "", "Only one stage: new, ready-to-record or ready-to-promote")

	RootCmd.AddCommand(tree, workflow)
}

func runTree(cmd *cobra.Command, args []string) {
	refresh, _ := cmd.Flags().GetBool("refresh")
	asJSON, _ := cmd.Flags().GetBool("json")

	svc, s := openService()
	defer s.Close()

	snap, err := lineage.Load(cmd.Context(), svc, refresh)
	if err != nil {
		exitErr("tree", err)
	}
	if snap.Stale {
		fmt.Fprintln(os.Stderr, "warning: remote unavailable, showing cached data")
	}

	nodes := snap.Tree()
	if asJSON {
		printJSON(nodes)
		return
	}
	writeTree(os.Stdout, nodes, time.Now())
}

func writeTree(w io.Writer, nodes []lineage.Node, now time.Time) {
	for _, n := range nodes {
		hatched, _ := n.Breeding.Time("tanggal_menetas")
		age := lineage.FormatAge(hatched, now)
		if !hatched.IsZero() {
			age += ", " + lineage.MaturityOf(lineage.AgeInDays(hatched, now)).Label()
		}
		fmt.Fprintf(w, "%s  hatched %s (%s)  %d/%d recorded\n",
			n.Breeding.ID(), orDash(n.Breeding.String("tanggal_menetas")), age,
			n.Progress.Recorded, n.Progress.Total)
		fmt.Fprintf(w, "  sire: %s\n", parentLabel(n.Sire))
		fmt.Fprintf(w, "  dam:  %s\n", parentLabel(n.Dam))
		for _, o := range n.Offspring {
			fmt.Fprintf(w, "    - %s %s %s\n", orDash(o.String("kode")), orDash(o.String("jenis_kelamin")), orDash(o.String("status")))
		}
	}
}

func parentLabel(p lineage.Parent) string {
	if !p.Found {
		return fmt.Sprintf("%s (not found)", orDash(p.ID))
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", p.Record.String("kode"), p.Record.String("ras")))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func runWorkflow(cmd *cobra.Command, args []string) {
	stage, _ := cmd.Flags().GetString("stage")

	svc, s := openService()
	defer s.Close()

	snap, err := lineage.Load(cmd.Context(), svc, false)
	if err != nil {
		exitErr("workflow", err)
	}

	wf := snap.Workflow(time.Now())
	var out []model.Record
	switch stage {
	case "":
		printJSON(wf)
		return
	case string(lineage.StageNew):
		out = wf.New
	case string(lineage.StageReadyToRecord):
		out = wf.ReadyToRecord
	case "ready-to-promote":
		out = wf.ReadyToPromote
	default:
		exitErr("workflow", fmt.Errorf("unknown stage %q", stage))
	}
	printJSON(out)
}
