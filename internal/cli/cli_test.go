package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rcliao/kandang/internal/lineage"
	"github.com/rcliao/kandang/internal/model"
)

func TestParseAssignments(t *testing.T) {
	rec, err := parseAssignments([]string{"kode=IND-1", "catatan=a=b", " status =Sehat"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rec.String("kode") != "IND-1" || rec.String("catatan") != "a=b" || rec.String("status") != "Sehat" {
		t.Errorf("unexpected record %v", rec)
	}

	for _, bad := range []string{"kode", "=x"} {
		if _, err := parseAssignments([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestMatching(t *testing.T) {
	records := []model.Record{
		{"id": "A", "status": "Sehat", "jenis_kelamin": "Jantan"},
		{"id": "B", "status": "Sakit", "jenis_kelamin": "Jantan"},
		{"id": "C", "status": "Sehat", "jenis_kelamin": "Betina"},
	}

	got := matching(records, model.Record{"status": "Sehat", "jenis_kelamin": "Betina"})
	if len(got) != 1 || got[0].ID() != "C" {
		t.Errorf("expected [C], got %v", got)
	}
	if len(matching(records, nil)) != 3 {
		t.Error("empty filter should keep everything")
	}
}

func TestWriteTree(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	nodes := []lineage.Node{{
		Breeding:  model.Record{"id": "BR1", "tanggal_menetas": "2024-05-22"},
		Sire:      lineage.Parent{ID: "J1", Found: true, Record: model.Record{"kode": "IND-J1", "ras": "Bangkok"}},
		Dam:       lineage.Parent{ID: "gone"},
		Offspring: []model.Record{{"kode": "ANK-1", "jenis_kelamin": "Betina", "status": "Sehat"}},
		Progress:  lineage.Progress{Recorded: 1, Total: 3},
	}}

	var buf bytes.Buffer
	writeTree(&buf, nodes, now)
	out := buf.String()

	for _, want := range []string{
		"BR1  hatched 2024-05-22 (10 hari, Terlalu Muda)  1/3 recorded",
		"sire: IND-J1 Bangkok",
		"dam:  gone (not found)",
		"- ANK-1 Betina Sehat",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
