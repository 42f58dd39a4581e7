package model

import "testing"

func TestRecordAccessors(t *testing.T) {
	r := Record{"id": "B1", "jumlah_anakan": "4", "tanggal_menetas": "2024-02-10", "kode": float64(12)}

	if r.ID() != "B1" {
		t.Errorf("expected id B1, got %q", r.ID())
	}
	if n, ok := r.Number("jumlah_anakan"); !ok || n != 4 {
		t.Errorf("expected 4, got %v (%v)", n, ok)
	}
	if r.String("kode") != "12" {
		t.Errorf("expected '12', got %q", r.String("kode"))
	}
	if d, ok := r.Time("tanggal_menetas"); !ok || d.Day() != 10 {
		t.Errorf("expected day 10, got %v (%v)", d, ok)
	}
	if _, ok := r.Time("missing"); ok {
		t.Error("expected missing date to be absent")
	}
}

func TestRecordMergeDoesNotMutate(t *testing.T) {
	base := Record{"id": "X", "status": "Sehat", "warna": "Hitam"}
	merged := base.Merge(Record{"status": "Sakit"})

	if base["status"] != "Sehat" {
		t.Errorf("base mutated: %v", base)
	}
	if merged["status"] != "Sakit" || merged["warna"] != "Hitam" {
		t.Errorf("unexpected merge result: %v", merged)
	}
}
