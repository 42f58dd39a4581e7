package model

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		coll      Collection
		op        Op
		fields    Record
		wantField string
	}{
		{
			name:   "create stock",
			coll:   BreedingStock,
			op:     OpCreate,
			fields: Record{"kode": "IND-001", "jenis_kelamin": "Jantan", "tanggal_lahir": "2024-01-15", "status": "Sehat"},
		},
		{
			name:      "create without required kode",
			coll:      BreedingStock,
			op:        OpCreate,
			fields:    Record{"ras": "Bangkok"},
			wantField: "kode",
		},
		{
			name:      "create with client id",
			coll:      BreedingStock,
			op:        OpCreate,
			fields:    Record{"id": "X", "kode": "IND-001"},
			wantField: "id",
		},
		{
			name:      "unknown field",
			coll:      Offspring,
			op:        OpUpdate,
			fields:    Record{"id": "A1", "bogus": "x"},
			wantField: "bogus",
		},
		{
			name:      "bad status",
			coll:      BreedingStock,
			op:        OpUpdate,
			fields:    Record{"id": "X", "status": "Hilang"},
			wantField: "status",
		},
		{
			name:   "partial update only checks present fields",
			coll:   BreedingStock,
			op:     OpUpdate,
			fields: Record{"id": "X", "status": "Sakit"},
		},
		{
			name:      "update without id",
			coll:      BreedingEvent,
			op:        OpUpdate,
			fields:    Record{"jumlah_anakan": float64(3)},
			wantField: "id",
		},
		{
			name:      "bad date",
			coll:      BreedingEvent,
			op:        OpUpdate,
			fields:    Record{"id": "B1", "tanggal_menetas": "kemarin"},
			wantField: "tanggal_menetas",
		},
		{
			name:      "negative count",
			coll:      BreedingEvent,
			op:        OpUpdate,
			fields:    Record{"id": "B1", "jumlah_anakan": float64(-1)},
			wantField: "jumlah_anakan",
		},
		{
			name:   "timestamp date from sheet",
			coll:   BreedingEvent,
			op:     OpUpdate,
			fields: Record{"id": "B1", "tanggal_menetas": "2024-03-01T17:00:00.000Z"},
		},
		{
			name:   "create offspring with every form field",
			coll:   Offspring,
			op:     OpCreate,
			fields: Record{"breeding_id": "B1", "kode": "ANK-1", "jenis_kelamin": "Betina", "ras": "Bangkok", "warna": "Hitam", "status": "Sehat"},
		},
		{
			name:   "update offspring ras",
			coll:   Offspring,
			op:     OpUpdate,
			fields: Record{"id": "A1", "ras": "Pakhoy"},
		},
		{
			name:   "blank count on create is left to the sheet",
			coll:   BreedingEvent,
			op:     OpCreate,
			fields: Record{"pejantan_id": "P1", "betina_id": "B1", "jumlah_anakan": ""},
		},
		{
			name:      "blank count on update",
			coll:      BreedingEvent,
			op:        OpUpdate,
			fields:    Record{"id": "B1", "jumlah_anakan": ""},
			wantField: "jumlah_anakan",
		},
		{
			name:   "delete needs only id",
			coll:   Offspring,
			op:     OpDelete,
			fields: Record{"id": "A1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.coll, tt.op, tt.fields)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %s, got %s (%s)", tt.wantField, verr.Field, verr.Message)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize(BreedingEvent, Record{"jumlah_anakan": " 7 ", "pejantan_id": " P1 "})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got["jumlah_anakan"] != float64(7) {
		t.Errorf("expected 7, got %#v", got["jumlah_anakan"])
	}
	if got["pejantan_id"] != "P1" {
		t.Errorf("expected trimmed id, got %#v", got["pejantan_id"])
	}

	blank, err := Normalize(BreedingEvent, Record{"jumlah_anakan": "  "})
	if err != nil {
		t.Fatalf("normalize blank: %v", err)
	}
	if blank["jumlah_anakan"] != "" {
		t.Errorf("expected blank count to stay blank, got %#v", blank["jumlah_anakan"])
	}

	if _, err := Normalize(BreedingEvent, Record{"jumlah_anakan": "tujuh"}); err == nil {
		t.Error("expected error for non-numeric count")
	}
}

func TestParseCollection(t *testing.T) {
	for in, want := range map[string]Collection{
		"induk":          BreedingStock,
		"ayam_induk":     BreedingStock,
		"breeding-event": BreedingEvent,
		"Anakan":         Offspring,
	} {
		got, err := ParseCollection(in)
		if err != nil || got != want {
			t.Errorf("ParseCollection(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseCollection("ayam"); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("expected ErrUnknownCollection, got %v", err)
	}
}
