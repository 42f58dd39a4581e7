// Package lineage derives the breeding workflow and the parent/offspring
// tree from cached collections. Every function is pure over its inputs.
package lineage

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rcliao/kandang/internal/model"
)

// Age thresholds in days.
const (
	RecordAfterDays = 90
	MatureAfterDays = 180
	RecentBreedDays = 60
)

const (
	daysPerMonth = 30
	daysPerYear  = 365

	statusHealthy   = "Sehat"
	fieldHatched    = "tanggal_menetas"
	fieldBreedingID = "breeding_id"
	fieldLitterSize = "jumlah_anakan"
)

// Maturity classifies an age.
type Maturity string

const (
	Young  Maturity = "young"
	Ready  Maturity = "ready"
	Mature Maturity = "mature"
)

// Label is the display text used by the farm staff.
func (m Maturity) Label() string {
	switch m {
	case Young:
		return "Terlalu Muda"
	case Ready:
		return "Siap Dicatat"
	default:
		return "Dewasa"
	}
}

// Stage selects breeding events by workflow step.
type Stage string

const (
	StageNew           Stage = "new"
	StageReadyToRecord Stage = "ready-to-record"
)

// AgeInDays returns whole days between born and now, 0 when born is zero.
// Dates in the future count the same as dates in the past.
func AgeInDays(born, now time.Time) int {
	if born.IsZero() {
		return 0
	}
	d := now.Sub(born)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

func ageOf(r model.Record, field string, now time.Time) int {
	t, _ := r.Time(field)
	return AgeInDays(t, now)
}

// MaturityOf classifies an age in days.
func MaturityOf(days int) Maturity {
	switch {
	case days < RecordAfterDays:
		return Young
	case days < MatureAfterDays:
		return Ready
	default:
		return Mature
	}
}

// FormatAge renders an age the way the farm records it ("45 hari",
// "2bln 5hr", "1th 3bln"). A missing date renders as "-".
func FormatAge(born, now time.Time) string {
	if born.IsZero() {
		return "-"
	}
	days := AgeInDays(born, now)
	if days < daysPerMonth {
		return fmt.Sprintf("%d hari", days)
	}
	if days < daysPerYear {
		months, rest := days/daysPerMonth, days%daysPerMonth
		if rest > 0 {
			return fmt.Sprintf("%dbln %dhr", months, rest)
		}
		return fmt.Sprintf("%d bulan", months)
	}
	years, months := days/daysPerYear, (days%daysPerYear)/daysPerMonth
	if months > 0 {
		return fmt.Sprintf("%dth %dbln", years, months)
	}
	return fmt.Sprintf("%d tahun", years)
}

// Progress is how many of a hatch's offspring have been recorded.
type Progress struct {
	Recorded   int  `json:"recorded"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
	Complete   bool `json:"complete"`
}

// ProgressOf counts the offspring recorded against breeding.
func ProgressOf(breeding model.Record, offspring []model.Record) Progress {
	p := Progress{Recorded: len(ByBreeding(breeding.ID(), offspring))}
	if n, ok := breeding.Number(fieldLitterSize); ok && n > 0 {
		p.Total = int(n)
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Recorded) / float64(p.Total) * 100))
	}
	p.Complete = p.Recorded >= p.Total
	return p
}

// ByBreeding returns the offspring of one breeding event, in input order.
func ByBreeding(breedingID string, offspring []model.Record) []model.Record {
	out := make([]model.Record, 0)
	for _, o := range offspring {
		if o.String(fieldBreedingID) == breedingID {
			out = append(out, o)
		}
	}
	return out
}

// GroupByBreeding indexes offspring by breeding id.
func GroupByBreeding(offspring []model.Record) map[string][]model.Record {
	out := make(map[string][]model.Record)
	for _, o := range offspring {
		id := o.String(fieldBreedingID)
		out[id] = append(out[id], o)
	}
	return out
}

// FilterBreeding returns the events at stage, oldest hatch first. An
// unknown stage keeps every event. Events without a hatch date sort first.
func FilterBreeding(breedings, offspring []model.Record, stage Stage, now time.Time) []model.Record {
	out := make([]model.Record, 0, len(breedings))
	for _, b := range breedings {
		age := ageOf(b, fieldHatched, now)
		switch stage {
		case StageNew:
			if age >= RecordAfterDays {
				continue
			}
		case StageReadyToRecord:
			if age < RecordAfterDays || ProgressOf(b, offspring).Complete {
				continue
			}
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return hatched(out[i]).Before(hatched(out[j]))
	})
	return out
}

func hatched(r model.Record) time.Time {
	t, ok := r.Time(fieldHatched)
	if !ok {
		return time.Unix(0, 0)
	}
	return t
}

// ReadyToPromote returns healthy offspring whose hatch is at least
// MatureAfterDays old, oldest hatch first. Offspring whose breeding event is
// missing or undated are skipped.
func ReadyToPromote(offspring, breedings []model.Record, now time.Time) []model.Record {
	events := make(map[string]model.Record, len(breedings))
	for _, b := range breedings {
		events[b.ID()] = b
	}

	type candidate struct {
		rec     model.Record
		hatched time.Time
	}
	var picked []candidate
	for _, o := range offspring {
		if o.String("status") != statusHealthy {
			continue
		}
		b, ok := events[o.String(fieldBreedingID)]
		if !ok {
			continue
		}
		t, ok := b.Time(fieldHatched)
		if !ok || AgeInDays(t, now) < MatureAfterDays {
			continue
		}
		picked = append(picked, candidate{rec: o, hatched: t})
	}
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].hatched.Before(picked[j].hatched)
	})

	out := make([]model.Record, 0, len(picked))
	for _, c := range picked {
		out = append(out, c.rec)
	}
	return out
}

func parentOf(b model.Record, stockID string) bool {
	return b.String("pejantan_id") == stockID || b.String("betina_id") == stockID
}

// IsCurrentlyBreeding reports whether stockID is a parent in an event that
// hatched less than withinDays ago. Unhatched events count as current.
func IsCurrentlyBreeding(stockID string, breedings []model.Record, now time.Time, withinDays int) bool {
	for _, b := range breedings {
		if parentOf(b, stockID) && ageOf(b, fieldHatched, now) < withinDays {
			return true
		}
	}
	return false
}

// BreedingCount counts the events stockID took part in.
func BreedingCount(stockID string, breedings []model.Record) int {
	n := 0
	for _, b := range breedings {
		if parentOf(b, stockID) {
			n++
		}
	}
	return n
}
