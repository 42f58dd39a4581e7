package lineage

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/kandang/internal/cache"
	"github.com/rcliao/kandang/internal/model"
)

// Reader is the part of the cache facade lineage needs.
type Reader interface {
	Read(ctx context.Context, c model.Collection, force bool) (*cache.ReadResult, error)
}

// Snapshot holds the three collections read together.
type Snapshot struct {
	Stock     []model.Record
	Breedings []model.Record
	Offspring []model.Record
	// Stale is set when any collection came from an expired cache.
	Stale bool
}

// Load reads all three collections concurrently through the cache.
func Load(ctx context.Context, r Reader, force bool) (*Snapshot, error) {
	var stock, breedings, offspring *cache.ReadResult
	g, ctx := errgroup.WithContext(ctx)
	read := func(c model.Collection, dst **cache.ReadResult) {
		g.Go(func() error {
			res, err := r.Read(ctx, c, force)
			if err != nil {
				return err
			}
			*dst = res
			return nil
		})
	}
	read(model.BreedingStock, &stock)
	read(model.BreedingEvent, &breedings)
	read(model.Offspring, &offspring)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Snapshot{
		Stock:     stock.Records,
		Breedings: breedings.Records,
		Offspring: offspring.Records,
		Stale:     stock.Stale || breedings.Stale || offspring.Stale,
	}, nil
}

// Parent is a resolved sire or dam. Found is false for a dangling id.
type Parent struct {
	ID     string       `json:"id"`
	Found  bool         `json:"found"`
	Record model.Record `json:"record,omitempty"`
}

// Node is one breeding event with its parents and offspring.
type Node struct {
	Breeding  model.Record   `json:"breeding"`
	Sire      Parent         `json:"sire"`
	Dam       Parent         `json:"dam"`
	Offspring []model.Record `json:"offspring"`
	Progress  Progress       `json:"progress"`
}

// Tree builds one node per breeding event, in event order.
func (s *Snapshot) Tree() []Node {
	stock := make(map[string]model.Record, len(s.Stock))
	for _, r := range s.Stock {
		stock[r.ID()] = r
	}
	resolve := func(id string) Parent {
		rec, ok := stock[id]
		return Parent{ID: id, Found: ok && id != "", Record: rec}
	}

	groups := GroupByBreeding(s.Offspring)
	nodes := make([]Node, 0, len(s.Breedings))
	for _, b := range s.Breedings {
		kids := groups[b.ID()]
		if kids == nil {
			kids = []model.Record{}
		}
		nodes = append(nodes, Node{
			Breeding:  b,
			Sire:      resolve(b.String("pejantan_id")),
			Dam:       resolve(b.String("betina_id")),
			Offspring: kids,
			Progress:  ProgressOf(b, s.Offspring),
		})
	}
	return nodes
}

// StockActivity is one breeding-stock bird with its breeding history.
type StockActivity struct {
	Record    model.Record `json:"record"`
	Breedings int          `json:"breedings"`
	Active    bool         `json:"active"`
}

// Workflow is the dashboard view of pending work.
type Workflow struct {
	New            []model.Record  `json:"new"`
	ReadyToRecord  []model.Record  `json:"ready_to_record"`
	ReadyToPromote []model.Record  `json:"ready_to_promote"`
	Stock          []StockActivity `json:"stock"`
}

// Workflow groups events and offspring by their next step as of now.
func (s *Snapshot) Workflow(now time.Time) Workflow {
	return Workflow{
		New:            FilterBreeding(s.Breedings, s.Offspring, StageNew, now),
		ReadyToRecord:  FilterBreeding(s.Breedings, s.Offspring, StageReadyToRecord, now),
		ReadyToPromote: ReadyToPromote(s.Offspring, s.Breedings, now),
		Stock:          s.activity(now),
	}
}

func (s *Snapshot) activity(now time.Time) []StockActivity {
	out := make([]StockActivity, 0, len(s.Stock))
	for _, r := range s.Stock {
		out = append(out, StockActivity{
			Record:    r,
			Breedings: BreedingCount(r.ID(), s.Breedings),
			Active:    IsCurrentlyBreeding(r.ID(), s.Breedings, now, RecentBreedDays),
		})
	}
	return out
}

// Search keeps nodes whose sire or dam kode or ras, or any offspring kode,
// contains term (case-insensitive). An empty term keeps every node.
func Search(nodes []Node, term string) []Node {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nodes
	}
	has := func(r model.Record, field string) bool {
		return strings.Contains(strings.ToLower(r.String(field)), term)
	}

	out := make([]Node, 0)
	for _, n := range nodes {
		hit := has(n.Sire.Record, "kode") || has(n.Dam.Record, "kode") ||
			has(n.Sire.Record, "ras") || has(n.Dam.Record, "ras")
		for _, o := range n.Offspring {
			if hit {
				break
			}
			hit = has(o, "kode")
		}
		if hit {
			out = append(out, n)
		}
	}
	return out
}
