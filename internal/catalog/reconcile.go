package catalog

import (
	"fmt"
	"strings"
	"time"

	"gestor/internal"
	"gestor/internal/util"
)

// IDAllocator hands out product ids. Allocation is a side effect on a
// persistent counter, so ids are never reused even across runs.
type IDAllocator interface {
	NextProductID() (int, error)
}

// Outcome of reconciling one candidate against the catalog.
type Outcome string

const (
	OutcomeNew     Outcome = "nuevo"
	OutcomeUpdated Outcome = "actualizado"
	OutcomeSkipped Outcome = "omitido"
	OutcomeError   Outcome = "error"
)

// Counts accumulates per-outcome totals over a run. Skipped records the
// matched-but-not-updated case separately so it stays observable instead
// of vanishing.
type Counts struct {
	New     int
	Updated int
	Skipped int
	Errors  int
}

// Reconciler merges candidates into a code-keyed catalog one at a time.
// It assumes exclusive access to the catalog for the duration of a run;
// concurrent runs must be serialized by the caller.
type Reconciler struct {
	index          *Index
	ids            IDAllocator
	codes          *util.CodeGenerator
	updateExisting bool
	counts         Counts
}

func NewReconciler(existing []internal.Product, ids IDAllocator, codes *util.CodeGenerator, updateExisting bool) *Reconciler {
	return &Reconciler{
		index:          BuildIndex(existing),
		ids:            ids,
		codes:          codes,
		updateExisting: updateExisting,
	}
}

// Apply reconciles a single candidate. Invalid candidates (empty name,
// non-positive price) count as errors and leave the catalog untouched; a
// failed id allocation does the same. No single candidate ever aborts the
// run.
func (r *Reconciler) Apply(c internal.CandidateProduct) Outcome {
	if strings.TrimSpace(c.Name) == "" || c.Price <= 0 {
		r.counts.Errors++
		return OutcomeError
	}

	code := strings.TrimSpace(c.Code)
	if code == "" || code == util.NoCode {
		code = r.codes.Next()
	}

	existing, found := r.index.Lookup(code)
	switch {
	case found && r.updateExisting:
		existing.Name = c.Name
		existing.Price = c.Price
		if strings.TrimSpace(c.Category) != "" {
			existing.Category = c.Category
		}
		// Stock accumulates: an import of 5 on top of 10 leaves 15.
		existing.Stock += c.Stock
		r.index.Put(existing)
		r.counts.Updated++
		return OutcomeUpdated

	case found:
		r.counts.Skipped++
		return OutcomeSkipped

	default:
		id, err := r.ids.NextProductID()
		if err != nil {
			fmt.Printf("error asignando id para %s: %v\n", code, err)
			r.counts.Errors++
			return OutcomeError
		}

		cost := c.Cost
		if cost == 0 {
			cost = c.Price * 0.7
		}
		minStock := c.MinStock
		if minStock == 0 {
			minStock = 5
		}
		category := c.Category
		if strings.TrimSpace(category) == "" {
			category = "General"
		}

		r.index.Put(internal.Product{
			ID:        id,
			Code:      code,
			Name:      c.Name,
			Category:  category,
			Price:     c.Price,
			Cost:      cost,
			Stock:     c.Stock,
			MinStock:  minStock,
			Unit:      c.Unit,
			Source:    string(c.Source),
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		})
		r.counts.New++
		return OutcomeNew
	}
}

func (r *Reconciler) Counts() Counts {
	return r.counts
}

// Catalog returns the merged catalog. Exactly one entry per distinct code:
// every code either existed in the input catalog or was inserted once.
func (r *Reconciler) Catalog() []internal.Product {
	return r.index.Products()
}
