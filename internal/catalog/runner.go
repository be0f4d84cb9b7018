package catalog

import (
	"fmt"
	"sync/atomic"
	"time"

	"gestor/internal"
	"gestor/internal/util"
)

// RunHandle carries the cancellation flag for one import run. It is owned
// by the caller; the runner only polls it between items, so cancellation
// takes effect at the next item boundary with no rollback.
type RunHandle struct {
	cancelled atomic.Bool
}

func NewRunHandle() *RunHandle {
	return &RunHandle{}
}

func (h *RunHandle) Cancel() {
	h.cancelled.Store(true)
}

func (h *RunHandle) IsCancelled() bool {
	return h.cancelled.Load()
}

// ProgressFunc receives a status message, percent complete and the total
// candidate count after each item.
type ProgressFunc func(message string, percent int, total int)

// RunOptions configures one import run.
type RunOptions struct {
	File           string
	Source         internal.SourceKind
	UpdateExisting bool
}

// RunResult is the complete outcome of a run: the merged catalog, one
// result row per processed candidate, and the final report.
type RunResult struct {
	Catalog []internal.Product
	Rows    []internal.ResultRow
	Report  internal.ImportReport
}

// Runner drives reconciliation candidate-by-candidate so progress can be
// reported between items and a run can be cancelled mid-way. A runner may
// be reused; every Run starts fresh.
type Runner struct {
	ids   IDAllocator
	codes *util.CodeGenerator
}

func NewRunner(ids IDAllocator, codes *util.CodeGenerator) *Runner {
	return &Runner{ids: ids, codes: codes}
}

// Run reconciles candidates in input order against the existing catalog.
// Cancelling after k of n items leaves exactly k reconciled outcomes and a
// terminal cancelled report; partial results are kept, nothing rolls back.
func (r *Runner) Run(candidates []internal.CandidateProduct, existing []internal.Product, opts RunOptions, onProgress ProgressFunc, handle *RunHandle) RunResult {
	if handle == nil {
		handle = NewRunHandle()
	}

	rec := NewReconciler(existing, r.ids, r.codes, opts.UpdateExisting)

	total := len(candidates)
	rows := make([]internal.ResultRow, 0, total)
	cancelled := false

	for i, c := range candidates {
		if handle.IsCancelled() {
			cancelled = true
			break
		}

		if onProgress != nil {
			percent := 0
			if total > 0 {
				percent = i * 100 / total
			}
			onProgress(fmt.Sprintf("Importando: %s", c.Name), percent, total)
		}

		outcome := rec.Apply(c)
		rows = append(rows, internal.ResultRow{
			LineNumber: c.LineNumber,
			Source:     string(c.Source),
			RawLine:    c.SourceLine,
			Code:       c.Code,
			Name:       c.Name,
			Category:   c.Category,
			Price:      c.Price,
			Stock:      c.Stock,
			Confidence: c.Confidence,
			Strategy:   c.Strategy,
			Outcome:    string(outcome),
		})
	}

	counts := rec.Counts()
	report := internal.ImportReport{
		File:      opts.File,
		Source:    opts.Source,
		New:       counts.New,
		Updated:   counts.Updated,
		Skipped:   counts.Skipped,
		Errors:    counts.Errors,
		Total:     total,
		Cancelled: cancelled,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if onProgress != nil && !cancelled {
		onProgress("Importación completada", 100, total)
	}

	return RunResult{Catalog: rec.Catalog(), Rows: rows, Report: report}
}
