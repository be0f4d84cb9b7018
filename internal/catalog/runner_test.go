package catalog

import (
	"testing"

	"gestor/internal"
	"gestor/internal/util"
)

func runnerCandidates(n int) []internal.CandidateProduct {
	out := make([]internal.CandidateProduct, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, internal.CandidateProduct{
			Code:  string(rune('A'+i)) + "100",
			Name:  "Producto",
			Price: float64(10 * (i + 1)),
			Stock: 1,
		})
	}
	return out
}

func TestRunnerCompleteRun(t *testing.T) {
	r := NewRunner(&fakeIDs{}, util.NewCodeGenerator())

	var messages []string
	result := r.Run(runnerCandidates(3), nil, RunOptions{File: "lista.pdf", Source: internal.SourcePDF, UpdateExisting: true},
		func(msg string, percent, total int) {
			messages = append(messages, msg)
			if total != 3 {
				t.Fatalf("total=%d", total)
			}
		}, nil)

	if result.Report.New != 3 || result.Report.Total != 3 || result.Report.Cancelled {
		t.Fatalf("report=%+v", result.Report)
	}
	if len(result.Rows) != 3 {
		t.Fatalf("rows=%d", len(result.Rows))
	}
	for _, row := range result.Rows {
		if row.Outcome != string(OutcomeNew) {
			t.Fatalf("outcome=%s", row.Outcome)
		}
	}
	if len(result.Catalog) != 3 {
		t.Fatalf("catalog=%d", len(result.Catalog))
	}
	// The last progress call is always the terminal one.
	if messages[len(messages)-1] != "Importación completada" {
		t.Fatalf("messages=%v", messages)
	}
	if result.Report.Timestamp == "" {
		t.Fatal("timestamp empty")
	}
}

func TestRunnerCancellationKeepsPartialWork(t *testing.T) {
	r := NewRunner(&fakeIDs{}, util.NewCodeGenerator())
	handle := NewRunHandle()

	processed := 0
	result := r.Run(runnerCandidates(10), nil, RunOptions{UpdateExisting: true},
		func(msg string, percent, total int) {
			processed++
			if processed == 4 {
				handle.Cancel()
			}
		}, handle)

	if !result.Report.Cancelled {
		t.Fatal("not cancelled")
	}
	// Four progress callbacks mean four items entered reconciliation.
	counts := result.Report.New + result.Report.Updated + result.Report.Skipped + result.Report.Errors
	if counts != 4 {
		t.Fatalf("outcomes=%d", counts)
	}
	if len(result.Rows) != 4 {
		t.Fatalf("rows=%d", len(result.Rows))
	}
	if len(result.Catalog) != 4 {
		t.Fatalf("catalog=%d", len(result.Catalog))
	}
	if result.Report.Total != 10 {
		t.Fatalf("total=%d", result.Report.Total)
	}
}

func TestRunnerPreCancelledDoesNothing(t *testing.T) {
	r := NewRunner(&fakeIDs{}, util.NewCodeGenerator())
	handle := NewRunHandle()
	handle.Cancel()

	result := r.Run(runnerCandidates(5), nil, RunOptions{}, nil, handle)
	if len(result.Rows) != 0 || !result.Report.Cancelled {
		t.Fatalf("result=%+v", result.Report)
	}
}

func TestRunnerErrorsDoNotAbort(t *testing.T) {
	r := NewRunner(&fakeIDs{}, util.NewCodeGenerator())

	candidates := []internal.CandidateProduct{
		{Code: "A100", Name: "Bueno", Price: 10},
		{Code: "B100", Name: "", Price: 10},
		{Code: "C100", Name: "También bueno", Price: 20},
	}
	result := r.Run(candidates, nil, RunOptions{UpdateExisting: true}, nil, nil)

	if result.Report.Errors != 1 || result.Report.New != 2 {
		t.Fatalf("report=%+v", result.Report)
	}
	if result.Rows[1].Outcome != string(OutcomeError) {
		t.Fatalf("outcome=%s", result.Rows[1].Outcome)
	}
	if result.Report.Cancelled {
		t.Fatal("cancelled")
	}
}
