// Package memory keeps exported reports in process memory, for local runs
// without a spreadsheet and for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "moneta/internal/sheets"
)

var _ ports.ReportWriter = (*Writer)(nil)

type Writer struct {
	mu      sync.Mutex
	reports []ports.Report
}

func New() *Writer {
	return &Writer{}
}

// WriteReport stores the report and returns a synthetic reference.
func (w *Writer) WriteReport(_ context.Context, r ports.Report) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports = append(w.reports, r)
	return fmt.Sprintf("mem:%d", len(w.reports)), nil
}

// Last returns the most recently written report.
func (w *Writer) Last() (ports.Report, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.reports) == 0 {
		return ports.Report{}, false
	}
	return w.reports[len(w.reports)-1], true
}

// Reports returns every report written so far, oldest first.
func (w *Writer) Reports() []ports.Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ports.Report(nil), w.reports...)
}
