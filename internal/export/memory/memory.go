// Package memory is an in-memory ReportWriter for tests and local runs
// without a spreadsheet configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bilancio/internal/engine"
	ports "bilancio/internal/export"
)

type Writer struct {
	mu      sync.Mutex
	reports []engine.MonthReport
}

var _ ports.ReportWriter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteMonthReport(_ context.Context, report engine.MonthReport) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports = append(w.reports, report)
	return fmt.Sprintf("memory://reports/%s/%d", report.Month.String(), len(w.reports)), nil
}

// Reports returns every written report, oldest first.
func (w *Writer) Reports() []engine.MonthReport {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]engine.MonthReport, len(w.reports))
	copy(out, w.reports)
	return out
}
