// Package export defines the outbound port for publishing month reports to
// an external surface the household already looks at.
package export

import (
	"context"

	"bilancio/internal/engine"
)

// ReportWriter renders a month report somewhere outside the service. The
// returned reference identifies where the report landed.
type ReportWriter interface {
	WriteMonthReport(ctx context.Context, report engine.MonthReport) (ref string, err error)
}
