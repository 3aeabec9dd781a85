package services

import (
	"context"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/storage"
)

// AlertService turns a recomputed month report into AMQP alert messages.
// It diffs against the previous snapshot so an unchanged projection does not
// re-alert on every recompute; movements within one cent are noise and are
// ignored.
type AlertService struct {
	publisher Publisher
	now       func() time.Time
}

func NewAlertService(publisher Publisher) *AlertService {
	return &AlertService{publisher: publisher, now: time.Now}
}

// Emit publishes alerts for report, using previous to suppress repeats.
func (s *AlertService) Emit(ctx context.Context, report engine.MonthReport, previous []storage.SnapshotRow) {
	if s.publisher == nil {
		return
	}

	prevProjected := make(map[string]core.Money, len(previous))
	for _, row := range previous {
		prevProjected[row.AccountID] = row.Projected
	}

	at := s.now().UTC()
	for _, p := range report.Projections {
		if !p.NegativeProjected {
			continue
		}
		if prev, ok := prevProjected[p.AccountID]; ok {
			delta := p.Projected.Sub(prev)
			if delta.Cents >= -core.CentEpsilon && delta.Cents <= core.CentEpsilon {
				continue
			}
		}
		s.publish(ctx, &amqp.AlertMessage{
			Month:       report.Month.String(),
			Kind:        amqp.AlertNegativeProjection,
			AccountID:   p.AccountID,
			AmountCents: p.Projected.Cents,
			Timestamp:   at,
		})
	}

	for _, alert := range report.BudgetAlerts {
		kind := amqp.AlertBudgetWarning
		if alert.Status == engine.AlertOver {
			kind = amqp.AlertBudgetOver
		}
		s.publish(ctx, &amqp.AlertMessage{
			Month:       report.Month.String(),
			Kind:        kind,
			CategoryID:  alert.CategoryID,
			AmountCents: alert.Total.Cents,
			Timestamp:   at,
		})
	}
}

func (s *AlertService) publish(ctx context.Context, msg *amqp.AlertMessage) {
	if err := s.publisher.PublishAlert(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish alert",
			"kind", msg.Kind,
			"month", msg.Month,
			"error", err)
	}
}
