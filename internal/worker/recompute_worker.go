// Package worker rebuilds month reports in the background: on demand when a
// write publishes a recompute message, and periodically as a safety net for
// missed messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/export"
	"bilancio/internal/services"
)

// Consumer is the inbound side of the message broker.
type Consumer interface {
	ConsumeRecompute(ctx context.Context, handler func(*amqp.RecomputeMessage) error) error
}

type RecomputeWorker struct {
	projections *services.ProjectionService
	alerts      *services.AlertService
	exporter    export.ReportWriter
	consumer    Consumer
	interval    time.Duration
	now         func() time.Time
}

func NewRecomputeWorker(projections *services.ProjectionService, alerts *services.AlertService, exporter export.ReportWriter, consumer Consumer, interval time.Duration) *RecomputeWorker {
	return &RecomputeWorker{
		projections: projections,
		alerts:      alerts,
		exporter:    exporter,
		consumer:    consumer,
		interval:    interval,
		now:         time.Now,
	}
}

// Run consumes recompute messages and ticks the current month on the
// configured interval, until the context is cancelled.
func (w *RecomputeWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.ConsumeRecompute(ctx, func(msg *amqp.RecomputeMessage) error {
				return w.HandleRecompute(ctx, msg)
			})
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				month := core.MonthOf(w.now())
				if err := w.RecomputeMonth(ctx, month); err != nil {
					slog.ErrorContext(ctx, "Periodic recompute failed",
						"month", month.String(),
						"error", err)
				}
			}
		}
	})

	return g.Wait()
}

// HandleRecompute processes one recompute request from the broker.
func (w *RecomputeWorker) HandleRecompute(ctx context.Context, msg *amqp.RecomputeMessage) error {
	month, err := core.ParseMonth(msg.Month)
	if err != nil {
		// A bad month key can never succeed later; log and drop.
		slog.ErrorContext(ctx, "Recompute message carries invalid month",
			"month", msg.Month,
			"reason", msg.Reason)
		return nil
	}
	return w.RecomputeMonth(ctx, month)
}

// RecomputeMonth rebuilds one month: diff against the previous snapshot for
// alerting, persist the new snapshot, export the report.
func (w *RecomputeWorker) RecomputeMonth(ctx context.Context, month core.Month) error {
	previous, err := w.projections.Snapshots(ctx, month)
	if err != nil {
		return fmt.Errorf("load previous snapshots: %w", err)
	}

	report, err := w.projections.Recompute(ctx, month)
	if err != nil {
		return fmt.Errorf("recompute month %s: %w", month.String(), err)
	}

	if w.alerts != nil {
		w.alerts.Emit(ctx, report, previous)
	}

	if w.exporter != nil {
		ref, err := w.exporter.WriteMonthReport(ctx, report)
		if err != nil {
			// Export is best effort; the snapshot is already saved.
			slog.ErrorContext(ctx, "Failed to export month report",
				"month", month.String(),
				"error", err)
		} else {
			slog.InfoContext(ctx, "Month report exported", "month", month.String(), "ref", ref)
		}
	}

	return nil
}
