package overdue

import (
	"context"
	"errors"
	"time"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/clock"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/metrics"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Invoices invoicedomain.Service
	Metrics  *metrics.InvoiceMetrics `optional:"true"`
	Config   Config                  `optional:"true"`
}

// Result summarizes one sweep.
type Result struct {
	Marked  int
	Skipped int
	Failed  int
}

// Worker moves issued invoices past their due date to overdue. The sweep is
// an external trigger of the issued -> overdue transition; the invoice state
// machine itself never changes status on its own.
type Worker struct {
	log      *zap.Logger
	clock    clock.Clock
	invoices invoicedomain.Service
	metrics  *metrics.InvoiceMetrics
	cfg      Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:      p.Log.Named("invoice.overdue"),
		clock:    p.Clock,
		invoices: p.Invoices,
		metrics:  p.Metrics,
		cfg:      p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if result, err := w.RunOnce(ctx); err != nil {
			w.log.Warn("overdue sweep failed", zap.Error(err))
		} else if result.Marked > 0 || result.Failed > 0 {
			w.log.Info("overdue sweep finished",
				zap.Int("marked", result.Marked),
				zap.Int("skipped", result.Skipped),
				zap.Int("failed", result.Failed),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce processes one batch of past-due invoices.
func (w *Worker) RunOnce(ctx context.Context) (Result, error) {
	var result Result
	if w.invoices == nil {
		return result, errors.New("overdue_worker_unavailable")
	}

	now := w.clock.Now()
	candidates, err := w.invoices.ListPastDue(ctx, now, w.cfg.BatchSize)
	if err != nil {
		return result, err
	}

	for _, inv := range candidates {
		if !inv.IsPastDue(now) {
			result.Skipped++
			w.metrics.IncOverdueSweep("skipped")
			continue
		}

		orgCtx := orgcontext.WithOrgID(ctx, inv.OrgID)
		_, err := w.invoices.MarkOverdue(orgCtx, inv.ID.String())
		switch {
		case err == nil:
			result.Marked++
			w.metrics.IncOverdueSweep("marked")
		case errors.Is(err, invoicedomain.ErrInvalidTransition), errors.Is(err, invoicedomain.ErrConcurrentUpdate):
			// Paid or cancelled between listing and update.
			result.Skipped++
			w.metrics.IncOverdueSweep("skipped")
		default:
			result.Failed++
			w.metrics.IncOverdueSweep("failed")
			w.log.Warn("failed to mark invoice overdue",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err),
			)
		}
	}
	return result, nil
}
