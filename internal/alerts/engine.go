package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/kursbot/core/logger"
	"github.com/m3rciful/kursbot/internal/domain"
	"github.com/m3rciful/kursbot/internal/rates"
)

// Store is the persistence contract the engine needs.
type Store interface {
	ListEligible(ctx context.Context) ([]domain.EligibleAlert, error)
	MarkTriggered(ctx context.Context, alertID int64, at time.Time, rate float64) (bool, error)
}

// Notifier delivers a trigger notification to the alert owner.
type Notifier interface {
	NotifyTriggered(ctx context.Context, a domain.EligibleAlert, rate float64) error
}

// Engine runs evaluation cycles over all eligible alerts.
//
// Triggering is at-most-once: the triggered state is persisted through a
// guarded update before any notification is attempted, so a crash, a
// delivery failure or a concurrently running cycle can at worst lose the
// notification, never duplicate it.
type Engine struct {
	store    Store
	provider rates.Provider
	notifier Notifier
	now      func() time.Time
}

// NewEngine wires an engine.
func NewEngine(store Store, provider rates.Provider, notifier Notifier) *Engine {
	return &Engine{store: store, provider: provider, notifier: notifier, now: time.Now}
}

// RunEvaluationCycle evaluates every eligible alert once and returns the
// number of alerts this cycle transitioned to triggered. A failure on one
// alert skips it and continues with the rest; only listing failures and
// context cancellation abort the cycle.
func (e *Engine) RunEvaluationCycle(ctx context.Context) (int, error) {
	cycleID := uuid.NewString()
	start := e.now()

	eligible, err := e.store.ListEligible(ctx)
	if err != nil {
		logger.Error(ctx, "alerts", "cycle.list_failed",
			slog.String("cycle_id", cycleID), slog.String("err", err.Error()))
		return 0, fmt.Errorf("alerts: list eligible: %w", err)
	}

	triggered := 0
	for _, a := range eligible {
		if err := ctx.Err(); err != nil {
			return triggered, err
		}
		if e.evaluateOne(ctx, cycleID, a) {
			triggered++
		}
	}

	logger.Info(ctx, "alerts", "cycle.done",
		slog.String("cycle_id", cycleID),
		slog.Int("count", len(eligible)),
		slog.Int("triggered", triggered),
		slog.Duration("duration", time.Since(start)))
	return triggered, nil
}

// evaluateOne processes a single alert and reports whether this call
// performed the triggered transition.
func (e *Engine) evaluateOne(ctx context.Context, cycleID string, a domain.EligibleAlert) bool {
	attrs := func(extra ...slog.Attr) []slog.Attr {
		base := []slog.Attr{
			slog.String("cycle_id", cycleID),
			slog.Int64("alert_id", a.ID),
			slog.String("pair", a.CurrencyFrom+"/"+a.CurrencyTo),
			slog.String("condition", string(a.Condition)),
			slog.Float64("target_rate", a.TargetRate),
		}
		return append(base, extra...)
	}

	if !a.Condition.Valid() {
		// Persisted row with a condition this build does not know; never
		// triggers, but operators want to see it.
		logger.Warn(ctx, "alerts", "alert.condition_unknown", attrs()...)
		return false
	}

	rate, err := e.provider.Rate(ctx, a.CurrencyFrom, a.CurrencyTo)
	if err != nil || rate <= 0 {
		if err == nil {
			err = rates.ErrNoRate
		}
		logger.Warn(ctx, "alerts", "alert.rate_unavailable",
			attrs(slog.String("err", err.Error()))...)
		return false
	}

	if !Evaluate(a.Condition, rate, a.TargetRate) {
		return false
	}

	won, err := e.store.MarkTriggered(ctx, a.ID, e.now().UTC(), rate)
	if err != nil {
		logger.Warn(ctx, "alerts", "alert.mark_failed",
			attrs(slog.String("err", err.Error()))...)
		return false
	}
	if !won {
		// Another cycle or a manual delete got here first.
		logger.Debug(ctx, "alerts", "alert.already_triggered", attrs()...)
		return false
	}

	logger.Info(ctx, "alerts", "alert.triggered",
		attrs(slog.Float64("rate", rate))...)

	if a.OwnerBlocked {
		// Triggered state stands; the owner simply gets no message.
		logger.Debug(ctx, "alerts", "alert.owner_blocked", attrs()...)
		return true
	}
	if err := e.notifier.NotifyTriggered(ctx, a, rate); err != nil {
		logger.Warn(ctx, "alerts", "alert.notify_failed",
			attrs(slog.String("err", err.Error()))...)
	}
	return true
}
