// Package job runs periodic background work for the bot.
package job

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/m3rciful/kursbot/core/logger"
)

// CycleRunner is one unit of periodic work.
type CycleRunner interface {
	RunEvaluationCycle(ctx context.Context) (int, error)
}

// AlertPoller drives evaluation cycles on a fixed interval. Ticks never
// overlap: while a cycle is still running, subsequent ticks are skipped.
type AlertPoller struct {
	runner   CycleRunner
	interval time.Duration
	running  atomic.Bool
}

// NewAlertPoller builds a poller; interval must be positive.
func NewAlertPoller(runner CycleRunner, interval time.Duration) *AlertPoller {
	return &AlertPoller{runner: runner, interval: interval}
}

// Run blocks until ctx is canceled, firing one cycle per interval. A
// failed cycle is logged and does not stop the poller.
func (p *AlertPoller) Run(ctx context.Context) {
	logger.Info(ctx, "job", "poller.start",
		slog.Duration("duration", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "job", "poller.stop")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *AlertPoller) tick(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		logger.Warn(ctx, "job", "poller.tick_skipped")
		return
	}
	defer p.running.Store(false)

	if _, err := p.runner.RunEvaluationCycle(ctx); err != nil && ctx.Err() == nil {
		logger.Error(ctx, "job", "poller.cycle_failed",
			slog.String("err", err.Error()))
	}
}
