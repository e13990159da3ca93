// Package tick drives the scheduler's periodic evaluation. The drivers only
// invoke the tick function; repeated or skipped invocations are safe because
// the scheduler dedups through its ledger.
package tick

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RunInterval invokes fn every interval until ctx is cancelled. It blocks.
func RunInterval(ctx context.Context, interval time.Duration, fn func(context.Context), l *zap.SugaredLogger) {
	l.Infof("tick driver running every %v", interval)

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Info("tick driver stopped")
			return
		case <-t.C:
			fn(ctx)
		}
	}
}

// RunCron invokes fn on a cron schedule (e.g. "* * * * *") until ctx is
// cancelled. It blocks; an invalid spec is reported before anything starts.
func RunCron(ctx context.Context, spec string, fn func(context.Context), l *zap.SugaredLogger) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { fn(ctx) }); err != nil {
		return err
	}

	l.Infof("tick driver running on schedule %q", spec)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	l.Info("tick driver stopped")
	return nil
}
