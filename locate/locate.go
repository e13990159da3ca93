package locate

import (
	"context"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"github.com/pkg/errors"

	"georemind/geo"
)

// ErrUnavailable is returned when no usable current position exists. The
// scheduler treats it (and any other error) as "location unknown" and fails
// closed for the tick.
var ErrUnavailable = errors.New("current location unavailable")

// Provider yields the current position or fails. Implementations must honor
// the caller's context deadline.
type Provider interface {
	Current(ctx context.Context) (geo.Point, error)
}

// Func adapts a plain function to a Provider.
type Func func(ctx context.Context) (geo.Point, error)

func (f Func) Current(ctx context.Context) (geo.Point, error) {
	return f(ctx)
}

// LastReport keeps the most recent position pushed by the reporting client
// and serves it as the current position while it is fresh enough. A report
// older than maxAge counts as no position at all.
type LastReport struct {
	clk    clock.Clock
	maxAge time.Duration

	mu       sync.RWMutex
	pt       geo.Point
	at       time.Time
	reported bool
}

func NewLastReport(maxAge time.Duration, clk clock.Clock) *LastReport {
	return &LastReport{clk: clk, maxAge: maxAge}
}

func (l *LastReport) Report(pt geo.Point, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pt = pt
	l.at = at
	l.reported = true
}

func (l *LastReport) Current(ctx context.Context) (geo.Point, error) {
	if err := ctx.Err(); err != nil {
		return geo.Point{}, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.reported {
		return geo.Point{}, ErrUnavailable
	}
	if l.clk.Now().Sub(l.at) > l.maxAge {
		return geo.Point{}, errors.Wrap(ErrUnavailable, "last report is stale")
	}
	return l.pt, nil
}

// LastAt returns when the freshest report arrived, for the status endpoint.
func (l *LastReport) LastAt() (time.Time, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.at, l.reported
}
