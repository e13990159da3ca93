package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"georemind/geo"
	"georemind/locate"
	"georemind/metrics"
	"georemind/notify"
	"georemind/store"
)

// Options are the evaluation parameters of a Scheduler.
type Options struct {
	Lead            time.Duration // how long before start the window is centered
	Tolerance       time.Duration // half-width of the window, >= half the tick interval
	RadiusKm        float64       // proximity gate
	TickTimeout     time.Duration // soft deadline for a whole tick
	LocationTimeout time.Duration // deadline for one location fetch
}

// Scheduler owns the event cache and the notification ledger and drives the
// per-tick evaluation. All state it needs survives a process restart in the
// two stores; nothing authoritative is held in memory.
type Scheduler struct {
	opts     Options
	cache    *store.EventCache
	ledger   *store.NotificationLedger
	locator  locate.Provider
	notifier notify.Notifier
	clk      clock.Clock
	logger   *zap.SugaredLogger

	// tickMu serializes whole ticks; an overlapping invocation is dropped
	// rather than queued since the next tick re-evaluates everything anyway.
	tickMu sync.Mutex

	statusMu sync.Mutex
	status   Status
}

// Status is a snapshot of the last completed tick, for the status endpoint.
type Status struct {
	LastTickAt time.Time `json:"lastTickAt"`
	Evaluated  int       `json:"evaluated"`
	Sent       int       `json:"sent"`
	Rejected   int       `json:"rejected"`
}

func New(opts Options, cache *store.EventCache, ledger *store.NotificationLedger,
	locator locate.Provider, notifier notify.Notifier, clk clock.Clock, l *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		opts:     opts,
		cache:    cache,
		ledger:   ledger,
		locator:  locator,
		notifier: notifier,
		clk:      clk,
		logger:   l,
	}
}

// OnTick runs one complete evaluation pass. It never returns an error and
// never panics outward: the driver only has to call it periodically. Two
// concurrent invocations are collapsed to one.
func (s *Scheduler) OnTick(ctx context.Context) {
	if !s.tickMu.TryLock() {
		s.logger.Debug("tick already in progress; dropping this one")
		metrics.TicksDropped.Inc()
		return
	}
	defer s.tickMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.opts.TickTimeout)
	defer cancel()

	now := s.clk.Now().UTC()
	metrics.Ticks.Inc()

	// Prune before evaluation so a just-expired record can't suppress a
	// window opening at the same instant.
	if err := s.ledger.Prune(ctx, now); err != nil {
		s.logger.Errorw("failed pruning notification ledger", "err", err)
	}

	events := s.cache.GetAll(ctx)
	st := Status{LastTickAt: now, Evaluated: len(events)}
	if len(events) == 0 {
		s.setStatus(st)
		return
	}

	loc := s.lazyLocation(ctx)

	for i := range events {
		switch s.evaluate(ctx, &events[i], now, loc) {
		case outcomeSent:
			st.Sent++
		case outcomeRejected:
			st.Rejected++
		}
	}

	s.setStatus(st)
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeSent
	outcomeRejected
)

// evaluate runs the skip chain for a single event. A panic inside it is
// contained so one defective event cannot suppress reminders for the rest.
func (s *Scheduler) evaluate(ctx context.Context, ev *store.TrackedEvent, now time.Time, loc *lazyLocation) (res outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("event evaluation panicked", "event", ev.ID, "panic", r)
			metrics.EventsSkipped.WithLabelValues(metrics.SkipEvaluationPanicked).Inc()
			res = outcomeSkipped
		}
	}()

	if s.ledger.HasRecentRecord(ctx, ev.ID, now) {
		metrics.EventsSkipped.WithLabelValues(metrics.SkipAlreadyNotified).Inc()
		return outcomeSkipped
	}

	startAt, ok := ev.Start()
	if !ok {
		metrics.EventsSkipped.WithLabelValues(metrics.SkipMalformedStart).Inc()
		return outcomeSkipped
	}

	if !Eligible(startAt, now, s.opts.Lead, s.opts.Tolerance) {
		metrics.EventsSkipped.WithLabelValues(metrics.SkipOutOfWindow).Inc()
		return outcomeSkipped
	}

	// Events without a target coordinate are never notified by this
	// scheduler, regardless of their time window.
	target, ok := ev.Coordinate()
	if !ok {
		metrics.EventsSkipped.WithLabelValues(metrics.SkipNoCoordinate).Inc()
		return outcomeSkipped
	}

	// Fail closed: no known position means no notification this tick.
	here, ok := loc.get()
	if !ok {
		metrics.EventsSkipped.WithLabelValues(metrics.SkipLocationUnknown).Inc()
		return outcomeSkipped
	}

	if !geo.WithinRadius(here, target, s.opts.RadiusKm) {
		metrics.EventsSkipped.WithLabelValues(metrics.SkipOutOfRadius).Inc()
		return outcomeSkipped
	}

	req := notify.Request{EventID: ev.ID, Title: ev.Title, LocationName: ev.LocationName}
	if err := s.notifier.Send(ctx, req); err != nil {
		// The event stays pending and is retried on the next tick.
		s.logger.Errorw("delivery rejected the reminder", "event", ev.ID, "err", err)
		metrics.NotificationsRejected.Inc()
		return outcomeRejected
	}

	metrics.NotificationsSent.Inc()
	s.logger.Infow("reminder sent", "event", ev.ID, "title", ev.Title)

	// Recorded only after accepted delivery. A failed write is logged and
	// ignored; the worst case is one duplicate reminder, not a lost one.
	if err := s.ledger.Record(ctx, ev.ID, now); err != nil {
		s.logger.Errorw("failed recording notification", "event", ev.ID, "err", err)
	}
	return outcomeSent
}

// lazyLocation fetches the current position at most once per tick, and only
// when some event actually reaches the proximity gate.
type lazyLocation struct {
	fetch func() (geo.Point, bool)
	done  bool
	pt    geo.Point
	ok    bool
}

func (s *Scheduler) lazyLocation(ctx context.Context) *lazyLocation {
	return &lazyLocation{fetch: func() (geo.Point, bool) {
		lctx, cancel := context.WithTimeout(ctx, s.opts.LocationTimeout)
		defer cancel()

		pt, err := s.locator.Current(lctx)
		if err != nil {
			s.logger.Warnw("current location unavailable; skipping proximity-gated events", "err", err)
			return geo.Point{}, false
		}
		return pt, true
	}}
}

func (l *lazyLocation) get() (geo.Point, bool) {
	if !l.done {
		l.pt, l.ok = l.fetch()
		l.done = true
	}
	return l.pt, l.ok
}

func (s *Scheduler) setStatus(st Status) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status = st
}

// Status returns the snapshot of the most recently completed tick.
func (s *Scheduler) Status() Status {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.status
}
