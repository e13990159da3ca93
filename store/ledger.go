package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const ledgerKey = "notifications/ledger"

// NotificationLedger records which events have already been notified.
//
// Two periods govern a record's life: while it is younger than the dedup
// window it suppresses re-notification; once it is older than the retention
// period it is removed by Prune. A record between the two ages is inert but
// still visible for inspection.
type NotificationLedger struct {
	kv          KV
	logger      *zap.SugaredLogger
	dedupWindow time.Duration
	retention   time.Duration
}

func NewNotificationLedger(kv KV, dedupWindow, retention time.Duration, l *zap.SugaredLogger) *NotificationLedger {
	return &NotificationLedger{
		kv:          kv,
		logger:      l,
		dedupWindow: dedupWindow,
		retention:   retention,
	}
}

// HasRecentRecord reports whether eventID was notified within the dedup
// window. A read failure is treated as "no record": the conservative
// direction is an occasional duplicate reminder, never a silently lost one.
func (l *NotificationLedger) HasRecentRecord(ctx context.Context, eventID string, now time.Time) bool {
	records, err := l.load(ctx)
	if err != nil {
		l.logger.Errorw("failed reading notification ledger; assuming no record", "event", eventID, "err", err)
		return false
	}

	for _, r := range records {
		if r.EventID == eventID && now.Sub(r.NotifiedAt) <= l.dedupWindow {
			return true
		}
	}
	return false
}

// Record stores a notification record for eventID. Calling it again for the
// same ID replaces the previous record, so a double call within one tick
// cannot corrupt the ledger.
func (l *NotificationLedger) Record(ctx context.Context, eventID string, notifiedAt time.Time) error {
	records, err := l.load(ctx)
	if err != nil {
		// Proceed with an empty ledger rather than dropping the write.
		l.logger.Errorw("failed reading notification ledger before write", "event", eventID, "err", err)
		records = nil
	}

	kept := records[:0]
	for _, r := range records {
		if r.EventID != eventID {
			kept = append(kept, r)
		}
	}
	kept = append(kept, NotificationRecord{EventID: eventID, NotifiedAt: notifiedAt})

	return l.save(ctx, kept)
}

// Prune drops records older than the retention period. It runs at the start
// of every tick, before any eligibility check.
func (l *NotificationLedger) Prune(ctx context.Context, now time.Time) error {
	records, err := l.load(ctx)
	if err != nil {
		return errors.Wrap(err, "failed reading notification ledger")
	}

	kept := records[:0]
	for _, r := range records {
		if now.Sub(r.NotifiedAt) <= l.retention {
			kept = append(kept, r)
		}
	}

	if len(kept) == len(records) {
		return nil
	}
	return l.save(ctx, kept)
}

// Records returns the full ledger contents, newest state as stored. Used by
// the status endpoint; a failure reads as an empty ledger.
func (l *NotificationLedger) Records(ctx context.Context) []NotificationRecord {
	records, err := l.load(ctx)
	if err != nil {
		l.logger.Errorw("failed reading notification ledger", "err", err)
		return nil
	}
	return records
}

func (l *NotificationLedger) load(ctx context.Context) ([]NotificationRecord, error) {
	raw, ok, err := l.kv.Get(ctx, ledgerKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var records []NotificationRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrap(err, "failed decoding notification ledger")
	}
	return records, nil
}

func (l *NotificationLedger) save(ctx context.Context, records []NotificationRecord) error {
	if records == nil {
		records = []NotificationRecord{}
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "failed marshalling notification ledger")
	}
	if err := l.kv.Set(ctx, ledgerKey, raw); err != nil {
		return errors.Wrap(err, "failed storing notification ledger")
	}
	return nil
}
