package notify

import (
	"context"

	"go.uber.org/zap"
)

// Request is one "starting soon" notification the scheduler wants
// delivered.
type Request struct {
	EventID      string
	Title        string
	LocationName string
}

// Notifier is the delivery capability. A nil return means the delivery
// collaborator accepted the request; any error means it was rejected and the
// event stays pending for the next tick.
type Notifier interface {
	Send(ctx context.Context, req Request) error
}

// Log accepts every request and only logs it. It is the fallback delivery
// channel when no Telegram credentials are configured.
type Log struct {
	Logger *zap.SugaredLogger
}

func (n *Log) Send(_ context.Context, req Request) error {
	n.Logger.Infow("reminder", "event", req.EventID, "title", req.Title, "location", req.LocationName)
	return nil
}
