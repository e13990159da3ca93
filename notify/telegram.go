package notify

import (
	"context"
	"fmt"

	tg "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Telegram's bot API allows roughly one message per second per chat; the
// limiter keeps a burst of simultaneously eligible events from tripping 429s.
const sendsPerSecond = 1

// Telegram delivers reminders as messages to a fixed chat.
type Telegram struct {
	bot     *tg.BotAPI
	chatID  int64
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

func NewTelegram(token string, chatID int64, l *zap.SugaredLogger) (*Telegram, error) {
	b, err := tg.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Telegram bot")
	}

	b.Debug = false
	l.Infof("authorized on account %q", b.Self.UserName)

	return &Telegram{
		bot:     b,
		chatID:  chatID,
		limiter: rate.NewLimiter(sendsPerSecond, 1),
		logger:  l,
	}, nil
}

func (t *Telegram) Send(ctx context.Context, req Request) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "gave up waiting for send slot")
	}

	text := fmt.Sprintf("Starting soon: %s", req.Title)
	if req.LocationName != "" {
		text += fmt.Sprintf(" @ %s", req.LocationName)
	}

	if _, err := t.bot.Send(tg.NewMessage(t.chatID, text)); err != nil {
		return errors.Wrapf(err, "failed sending reminder for event %q", req.EventID)
	}
	return nil
}
