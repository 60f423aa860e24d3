package obs

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/events"
)

// EventLogger writes every bus event to the structured log at debug level.
type EventLogger struct {
	Logger zerolog.Logger
}

// Notify implements events.Notifier.
func (l EventLogger) Notify(ctx context.Context, ev events.Event) error {
	evt := l.Logger.Debug().
		Str("event_id", ev.ID.String()).
		Str("topic", ev.Topic)
	if len(ev.Payload) > 0 {
		evt = evt.RawJSON("payload", ev.Payload)
	}
	if sid, ok := common.SessionID(ctx); ok && sid != "" {
		evt = evt.Str("session_id", sid)
	}
	if ev.Message != "" {
		evt = evt.Str("notice", ev.Message)
	}
	evt.Msg("storefront_event")
	return nil
}
