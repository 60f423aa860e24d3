package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/toko-storefront/internal/events"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 3 * time.Second

// Banner holds the single transient status message shown to a visitor.
// A newer message replaces the text and restarts the dismissal timer.
type Banner struct {
	ttl    time.Duration
	onShow func(string)

	mu      sync.Mutex
	message string
	active  bool
	gen     uint64
	timer   *time.Timer
}

// NewBanner constructs a banner. onShow, when set, observes every message shown.
func NewBanner(ttl time.Duration, onShow func(string)) *Banner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Banner{ttl: ttl, onShow: onShow}
}

// Show displays message immediately and arms the dismissal timer.
func (b *Banner) Show(message string) {
	b.mu.Lock()
	b.message = message
	b.active = true
	b.gen++
	gen := b.gen
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.ttl, func() { b.dismiss(gen) })
	b.mu.Unlock()

	if b.onShow != nil {
		b.onShow(message)
	}
}

// Current returns the visible message, if any.
func (b *Banner) Current() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active {
		return "", false
	}
	return b.message, true
}

// Close cancels any pending dismissal and hides the banner.
func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.active = false
}

// Notify implements events.Notifier.
func (b *Banner) Notify(_ context.Context, event events.Event) error {
	if strings.TrimSpace(event.Message) == "" {
		return nil
	}
	b.Show(event.Message)
	return nil
}

func (b *Banner) dismiss(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// a newer Show owns the banner now
	if gen != b.gen {
		return
	}
	b.active = false
	b.timer = nil
}
