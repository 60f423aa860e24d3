package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/reviews"
)

// DialogKind distinguishes blocking prompts.
type DialogKind string

const (
	DialogAlert   DialogKind = "alert"
	DialogConfirm DialogKind = "confirm"
)

// Dialog is a blocking prompt waiting to be shown to the visitor.
type Dialog struct {
	Kind    DialogKind `json:"kind"`
	Message string     `json:"message"`
	// Action is the route a confirm dialog posts its answer to.
	Action string `json:"action,omitempty"`
}

// Options configure every workspace built by a Store.
type Options struct {
	Formatter       pricing.Formatter
	NotificationTTL time.Duration
	RevealDelay     time.Duration
	RevealDuration  time.Duration
	Logger          *zerolog.Logger
	// Notifiers receive every event after the workspace banner.
	Notifiers []events.Notifier
	// OnNotification observes each banner message.
	OnNotification func(string)
}

// Workspace is one visitor's storefront state. All access goes through Do,
// so each input event runs to completion before the next starts.
type Workspace struct {
	ID      string
	Cart    *cart.Manager
	Reviews *reviews.Recorder
	Banner  *notify.Banner
	Bus     *events.Bus

	// lastSeen is unix nanoseconds, readable without waiting on mu.
	lastSeen atomic.Int64

	mu       sync.Mutex
	rendered cart.Snapshot
	renders  int
	dialog   *Dialog
}

// NewWorkspace assembles the cart, review list and banner around one bus.
func NewWorkspace(id string, opts Options, now time.Time) *Workspace {
	banner := notify.NewBanner(opts.NotificationTTL, opts.OnNotification)
	bus := &events.Bus{Notifiers: []events.Notifier{banner}}
	for _, n := range opts.Notifiers {
		bus.Subscribe(n)
	}
	ws := &Workspace{
		ID:     id,
		Banner: banner,
		Bus:    bus,
	}
	ws.lastSeen.Store(now.UnixNano())
	var logger *zerolog.Logger
	if opts.Logger != nil {
		l := opts.Logger.With().Str("session_id", id).Logger()
		logger = &l
	}
	ws.Cart = cart.NewManager(cart.Config{
		Renderer:  ws,
		Events:    bus,
		Formatter: opts.Formatter,
		Logger:    logger,
	})
	ws.Reviews = reviews.NewRecorder(reviews.Config{
		Events:         bus,
		Logger:         logger,
		RevealDelay:    opts.RevealDelay,
		RevealDuration: opts.RevealDuration,
	})
	ws.rendered = ws.Cart.Snapshot()
	return ws
}

// Do runs fn with exclusive access to the workspace.
func (w *Workspace) Do(now time.Time, fn func(*Workspace)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastSeen.Store(now.UnixNano())
	fn(w)
}

// Render implements cart.Renderer by keeping the latest view model.
func (w *Workspace) Render(s cart.Snapshot) {
	w.rendered = s
	w.renders++
}

// Rendered returns the last view model handed to the renderer.
// Call it inside Do.
func (w *Workspace) Rendered() cart.Snapshot { return w.rendered }

// Renders counts render passes since creation. Call it inside Do.
func (w *Workspace) Renders() int { return w.renders }

// SetDialog queues a prompt for the next page view. Call it inside Do.
func (w *Workspace) SetDialog(d Dialog) { w.dialog = &d }

// TakeDialog returns and clears the queued prompt. Call it inside Do.
func (w *Workspace) TakeDialog() (Dialog, bool) {
	if w.dialog == nil {
		return Dialog{}, false
	}
	d := *w.dialog
	w.dialog = nil
	return d, true
}

func (w *Workspace) idleSince(now time.Time) time.Duration {
	return time.Duration(now.UnixNano() - w.lastSeen.Load())
}

func (w *Workspace) close() {
	w.Banner.Close()
}
