package reviews

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/events"
)

const (
	// MaxRating is the number of stars in a full rating.
	MaxRating = 5
	// DefaultRevealDelay is the pause before a new entry starts fading in.
	DefaultRevealDelay = 100 * time.Millisecond
	// DefaultRevealDuration is how long the fade-in takes.
	DefaultRevealDuration = 500 * time.Millisecond

	submittedMessage = "Review submitted successfully!"
)

// Record is one submitted review.
type Record struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Rating      int       `json:"rating"`
	Content     string    `json:"content"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Entry is the display form of a Record.
type Entry struct {
	Record
	Stars          string        `json:"stars"`
	Quote          string        `json:"quote"`
	RevealDelay    time.Duration `json:"-"`
	RevealDuration time.Duration `json:"-"`
}

// RevealDelayMS is the reveal delay in milliseconds, for CSS.
func (e Entry) RevealDelayMS() int64 { return e.RevealDelay.Milliseconds() }

// RevealDurationMS is the reveal duration in milliseconds, for CSS.
func (e Entry) RevealDurationMS() int64 { return e.RevealDuration.Milliseconds() }

// Publisher raises signals to the rest of the storefront.
type Publisher interface {
	Emit(ctx context.Context, topic, message string, payload any) (events.Event, error)
}

// Config wires a Recorder. Every field is optional.
type Config struct {
	Events         Publisher
	Logger         *zerolog.Logger
	Now            func() time.Time
	RevealDelay    time.Duration
	RevealDuration time.Duration
}

// Recorder keeps the in-memory review list, newest first. Callers serialise
// access the same way they do for the cart.
type Recorder struct {
	entries        []Entry
	events         Publisher
	logger         zerolog.Logger
	now            func() time.Time
	revealDelay    time.Duration
	revealDuration time.Duration
}

// NewRecorder constructs an empty Recorder.
func NewRecorder(cfg Config) *Recorder {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "reviews").Logger()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	delay := cfg.RevealDelay
	if delay <= 0 {
		delay = DefaultRevealDelay
	}
	duration := cfg.RevealDuration
	if duration <= 0 {
		duration = DefaultRevealDuration
	}
	return &Recorder{
		events:         cfg.Events,
		logger:         logger,
		now:            now,
		revealDelay:    delay,
		revealDuration: duration,
	}
}

// Submit records a review and places it at the top of the list.
func (r *Recorder) Submit(ctx context.Context, name string, rating int, content string) Entry {
	rec := Record{
		ID:          uuid.NewString(),
		Name:        name,
		Rating:      rating,
		Content:     content,
		SubmittedAt: r.now(),
	}
	entry := Entry{
		Record:         rec,
		Stars:          Stars(rating),
		Quote:          `"` + content + `"`,
		RevealDelay:    r.revealDelay,
		RevealDuration: r.revealDuration,
	}
	r.entries = append([]Entry{entry}, r.entries...)
	r.logger.Debug().Str("review_id", rec.ID).Int("rating", rating).Msg("review submitted")

	if r.events != nil {
		if _, err := r.events.Emit(ctx, events.TopicReviewSubmitted, submittedMessage, map[string]any{"id": rec.ID, "rating": rating}); err != nil {
			r.logger.Warn().Err(err).Msg("publish review signal")
		}
	}
	return entry
}

// List returns entries newest first.
func (r *Recorder) List() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len reports how many reviews were recorded.
func (r *Recorder) Len() int { return len(r.entries) }

// Stars renders rating filled stars followed by empty ones up to MaxRating.
func Stars(rating int) string {
	rating = min(max(rating, 0), MaxRating)
	return strings.Repeat("★", rating) + strings.Repeat("☆", MaxRating-rating)
}
