package reviews

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/events"
)

func TestStars(t *testing.T) {
	require.Equal(t, "★★★★☆", Stars(4))
	require.Equal(t, "☆☆☆☆☆", Stars(0))
	require.Equal(t, "★★★★★", Stars(5))
	require.Equal(t, "★★★★★", Stars(9))
	require.Equal(t, "☆☆☆☆☆", Stars(-2))
}

func TestSubmitPrependsAndSignals(t *testing.T) {
	var got []events.Event
	bus := &events.Bus{Notifiers: []events.Notifier{events.NotifierFunc(func(_ context.Context, ev events.Event) error {
		got = append(got, ev)
		return nil
	})}}
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := NewRecorder(Config{Events: bus, Now: func() time.Time { return at }})

	rec.Submit(context.Background(), "Ben", 5, "Solid.")
	entry := rec.Submit(context.Background(), "Ana", 4, "Great!")

	require.Equal(t, "★★★★☆", entry.Stars)
	require.Equal(t, `"Great!"`, entry.Quote)
	require.Equal(t, at, entry.SubmittedAt)
	require.NotEmpty(t, entry.ID)
	require.Equal(t, DefaultRevealDelay, entry.RevealDelay)
	require.EqualValues(t, 500, entry.RevealDurationMS())

	list := rec.List()
	require.Len(t, list, 2)
	require.Equal(t, "Ana", list[0].Name)
	require.Equal(t, "Ben", list[1].Name)

	require.Len(t, got, 2)
	require.Equal(t, events.TopicReviewSubmitted, got[1].Topic)
	require.Equal(t, "Review submitted successfully!", got[1].Message)
}

func TestListIsACopy(t *testing.T) {
	rec := NewRecorder(Config{})
	rec.Submit(context.Background(), "Ana", 3, "ok")
	list := rec.List()
	list[0].Name = "changed"
	require.Equal(t, "Ana", rec.List()[0].Name)
}

func TestSubmissionValidate(t *testing.T) {
	require.NoError(t, Submission{Name: "Ana", Rating: 4, Content: "Great!"}.Validate())

	err := Submission{Name: "", Rating: 0, Content: "x"}.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidSubmission))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.ElementsMatch(t, []FieldError{{Field: "name", Rule: "required"}, {Field: "rating", Rule: "min"}}, verr.Fields)

	err = Submission{Name: "Ana", Rating: 6, Content: "x"}.Validate()
	require.Error(t, err)
}

func TestSubmissionNormalize(t *testing.T) {
	s := Submission{Name: "  Ana ", Content: "\tnice\n"}.Normalize()
	require.Equal(t, "Ana", s.Name)
	require.Equal(t, "nice", s.Content)
}
