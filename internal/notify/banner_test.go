package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/events"
)

func TestBannerAutoDismisses(t *testing.T) {
	b := NewBanner(30*time.Millisecond, nil)
	b.Show("Item added to cart")

	msg, ok := b.Current()
	require.True(t, ok)
	require.Equal(t, "Item added to cart", msg)

	require.Eventually(t, func() bool {
		_, ok := b.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestBannerReplacementRestartsTimer(t *testing.T) {
	b := NewBanner(80*time.Millisecond, nil)
	b.Show("first")
	time.Sleep(50 * time.Millisecond)
	b.Show("second")
	time.Sleep(50 * time.Millisecond)

	msg, ok := b.Current()
	require.True(t, ok, "first timer must not dismiss the replacement")
	require.Equal(t, "second", msg)

	require.Eventually(t, func() bool {
		_, ok := b.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestBannerNotifyShowsEventMessage(t *testing.T) {
	var shown []string
	b := NewBanner(time.Minute, func(m string) { shown = append(shown, m) })
	defer b.Close()

	require.NoError(t, b.Notify(context.Background(), events.Event{Topic: events.TopicOrderViewed}))
	_, ok := b.Current()
	require.False(t, ok, "silent events leave the banner untouched")

	require.NoError(t, b.Notify(context.Background(), events.Event{Topic: events.TopicCartEmpty, Message: "Your cart is empty"}))
	msg, ok := b.Current()
	require.True(t, ok)
	require.Equal(t, "Your cart is empty", msg)
	require.Equal(t, []string{"Your cart is empty"}, shown)
}

func TestBannerClose(t *testing.T) {
	b := NewBanner(time.Minute, nil)
	b.Show("hello")
	b.Close()
	_, ok := b.Current()
	require.False(t, ok)
}
