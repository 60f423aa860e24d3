package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/pricing"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestResolveCreatesAndReuses(t *testing.T) {
	var sizes []int
	store := NewStore(StoreConfig{OnSize: func(n int) { sizes = append(sizes, n) }})

	ws, created := store.Resolve("")
	require.True(t, created)
	require.NotEmpty(t, ws.ID)

	again, created := store.Resolve(ws.ID)
	require.False(t, created)
	require.Same(t, ws, again)

	_, created = store.Resolve("unknown")
	require.True(t, created)
	require.Equal(t, 2, store.Len())
	require.Equal(t, []int{1, 2}, sizes)
}

func TestSweepEvictsIdleWorkspaces(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewStore(StoreConfig{IdleTTL: time.Hour, Now: clock.Now})

	stale := store.Create()
	clock.Advance(50 * time.Minute)
	fresh := store.Create()
	clock.Advance(20 * time.Minute)
	fresh.Do(clock.Now(), func(*Workspace) {})

	require.Equal(t, 1, store.Sweep())
	_, ok := store.Get(stale.ID)
	require.False(t, ok)
	_, ok = store.Get(fresh.ID)
	require.True(t, ok)
}

func TestWorkspaceWiresCartToBannerAndRenderer(t *testing.T) {
	store := NewStore(StoreConfig{Options: Options{Formatter: pricing.NewFormatter("₱", "en-US"), NotificationTTL: time.Minute}})
	ws := store.Create()
	defer ws.close()

	ws.Do(store.Now(), func(w *Workspace) {
		w.Cart.AddItem(context.Background(), "1", "Widget", decimal.NewFromInt(1200), "w.png")
		require.Equal(t, "₱1,200", w.Rendered().Subtotal)
		require.Equal(t, 1, w.Renders())
	})

	msg, ok := ws.Banner.Current()
	require.True(t, ok)
	require.Equal(t, "Item added to cart", msg)

	ws.Do(store.Now(), func(w *Workspace) {
		w.Reviews.Submit(context.Background(), "Ana", 4, "Great!")
	})
	msg, _ = ws.Banner.Current()
	require.Equal(t, "Review submitted successfully!", msg)
}

func TestDialogIsTakenOnce(t *testing.T) {
	ws := NewWorkspace("id", Options{}, time.Now())
	defer ws.close()
	ws.Do(time.Now(), func(w *Workspace) {
		w.SetDialog(Dialog{Kind: DialogAlert, Message: "hi"})
		d, ok := w.TakeDialog()
		require.True(t, ok)
		require.Equal(t, "hi", d.Message)
		_, ok = w.TakeDialog()
		require.False(t, ok)
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	store := NewStore(StoreConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCreateEvictsLeastRecentlySeenAtCapacity(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var sizes []int
	store := NewStore(StoreConfig{MaxSessions: 2, Now: clock.Now, OnSize: func(n int) { sizes = append(sizes, n) }})

	a := store.Create()
	clock.Advance(time.Minute)
	b := store.Create()
	clock.Advance(time.Minute)
	a.Do(clock.Now(), func(*Workspace) {})

	c := store.Create()
	require.Equal(t, 2, store.Len())
	_, ok := store.Get(b.ID)
	require.False(t, ok, "b was seen least recently")
	_, ok = store.Get(a.ID)
	require.True(t, ok)
	_, ok = store.Get(c.ID)
	require.True(t, ok)
	require.Equal(t, []int{1, 2, 2}, sizes)
}

func TestTransientWorkspaceIsNotStored(t *testing.T) {
	store := NewStore(StoreConfig{})
	for range 100 {
		ws := store.Transient()
		require.Empty(t, ws.ID)
	}
	require.Zero(t, store.Len())
}
