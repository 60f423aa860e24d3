package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatchRoutesActions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := NewDispatcher()

	res, err := d.Dispatch(ctx, f.mgr, Command{Action: ActionAdd, ID: "7", Name: "Lamp", Price: "250", Image: "lamp.png"})
	require.NoError(t, err)
	require.Equal(t, SignalItemAdded, res.Signal)

	_, err = d.Dispatch(ctx, f.mgr, Command{Action: ActionIncrement, ID: "7"})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, f.mgr, Command{Action: ActionIncrement, ID: "7", Delta: 2})
	require.NoError(t, err)
	line, ok := f.mgr.Cart().Line("7")
	require.True(t, ok)
	require.Equal(t, 4, line.Quantity)

	_, err = d.Dispatch(ctx, f.mgr, Command{Action: ActionDecrement, ID: "7"})
	require.NoError(t, err)
	line, _ = f.mgr.Cart().Line("7")
	require.Equal(t, 3, line.Quantity)

	_, err = d.Dispatch(ctx, f.mgr, Command{Action: ActionDiscount, Value: "50"})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, f.mgr, Command{Action: ActionPayment, Value: "1000"})
	require.NoError(t, err)
	require.Equal(t, "₱700", f.mgr.Snapshot().FinalTotal)
	require.Equal(t, "₱300", f.mgr.Snapshot().Change)

	res, err = d.Dispatch(ctx, f.mgr, Command{Action: ActionViewOrder})
	require.NoError(t, err)
	require.NotEmpty(t, res.Details)

	_, err = d.Dispatch(ctx, f.mgr, Command{Action: ActionToggle})
	require.NoError(t, err)
	require.True(t, f.mgr.IsOpen())

	res, err = d.Dispatch(ctx, f.mgr, Command{Action: ActionCheckout})
	require.NoError(t, err)
	require.NotNil(t, res.Receipt)
	require.Equal(t, SignalPurchased, res.Signal)

	res, err = d.Dispatch(ctx, f.mgr, Command{Action: ActionCheckout})
	require.NoError(t, err)
	require.Nil(t, res.Receipt)
	require.Equal(t, SignalCartEmpty, res.Signal)
}

func TestDispatchAdjustAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := NewDispatcher()
	_, _ = d.Dispatch(ctx, f.mgr, Command{Action: ActionAdd, ID: "1", Price: "10"})
	_, _ = d.Dispatch(ctx, f.mgr, Command{Action: ActionAdd, ID: "2", Price: "10"})

	res, err := d.Dispatch(ctx, f.mgr, Command{Action: ActionAdjust, ID: "1", Delta: -5})
	require.NoError(t, err)
	require.Equal(t, SignalItemRemoved, res.Signal)

	res, err = d.Dispatch(ctx, f.mgr, Command{Action: ActionRemove, ID: "2"})
	require.NoError(t, err)
	require.Equal(t, SignalItemRemoved, res.Signal)
	require.True(t, f.mgr.Cart().IsEmpty())
}

func TestDispatchUnknownAction(t *testing.T) {
	d := NewDispatcher()
	_, err := d.Dispatch(context.Background(), NewManager(Config{}), Command{Action: "explode"})
	require.True(t, errors.Is(err, ErrUnknownAction))
}

func TestRegisterOverridesAndRemoves(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.Register(ActionToggle, func(context.Context, *Manager, Command) Result {
		called = true
		return Result{}
	})
	_, err := d.Dispatch(context.Background(), NewManager(Config{}), Command{Action: ActionToggle})
	require.NoError(t, err)
	require.True(t, called)

	d.Register(ActionToggle, nil)
	require.NotContains(t, d.Actions(), ActionToggle)
	require.Contains(t, d.Actions(), ActionAdd)
}
