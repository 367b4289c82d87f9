package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
)

type fakeProducts struct {
	stock map[string]int
}

func (f *fakeProducts) Stock(_ context.Context, _ postgres.DBTX, id string) (int, bool, error) {
	n, ok := f.stock[id]
	return n, ok, nil
}

func (f *fakeProducts) ConditionalDecrement(_ context.Context, _ postgres.DBTX, id string, qty int) (bool, error) {
	n, ok := f.stock[id]
	if !ok || n < qty {
		return false, nil
	}
	f.stock[id] = n - qty
	return true, nil
}

func (f *fakeProducts) Increment(_ context.Context, _ postgres.DBTX, id string, qty int) (bool, error) {
	if _, ok := f.stock[id]; !ok {
		return false, nil
	}
	f.stock[id] += qty
	return true, nil
}

type fakeMovements struct {
	rows []Movement
}

func (f *fakeMovements) Append(_ context.Context, _ postgres.DBTX, m *Movement) error {
	f.rows = append(f.rows, *m)
	return nil
}

func newLedger(stock map[string]int) (*Ledger, *fakeProducts, *fakeMovements) {
	p := &fakeProducts{stock: stock}
	m := &fakeMovements{}
	return &Ledger{Products: p, Movements: m}, p, m
}

func TestDecrementAppendsMatchingMovement(t *testing.T) {
	l, p, m := newLedger(map[string]int{"sensor-x": 10})

	err := l.Decrement(context.Background(), nil, "sensor-x", 4, ReasonSale, "order-1", "user-1")
	require.NoError(t, err)
	require.Equal(t, 6, p.stock["sensor-x"])

	require.Len(t, m.rows, 1)
	mv := m.rows[0]
	require.Equal(t, TypeOut, mv.Type)
	require.Equal(t, 4, mv.Qty)
	require.Equal(t, ReasonSale, mv.Reason)
	require.Equal(t, "order-1", mv.ReferenceID)
	require.Equal(t, "user-1", mv.ActorID)
}

func TestDecrementInsufficientStockNeverClamps(t *testing.T) {
	l, p, m := newLedger(map[string]int{"arduino-uno": 3})

	err := l.Decrement(context.Background(), nil, "arduino-uno", 5, ReasonSale, "order-1", "user-1")

	var insuf *InsufficientStockError
	require.ErrorAs(t, err, &insuf)
	require.Equal(t, "arduino-uno", insuf.ProductID)
	require.Equal(t, 5, insuf.Requested)
	require.Equal(t, 3, insuf.Available)

	// stok utuh, jurnal kosong
	require.Equal(t, 3, p.stock["arduino-uno"])
	require.Empty(t, m.rows)
}

func TestDecrementUnknownProduct(t *testing.T) {
	l, _, m := newLedger(map[string]int{})

	err := l.Decrement(context.Background(), nil, "ghost", 1, ReasonSale, "order-1", "user-1")
	require.ErrorIs(t, err, ErrProductNotFound)
	require.Empty(t, m.rows)
}

func TestDecrementRejectsNonPositiveQty(t *testing.T) {
	l, _, _ := newLedger(map[string]int{"sensor-x": 10})
	require.Error(t, l.Decrement(context.Background(), nil, "sensor-x", 0, ReasonSale, "o", "u"))
	require.Error(t, l.Decrement(context.Background(), nil, "sensor-x", -2, ReasonSale, "o", "u"))
}

func TestIncrementAppendsInMovement(t *testing.T) {
	l, p, m := newLedger(map[string]int{"motor-y": 0})

	err := l.Increment(context.Background(), nil, "motor-y", 7, ReasonReturn, "order-9", "admin-1")
	require.NoError(t, err)
	require.Equal(t, 7, p.stock["motor-y"])

	require.Len(t, m.rows, 1)
	require.Equal(t, TypeIn, m.rows[0].Type)
	require.Equal(t, 7, m.rows[0].Qty)
	require.Equal(t, ReasonReturn, m.rows[0].Reason)
	require.Equal(t, "order-9", m.rows[0].ReferenceID)
}

func TestIncrementUnknownProduct(t *testing.T) {
	l, _, _ := newLedger(map[string]int{})
	err := l.Increment(context.Background(), nil, "ghost", 1, ReasonRestock, "", "admin-1")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdjust(t *testing.T) {
	t.Run("positive change", func(t *testing.T) {
		l, _, m := newLedger(map[string]int{"sensor-x": 2})
		n, err := l.Adjust(context.Background(), nil, "sensor-x", 8, "", "admin-1")
		require.NoError(t, err)
		require.Equal(t, 10, n)
		require.Len(t, m.rows, 1)
		require.Equal(t, TypeIn, m.rows[0].Type)
		require.Equal(t, 8, m.rows[0].Qty)
		require.Equal(t, ReasonAdjustment, m.rows[0].Reason)
	})

	t.Run("negative change", func(t *testing.T) {
		l, _, m := newLedger(map[string]int{"sensor-x": 10})
		n, err := l.Adjust(context.Background(), nil, "sensor-x", -4, "damaged", "admin-1")
		require.NoError(t, err)
		require.Equal(t, 6, n)
		require.Equal(t, TypeOut, m.rows[0].Type)
		require.Equal(t, 4, m.rows[0].Qty)
		require.Equal(t, "damaged", m.rows[0].Reason)
	})

	t.Run("negative past zero is rejected, not clamped", func(t *testing.T) {
		l, p, m := newLedger(map[string]int{"sensor-x": 3})
		_, err := l.Adjust(context.Background(), nil, "sensor-x", -5, "", "admin-1")
		var insuf *InsufficientStockError
		require.ErrorAs(t, err, &insuf)
		require.Equal(t, 3, p.stock["sensor-x"])
		require.Empty(t, m.rows)
	})

	t.Run("zero change", func(t *testing.T) {
		l, _, _ := newLedger(map[string]int{"sensor-x": 3})
		_, err := l.Adjust(context.Background(), nil, "sensor-x", 0, "", "admin-1")
		require.Error(t, err)
	})
}
