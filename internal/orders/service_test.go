package orders_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-shop-orders.git/internal/cart"
	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	"github.com/ariefcatur/go-shop-orders.git/internal/orders"
	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
)

// memStore meniru semantik transaksi store: WithinTx men-snapshot seluruh
// state dan me-restore saat fn gagal, jadi all-or-nothing bisa diuji beneran.
type memStore struct {
	mu        sync.Mutex
	stock     map[string]int
	carts     map[string][]cart.Item
	orders    map[string]*orders.Order
	items     map[string][]orders.Item
	movements []inventory.Movement
}

func newMemStore() *memStore {
	return &memStore{
		stock:  map[string]int{},
		carts:  map[string][]cart.Item{},
		orders: map[string]*orders.Order{},
		items:  map[string][]orders.Item{},
	}
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = append([]cart.Item(nil), v...)
	}
	for k, v := range s.orders {
		o := *v
		c.orders[k] = &o
	}
	for k, v := range s.items {
		c.items[k] = append([]orders.Item(nil), v...)
	}
	c.movements = append([]inventory.Movement(nil), s.movements...)
	return c
}

func (s *memStore) restore(c *memStore) {
	s.stock, s.carts, s.orders, s.items, s.movements = c.stock, c.carts, c.orders, c.items, c.movements
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, q postgres.DBTX) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.snapshot()
	if err := fn(ctx, nil); err != nil {
		s.restore(before)
		return err
	}
	return nil
}

// CartStore

func (s *memStore) ListByUser(_ context.Context, _ postgres.DBTX, userID string) ([]cart.Item, error) {
	return append([]cart.Item(nil), s.carts[userID]...), nil
}

func (s *memStore) DeleteByUser(_ context.Context, _ postgres.DBTX, userID string) error {
	delete(s.carts, userID)
	return nil
}

// OrderStore

func (s *memStore) Create(_ context.Context, _ postgres.DBTX, o *orders.Order, items []orders.Item) error {
	cp := *o
	s.orders[o.ID] = &cp
	for i := range items {
		items[i].OrderID = o.ID
	}
	s.items[o.ID] = append([]orders.Item(nil), items...)
	return nil
}

func (s *memStore) GetForUpdate(_ context.Context, _ postgres.DBTX, id string) (*orders.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) ListItems(_ context.Context, _ postgres.DBTX, orderID string) ([]orders.Item, error) {
	return append([]orders.Item(nil), s.items[orderID]...), nil
}

func (s *memStore) UpdateStatus(_ context.Context, _ postgres.DBTX, id string, st orders.Status, at time.Time) error {
	o, ok := s.orders[id]
	if !ok {
		return orders.ErrNotFound
	}
	o.Status = st
	o.UpdatedAt = at
	return nil
}

// inventory.ProductStore

func (s *memStore) Stock(_ context.Context, _ postgres.DBTX, id string) (int, bool, error) {
	n, ok := s.stock[id]
	return n, ok, nil
}

func (s *memStore) ConditionalDecrement(_ context.Context, _ postgres.DBTX, id string, qty int) (bool, error) {
	n, ok := s.stock[id]
	if !ok || n < qty {
		return false, nil
	}
	s.stock[id] = n - qty
	return true, nil
}

func (s *memStore) Increment(_ context.Context, _ postgres.DBTX, id string, qty int) (bool, error) {
	if _, ok := s.stock[id]; !ok {
		return false, nil
	}
	s.stock[id] += qty
	return true, nil
}

// inventory.MovementStore

func (s *memStore) Append(_ context.Context, _ postgres.DBTX, m *inventory.Movement) error {
	s.movements = append(s.movements, *m)
	return nil
}

func newService(ms *memStore) *orders.Service {
	return &orders.Service{
		Tx:     ms,
		Carts:  ms,
		Orders: ms,
		Ledger: &inventory.Ledger{Products: ms, Movements: ms},
	}
}

func fillCart(ms *memStore, userID string, lines ...cart.Item) {
	for i := range lines {
		lines[i].UserID = userID
	}
	ms.carts[userID] = append(ms.carts[userID], lines...)
}

func TestCreateOrderHappyPath(t *testing.T) {
	ms := newMemStore()
	ms.stock["sensor-x"] = 10
	ms.stock["motor-y"] = 4
	fillCart(ms, "user-1",
		cart.Item{ProductID: "sensor-x", ProductName: "Sensor X", PriceCents: 1000, Qty: 2},
		cart.Item{ProductID: "motor-y", ProductName: "Motor Y", PriceCents: 500, Qty: 1},
	)
	svc := newService(ms)

	snap, err := svc.CreateOrder(context.Background(), "user-1")
	require.NoError(t, err)

	require.Equal(t, orders.StatusPending, snap.Order.Status)
	require.Equal(t, "user-1", snap.Order.UserID)
	require.EqualValues(t, 2500, snap.Order.TotalCents)

	// total == sum(price * qty) dari snapshot
	var sum int64
	for _, it := range snap.Items {
		sum += it.PriceCents * int64(it.Qty)
	}
	require.Equal(t, snap.Order.TotalCents, sum)

	require.Len(t, snap.Items, 2)
	require.Equal(t, "Sensor X", snap.Items[0].ProductName)
	require.EqualValues(t, 1000, snap.Items[0].PriceCents)

	// stok berkurang per baris
	require.Equal(t, 8, ms.stock["sensor-x"])
	require.Equal(t, 3, ms.stock["motor-y"])

	// satu movement `out` per baris, reference = order id
	require.Len(t, ms.movements, 2)
	for _, m := range ms.movements {
		require.Equal(t, inventory.TypeOut, m.Type)
		require.Equal(t, inventory.ReasonSale, m.Reason)
		require.Equal(t, snap.Order.ID, m.ReferenceID)
		require.Equal(t, "user-1", m.ActorID)
	}

	// cart dikosongkan
	left, _ := ms.ListByUser(context.Background(), nil, "user-1")
	require.Empty(t, left)

	// order tersimpan
	require.Contains(t, ms.orders, snap.Order.ID)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	ms := newMemStore()
	svc := newService(ms)

	_, err := svc.CreateOrder(context.Background(), "user-1")
	require.ErrorIs(t, err, orders.ErrEmptyCart)
	require.Empty(t, ms.orders)
	require.Empty(t, ms.movements)
}

func TestCreateOrderInsufficientStockRollsBackEverything(t *testing.T) {
	ms := newMemStore()
	ms.stock["sensor-x"] = 10
	ms.stock["arduino-uno"] = 3
	fillCart(ms, "user-1",
		cart.Item{ProductID: "sensor-x", ProductName: "Sensor X", PriceCents: 1000, Qty: 2}, // cukup
		cart.Item{ProductID: "arduino-uno", ProductName: "Arduino Uno", PriceCents: 8990, Qty: 5},
	)
	svc := newService(ms)

	_, err := svc.CreateOrder(context.Background(), "user-1")

	var insuf *inventory.InsufficientStockError
	require.ErrorAs(t, err, &insuf)
	require.Equal(t, "arduino-uno", insuf.ProductID)
	require.Equal(t, 5, insuf.Requested)
	require.Equal(t, 3, insuf.Available)

	// tidak ada efek sama sekali, termasuk baris yang stoknya cukup
	require.Empty(t, ms.orders)
	require.Empty(t, ms.items)
	require.Empty(t, ms.movements)
	require.Equal(t, 10, ms.stock["sensor-x"])
	require.Equal(t, 3, ms.stock["arduino-uno"])
	require.Len(t, ms.carts["user-1"], 2)
}

func TestCreateOrderProductGone(t *testing.T) {
	ms := newMemStore()
	fillCart(ms, "user-1",
		cart.Item{ProductID: "ghost", ProductName: "Ghost", PriceCents: 100, Qty: 1},
	)
	svc := newService(ms)

	_, err := svc.CreateOrder(context.Background(), "user-1")
	require.ErrorIs(t, err, inventory.ErrProductNotFound)
	require.Empty(t, ms.orders)
	require.Len(t, ms.carts["user-1"], 1)
}

func TestCancelRestoresStock(t *testing.T) {
	ms := newMemStore()
	ms.stock["sensor-x"] = 10
	ms.stock["motor-y"] = 4
	fillCart(ms, "user-1",
		cart.Item{ProductID: "sensor-x", ProductName: "Sensor X", PriceCents: 1000, Qty: 2},
		cart.Item{ProductID: "motor-y", ProductName: "Motor Y", PriceCents: 500, Qty: 1},
	)
	svc := newService(ms)

	snap, err := svc.CreateOrder(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, 8, ms.stock["sensor-x"])

	got, err := svc.UpdateStatus(context.Background(), snap.Order.ID, orders.StatusCancelled, "admin-1")
	require.NoError(t, err)
	require.Equal(t, orders.StatusCancelled, got.Order.Status)

	// stok kembali penuh
	require.Equal(t, 10, ms.stock["sensor-x"])
	require.Equal(t, 4, ms.stock["motor-y"])

	// 2 out (sale) + 2 in (return), reference sama-sama order id
	require.Len(t, ms.movements, 4)
	var ins int
	for _, m := range ms.movements[2:] {
		require.Equal(t, inventory.TypeIn, m.Type)
		require.Equal(t, inventory.ReasonReturn, m.Reason)
		require.Equal(t, snap.Order.ID, m.ReferenceID)
		require.Equal(t, "admin-1", m.ActorID)
		ins++
	}
	require.Equal(t, 2, ins)
}

func TestForwardTransitionsDoNotTouchStock(t *testing.T) {
	ms := newMemStore()
	ms.stock["sensor-x"] = 5
	fillCart(ms, "user-1", cart.Item{ProductID: "sensor-x", ProductName: "Sensor X", PriceCents: 1000, Qty: 1})
	svc := newService(ms)

	snap, err := svc.CreateOrder(context.Background(), "user-1")
	require.NoError(t, err)

	for _, st := range []orders.Status{orders.StatusPaid, orders.StatusProcessing, orders.StatusShipped, orders.StatusDelivered} {
		got, err := svc.UpdateStatus(context.Background(), snap.Order.ID, st, "admin-1")
		require.NoError(t, err)
		require.Equal(t, st, got.Order.Status)
	}

	require.Equal(t, 4, ms.stock["sensor-x"])
	require.Len(t, ms.movements, 1) // cuma movement sale awal
}

func TestCancelDeliveredRejected(t *testing.T) {
	ms := newMemStore()
	ms.stock["sensor-x"] = 5
	fillCart(ms, "user-1", cart.Item{ProductID: "sensor-x", ProductName: "Sensor X", PriceCents: 1000, Qty: 1})
	svc := newService(ms)

	snap, err := svc.CreateOrder(context.Background(), "user-1")
	require.NoError(t, err)
	for _, st := range []orders.Status{orders.StatusPaid, orders.StatusProcessing, orders.StatusShipped, orders.StatusDelivered} {
		_, err = svc.UpdateStatus(context.Background(), snap.Order.ID, st, "admin-1")
		require.NoError(t, err)
	}

	_, err = svc.UpdateStatus(context.Background(), snap.Order.ID, orders.StatusCancelled, "admin-1")
	var bad *orders.InvalidTransitionError
	require.ErrorAs(t, err, &bad)
	require.Equal(t, orders.StatusDelivered, bad.From)
	require.Equal(t, orders.StatusCancelled, bad.To)

	// tidak ada perubahan stok
	require.Equal(t, 4, ms.stock["sensor-x"])
	require.Len(t, ms.movements, 1)
}

func TestUpdateStatusValidation(t *testing.T) {
	ms := newMemStore()
	svc := newService(ms)

	_, err := svc.UpdateStatus(context.Background(), "whatever", orders.Status("refunded"), "admin-1")
	require.ErrorIs(t, err, orders.ErrInvalidStatus)

	_, err = svc.UpdateStatus(context.Background(), "missing", orders.StatusPaid, "admin-1")
	require.ErrorIs(t, err, orders.ErrNotFound)
}

func TestConcurrentCheckoutLastUnitSoldOnce(t *testing.T) {
	ms := newMemStore()
	ms.stock["last-one"] = 1
	fillCart(ms, "user-a", cart.Item{ProductID: "last-one", ProductName: "Last One", PriceCents: 999, Qty: 1})
	fillCart(ms, "user-b", cart.Item{ProductID: "last-one", ProductName: "Last One", PriceCents: 999, Qty: 1})
	svc := newService(ms)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []string{"user-a", "user-b"} {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(context.Background(), user)
		}(i, user)
	}
	wg.Wait()

	var okCount, insufCount int
	for _, err := range errs {
		if err == nil {
			okCount++
			continue
		}
		var insuf *inventory.InsufficientStockError
		require.ErrorAs(t, err, &insuf)
		insufCount++
	}
	require.Equal(t, 1, okCount)
	require.Equal(t, 1, insufCount)
	require.Equal(t, 0, ms.stock["last-one"])
	require.Len(t, ms.movements, 1)
}
