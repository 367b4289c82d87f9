package orders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-shop-orders.git/internal/cart"
	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
)

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, q postgres.DBTX) error) error
}

type CartStore interface {
	ListByUser(ctx context.Context, q postgres.DBTX, userID string) ([]cart.Item, error)
	DeleteByUser(ctx context.Context, q postgres.DBTX, userID string) error
}

type OrderStore interface {
	Create(ctx context.Context, q postgres.DBTX, o *Order, items []Item) error
	GetForUpdate(ctx context.Context, q postgres.DBTX, id string) (*Order, error)
	ListItems(ctx context.Context, q postgres.DBTX, orderID string) ([]Item, error)
	UpdateStatus(ctx context.Context, q postgres.DBTX, id string, st Status, at time.Time) error
}

type Ledger interface {
	Decrement(ctx context.Context, q postgres.DBTX, productID string, qty int, reason, referenceID, actorID string) error
	Increment(ctx context.Context, q postgres.DBTX, productID string, qty int, reason, referenceID, actorID string) error
}

// Service: mesin transaksi order + stok. Semua efek satu operasi commit
// bersama atau tidak sama sekali.
type Service struct {
	Tx     TxManager
	Carts  CartStore
	Orders OrderStore
	Ledger Ledger
}

// CreateOrder mengubah cart user jadi order immutable: hitung total dari
// snapshot, kurangi stok per baris lewat ledger, simpan order + items,
// kosongkan cart. Satu baris gagal -> seluruh operasi batal, termasuk baris
// yang sebenarnya cukup stoknya.
func (s *Service) CreateOrder(ctx context.Context, userID string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, q postgres.DBTX) error {
		lines, err := s.Carts.ListByUser(ctx, q, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		var total int64
		for _, l := range lines {
			total += l.PriceCents * int64(l.Qty)
		}

		now := time.Now().UTC()
		o := Order{
			ID:         uuid.NewString(),
			UserID:     userID,
			TotalCents: total,
			Status:     StatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		items := make([]Item, 0, len(lines))
		for _, l := range lines {
			items = append(items, Item{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				PriceCents:  l.PriceCents,
				Qty:         l.Qty,
			})
		}
		if err := s.Orders.Create(ctx, q, &o, items); err != nil {
			return err
		}

		// Decrement kondisional per baris; rejection di baris manapun
		// membatalkan tx (rollback lewat TxManager).
		for _, l := range lines {
			if err := s.Ledger.Decrement(ctx, q, l.ProductID, l.Qty, inventory.ReasonSale, o.ID, userID); err != nil {
				return err
			}
		}

		if err := s.Carts.DeleteByUser(ctx, q, userID); err != nil {
			return err
		}
		snap = &Snapshot{Order: o, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// UpdateStatus memvalidasi edge transisi lalu menulis status baru. Transisi
// ke cancelled mengembalikan stok tiap item (movement in/return) di transaksi
// yang sama dengan penulisan status; restore parsial tidak mungkin.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, newStatus Status, actorID string) (*Snapshot, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	var snap *Snapshot
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, q postgres.DBTX) error {
		o, err := s.Orders.GetForUpdate(ctx, q, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return ErrNotFound
		}
		if !CanTransition(o.Status, newStatus) {
			return &InvalidTransitionError{From: o.Status, To: newStatus}
		}

		items, err := s.Orders.ListItems(ctx, q, orderID)
		if err != nil {
			return err
		}

		if newStatus == StatusCancelled {
			for _, it := range items {
				if err := s.Ledger.Increment(ctx, q, it.ProductID, it.Qty, inventory.ReasonReturn, orderID, actorID); err != nil {
					return err
				}
			}
		}

		now := time.Now().UTC()
		if err := s.Orders.UpdateStatus(ctx, q, orderID, newStatus, now); err != nil {
			return err
		}
		o.Status = newStatus
		o.UpdatedAt = now
		snap = &Snapshot{Order: *o, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
