package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
)

var ErrProductNotFound = errors.New("product not found")

type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type ProductStore interface {
	Stock(ctx context.Context, q postgres.DBTX, id string) (int, bool, error)
	ConditionalDecrement(ctx context.Context, q postgres.DBTX, id string, qty int) (bool, error)
	Increment(ctx context.Context, q postgres.DBTX, id string, qty int) (bool, error)
}

type MovementStore interface {
	Append(ctx context.Context, q postgres.DBTX, m *Movement) error
}

// Ledger menggandeng setiap mutasi stock_quantity dengan tepat satu movement
// di transaksi yang sama. Semua method dijalankan di dalam tx pemanggil.
type Ledger struct {
	Products  ProductStore
	Movements MovementStore
}

// Decrement menolak jika stok kurang; tidak pernah clamp ke nol, karena clamp
// membuat jurnal tidak lagi mencerminkan jumlah yang benar-benar diminta.
func (l *Ledger) Decrement(ctx context.Context, q postgres.DBTX, productID string, qty int, reason, referenceID, actorID string) error {
	if qty <= 0 {
		return fmt.Errorf("invalid qty %d for product %s", qty, productID)
	}
	ok, err := l.Products.ConditionalDecrement(ctx, q, productID, qty)
	if err != nil {
		return err
	}
	if !ok {
		// UPDATE tidak kena baris: product hilang atau stok kurang.
		avail, found, err := l.Products.Stock(ctx, q, productID)
		if err != nil {
			return err
		}
		if !found {
			return ErrProductNotFound
		}
		return &InsufficientStockError{ProductID: productID, Requested: qty, Available: avail}
	}
	return l.Movements.Append(ctx, q, &Movement{
		ProductID:   productID,
		Type:        TypeOut,
		Qty:         qty,
		Reason:      reason,
		ReferenceID: referenceID,
		ActorID:     actorID,
	})
}

// Increment tidak punya batas atas (restock/return selalu boleh).
func (l *Ledger) Increment(ctx context.Context, q postgres.DBTX, productID string, qty int, reason, referenceID, actorID string) error {
	if qty <= 0 {
		return fmt.Errorf("invalid qty %d for product %s", qty, productID)
	}
	ok, err := l.Products.Increment(ctx, q, productID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	return l.Movements.Append(ctx, q, &Movement{
		ProductID:   productID,
		Type:        TypeIn,
		Qty:         qty,
		Reason:      reason,
		ReferenceID: referenceID,
		ActorID:     actorID,
	})
}

// Adjust: koreksi manual admin, change boleh negatif. Arah movement mengikuti
// tanda change; koreksi negatif tetap lewat guarded decrement.
func (l *Ledger) Adjust(ctx context.Context, q postgres.DBTX, productID string, change int, reason, actorID string) (newStock int, err error) {
	if change == 0 {
		return 0, fmt.Errorf("zero adjustment for product %s", productID)
	}
	if reason == "" {
		reason = ReasonAdjustment
	}
	if change > 0 {
		err = l.Increment(ctx, q, productID, change, reason, "", actorID)
	} else {
		err = l.Decrement(ctx, q, productID, -change, reason, "", actorID)
	}
	if err != nil {
		return 0, err
	}
	n, _, err := l.Products.Stock(ctx, q, productID)
	return n, err
}
