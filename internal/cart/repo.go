package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
)

var ErrItemNotFound = errors.New("cart item not found")

type Repo struct{}

func (r *Repo) ListByUser(ctx context.Context, q postgres.DBTX, userID string) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT id, user_id, product_id, product_name, price_cents, qty, created_at
		FROM cart_items WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.ProductName,
			&it.PriceCents, &it.Qty, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Add: kalau product sudah ada di cart user, qty digabung; snapshot nama/harga
// dari baris pertama dipertahankan.
func (r *Repo) Add(ctx context.Context, q postgres.DBTX, it *Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO cart_items(id, user_id, product_id, product_name, price_cents, qty)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET qty = cart_items.qty + EXCLUDED.qty`,
		it.ID, it.UserID, it.ProductID, it.ProductName, it.PriceCents, it.Qty)
	return err
}

func (r *Repo) UpdateQty(ctx context.Context, q postgres.DBTX, userID, itemID string, qty int) error {
	ct, err := q.Exec(ctx, `UPDATE cart_items SET qty=$3 WHERE id=$1 AND user_id=$2`, itemID, userID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repo) Remove(ctx context.Context, q postgres.DBTX, userID, itemID string) error {
	ct, err := q.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, itemID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repo) DeleteByUser(ctx context.Context, q postgres.DBTX, userID string) error {
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}
