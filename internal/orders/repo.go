package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
)

type Repo struct{}

func (r *Repo) Create(ctx context.Context, q postgres.DBTX, o *Order, items []Item) error {
	_, err := q.Exec(ctx, `
		INSERT INTO orders(id, user_id, total_cents, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		o.ID, o.UserID, o.TotalCents, o.Status, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		items[i].OrderID = o.ID
		_, err = q.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, product_name, price_cents, qty)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			items[i].ID, items[i].OrderID, items[i].ProductID,
			items[i].ProductName, items[i].PriceCents, items[i].Qty)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, q postgres.DBTX, id string) (*Order, error) {
	return r.get(ctx, q, id, false)
}

// GetForUpdate lock baris order selama transisi divalidasi, supaya dua cancel
// bersamaan tidak dua-duanya menjalankan restock.
func (r *Repo) GetForUpdate(ctx context.Context, q postgres.DBTX, id string) (*Order, error) {
	return r.get(ctx, q, id, true)
}

func (r *Repo) get(ctx context.Context, q postgres.DBTX, id string, lock bool) (*Order, error) {
	sql := `SELECT id, user_id, total_cents, status, created_at, updated_at FROM orders WHERE id=$1`
	if lock {
		sql += ` FOR UPDATE`
	}
	var o Order
	err := q.QueryRow(ctx, sql, id).Scan(&o.ID, &o.UserID, &o.TotalCents, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) ListItems(ctx context.Context, q postgres.DBTX, orderID string) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, product_name, price_cents, qty
		FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.PriceCents, &it.Qty); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateStatus(ctx context.Context, q postgres.DBTX, id string, st Status, at time.Time) error {
	ct, err := q.Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`, id, st, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
