package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
)

// Repo stateless; setiap method menerima DBTX eksplisit supaya bisa ikut
// transaksi milik pemanggil.
type Repo struct{}

const productCols = `id, name, description, price_cents, stock_quantity, category, image_url, is_active, created_at, updated_at`

func (r *Repo) Get(ctx context.Context, q postgres.DBTX, id string) (*Product, error) {
	var p Product
	err := q.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.StockQuantity,
		&p.Category, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListActive(ctx context.Context, q postgres.DBTX) ([]Product, error) {
	rows, err := q.Query(ctx, `SELECT `+productCols+` FROM products WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.StockQuantity,
			&p.Category, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Stock: level saat ini, atau found=false kalau product tidak ada.
func (r *Repo) Stock(ctx context.Context, q postgres.DBTX, id string) (int, bool, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id=$1`, id).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// ConditionalDecrement: kurangi stok hanya jika cukup, satu UPDATE atomik.
// Kebenaran dicek dari rows affected, bukan read-then-write (itu bisa race).
func (r *Repo) ConditionalDecrement(ctx context.Context, q postgres.DBTX, id string, qty int) (bool, error) {
	ct, err := q.Exec(ctx, `
		UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = now()
		WHERE id = $1 AND stock_quantity >= $2`, id, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *Repo) Increment(ctx context.Context, q postgres.DBTX, id string, qty int) (bool, error) {
	ct, err := q.Exec(ctx, `
		UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1`, id, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}
