package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-shop-orders.git/internal/postgres"
)

type MovementRepo struct{}

func (r *MovementRepo) Append(ctx context.Context, q postgres.DBTX, m *Movement) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO stock_movements(id, product_id, movement_type, qty, reason, reference_id, actor_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.ProductID, m.Type, m.Qty, m.Reason, m.ReferenceID, m.ActorID)
	return err
}

func (r *MovementRepo) ListByProduct(ctx context.Context, q postgres.DBTX, productID string, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := q.Query(ctx, `
		SELECT id, product_id, movement_type, qty, reason, reference_id, actor_id, created_at
		FROM stock_movements WHERE product_id=$1 ORDER BY created_at DESC LIMIT $2`,
		productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Qty, &m.Reason,
			&m.ReferenceID, &m.ActorID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
