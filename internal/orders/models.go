package orders

import "time"

type Order struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TotalCents int64     `json:"total_cents"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Item immutable setelah order dibuat; nama & harga snapshot dari cart,
// bukan referensi hidup ke product.
type Item struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	PriceCents  int64  `json:"price_cents"`
	Qty         int    `json:"qty"`
}

// Snapshot: bentuk yang dikembalikan ke layer luar.
type Snapshot struct {
	Order Order  `json:"order"`
	Items []Item `json:"items"`
}
