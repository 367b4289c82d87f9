package cart

import "time"

// Item menyimpan snapshot nama & harga saat add-to-cart; perubahan product
// setelahnya tidak mempengaruhi baris ini.
type Item struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	PriceCents  int64     `json:"price_cents"`
	Qty         int       `json:"qty"`
	CreatedAt   time.Time `json:"created_at"`
}
