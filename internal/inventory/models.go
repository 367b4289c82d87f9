package inventory

import "time"

const (
	TypeIn         = "in"
	TypeOut        = "out"
	TypeAdjustment = "adjustment"
)

const (
	ReasonSale         = "sale"
	ReasonReturn       = "return"
	ReasonRestock      = "restock"
	ReasonAdjustment   = "adjustment"
	ReasonInitialStock = "initial_stock"
)

// Movement: jurnal append-only. Satu baris per perubahan stock_quantity,
// qty selalu positif, arah ditentukan Type.
type Movement struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Type        string    `json:"movement_type"`
	Qty         int       `json:"qty"`
	Reason      string    `json:"reason"`
	ReferenceID string    `json:"reference_id"`
	ActorID     string    `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}
