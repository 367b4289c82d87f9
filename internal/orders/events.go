package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventStockMovement      = "StockMovement"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "shop-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type OrderLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	PriceCents  int64  `json:"price_cents"`
	Qty         int    `json:"qty"`
}

type OrderCreatedPayload struct {
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	Lines      []OrderLine `json:"lines"`
	TotalCents int64       `json:"total_cents"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
	ActorID string `json:"actor_id"`
}

type StockMovementPayload struct {
	ProductID   string `json:"product_id"`
	Type        string `json:"movement_type"` // in | out | adjustment
	Qty         int    `json:"qty"`
	Reason      string `json:"reason"`
	ReferenceID string `json:"reference_id,omitempty"`
	ActorID     string `json:"actor_id,omitempty"`
}
