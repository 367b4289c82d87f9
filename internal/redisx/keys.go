package redisx

import "time"

const (
	// Cache status order: order_status:{order_id} -> {"status":"..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Level stok terakhir yang dilihat stockwatch: stock_level:{product_id} -> int
	KeyStockLevel = "stock_level:%s"

	// Penanda alert low-stock sudah pernah dikirim: lowstock:{product_id}
	KeyLowStockAlert = "lowstock:%s"
)

var (
	TTLStatusCache   = 5 * time.Minute
	TTLDedup         = 48 * time.Hour
	TTLLowStockAlert = 6 * time.Hour
)
