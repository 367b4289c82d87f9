package orders

const (
	TopicOrderCreated  = "order.created"
	TopicOrderStatus   = "order.status"
	TopicStockMovement = "inventory.movement"
)

// Partition key = order_id / product_id, supaya event untuk satu entitas
// maintain urutan.
func PartitionKey(id string) []byte { return []byte(id) }
