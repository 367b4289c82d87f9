package stockwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-shop-orders.git/internal/inventory"
	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/orders"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
)

// Service mengikuti topik inventory.movement dan memelihara level stok
// terakhir di Redis; kalau turun di bawah threshold, tulis alert sekali
// per TTL. Murni turunan dari event, bukan source of truth (itu tetap DB).
type Service struct {
	Redis       *redis.Client
	Threshold   int
	ServiceName string
}

// HandleMovement: dipasang sebagai handler consumer.
func (s *Service) HandleMovement(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventStockMovement {
		return nil
	} // ignore

	// dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.StockMovementPayload](env.Payload)
	if err != nil {
		return err
	}

	delta := int64(p.Qty)
	if p.Type == inventory.TypeOut {
		delta = -delta
	}
	lkey := fmt.Sprintf(redisx.KeyStockLevel, p.ProductID)
	level, err := s.Redis.IncrBy(ctx, lkey, delta).Result()
	if err != nil {
		return err
	}

	if level <= int64(s.Threshold) {
		akey := fmt.Sprintf(redisx.KeyLowStockAlert, p.ProductID)
		set, err := s.Redis.SetNX(ctx, akey, "1", redisx.TTLLowStockAlert).Result()
		if err != nil {
			return err
		}
		if set {
			log.Printf("low stock: product=%s level=%d threshold=%d (last movement %s/%s ref=%s)",
				p.ProductID, level, s.Threshold, p.Type, p.Reason, p.ReferenceID)
		}
	} else {
		// stok pulih, reset penanda alert
		_ = s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyLowStockAlert, p.ProductID)).Err()
	}
	return nil
}
