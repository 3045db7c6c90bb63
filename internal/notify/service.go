// Package notify consumes order.placed events and emits order
// confirmations. It never mutates order state.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/shoplite/go-shop-api/internal/kafka"
	"github.com/shoplite/go-shop-api/internal/orders"
	"github.com/shoplite/go-shop-api/internal/redisx"
)

type Service struct {
	Redis       *redis.Client // optional dedup store
	ServiceName string
}

// HandleOrderPlaced is wired as the consumer handler. Events are deduped by
// event id so redeliveries do not produce duplicate confirmations.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, "notify", env.EventID)
		if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	log.Printf("order confirmation: order=%s user=%s total=%s items=%d",
		p.OrderID, p.UserID, p.TotalAmount, p.ItemCount)
	return nil
}
