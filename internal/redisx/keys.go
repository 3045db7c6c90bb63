package redisx

import "time"

const (
	// Per-user order read cache: order:{user_id}:{order_id} -> order JSON
	KeyOrder = "order:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderCache = 5 * time.Minute
	TTLDedup      = 48 * time.Hour
)
