package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/shoplite/go-shop-api/internal/kafka"
	"github.com/shoplite/go-shop-api/internal/orders"
	"github.com/shoplite/go-shop-api/internal/redisx"
)

type OrderStore interface {
	Place(ctx context.Context, userID string) (*orders.Order, error)
	ListByUser(ctx context.Context, userID string) ([]orders.Order, error)
	GetByID(ctx context.Context, userID, orderID string) (*orders.Order, error)
}

// Publisher is satisfied by the kafka producer; nil disables events.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Orders   OrderStore
	Producer Publisher
	Redis    *redis.Client // optional read cache
	Service  string
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.orderHistory)
	r.Get("/orders/{orderId}", h.getOrder)
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := userIDFrom(ctx)
	order, err := h.Orders.Place(ctx, userID)
	if errors.Is(err, orders.ErrEmptyCart) {
		writeMessage(w, http.StatusBadRequest, "No cart item found!")
		return
	}
	if errors.Is(err, orders.ErrDanglingProduct) {
		writeMessage(w, http.StatusBadRequest, "Cart references a product that no longer exists")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	h.cacheOrder(ctx, order)
	h.publishPlaced(order, middleware.GetReqID(r.Context()))

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "New order created!",
		"order":   order,
	})
}

func (h *OrdersHandler) orderHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Orders.ListByUser(ctx, userIDFrom(ctx))
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": list})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		writeMessage(w, http.StatusBadRequest, "Must be a valid order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	userID := userIDFrom(ctx)

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrder, userID, orderID)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, map[string]any{"order": json.RawMessage(s)})
			return
		}
	}

	order, err := h.Orders.GetByID(ctx, userID, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		// the original answers an unknown or foreign order id with a null body
		writeJSON(w, http.StatusOK, map[string]any{"order": nil})
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	h.cacheOrder(ctx, order)
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *OrdersHandler) cacheOrder(ctx context.Context, o *orders.Order) {
	if h.Redis == nil {
		return
	}
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrder, o.UserID, o.ID)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLOrderCache).Err()
}

func (h *OrdersHandler) publishPlaced(o *orders.Order, traceID string) {
	if h.Producer == nil {
		return
	}
	var snapshot []json.RawMessage
	_ = json.Unmarshal(o.Details, &snapshot)
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:     o.ID,
			UserID:      o.UserID,
			TotalAmount: o.TotalAmount.StringFixed(2),
			ItemCount:   len(snapshot),
		}),
	}
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
