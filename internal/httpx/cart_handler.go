package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shoplite/go-shop-api/internal/cart"
)

type CartStore interface {
	ByUser(ctx context.Context, userID string) (*cart.Cart, error)
	Items(ctx context.Context, cartID string) ([]cart.Item, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*cart.Item, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error
}

type CartHandler struct {
	Cart CartStore
}

type addItemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type removeItemReq struct {
	CartItemID string `json:"cartItemId"`
}

type updateQuantityReq struct {
	CartItemID string `json:"cartItemId"`
	Quantity   int    `json:"quantity"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.view)
	r.Post("/cart", h.addItem)
	r.Delete("/cart", h.removeItem)
	r.Put("/cart", h.updateQuantity)
}

func (h *CartHandler) view(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Cart.ByUser(ctx, userIDFrom(ctx))
	if err != nil {
		internalError(w, r, err)
		return
	}
	items, err := h.Cart.Items(ctx, c.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cart":      c,
		"cartItems": items,
	})
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeMessage(w, http.StatusBadRequest, "No product id found")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeMessage(w, http.StatusBadRequest, "Quantity must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	item, err := h.Cart.AddItem(ctx, userIDFrom(ctx), req.ProductID, req.Quantity)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "New cartitem created!",
		"cartItem": item,
	})
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	var req removeItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// deleting a line that never matched still reports success
	if err := h.Cart.RemoveItem(ctx, userIDFrom(ctx), req.CartItemID); err != nil {
		internalError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("Cart item %s deleted!", req.CartItemID))
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Quantity <= 0 {
		writeMessage(w, http.StatusBadRequest, "Quantity must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	err := h.Cart.UpdateQuantity(ctx, userIDFrom(ctx), req.CartItemID, req.Quantity)
	if errors.Is(err, cart.ErrItemNotFound) {
		writeMessage(w, http.StatusBadRequest, "No cartitem found")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("Cart item %s is now %d pieces.", req.CartItemID, req.Quantity))
}
