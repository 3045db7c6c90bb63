package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplite/go-shop-api/internal/auth"
	"github.com/shoplite/go-shop-api/internal/cart"
)

// fakeCartStore keeps one cart per user and enforces the same ownership
// scoping as the SQL predicates.
type fakeCartStore struct {
	carts map[string]*cart.Cart // user id -> cart
	items map[string][]cart.Item
	next  int
}

func newFakeCartStore(userIDs ...string) *fakeCartStore {
	f := &fakeCartStore{carts: map[string]*cart.Cart{}, items: map[string][]cart.Item{}}
	for _, uid := range userIDs {
		f.carts[uid] = &cart.Cart{ID: "cart-" + uid, UserID: uid}
	}
	return f
}

func (f *fakeCartStore) ByUser(_ context.Context, userID string) (*cart.Cart, error) {
	return f.carts[userID], nil
}

func (f *fakeCartStore) Items(_ context.Context, cartID string) ([]cart.Item, error) {
	return f.items[cartID], nil
}

func (f *fakeCartStore) AddItem(_ context.Context, userID, productID string, quantity int) (*cart.Item, error) {
	c := f.carts[userID]
	f.next++
	it := cart.Item{ID: fmt.Sprintf("item-%d", f.next), CartID: c.ID, ProductID: productID, Quantity: quantity}
	f.items[c.ID] = append(f.items[c.ID], it)
	return &it, nil
}

func (f *fakeCartStore) RemoveItem(_ context.Context, userID, itemID string) error {
	c := f.carts[userID]
	kept := f.items[c.ID][:0]
	for _, it := range f.items[c.ID] {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	f.items[c.ID] = kept
	return nil
}

func (f *fakeCartStore) UpdateQuantity(_ context.Context, userID, itemID string, quantity int) error {
	c := f.carts[userID]
	for i, it := range f.items[c.ID] {
		if it.ID == itemID {
			f.items[c.ID][i].Quantity = quantity
			return nil
		}
	}
	return cart.ErrItemNotFound
}

func newCartRouter(store CartStore, codec *auth.Codec) *chi.Mux {
	r := chi.NewRouter()
	gate := &Gate{Tokens: codec}
	r.Group(func(gr chi.Router) {
		gr.Use(gate.Handler)
		h := &CartHandler{Cart: store}
		h.Register(gr)
	})
	return r
}

func authedJSON(t *testing.T, h http.Handler, codec *auth.Codec, userID, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := codec.Issue(userID)
	require.NoError(t, err)

	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestViewCartEmpty(t *testing.T) {
	codec := auth.NewCodec("secret", time.Hour)
	store := newFakeCartStore("u1")
	r := newCartRouter(store, codec)

	rec := authedJSON(t, r, codec, "u1", http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Cart      cart.Cart   `json:"cart"`
		CartItems []cart.Item `json:"cartItems"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cart-u1", resp.Cart.ID)
	assert.Empty(t, resp.CartItems)
}

func TestAddItemDefaultsQuantity(t *testing.T) {
	codec := auth.NewCodec("secret", time.Hour)
	store := newFakeCartStore("u1")
	r := newCartRouter(store, codec)

	rec := authedJSON(t, r, codec, "u1", http.MethodPost, "/cart", `{"productId":"p1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "New cartitem created!")

	items := store.items["cart-u1"]
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAddItemNeverMergesLines(t *testing.T) {
	codec := auth.NewCodec("secret", time.Hour)
	store := newFakeCartStore("u1")
	r := newCartRouter(store, codec)

	for i := 0; i < 2; i++ {
		rec := authedJSON(t, r, codec, "u1", http.MethodPost, "/cart", `{"productId":"p1","quantity":2}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Len(t, store.items["cart-u1"], 2)
}

func TestAddItemRejectsNegativeQuantity(t *testing.T) {
	codec := auth.NewCodec("secret", time.Hour)
	r := newCartRouter(newFakeCartStore("u1"), codec)

	rec := authedJSON(t, r, codec, "u1", http.MethodPost, "/cart", `{"productId":"p1","quantity":-3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveItemIsAlwaysReportedDeleted(t *testing.T) {
	codec := auth.NewCodec("secret", time.Hour)
	r := newCartRouter(newFakeCartStore("u1"), codec)

	rec := authedJSON(t, r, codec, "u1", http.MethodDelete, "/cart", `{"cartItemId":"never-existed"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "deleted!")
}

func TestUpdateQuantity(t *testing.T) {
	codec := auth.NewCodec("secret", time.Hour)
	store := newFakeCartStore("u1")
	it, err := store.AddItem(context.Background(), "u1", "p1", 1)
	require.NoError(t, err)

	r := newCartRouter(store, codec)
	rec := authedJSON(t, r, codec, "u1", http.MethodPut, "/cart",
		`{"cartItemId":"`+it.ID+`","quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, store.items["cart-u1"][0].Quantity)
}

func TestUpdateQuantityForeignItemIsNotFound(t *testing.T) {
	codec := auth.NewCodec("secret", time.Hour)
	store := newFakeCartStore("u1", "u2")
	it, err := store.AddItem(context.Background(), "u2", "p1", 1)
	require.NoError(t, err)

	// u1 targets u2's line item: scoped update matches zero rows
	r := newCartRouter(store, codec)
	rec := authedJSON(t, r, codec, "u1", http.MethodPut, "/cart",
		`{"cartItemId":"`+it.ID+`","quantity":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No cartitem found")
	assert.Equal(t, 1, store.items["cart-u2"][0].Quantity)
}
