package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shoplite/go-shop-api/internal/catalog"
)

type CatalogStore interface {
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]catalog.Product, error)
	GetProduct(ctx context.Context, productID string) (*catalog.Product, error)
}

type CatalogHandler struct {
	Catalog CatalogStore
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/categories", h.listCategories)
	r.Get("/categories/{categoryId}", h.listProductsByCategory)
	r.Get("/products/{productId}", h.getProduct)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	categories, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(categories),
		"categories": categories,
	})
}

func (h *CatalogHandler) listProductsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")
	if categoryID == "" {
		writeMessage(w, http.StatusBadRequest, "Must be a valid category id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	products, err := h.Catalog.ListProductsByCategory(ctx, categoryID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(products),
		"products": products,
	})
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeMessage(w, http.StatusBadRequest, "Must be a valid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	product, err := h.Catalog.GetProduct(ctx, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		writeMessage(w, http.StatusBadRequest, "No product found")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product found!",
		"product": product,
	})
}
