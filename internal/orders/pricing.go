package orders

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shoplite/go-shop-api/internal/cart"
	"github.com/shoplite/go-shop-api/internal/catalog"
)

var (
	ErrEmptyCart       = errors.New("no cart item found")
	ErrDanglingProduct = errors.New("cart item references missing product")
)

// Total sums authoritative unit price x quantity over all line items using
// exact decimal arithmetic. A line whose product is not in the price map
// fails the whole computation rather than contributing zero.
func Total(items []cart.Item, products map[string]catalog.Product) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrDanglingProduct, it.ProductID)
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total, nil
}

// Snapshot captures the resolved products in first-reference order, one entry
// per distinct product.
func Snapshot(items []cart.Item, products map[string]catalog.Product) []catalog.Product {
	seen := map[string]bool{}
	out := make([]catalog.Product, 0, len(products))
	for _, it := range items {
		if seen[it.ProductID] {
			continue
		}
		if p, ok := products[it.ProductID]; ok {
			out = append(out, p)
			seen[it.ProductID] = true
		}
	}
	return out
}
