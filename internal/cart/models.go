package cart

import "time"

type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"-"`
}

// Item is a single (product, quantity) line in a cart. Adding the same
// product twice yields two rows; lines are never merged.
type Item struct {
	ID        string `json:"id"`
	CartID    string `json:"cartId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
