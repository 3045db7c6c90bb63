package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotFound = errors.New("cart item not found")

type Repo struct{ DB *pgxpool.Pool }

// ByUser resolves the user's single cart, provisioned at registration.
func (r *Repo) ByUser(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, created_at FROM carts WHERE user_id=$1
	`, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) Items(ctx context.Context, cartID string) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items WHERE cart_id=$1 ORDER BY created_at
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// AddItem always inserts a new line, even when the product is already in the
// cart.
func (r *Repo) AddItem(ctx context.Context, userID, productID string, quantity int) (*Item, error) {
	var cartID string
	if err := r.DB.QueryRow(ctx, `SELECT id FROM carts WHERE user_id=$1`, userID).Scan(&cartID); err != nil {
		return nil, err
	}

	it := Item{ID: uuid.NewString(), CartID: cartID, ProductID: productID, Quantity: quantity}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO cart_items(id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
	`, it.ID, it.CartID, it.ProductID, it.Quantity)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// RemoveItem deletes the line only when it sits in the caller's own cart.
// Zero matched rows is still a success.
func (r *Repo) RemoveItem(ctx context.Context, userID, itemID string) error {
	_, err := r.DB.Exec(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.id=$1 AND ci.cart_id=c.id AND c.user_id=$2
	`, itemID, userID)
	return err
}

// UpdateQuantity is scoped the same way; a line in somebody else's cart
// matches zero rows and reports ErrItemNotFound.
func (r *Repo) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE cart_items ci
		SET quantity=$3
		FROM carts c
		WHERE ci.id=$1 AND ci.cart_id=c.id AND c.user_id=$2
	`, itemID, userID, quantity)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}
