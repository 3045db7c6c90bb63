package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shoplite/go-shop-api/internal/cart"
	"github.com/shoplite/go-shop-api/internal/catalog"
)

var ErrNotFound = errors.New("order not found")

type Repo struct{ DB *pgxpool.Pool }

// Place converts the user's cart into an immutable order inside a single
// transaction: load line items, batch-resolve prices, compute the decimal
// total, write the order with its product snapshot, then bulk-delete exactly
// the line items captured at the start. Items added concurrently after the
// snapshot survive the delete.
func (r *Repo) Place(ctx context.Context, userID string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cartID string
	if err := tx.QueryRow(ctx, `SELECT id FROM carts WHERE user_id=$1`, userID).Scan(&cartID); err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, cart_id, product_id, quantity
		FROM cart_items WHERE cart_id=$1 ORDER BY created_at
	`, cartID)
	if err != nil {
		return nil, err
	}
	var items []cart.Item
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity); err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	itemIDs := make([]string, 0, len(items))
	productIDs := make([]string, 0, len(items))
	seen := map[string]bool{}
	for _, it := range items {
		itemIDs = append(itemIDs, it.ID)
		if !seen[it.ProductID] {
			productIDs = append(productIDs, it.ProductID)
			seen[it.ProductID] = true
		}
	}

	products, err := catalog.ProductsByIDs(ctx, tx, productIDs)
	if err != nil {
		return nil, err
	}
	total, err := Total(items, products)
	if err != nil {
		return nil, err
	}
	details, err := json.Marshal(Snapshot(items, products))
	if err != nil {
		return nil, err
	}

	o := Order{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      StatusPlaced,
		TotalAmount: total,
		Details:     details,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, status, total_amount, details)
		VALUES ($1, $2, $3, $4::numeric, $5)
		RETURNING created_at
	`, o.ID, o.UserID, string(o.Status), total.StringFixed(2), details).Scan(&o.CreatedAt)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, itemIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, status, total_amount::text, details, created_at
		FROM orders WHERE user_id=$1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, userID, orderID string) (*Order, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT id, user_id, status, total_amount::text, details, created_at
		FROM orders WHERE id=$1 AND user_id=$2
	`, orderID, userID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var status, amount string
	if err := row.Scan(&o.ID, &o.UserID, &status, &amount, &o.Details, &o.CreatedAt); err != nil {
		return Order{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Order{}, fmt.Errorf("parse total %q: %w", amount, err)
	}
	o.Status = Status(status)
	o.TotalAmount = d
	return o, nil
}
