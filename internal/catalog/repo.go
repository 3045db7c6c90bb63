package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("product not found")

// Repo is read-only: the shop never mutates the catalog.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, COALESCE(description, '') FROM categories ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) ListProductsByCategory(ctx context.Context, categoryID string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, title, price::text, COALESCE(description, ''), availability, category_id
		FROM products WHERE category_id=$1 ORDER BY title
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, productID string) (*Product, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT id, title, price::text, COALESCE(description, ''), availability, category_id
		FROM products WHERE id=$1
	`, productID)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductsByIDs is the single batched lookup order placement relies on. It
// runs on the caller's transaction so pricing sees the same snapshot the
// order is created in. Missing ids are simply absent from the result map.
func ProductsByIDs(ctx context.Context, tx pgx.Tx, ids []string) (map[string]Product, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, title, price::text, COALESCE(description, ''), availability, category_id
		FROM products WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var price string
	if err := row.Scan(&p.ID, &p.Title, &price, &p.Description, &p.Availability, &p.CategoryID); err != nil {
		return Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return Product{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Price = d
	return p, nil
}
