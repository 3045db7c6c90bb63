package catalog

import "github.com/shopspring/decimal"

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Product struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description,omitempty"`
	Availability bool            `json:"availability"`
	CategoryID   string          `json:"categoryId"`
}
