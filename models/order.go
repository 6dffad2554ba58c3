package models

import "github.com/shopspring/decimal"

type Order struct {
	ID        ID              `json:"id"`
	CreatedAt Timestamp       `json:"created_at"`
	Total     decimal.Decimal `json:"total"`
	Items     []OrderedItem   `json:"items"`
}

type OrderedItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	Items []OrderLine `json:"items"`
}

// OrderLine duplicates title and price from the cart; the backend is
// expected to revalidate the price.
type OrderLine struct {
	ItemID   ID      `json:"item_id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}
