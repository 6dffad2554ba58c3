package models

import "github.com/shopspring/decimal"

type MenuItem struct {
	ID          ID              `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	Available   bool            `json:"available"`
	Day         string          `json:"day"` // YYYY-MM-DD
}

const (
	CategorySoup    = "soup"
	CategorySalad   = "salad"
	CategoryMain    = "main"
	CategorySide    = "side"
	CategoryDrink   = "drink"
	CategoryDessert = "dessert"
	CategoryOther   = "other"
)

// Categories lists the menu categories in display order.
var Categories = []string{
	CategorySoup, CategorySalad, CategoryMain, CategorySide,
	CategoryDrink, CategoryDessert, CategoryOther,
}

func IsCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// PublishRequest is the body of POST /menu. A nil Category is sent as null.
type PublishRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Available   bool    `json:"available"`
	Day         string  `json:"day"`
	Category    *string `json:"category"`
}
