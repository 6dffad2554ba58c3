package services

import (
	"lunch-telegram/models"

	"github.com/shopspring/decimal"
)

type CartLine struct {
	ID       models.ID       `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Cart is an in-memory, insertion-ordered list of lines, one per item id.
// It is not safe for concurrent use; the owning App serialises access.
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// Add increments the line for item.ID, or appends a new line with quantity 1.
func (c *Cart) Add(item models.MenuItem) {
	for i := range c.lines {
		if c.lines[i].ID == item.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, CartLine{ID: item.ID, Title: item.Title, Price: item.Price, Quantity: 1})
}

// SetQuantity sets the quantity of the line for id to exactly qty. Callers
// clamp; qty is not checked here. Unknown ids are ignored.
func (c *Cart) SetQuantity(id models.ID, qty int) {
	for i := range c.lines {
		if c.lines[i].ID == id {
			c.lines[i].Quantity = qty
			return
		}
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Total is the sum of price × quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Line(id models.ID) (CartLine, bool) {
	for _, l := range c.lines {
		if l.ID == id {
			return l, true
		}
	}
	return CartLine{}, false
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// OrderRequest maps the cart to the POST /orders body.
func (c *Cart) OrderRequest() models.OrderRequest {
	items := make([]models.OrderLine, len(c.lines))
	for i, l := range c.lines {
		items[i] = models.OrderLine{
			ItemID:   l.ID,
			Title:    l.Title,
			Price:    l.Price.InexactFloat64(),
			Quantity: l.Quantity,
		}
	}
	return models.OrderRequest{Items: items}
}
