package services

import (
	"testing"

	"lunch-telegram/models"

	"github.com/shopspring/decimal"
)

func item(id, title, price string) models.MenuItem {
	return models.MenuItem{ID: models.ID(id), Title: title, Price: decimal.RequireFromString(price)}
}

func TestCart_AddMergesSameID(t *testing.T) {
	c := NewCart()
	soup := item("1", "Борщ", "250")
	c.Add(soup)
	c.Add(soup)

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if got := c.Lines()[0].Quantity; got != 2 {
		t.Errorf("quantity = %d, want 2", got)
	}
}

func TestCart_AddPreservesInsertionOrder(t *testing.T) {
	c := NewCart()
	c.Add(item("2", "Салат", "120"))
	c.Add(item("1", "Борщ", "250"))
	c.Add(item("2", "Салат", "120"))
	c.Add(item("3", "Компот", "60"))

	lines := c.Lines()
	want := []models.ID{"2", "1", "3"}
	if len(lines) != len(want) {
		t.Fatalf("len(lines) = %d, want %d", len(lines), len(want))
	}
	for i, id := range want {
		if lines[i].ID != id {
			t.Errorf("lines[%d].ID = %s, want %s", i, lines[i].ID, id)
		}
	}
	if lines[0].Quantity != 2 {
		t.Errorf("first line quantity = %d, want 2", lines[0].Quantity)
	}
}

func TestCart_Total(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Cart)
		want  string
	}{
		{"empty", func(c *Cart) {}, "0"},
		{"single", func(c *Cart) { c.Add(item("1", "Борщ", "250.00")) }, "250"},
		{"decimal exact", func(c *Cart) {
			c.Add(item("1", "A", "0.10"))
			c.Add(item("2", "B", "0.20"))
			c.SetQuantity("1", 3)
		}, "0.5"},
		{"mixed", func(c *Cart) {
			c.Add(item("1", "Борщ", "250"))
			c.Add(item("1", "Борщ", "250"))
			c.Add(item("2", "Компот", "59.90"))
		}, "559.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart()
			tt.setup(c)
			want := decimal.RequireFromString(tt.want)
			if got := c.Total(); !got.Equal(want) {
				t.Errorf("Total() = %s, want %s", got, want)
			}
		})
	}
}

func TestCart_SetQuantityIsExact(t *testing.T) {
	c := NewCart()
	c.Add(item("1", "Борщ", "250"))

	for _, qty := range []int{5, 1, 0, -3} {
		c.SetQuantity("1", qty)
		line, ok := c.Line("1")
		if !ok {
			t.Fatal("line disappeared")
		}
		if line.Quantity != qty {
			t.Errorf("SetQuantity(%d): quantity = %d", qty, line.Quantity)
		}
	}

	c.SetQuantity("missing", 4)
	if c.Len() != 1 {
		t.Errorf("SetQuantity on unknown id changed the cart: Len() = %d", c.Len())
	}
}

func TestCart_Clear(t *testing.T) {
	c := NewCart()
	c.Add(item("1", "Борщ", "250"))
	c.Clear()
	if !c.IsEmpty() {
		t.Error("cart not empty after Clear()")
	}
	if !c.Total().IsZero() {
		t.Errorf("Total() after Clear() = %s", c.Total())
	}
}

func TestCart_LinesIsACopy(t *testing.T) {
	c := NewCart()
	c.Add(item("1", "Борщ", "250"))
	lines := c.Lines()
	lines[0].Quantity = 99
	if got, _ := c.Line("1"); got.Quantity != 1 {
		t.Errorf("mutating Lines() leaked into cart: quantity = %d", got.Quantity)
	}
}

func TestCart_OrderRequest(t *testing.T) {
	c := NewCart()
	c.Add(item("1", "Борщ", "250.50"))
	c.Add(item("1", "Борщ", "250.50"))
	c.Add(item("7", "Чай", "40"))

	req := c.OrderRequest()
	if len(req.Items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(req.Items))
	}
	first := req.Items[0]
	if first.ItemID != "1" || first.Title != "Борщ" || first.Price != 250.5 || first.Quantity != 2 {
		t.Errorf("items[0] = %+v", first)
	}
	if req.Items[1].ItemID != "7" || req.Items[1].Quantity != 1 {
		t.Errorf("items[1] = %+v", req.Items[1])
	}
}
