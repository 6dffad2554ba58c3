package ordering

import (
	"lunch-telegram/models"
	"lunch-telegram/services"

	"github.com/shopspring/decimal"
)

func (a *App) AddToCart(item models.MenuItem) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cart.Add(item)
}

// AddMenuItem adds the item with the given id from the current menu view.
func (a *App) AddMenuItem(id models.ID) (services.CartLine, error) {
	item, ok := a.MenuItem(id)
	if !ok {
		return services.CartLine{}, ErrUnknownItem
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cart.Add(item)
	line, _ := a.cart.Line(id)
	return line, nil
}

// ChangeQuantity sets the line quantity to exactly qty. Callers keep qty
// at 1 or above.
func (a *App) ChangeQuantity(id models.ID, qty int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cart.SetQuantity(id, qty)
}

func (a *App) CartLines() []services.CartLine {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cart.Lines()
}

func (a *App) CartTotal() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cart.Total()
}
