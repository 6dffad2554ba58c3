package ordering

import (
	"context"
	"errors"
	"fmt"

	"lunch-telegram/backend"
	"lunch-telegram/models"
)

// CanPlaceOrder reports whether the order action should be offered.
func (a *App) CanPlaceOrder() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.cart.IsEmpty() && a.token != ""
}

// PlaceOrder submits the cart as it is. It does not check CanPlaceOrder;
// the backend rejects what it must. On success the cart is cleared and
// the history refetched; a failed refetch is logged, not returned.
func (a *App) PlaceOrder(ctx context.Context) (*models.Order, error) {
	a.mu.Lock()
	req := a.cart.OrderRequest()
	token := a.token
	a.mu.Unlock()

	order, err := a.backend.PlaceOrder(ctx, token, req)
	if err != nil {
		if errors.Is(err, backend.ErrTransport) {
			a.log.Warn("place order failed", "error", err)
		}
		return nil, fmt.Errorf("place order: %w", err)
	}

	a.mu.Lock()
	a.cart.Clear()
	a.mu.Unlock()

	if err := a.RefreshOrders(ctx); err != nil {
		a.log.Warn("refresh order history failed", "error", err)
	}
	return order, nil
}

// RefreshOrders refetches the history for the current session. The result
// is dropped if the session changed while the request was in flight.
func (a *App) RefreshOrders(ctx context.Context) error {
	a.mu.Lock()
	token := a.token
	a.mu.Unlock()
	if token == "" {
		return ErrNotSignedIn
	}

	orders, err := a.backend.MyOrders(ctx, token)
	if err != nil {
		return fmt.Errorf("order history: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token == token {
		a.orders = orders
	}
	return nil
}

// Orders returns the history as last fetched.
func (a *App) Orders() []models.Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Order(nil), a.orders...)
}
