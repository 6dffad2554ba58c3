package backend

import (
	"context"
	"net/http"

	"lunch-telegram/models"
)

func (c *Client) PlaceOrder(ctx context.Context, token string, req models.OrderRequest) (*models.Order, error) {
	var order models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", token, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// MyOrders handles GET /orders/me.
func (c *Client) MyOrders(ctx context.Context, token string) ([]models.Order, error) {
	orders := []models.Order{}
	if err := c.do(ctx, http.MethodGet, "/orders/me", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
