package backend

import (
	"context"
	"net/http"
	"net/url"

	"lunch-telegram/models"
)

// MenuToday lists items published for the backend's current day, optionally
// limited to one category.
func (c *Client) MenuToday(ctx context.Context, category string) ([]models.MenuItem, error) {
	path := "/menu/today"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	items := []models.MenuItem{}
	if err := c.do(ctx, http.MethodGet, path, "", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PublishItem handles POST /menu (admin).
func (c *Client) PublishItem(ctx context.Context, token string, req models.PublishRequest) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := c.do(ctx, http.MethodPost, "/menu", token, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
