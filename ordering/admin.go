package ordering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lunch-telegram/models"
	"lunch-telegram/services"
)

const dayLayout = "2006-01-02"

// PublishForm is the admin draft as typed. Price stays a string until
// Publish parses it. An empty Category is sent as null.
type PublishForm struct {
	Title       string
	Description string
	Price       string
	Category    string
	Available   bool
	Day         string
}

// NewPublishForm returns the defaults: available, for today.
func (a *App) NewPublishForm() PublishForm {
	return PublishForm{Available: true, Day: a.Today()}
}

func (a *App) Today() string {
	return a.now().Format(dayLayout)
}

// IsAdmin reports whether the signed-in user has the privileged role.
func (a *App) IsAdmin() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user != nil && a.user.Role == a.adminRole
}

func (a *App) Draft() PublishForm {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draft
}

func (a *App) SetDraft(f PublishForm) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.draft = f
}

func (a *App) ResetDraft() {
	f := a.NewPublishForm()
	a.SetDraft(f)
}

// Validate checks the form locally and builds the request body.
func (f PublishForm) Validate() (models.PublishRequest, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return models.PublishRequest{}, &ValidationError{Field: "title", Reason: "required"}
	}
	price, err := services.ParsePrice(f.Price)
	if err != nil {
		return models.PublishRequest{}, &ValidationError{
			Field:  "price",
			Reason: err.Error(),
			Err:    fmt.Errorf("%w: %w", ErrInvalidPrice, err),
		}
	}
	if _, err := time.Parse(dayLayout, f.Day); err != nil {
		return models.PublishRequest{}, &ValidationError{Field: "day", Reason: "expected YYYY-MM-DD", Err: err}
	}
	if f.Category != "" && !models.IsCategory(f.Category) {
		return models.PublishRequest{}, &ValidationError{Field: "category", Reason: "unknown category"}
	}

	req := models.PublishRequest{
		Title:       title,
		Description: f.Description,
		Price:       price.InexactFloat64(),
		Available:   f.Available,
		Day:         f.Day,
	}
	if f.Category != "" {
		c := f.Category
		req.Category = &c
	}
	return req, nil
}

// Publish sends a new menu item. On success the draft resets to defaults
// and, if a menu was already shown, it is reloaded with the same filter.
func (a *App) Publish(ctx context.Context, form PublishForm) (*models.MenuItem, error) {
	if !a.IsAdmin() {
		return nil, ErrNotAdmin
	}
	req, err := form.Validate()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	token := a.token
	a.mu.Unlock()

	item, err := a.backend.PublishItem(ctx, token, req)
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	a.ResetDraft()

	view := a.Menu()
	if view.Loaded {
		if _, err := a.LoadMenu(ctx, view.Category); err != nil && !errors.Is(err, ErrStaleMenu) {
			a.log.Warn("reload menu after publish failed", "error", err)
		}
	}
	return item, nil
}
