package ordering

import (
	"context"
	"fmt"

	"lunch-telegram/models"
)

// MenuView is the last applied menu result. Loaded is false until the
// first successful response; an empty Items with Loaded set is a real
// empty menu.
type MenuView struct {
	Category string
	Items    []models.MenuItem
	Loading  bool
	Loaded   bool
}

func (a *App) Menu() MenuView {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := a.menu
	v.Items = append([]models.MenuItem(nil), a.menu.Items...)
	return v
}

// LoadMenu fetches today's menu, optionally filtered by category ("" for
// all), and replaces the current view. A response older than the one
// already applied is discarded with ErrStaleMenu. On failure the previous
// items are kept.
func (a *App) LoadMenu(ctx context.Context, category string) ([]models.MenuItem, error) {
	a.mu.Lock()
	a.menuSeq++
	seq := a.menuSeq
	a.menu.Category = category
	a.menu.Loading = true
	a.mu.Unlock()

	items, err := a.backend.MenuToday(ctx, category)

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq == a.menuSeq {
		a.menu.Loading = false
	}
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}
	if seq < a.menuApplied {
		a.log.Debug("dropping stale menu response", "seq", seq, "latest", a.menuSeq)
		return nil, ErrStaleMenu
	}
	a.menuApplied = seq
	if items == nil {
		items = []models.MenuItem{}
	}
	a.menu.Items = items
	a.menu.Loaded = true
	return append([]models.MenuItem(nil), items...), nil
}

// MenuItem looks an item up in the current view.
func (a *App) MenuItem(id models.ID) (models.MenuItem, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, it := range a.menu.Items {
		if it.ID == id {
			return it, true
		}
	}
	return models.MenuItem{}, false
}
