package ordering

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"lunch-telegram/models"
)

type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	login     func(email, password string) (*models.AuthResult, error)
	register  func(name, email, password string) error
	logout    func(token string) error
	menu      func(ctx context.Context, category string) ([]models.MenuItem, error)
	publish   func(token string, req models.PublishRequest) (*models.MenuItem, error)
	order     func(token string, req models.OrderRequest) (*models.Order, error)
	myOrders  func(token string) ([]models.Order, error)
	lastOrder models.OrderRequest
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (*models.AuthResult, error) {
	f.record("login")
	if f.login == nil {
		return nil, errors.New("unexpected login")
	}
	return f.login(email, password)
}

func (f *fakeBackend) Register(_ context.Context, name, email, password string) error {
	f.record("register")
	if f.register == nil {
		return nil
	}
	return f.register(name, email, password)
}

func (f *fakeBackend) Logout(_ context.Context, token string) error {
	f.record("logout")
	if f.logout == nil {
		return nil
	}
	return f.logout(token)
}

func (f *fakeBackend) MenuToday(ctx context.Context, category string) ([]models.MenuItem, error) {
	f.record("menu")
	if f.menu == nil {
		return []models.MenuItem{}, nil
	}
	return f.menu(ctx, category)
}

func (f *fakeBackend) PublishItem(_ context.Context, token string, req models.PublishRequest) (*models.MenuItem, error) {
	f.record("publish")
	if f.publish == nil {
		return &models.MenuItem{ID: "99", Title: req.Title}, nil
	}
	return f.publish(token, req)
}

func (f *fakeBackend) PlaceOrder(_ context.Context, token string, req models.OrderRequest) (*models.Order, error) {
	f.record("order")
	f.mu.Lock()
	f.lastOrder = req
	f.mu.Unlock()
	if f.order == nil {
		return &models.Order{ID: "1"}, nil
	}
	return f.order(token, req)
}

func (f *fakeBackend) MyOrders(_ context.Context, token string) ([]models.Order, error) {
	f.record("my_orders")
	if f.myOrders == nil {
		return []models.Order{}, nil
	}
	return f.myOrders(token)
}

type memStorage struct {
	mu      sync.Mutex
	items   map[string]string
	failSet error
	failDel error
}

func newMemStorage() *memStorage {
	return &memStorage{items: map[string]string{}}
}

func (m *memStorage) GetItems(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := m.items[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memStorage) SetItems(_ context.Context, items map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	for k, v := range items {
		m.items[k] = v
	}
	return nil
}

func (m *memStorage) RemoveItems(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDel != nil {
		return m.failDel
	}
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 17, 12, 30, 0, 0, time.UTC)
}

func newTestApp(t *testing.T, b *fakeBackend, s *memStorage) *App {
	t.Helper()
	return New(b, s, Options{
		Now:    fixedNow,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func okLogin(role string) func(string, string) (*models.AuthResult, error) {
	return func(email, _ string) (*models.AuthResult, error) {
		return &models.AuthResult{
			User:  models.User{ID: "7", Name: "Ann", Email: email, Role: role},
			Token: "tok-" + email,
		}, nil
	}
}
