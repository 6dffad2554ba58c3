// Package ordering holds the client-side state of one ordering session:
// the signed-in user and credential, the cart, the last fetched menu and
// order history, and the admin publish draft. All mutation goes through
// App's methods.
//
// Role checks here only decide what the UI offers. The backend must
// authorise every request on its own.
package ordering

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lunch-telegram/models"
	"lunch-telegram/services"
)

// Persisted slot names. Both are written and cleared together.
const (
	TokenSlot = "auth_token"
	UserSlot  = "auth_user"
)

const DefaultAdminRole = "admin"

// Backend is the subset of the lunch backend the App consumes.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Register(ctx context.Context, name, email, password string) error
	Logout(ctx context.Context, token string) error
	MenuToday(ctx context.Context, category string) ([]models.MenuItem, error)
	PublishItem(ctx context.Context, token string, req models.PublishRequest) (*models.MenuItem, error)
	PlaceOrder(ctx context.Context, token string, req models.OrderRequest) (*models.Order, error)
	MyOrders(ctx context.Context, token string) ([]models.Order, error)
}

// Storage persists named string slots, like a browser's local storage.
// SetItems and RemoveItems must apply all keys or none.
type Storage interface {
	GetItems(ctx context.Context, keys ...string) (map[string]string, error)
	SetItems(ctx context.Context, items map[string]string) error
	RemoveItems(ctx context.Context, keys ...string) error
}

type Options struct {
	AdminRole string
	Now       func() time.Time
	Logger    *slog.Logger
}

// App is safe for concurrent use. Its lock is never held across a backend
// call, so overlapping operations may interleave.
type App struct {
	backend   Backend
	storage   Storage
	adminRole string
	now       func() time.Time
	log       *slog.Logger

	mu     sync.Mutex
	user   *models.User
	token  string
	cart   *services.Cart
	menu   MenuView
	orders []models.Order
	draft  PublishForm

	menuSeq     uint64 // last issued menu request
	menuApplied uint64 // last menu response written to menu
}

func New(backend Backend, storage Storage, opts Options) *App {
	if opts.AdminRole == "" {
		opts.AdminRole = DefaultAdminRole
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	a := &App{
		backend:   backend,
		storage:   storage,
		adminRole: opts.AdminRole,
		now:       opts.Now,
		log:       opts.Logger,
		cart:      services.NewCart(),
	}
	a.draft = a.NewPublishForm()
	return a
}

// Start restores the persisted session and, when one was found, loads the
// order history for it.
func (a *App) Start(ctx context.Context) error {
	if err := a.Restore(ctx); err != nil {
		return err
	}
	if !a.SignedIn() {
		return nil
	}
	if err := a.RefreshOrders(ctx); err != nil {
		a.log.Warn("load order history failed", "error", err)
	}
	return nil
}
