package ordering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"lunch-telegram/models"
)

// ErrNoCredential is returned when a login response carries no token.
var ErrNoCredential = errors.New("backend returned no credential")

// Session is a snapshot of the signed-in state. Credential is non-empty
// iff User is non-nil.
type Session struct {
	User       *models.User
	Credential string
}

func (a *App) Session() Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return Session{}
	}
	u := *a.user
	return Session{User: &u, Credential: a.token}
}

func (a *App) SignedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user != nil
}

// Restore loads the persisted credential and user. Nothing is sent to the
// backend; a stale credential shows up on the first authenticated request.
func (a *App) Restore(ctx context.Context) error {
	items, err := a.storage.GetItems(ctx, TokenSlot, UserSlot)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	token, rawUser := items[TokenSlot], items[UserSlot]
	if token == "" || rawUser == "" {
		return nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		a.log.Warn("ignoring unreadable persisted user", "error", err)
		return nil
	}

	a.mu.Lock()
	a.user = &user
	a.token = token
	a.mu.Unlock()
	return nil
}

// Login signs in and persists the session. On any failure the current
// session, in memory and persisted, is left as it was.
func (a *App) Login(ctx context.Context, email, password string) error {
	res, err := a.backend.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if res.Token == "" {
		return fmt.Errorf("login: %w", ErrNoCredential)
	}
	rawUser, err := json.Marshal(res.User)
	if err != nil {
		return fmt.Errorf("login: encode user: %w", err)
	}
	if err := a.storage.SetItems(ctx, map[string]string{
		TokenSlot: res.Token,
		UserSlot:  string(rawUser),
	}); err != nil {
		return fmt.Errorf("login: persist session: %w", err)
	}

	user := res.User
	a.mu.Lock()
	a.user = &user
	a.token = res.Token
	a.orders = nil
	a.mu.Unlock()

	if err := a.RefreshOrders(ctx); err != nil {
		a.log.Warn("load order history failed", "error", err)
	}
	return nil
}

// Register creates the account and then signs in with the same
// credentials. If the sign-in step fails no session is established.
func (a *App) Register(ctx context.Context, name, email, password string) error {
	if err := a.backend.Register(ctx, name, email, password); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return a.Login(ctx, email, password)
}

// Logout always succeeds locally. The backend call is best effort and the
// persisted slots are cleared even when it fails.
func (a *App) Logout(ctx context.Context) {
	a.mu.Lock()
	token := a.token
	a.mu.Unlock()

	if token != "" {
		if err := a.backend.Logout(ctx, token); err != nil {
			a.log.Debug("backend logout failed", "error", err)
		}
	}
	if err := a.storage.RemoveItems(ctx, TokenSlot, UserSlot); err != nil {
		a.log.Warn("clear persisted session failed", "error", err)
	}

	a.mu.Lock()
	a.user = nil
	a.token = ""
	a.orders = nil
	a.mu.Unlock()
}
