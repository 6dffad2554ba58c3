package bot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"lunch-telegram/backend"
	"lunch-telegram/db"
	"lunch-telegram/models"
	"lunch-telegram/services"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	sent   []tgbotapi.Chattable
	reqs   []tgbotapi.Chattable
	nextID int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: 1000 + f.nextID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts returns the text of every sent or edited message, in order.
func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) last() string {
	t := f.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

func (f *fakeSender) lastSent() tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) callbackAnswers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.reqs {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

func (f *fakeSender) deleted() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, c := range f.reqs {
		if d, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			out = append(out, d.MessageID)
		}
	}
	return out
}

// fakeLunch is an in-memory lunch backend.
type fakeLunch struct {
	mu        sync.Mutex
	menu      []models.MenuItem
	published []models.PublishRequest
	orders    []models.Order
	orderErr  string
}

const testPassword = "secret"

func roleFor(email string) string {
	if strings.HasPrefix(email, "admin@") {
		return "admin"
	}
	return "user"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (l *fakeLunch) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Неверный email или пароль"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user":  map[string]interface{}{"id": 7, "name": "Ann", "email": req.Email, "role": roleFor(req.Email)},
			"token": "tok-" + req.Email,
		})
	})
	r.Post("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if strings.HasPrefix(req.Email, "taken@") {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{})
	})
	r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/menu/today", func(w http.ResponseWriter, r *http.Request) {
		l.mu.Lock()
		defer l.mu.Unlock()
		category := r.URL.Query().Get("category")
		items := []models.MenuItem{}
		for _, it := range l.menu {
			if category == "" || it.Category == category {
				items = append(items, it)
			}
		}
		writeJSON(w, http.StatusOK, items)
	})
	r.Post("/menu", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-admin@example.com" {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Forbidden"})
			return
		}
		var req models.PublishRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		l.mu.Lock()
		defer l.mu.Unlock()
		l.published = append(l.published, req)
		item := models.MenuItem{ID: "100", Title: req.Title, Price: decimal.NewFromFloat(req.Price), Available: req.Available, Day: req.Day}
		if req.Category != nil {
			item.Category = *req.Category
		}
		l.menu = append(l.menu, item)
		writeJSON(w, http.StatusOK, item)
	})
	r.Post("/orders", func(w http.ResponseWriter, r *http.Request) {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.orderErr != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": l.orderErr})
			return
		}
		var req models.OrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		total := decimal.Zero
		order := models.Order{ID: "12", CreatedAt: models.Timestamp{Time: time.Date(2024, 5, 17, 12, 30, 0, 0, time.UTC)}}
		for _, line := range req.Items {
			total = total.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
			order.Items = append(order.Items, models.OrderedItem{Title: line.Title, Quantity: line.Quantity})
		}
		order.Total = total
		l.orders = append(l.orders, order)
		writeJSON(w, http.StatusOK, order)
	})
	r.Get("/orders/me", func(w http.ResponseWriter, r *http.Request) {
		l.mu.Lock()
		defer l.mu.Unlock()
		writeJSON(w, http.StatusOK, append([]models.Order{}, l.orders...))
	})
	return r
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	t      *testing.T
	api    *fakeSender
	bot    *Bot
	lunch  *fakeLunch
	client *backend.Client
	slots  services.SlotStore
	clock  *clock
	msgID  int
}

const testChat int64 = 555

func newHarness(t *testing.T) *harness {
	t.Helper()
	lunch := &fakeLunch{menu: []models.MenuItem{
		{ID: "1", Title: "Борщ", Price: decimal.RequireFromString("250"), Category: models.CategorySoup, Available: true, Day: "2024-05-17"},
		{ID: "2", Title: "Компот", Price: decimal.RequireFromString("60.5"), Category: models.CategoryDrink, Available: true, Day: "2024-05-17"},
	}}
	srv := httptest.NewServer(lunch.router())
	t.Cleanup(srv.Close)

	sqlDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	h := &harness{
		t:      t,
		lunch:  lunch,
		client: backend.New(srv.URL, srv.Client(), quietLogger()),
		slots:  services.NewSQLiteSlots(sqlDB),
		clock:  &clock{now: time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)},
	}
	h.restart()
	return h
}

// restart replaces the bot and its Telegram API with fresh ones that share
// the backend and the slot store.
func (h *harness) restart() {
	h.api = &fakeSender{}
	h.bot = New(h.api, h.client, h.slots, Options{Logger: quietLogger(), Now: h.clock.Now})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (h *harness) message(text string) *tgbotapi.Message {
	h.msgID++
	m := &tgbotapi.Message{
		MessageID: h.msgID,
		Chat:      &tgbotapi.Chat{ID: testChat},
		From:      &tgbotapi.User{ID: testChat, LanguageCode: "ru"},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}}
	}
	return m
}

func (h *harness) say(text string) string {
	h.t.Helper()
	h.bot.handleMessage(context.Background(), h.message(text))
	return h.api.last()
}

func (h *harness) press(messageID int, data string) {
	h.t.Helper()
	h.bot.handleCallback(context.Background(), &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: testChat, LanguageCode: "ru"},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: testChat}},
		Data:    data,
	})
}

func (h *harness) login(email string) {
	h.t.Helper()
	h.say("/login")
	h.say(email)
	require.Equal(h.t, "Вы вошли как Ann.", h.say(testPassword))
}
