// Package bot is the Telegram front end. Each chat gets its own
// ordering.App; the bot turns commands and button presses into App
// operations and renders the results.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"lunch-telegram/lang"
	"lunch-telegram/ordering"
	"lunch-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const inboxSize = 32

// sender is the part of *tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Options struct {
	AdminRole   string
	DefaultLang string
	Logger      *slog.Logger
	Now         func() time.Time
}

type Bot struct {
	api      sender
	backend  ordering.Backend
	slots    services.SlotStore
	opts     Options
	log      *slog.Logger
	throttle *services.LoginThrottle

	mu    sync.Mutex
	chats map[int64]*chat
	wg    sync.WaitGroup
}

// chat is the per-chat state. Text messages are handled one at a time in
// arrival order so step flows see their answers in sequence; button
// presses run concurrently.
type chat struct {
	id    int64
	app   *ordering.App
	inbox chan *tgbotapi.Message

	once   sync.Once // session and language restored
	worker sync.Once

	mu   sync.Mutex
	lang string
	flow *flowState
}

func New(api sender, backend ordering.Backend, slots services.SlotStore, opts Options) *Bot {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if !lang.Supported(opts.DefaultLang) {
		opts.DefaultLang = lang.Ru
	}
	return &Bot{
		api:      api,
		backend:  backend,
		slots:    slots,
		opts:     opts,
		log:      opts.Logger,
		throttle: services.NewLoginThrottle(opts.Now),
		chats:    make(map[int64]*chat),
	}
}

// SetCommands registers the command menu for every catalog language.
func (b *Bot) SetCommands() error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commandList(b.opts.DefaultLang)...)); err != nil {
		return err
	}
	for _, l := range []string{lang.Ru, lang.En} {
		cfg := tgbotapi.NewSetMyCommandsWithScopeAndLanguage(tgbotapi.NewBotCommandScopeDefault(), l, commandList(l)...)
		if _, err := b.api.Request(cfg); err != nil {
			return err
		}
	}
	return nil
}

func commandList(l string) []tgbotapi.BotCommand {
	names := []string{"start", "menu", "cart", "orders", "login", "register", "logout", "publish", "language", "cancel"}
	cmds := make([]tgbotapi.BotCommand, 0, len(names))
	for _, n := range names {
		cmds = append(cmds, tgbotapi.BotCommand{Command: n, Description: lang.T(l, "cmd_"+n)})
	}
	return cmds
}

// Run handles updates until ctx is cancelled or updates is closed, then
// waits for in-flight handlers.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	defer b.wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, u)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, u tgbotapi.Update) {
	switch {
	case u.CallbackQuery != nil:
		if u.CallbackQuery.Message == nil {
			return
		}
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.handleCallback(ctx, u.CallbackQuery)
		}()
	case u.Message != nil:
		c := b.chatFor(u.Message.Chat.ID)
		c.worker.Do(func() { b.startWorker(ctx, c) })
		select {
		case c.inbox <- u.Message:
		case <-ctx.Done():
		}
	}
}

// chatFor returns the chat, creating it on first use.
func (b *Bot) chatFor(chatID int64) *chat {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.chats[chatID]; ok {
		return c
	}
	storage := services.ChatStorage{Store: b.slots, ChatID: chatID}
	c := &chat{
		id:    chatID,
		inbox: make(chan *tgbotapi.Message, inboxSize),
		app: ordering.New(b.backend, storage, ordering.Options{
			AdminRole: b.opts.AdminRole,
			Now:       b.opts.Now,
			Logger:    b.log.With("chat_id", chatID),
		}),
	}
	b.chats[chatID] = c
	return c
}

func (b *Bot) startWorker(ctx context.Context, c *chat) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-c.inbox:
				b.handleMessage(ctx, msg)
			}
		}
	}()
}

// ready restores the chat's session and language once. languageCode is
// the sender's Telegram client language.
func (b *Bot) ready(ctx context.Context, c *chat, languageCode string) {
	c.once.Do(func() {
		if err := c.app.Start(ctx); err != nil {
			b.log.Warn("restore session failed", "chat_id", c.id, "error", err)
		}
		l, _, err := services.GetChatLanguage(ctx, b.slots, c.id)
		if err != nil {
			b.log.Warn("load language failed", "chat_id", c.id, "error", err)
		}
		if !lang.Supported(l) {
			l = lang.Match(languageCode, b.opts.DefaultLang)
		}
		c.mu.Lock()
		c.lang = l
		c.mu.Unlock()
	})
}

func (c *chat) language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lang
}

func (b *Bot) setLanguage(ctx context.Context, c *chat, l string) {
	if !lang.Supported(l) {
		return
	}
	c.mu.Lock()
	c.lang = l
	c.mu.Unlock()
	if err := services.SetChatLanguage(ctx, b.slots, c.id, l); err != nil {
		b.log.Warn("save language failed", "chat_id", c.id, "error", err)
	}
}

func (b *Bot) send(chatID int64, v view) {
	msg := tgbotapi.NewMessage(chatID, v.Text)
	if v.Keyboard != nil {
		msg.ReplyMarkup = *v.Keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(chatID, view{Text: text})
}

// edit replaces an earlier bot message. "message is not modified" is
// expected when a button press changes nothing and is ignored.
func (b *Bot) edit(chatID int64, messageID int, v view) {
	var cfg tgbotapi.EditMessageTextConfig
	if v.Keyboard != nil {
		cfg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, v.Text, *v.Keyboard)
	} else {
		cfg = tgbotapi.NewEditMessageText(chatID, messageID, v.Text)
	}
	if _, err := b.api.Send(cfg); err != nil {
		if strings.Contains(err.Error(), "not modified") {
			return
		}
		b.log.Error("edit failed", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Debug("answer callback failed", "error", err)
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Warn("delete message failed", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}
