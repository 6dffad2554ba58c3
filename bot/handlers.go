package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"lunch-telegram/backend"
	"lunch-telegram/lang"
	"lunch-telegram/models"
	"lunch-telegram/ordering"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	c := b.chatFor(msg.Chat.ID)
	languageCode := ""
	if msg.From != nil {
		languageCode = msg.From.LanguageCode
	}
	b.ready(ctx, c, languageCode)

	text := strings.TrimSpace(msg.Text)
	if msg.IsCommand() {
		cmd := msg.Command()
		if cmd == "cancel" {
			b.handleCancel(c)
			return
		}
		c.setFlow(nil)
		b.handleCommand(ctx, c, cmd)
		return
	}
	if b.handleFlow(ctx, c, msg, text) {
		return
	}
	b.sendText(c.id, lang.T(c.language(), "unknown_command"))
}

func (b *Bot) handleCommand(ctx context.Context, c *chat, cmd string) {
	switch cmd {
	case "start":
		b.send(c.id, renderStart(c.language(), c.app.Session(), c.app.IsAdmin()))
	case "menu":
		b.handleMenu(ctx, c, 0, "")
	case "cart":
		b.send(c.id, b.cartView(c))
	case "orders":
		b.send(c.id, renderOrders(c.language(), c.app.Orders(), c.app.SignedIn()))
	case "login":
		b.startLogin(c)
	case "register":
		b.startRegister(c)
	case "logout":
		b.handleLogout(ctx, c)
	case "publish":
		b.startPublish(c)
	case "language":
		b.send(c.id, renderLanguagePicker())
	default:
		b.sendText(c.id, lang.T(c.language(), "unknown_command"))
	}
}

func (b *Bot) handleCancel(c *chat) {
	l := c.language()
	if c.currentFlow() == nil {
		b.sendText(c.id, lang.T(l, "nothing_to_cancel"))
		return
	}
	c.setFlow(nil)
	c.app.ResetDraft()
	b.sendText(c.id, lang.T(l, "cancelled"))
}

func (b *Bot) handleLogout(ctx context.Context, c *chat) {
	l := c.language()
	if !c.app.SignedIn() {
		b.sendText(c.id, lang.T(l, "not_signed_in"))
		return
	}
	c.app.Logout(ctx)
	b.sendText(c.id, lang.T(l, "logout_ok"))
}

// handleMenu loads the menu for category. With messageID 0 a new message
// is sent; otherwise that message is edited in place.
func (b *Bot) handleMenu(ctx context.Context, c *chat, messageID int, category string) {
	l := c.language()
	if messageID == 0 {
		msg := tgbotapi.NewMessage(c.id, lang.T(l, "menu_loading"))
		sent, err := b.api.Send(msg)
		if err != nil {
			b.log.Error("send failed", "chat_id", c.id, "error", err)
			return
		}
		messageID = sent.MessageID
	}

	_, err := c.app.LoadMenu(ctx, category)
	if errors.Is(err, ordering.ErrStaleMenu) {
		return
	}
	v := renderMenu(l, c.app.Menu())
	if err != nil {
		b.logRequestError("load menu", c.id, err)
		v.Text = lang.T(l, "menu_failed") + "\n\n" + v.Text
	}
	b.edit(c.id, messageID, v)
}

func (b *Bot) cartView(c *chat) view {
	return renderCart(c.language(), c.app.CartLines(), c.app.CartTotal(), c.app.CanPlaceOrder(), c.app.SignedIn())
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	c := b.chatFor(cq.Message.Chat.ID)
	languageCode := ""
	if cq.From != nil {
		languageCode = cq.From.LanguageCode
	}
	b.ready(ctx, c, languageCode)
	l := c.language()
	msgID := cq.Message.MessageID
	data := cq.Data

	switch {
	case strings.HasPrefix(data, cbMenu):
		b.answer(cq.ID, "")
		b.handleMenu(ctx, c, msgID, strings.TrimPrefix(data, cbMenu))

	case strings.HasPrefix(data, cbAdd):
		line, err := c.app.AddMenuItem(models.ID(strings.TrimPrefix(data, cbAdd)))
		if err != nil {
			b.answer(cq.ID, lang.T(l, "item_unknown"))
			return
		}
		b.answer(cq.ID, lang.T(l, "item_added", line.Title, line.Quantity))

	case strings.HasPrefix(data, cbQty):
		id, qty, ok := parseQty(data)
		b.answer(cq.ID, "")
		if !ok {
			return
		}
		c.app.ChangeQuantity(id, qty)
		b.edit(c.id, msgID, b.cartView(c))

	case data == cbOrder:
		b.handleOrder(ctx, c, cq)

	case strings.HasPrefix(data, cbLang):
		b.setLanguage(ctx, c, strings.TrimPrefix(data, cbLang))
		l = c.language()
		b.answer(cq.ID, lang.T(l, "lang_set"))
		b.edit(c.id, msgID, view{Text: lang.T(l, "lang_set")})

	case strings.HasPrefix(data, cbPubCat):
		b.answer(cq.ID, "")
		b.publishCategory(c, strings.TrimPrefix(data, cbPubCat))

	case strings.HasPrefix(data, cbPubAvail):
		b.answer(cq.ID, "")
		b.publishAvailable(c, strings.TrimPrefix(data, cbPubAvail) == "1")

	default:
		b.answer(cq.ID, "")
	}
}

// parseQty reads qty:<id>:<n>. The id may itself contain ':'. Quantities
// below 1 are raised to 1.
func parseQty(data string) (models.ID, int, bool) {
	rest := strings.TrimPrefix(data, cbQty)
	i := strings.LastIndex(rest, ":")
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(rest[i+1:])
	if err != nil {
		return "", 0, false
	}
	if n < 1 {
		n = 1
	}
	return models.ID(rest[:i]), n, true
}

func (b *Bot) handleOrder(ctx context.Context, c *chat, cq *tgbotapi.CallbackQuery) {
	l := c.language()
	if !c.app.CanPlaceOrder() {
		b.answer(cq.ID, lang.T(l, "cart_login_hint"))
		return
	}
	b.answer(cq.ID, "")

	order, err := c.app.PlaceOrder(ctx)
	if err != nil {
		b.logRequestError("place order", c.id, err)
		b.sendText(c.id, errorText(l, err, "order_error"))
		b.edit(c.id, cq.Message.MessageID, b.cartView(c))
		return
	}
	b.edit(c.id, cq.Message.MessageID, view{Text: lang.T(l, "order_placed", order.ID.String(), money(order.Total))})
}

// errorText is the server's message when it sent one, else the localised
// fallback for the operation.
func errorText(l string, err error, fallbackKey string) string {
	if detail, ok := backend.Detail(err); ok {
		return detail
	}
	return lang.T(l, fallbackKey)
}

func (b *Bot) logRequestError(op string, chatID int64, err error) {
	if errors.Is(err, backend.ErrTransport) {
		b.log.Error(op+" failed", "chat_id", chatID, "error", err)
		return
	}
	b.log.Info(op+" rejected", "chat_id", chatID, "error", err)
}
