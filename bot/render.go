package bot

import (
	"fmt"
	"strings"

	"lunch-telegram/lang"
	"lunch-telegram/models"
	"lunch-telegram/ordering"
	"lunch-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

const categoriesPerRow = 4

// Callback data prefixes.
const (
	cbMenu     = "menu:"     // menu:<category>, empty for all
	cbAdd      = "add:"      // add:<item id>
	cbQty      = "qty:"      // qty:<item id>:<quantity>
	cbOrder    = "order"
	cbLang     = "lang:"     // lang:<code>
	cbPubCat   = "pubcat:"   // pubcat:<category>, empty for none
	cbPubAvail = "pubavail:" // pubavail:1 or pubavail:0
	cbNoop     = "noop"
)

// view is one rendered message. Keyboard is nil for plain text.
type view struct {
	Text     string
	Keyboard *tgbotapi.InlineKeyboardMarkup
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func inline(rows [][]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func renderStart(l string, sess ordering.Session, isAdmin bool) view {
	if sess.User == nil {
		return view{Text: lang.T(l, "start_guest")}
	}
	text := lang.T(l, "start_user", sess.User.Name, sess.User.Email)
	if isAdmin {
		text += "\n" + lang.T(l, "start_admin")
	}
	return view{Text: text}
}

func categoryRows(l, selected, prefix string, withAll bool) [][]tgbotapi.InlineKeyboardButton {
	keys := models.Categories
	if withAll {
		keys = append([]string{""}, keys...)
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range keys {
		label := lang.Category(l, c)
		if c == selected && withAll {
			label = "• " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, prefix+c))
		if len(row) == categoriesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func renderMenu(l string, v ordering.MenuView) view {
	rows := categoryRows(l, v.Category, cbMenu, true)
	if v.Loading && !v.Loaded {
		return view{Text: lang.T(l, "menu_loading"), Keyboard: inline(rows)}
	}

	var sb strings.Builder
	sb.WriteString(lang.T(l, "menu_title", lang.Category(l, v.Category)))
	if len(v.Items) == 0 {
		sb.WriteString("\n\n")
		sb.WriteString(lang.T(l, "menu_empty"))
		return view{Text: sb.String(), Keyboard: inline(rows)}
	}
	for _, it := range v.Items {
		sb.WriteString("\n\n")
		sb.WriteString(it.Title)
		if it.Category != "" {
			sb.WriteString(" #" + it.Category)
		}
		if it.Description != "" {
			sb.WriteString("\n" + it.Description)
		}
		sb.WriteString("\n" + money(it.Price) + " ₽")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "btn_add", it.Title), cbAdd+it.ID.String()),
		))
	}
	return view{Text: sb.String(), Keyboard: inline(rows)}
}

// renderCart shows the lines with −/+ buttons. The decrement never goes
// below 1; the cart only empties after an order.
func renderCart(l string, lines []services.CartLine, total decimal.Decimal, canOrder, signedIn bool) view {
	var sb strings.Builder
	sb.WriteString(lang.T(l, "cart_title"))
	if len(lines) == 0 {
		sb.WriteString("\n\n" + lang.T(l, "cart_empty"))
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, line := range lines {
		fmt.Fprintf(&sb, "\n\n%s\n%s ₽ × %d", line.Title, money(line.Price), line.Quantity)
		dec := line.Quantity - 1
		if dec < 1 {
			dec = 1
		}
		id := line.ID.String()
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("−", fmt.Sprintf("%s%s:%d", cbQty, id, dec)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s ×%d", line.Title, line.Quantity), cbNoop),
			tgbotapi.NewInlineKeyboardButtonData("+", fmt.Sprintf("%s%s:%d", cbQty, id, line.Quantity+1)),
		))
	}
	sb.WriteString("\n\n" + lang.T(l, "cart_total", money(total)))
	if canOrder {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "btn_order"), cbOrder),
		))
	}
	if !signedIn {
		sb.WriteString("\n" + lang.T(l, "cart_login_hint"))
	}
	return view{Text: sb.String(), Keyboard: inline(rows)}
}

const orderTimeLayout = "02.01.2006 15:04"

func renderOrders(l string, orders []models.Order, signedIn bool) view {
	if !signedIn {
		return view{Text: lang.T(l, "orders_login_hint")}
	}
	if len(orders) == 0 {
		return view{Text: lang.T(l, "orders_empty")}
	}
	var sb strings.Builder
	sb.WriteString(lang.T(l, "orders_title"))
	for _, o := range orders {
		parts := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			parts = append(parts, fmt.Sprintf("%s×%d", it.Title, it.Quantity))
		}
		fmt.Fprintf(&sb, "\n\n#%s · %s · %s ₽\n%s",
			o.ID, o.CreatedAt.Format(orderTimeLayout), money(o.Total), strings.Join(parts, ", "))
	}
	return view{Text: sb.String()}
}

func renderLanguagePicker() view {
	return view{
		Text: lang.T(lang.Ru, "choose_lang"),
		Keyboard: inline([][]tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Русский", cbLang+lang.Ru),
			tgbotapi.NewInlineKeyboardButtonData("English", cbLang+lang.En),
		)}),
	}
}

func renderPublishCategory(l string) view {
	rows := categoryRows(l, "", cbPubCat, false)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "cat_none"), cbPubCat),
	))
	return view{Text: lang.T(l, "publish_category"), Keyboard: inline(rows)}
}

func renderPublishAvailable(l string) view {
	return view{
		Text: lang.T(l, "publish_available"),
		Keyboard: inline([][]tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "yes"), cbPubAvail+"1"),
			tgbotapi.NewInlineKeyboardButtonData(lang.T(l, "no"), cbPubAvail+"0"),
		)}),
	}
}

// String renders the view for golden files.
func (v view) String() string {
	var sb strings.Builder
	sb.WriteString(v.Text)
	sb.WriteString("\n")
	if v.Keyboard == nil {
		return sb.String()
	}
	sb.WriteString("---\n")
	for _, row := range v.Keyboard.InlineKeyboard {
		for i, btn := range row {
			if i > 0 {
				sb.WriteString(" ")
			}
			data := ""
			if btn.CallbackData != nil {
				data = *btn.CallbackData
			}
			fmt.Fprintf(&sb, "[%s|%s]", btn.Text, data)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
