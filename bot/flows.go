package bot

import (
	"context"
	"errors"
	"time"

	"lunch-telegram/lang"
	"lunch-telegram/ordering"
	"lunch-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	flowLogin    = "login"
	flowRegister = "register"
	flowPublish  = "publish"
)

const (
	stepName        = "name"
	stepEmail       = "email"
	stepPassword    = "password"
	stepTitle       = "title"
	stepDescription = "description"
	stepPrice       = "price"
	stepCategory    = "category"
	stepAvailable   = "available"
	stepDay         = "day"
)

// flowState tracks a multi-message dialogue. Publish fields live in the
// App's draft; only sign-in fields are kept here.
type flowState struct {
	Kind  string
	Step  string
	Name  string
	Email string
}

func (c *chat) currentFlow() *flowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.flow == nil {
		return nil
	}
	f := *c.flow
	return &f
}

func (c *chat) setFlow(f *flowState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flow = f
}

func (b *Bot) startLogin(c *chat) {
	l := c.language()
	if c.app.SignedIn() {
		b.sendText(c.id, lang.T(l, "already_signed_in"))
		return
	}
	if wait := b.throttle.WaitSeconds(c.id); wait > 0 {
		b.sendText(c.id, lang.T(l, "login_throttled", wait))
		return
	}
	c.setFlow(&flowState{Kind: flowLogin, Step: stepEmail})
	b.sendText(c.id, lang.T(l, "login_email"))
}

func (b *Bot) startRegister(c *chat) {
	l := c.language()
	if c.app.SignedIn() {
		b.sendText(c.id, lang.T(l, "already_signed_in"))
		return
	}
	c.setFlow(&flowState{Kind: flowRegister, Step: stepName})
	b.sendText(c.id, lang.T(l, "register_name"))
}

func (b *Bot) startPublish(c *chat) {
	l := c.language()
	if !c.app.IsAdmin() {
		b.sendText(c.id, lang.T(l, "publish_forbidden"))
		return
	}
	c.app.ResetDraft()
	c.setFlow(&flowState{Kind: flowPublish, Step: stepTitle})
	b.sendText(c.id, lang.T(l, "publish_title"))
}

// handleFlow feeds text to the active flow. It reports false when no flow
// is active.
func (b *Bot) handleFlow(ctx context.Context, c *chat, msg *tgbotapi.Message, text string) bool {
	f := c.currentFlow()
	if f == nil {
		return false
	}
	switch f.Kind {
	case flowLogin, flowRegister:
		b.signInStep(ctx, c, f, msg, text)
	case flowPublish:
		b.publishStep(ctx, c, f, text)
	}
	return true
}

func (b *Bot) signInStep(ctx context.Context, c *chat, f *flowState, msg *tgbotapi.Message, text string) {
	l := c.language()
	if f.Step == stepPassword {
		b.deleteMessage(c.id, msg.MessageID)
	}
	if text == "" {
		b.sendText(c.id, lang.T(l, "field_required"))
		return
	}

	switch f.Step {
	case stepName:
		f.Name = text
		f.Step = stepEmail
		c.setFlow(f)
		b.sendText(c.id, lang.T(l, "login_email"))
	case stepEmail:
		f.Email = text
		f.Step = stepPassword
		c.setFlow(f)
		b.sendText(c.id, lang.T(l, "login_password"))
	case stepPassword:
		c.setFlow(nil)
		if f.Kind == flowRegister {
			b.finishRegister(ctx, c, f, text)
			return
		}
		b.finishLogin(ctx, c, f, text)
	}
}

func (b *Bot) finishLogin(ctx context.Context, c *chat, f *flowState, password string) {
	l := c.language()
	if wait := b.throttle.WaitSeconds(c.id); wait > 0 {
		b.sendText(c.id, lang.T(l, "login_throttled", wait))
		return
	}
	if err := c.app.Login(ctx, f.Email, password); err != nil {
		b.throttle.RecordFailure(c.id)
		b.logRequestError("login", c.id, err)
		b.sendText(c.id, errorText(l, err, "login_error"))
		return
	}
	b.throttle.RecordSuccess(c.id)
	b.sendText(c.id, lang.T(l, "login_ok", c.app.Session().User.Name))
}

func (b *Bot) finishRegister(ctx context.Context, c *chat, f *flowState, password string) {
	l := c.language()
	if err := c.app.Register(ctx, f.Name, f.Email, password); err != nil {
		b.logRequestError("register", c.id, err)
		b.sendText(c.id, errorText(l, err, "register_error"))
		return
	}
	b.sendText(c.id, lang.T(l, "register_ok", c.app.Session().User.Name))
}

func (b *Bot) publishStep(ctx context.Context, c *chat, f *flowState, text string) {
	l := c.language()
	draft := c.app.Draft()

	switch f.Step {
	case stepTitle:
		if text == "" {
			b.sendText(c.id, lang.T(l, "field_required"))
			return
		}
		draft.Title = text
		c.app.SetDraft(draft)
		f.Step = stepDescription
		c.setFlow(f)
		b.sendText(c.id, lang.T(l, "publish_description"))
	case stepDescription:
		if text == "-" {
			text = ""
		}
		draft.Description = text
		c.app.SetDraft(draft)
		f.Step = stepPrice
		c.setFlow(f)
		b.sendText(c.id, lang.T(l, "publish_price"))
	case stepPrice:
		if _, err := services.ParsePrice(text); err != nil {
			b.sendText(c.id, lang.T(l, "publish_price_invalid"))
			return
		}
		draft.Price = text
		c.app.SetDraft(draft)
		f.Step = stepCategory
		c.setFlow(f)
		b.send(c.id, renderPublishCategory(l))
	case stepCategory:
		b.send(c.id, renderPublishCategory(l))
	case stepAvailable:
		b.send(c.id, renderPublishAvailable(l))
	case stepDay:
		day := text
		if day == "." {
			day = c.app.Today()
		}
		if _, err := time.Parse("2006-01-02", day); err != nil {
			b.sendText(c.id, lang.T(l, "publish_day_invalid"))
			return
		}
		draft.Day = day
		c.app.SetDraft(draft)
		b.submitPublish(ctx, c, draft)
	}
}

func (b *Bot) publishCategory(c *chat, category string) {
	f := c.currentFlow()
	if f == nil || f.Kind != flowPublish || f.Step != stepCategory {
		return
	}
	draft := c.app.Draft()
	draft.Category = category
	c.app.SetDraft(draft)
	f.Step = stepAvailable
	c.setFlow(f)
	b.send(c.id, renderPublishAvailable(c.language()))
}

func (b *Bot) publishAvailable(c *chat, available bool) {
	f := c.currentFlow()
	if f == nil || f.Kind != flowPublish || f.Step != stepAvailable {
		return
	}
	draft := c.app.Draft()
	draft.Available = available
	c.app.SetDraft(draft)
	f.Step = stepDay
	c.setFlow(f)
	b.sendText(c.id, lang.T(c.language(), "publish_day", c.app.Today()))
}

// submitPublish sends the draft. On a backend failure the flow stays at
// the day step so sending the day again retries.
func (b *Bot) submitPublish(ctx context.Context, c *chat, draft ordering.PublishForm) {
	l := c.language()
	item, err := c.app.Publish(ctx, draft)
	var verr *ordering.ValidationError
	switch {
	case err == nil:
		c.setFlow(nil)
		b.sendText(c.id, lang.T(l, "publish_ok", item.Title))
	case errors.Is(err, ordering.ErrNotAdmin):
		c.setFlow(nil)
		b.sendText(c.id, lang.T(l, "publish_forbidden"))
	case errors.As(err, &verr):
		b.restartAtField(c, verr.Field)
	default:
		b.logRequestError("publish", c.id, err)
		b.sendText(c.id, errorText(l, err, "publish_error"))
	}
}

func (b *Bot) restartAtField(c *chat, field string) {
	l := c.language()
	f := &flowState{Kind: flowPublish}
	switch field {
	case "title":
		f.Step = stepTitle
		b.sendText(c.id, lang.T(l, "publish_title"))
	case "price":
		f.Step = stepPrice
		b.sendText(c.id, lang.T(l, "publish_price_invalid"))
	case "category":
		f.Step = stepCategory
		b.send(c.id, renderPublishCategory(l))
	default:
		f.Step = stepDay
		b.sendText(c.id, lang.T(l, "publish_day_invalid"))
	}
	c.setFlow(f)
}
