// Package telegram is the dispatch layer: it maps Telegram updates onto flow
// events and renders the engine's actions back into API calls.
package telegram

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/olgafebr/mira/internal/flow"
	"github.com/olgafebr/mira/internal/observability"
)

const textNextStep = "Выбери следующий шаг:"
const textDeclineToast = "Хорошо 🤍"

// Sender is the slice of *tgbotapi.BotAPI the renderer needs. Tests drop in
// a fake and assert on the chattables it receives.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api        *tgbotapi.BotAPI
	sender     Sender
	engine     *flow.Engine
	metrics    *observability.Metrics
	cardsDir   string
	consultURL string
	sleep      func(time.Duration)
}

func New(api *tgbotapi.BotAPI, engine *flow.Engine, metrics *observability.Metrics, cardsDir, consultURL string) *Bot {
	return &Bot{
		api:        api,
		sender:     api,
		engine:     engine,
		metrics:    metrics,
		cardsDir:   cardsDir,
		consultURL: consultURL,
		sleep:      time.Sleep,
	}
}

// Run consumes long-polling updates until ctx is cancelled. Each update is
// handled on its own goroutine; per-user ordering is Telegram's concern, and
// all shared state behind the engine is locked.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	traceID := uuid.NewString()

	switch {
	case update.CallbackQuery != nil:
		b.metrics.Update("callback")
		b.handleCallback(traceID, update.CallbackQuery)
	case update.Message != nil:
		b.metrics.Update("message")
		b.handleMessage(traceID, update.Message)
	default:
		return
	}

	b.metrics.SetKnownUsers(b.engine.States().Count())
}

func (b *Bot) handleMessage(traceID string, msg *tgbotapi.Message) {
	userID := msg.Chat.ID
	if msg.From != nil {
		userID = msg.From.ID
	}

	ev := mapMessage(userID, msg.Text)
	b.perform(traceID, msg.Chat.ID, b.engine.Handle(ev))
}

func (b *Bot) handleCallback(traceID string, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		b.request(traceID, tgbotapi.NewCallback(cq.ID, ""))
		return
	}
	chatID := cq.Message.Chat.ID

	var ev flow.Event
	toast := ""
	switch cq.Data {
	case callbackOfferYes:
		ev = flow.Event{UserID: cq.From.ID, Kind: flow.EventOfferAccept}
	case callbackOfferNo:
		ev = flow.Event{UserID: cq.From.ID, Kind: flow.EventOfferDecline}
		toast = textDeclineToast
	default:
		b.request(traceID, tgbotapi.NewCallback(cq.ID, ""))
		return
	}

	b.request(traceID, tgbotapi.NewCallback(cq.ID, toast))
	b.perform(traceID, chatID, b.engine.Handle(ev))
}

// mapMessage classifies inbound text. Anything that is not a command or a
// known menu label is free text for the state machine to interpret.
func mapMessage(userID int64, text string) flow.Event {
	switch {
	case strings.HasPrefix(text, "/start"):
		return flow.Event{UserID: userID, Kind: flow.EventStart}
	case text == labelDayCard:
		return flow.Event{UserID: userID, Kind: flow.EventDayCard}
	case text == labelResponseCard:
		return flow.Event{UserID: userID, Kind: flow.EventResponseCard}
	case text == labelAskQuestion:
		return flow.Event{UserID: userID, Kind: flow.EventAskQuestion}
	default:
		return flow.Event{UserID: userID, Kind: flow.EventFreeText, Text: text}
	}
}

func (b *Bot) perform(traceID string, chatID int64, actions []flow.Action) {
	for _, a := range actions {
		switch act := a.(type) {
		case flow.Pause:
			b.sleep(act.For)
		case flow.Say:
			msg := tgbotapi.NewMessage(chatID, act.Text)
			if kb := b.keyboard(act.Keyboard); kb != nil {
				msg.ReplyMarkup = kb
			}
			b.send(traceID, msg)
		case flow.Deal:
			b.deal(traceID, chatID, act)
		}
	}
}

// deal sends one card. A resolvable image becomes a photo with an HTML
// caption; otherwise the reply degrades to text with an explicit warning, the
// same way the bot has always reported broken catalog entries.
func (b *Bot) deal(traceID string, chatID int64, d flow.Deal) {
	caption := renderCaption(d.Prefix, d.Card.Name, d.Description)

	path := filepath.Join(b.cardsDir, d.Card.Image)
	if d.Card.Image == "" || !fileExists(path) {
		note := "\n\n(⚠️ Не указано поле image)"
		if d.Card.Image != "" {
			note = fmt.Sprintf("\n\n(⚠️ Нет файла изображения: %s)", d.Card.Image)
		}
		msg := tgbotapi.NewMessage(chatID, caption+note)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = menuKeyboard()
		b.send(traceID, msg)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	b.send(traceID, photo)

	// Photos replace the reply keyboard on some mobile clients, so re-send
	// the menu right after.
	follow := tgbotapi.NewMessage(chatID, textNextStep)
	follow.ReplyMarkup = menuKeyboard()
	b.send(traceID, follow)
}

func (b *Bot) keyboard(k flow.Keyboard) interface{} {
	switch k {
	case flow.KeyboardMenu:
		return menuKeyboard()
	case flow.KeyboardOffer:
		return offerKeyboard()
	case flow.KeyboardConsult:
		return consultKeyboard(b.consultURL)
	default:
		return nil
	}
}

func (b *Bot) send(traceID string, c tgbotapi.Chattable) {
	if _, err := b.sender.Send(c); err != nil {
		b.metrics.SendError()
		log.Printf("send failed trace=%s: %v", traceID, err)
	}
}

func (b *Bot) request(traceID string, c tgbotapi.Chattable) {
	if _, err := b.sender.Request(c); err != nil {
		b.metrics.SendError()
		log.Printf("callback ack failed trace=%s: %v", traceID, err)
	}
}

func renderCaption(prefix, name, desc string) string {
	return strings.TrimSpace(fmt.Sprintf("%s<b>%s</b>\n\n%s", prefix, name, strings.TrimSpace(desc)))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
