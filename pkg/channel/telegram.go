package channel

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// botAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// TelegramConfig configures the Telegram adapter.
type TelegramConfig struct {
	Token string
	// RatePerSecond caps outbound API calls. Zero disables throttling.
	RatePerSecond float64
	PollTimeout   int
	Debug         bool
}

// Telegram is a Channel backed by the Telegram Bot API with long polling.
type Telegram struct {
	bot     botAPI
	limiter *rate.Limiter
	timeout int
}

// NewTelegram authenticates against the Bot API.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot: %w", err)
	}
	bot.Debug = cfg.Debug

	logrus.Infof("authorized on telegram account %s", bot.Self.UserName)
	return newTelegram(bot, cfg), nil
}

func newTelegram(bot botAPI, cfg TelegramConfig) *Telegram {
	limit := rate.Inf
	burst := 1
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
		burst = int(cfg.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 60
	}

	return &Telegram{
		bot:     bot,
		limiter: rate.NewLimiter(limit, burst),
		timeout: cfg.PollTimeout,
	}
}

func toMarkup(kb Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Token))
			}
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// Send posts a new message to chatID.
func (t *Telegram) Send(ctx context.Context, chatID int64, msg Message) (MessageRef, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return MessageRef{}, err
	}

	cfg := tgbotapi.NewMessage(chatID, msg.Text)
	cfg.ParseMode = tgbotapi.ModeMarkdown
	cfg.DisableWebPagePreview = msg.DisablePreview
	if len(msg.Keyboard) > 0 {
		cfg.ReplyMarkup = toMarkup(msg.Keyboard)
	}

	sent, err := t.bot.Send(cfg)
	if err != nil {
		return MessageRef{}, fmt.Errorf("failed to send message to %d: %w", chatID, err)
	}
	return MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// Edit replaces the text and keyboard of an existing message.
func (t *Telegram) Edit(ctx context.Context, ref MessageRef, msg Message) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	var cfg tgbotapi.EditMessageTextConfig
	if len(msg.Keyboard) > 0 {
		cfg = tgbotapi.NewEditMessageTextAndMarkup(ref.ChatID, ref.MessageID, msg.Text, toMarkup(msg.Keyboard))
	} else {
		cfg = tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, msg.Text)
	}
	cfg.ParseMode = tgbotapi.ModeMarkdown
	cfg.DisableWebPagePreview = msg.DisablePreview

	if _, err := t.bot.Request(cfg); err != nil {
		return fmt.Errorf("failed to edit message %d in %d: %w", ref.MessageID, ref.ChatID, err)
	}
	return nil
}

// Answer acknowledges a button press.
func (t *Telegram) Answer(ctx context.Context, callbackID, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := t.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback %s: %w", callbackID, err)
	}
	return nil
}

// Poll long-polls for updates and calls handle for each until ctx is done.
// Each update is handled on its own goroutine.
func (t *Telegram) Poll(ctx context.Context, handle HandlerFunc) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.timeout

	updates := t.bot.GetUpdatesChan(u)
	logrus.Infof("polling telegram updates")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			logrus.Info("stopped polling telegram updates")
			return nil
		case raw, ok := <-updates:
			if !ok {
				return nil
			}
			update, ok := convertUpdate(raw)
			if !ok {
				continue
			}
			go handle(ctx, update)
		}
	}
}

// convertUpdate maps a Bot API update to an Update. Plain text and other
// update types are ignored.
func convertUpdate(raw tgbotapi.Update) (Update, bool) {
	switch {
	case raw.CallbackQuery != nil:
		cq := raw.CallbackQuery
		if cq.From == nil {
			return Update{}, false
		}
		u := Update{
			Kind:       KindMenuChoice,
			Actor:      toActor(cq.From),
			ChatID:     cq.From.ID,
			Token:      cq.Data,
			CallbackID: cq.ID,
		}
		if cq.Message != nil && cq.Message.Chat != nil {
			u.ChatID = cq.Message.Chat.ID
			u.Ref = MessageRef{ChatID: cq.Message.Chat.ID, MessageID: cq.Message.MessageID}
		}
		return u, true

	case raw.Message != nil && raw.Message.IsCommand():
		m := raw.Message
		if m.From == nil || m.Chat == nil {
			return Update{}, false
		}
		return Update{
			Kind:    KindCommand,
			Actor:   toActor(m.From),
			ChatID:  m.Chat.ID,
			Command: m.Command(),
			Args:    strings.Fields(m.CommandArguments()),
		}, true
	}

	return Update{}, false
}

func toActor(u *tgbotapi.User) Actor {
	return Actor{ID: u.ID, FirstName: u.FirstName, Username: u.UserName}
}
