package channel

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeBot struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	stopped  bool
	err      error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: 42}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBot) StopReceivingUpdates() {
	f.stopped = true
}

func TestTelegram_Send(t *testing.T) {
	bot := &fakeBot{}
	tg := newTelegram(bot, TelegramConfig{})

	ref, err := tg.Send(context.Background(), 777, Message{
		Text: "*hi*",
		Keyboard: Keyboard{
			Row(Callback("🏠 Главное меню", "main_menu")),
			Row(Link("📞 Тренер", "https://t.me/coach")),
		},
		DisablePreview: true,
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if ref.ChatID != 777 || ref.MessageID != 42 {
		t.Errorf("Send() ref = %+v", ref)
	}

	cfg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected MessageConfig, got %T", bot.sent[0])
	}
	if cfg.ParseMode != tgbotapi.ModeMarkdown || !cfg.DisableWebPagePreview {
		t.Errorf("unexpected message options: %+v", cfg)
	}

	markup, ok := cfg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("expected inline keyboard, got %T", cfg.ReplyMarkup)
	}
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(markup.InlineKeyboard))
	}
	if data := markup.InlineKeyboard[0][0].CallbackData; data == nil || *data != "main_menu" {
		t.Errorf("callback data = %v", data)
	}
	if url := markup.InlineKeyboard[1][0].URL; url == nil || *url != "https://t.me/coach" {
		t.Errorf("url = %v", url)
	}
}

func TestTelegram_SendError(t *testing.T) {
	bot := &fakeBot{err: errors.New("forbidden")}
	tg := newTelegram(bot, TelegramConfig{})

	if _, err := tg.Send(context.Background(), 1, Message{Text: "x"}); err == nil {
		t.Error("expected error")
	}
}

func TestTelegram_EditAndAnswer(t *testing.T) {
	bot := &fakeBot{}
	tg := newTelegram(bot, TelegramConfig{RatePerSecond: 30})
	ctx := context.Background()

	if err := tg.Edit(ctx, MessageRef{ChatID: 1, MessageID: 9}, Message{Text: "done"}); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if err := tg.Answer(ctx, "cb-1", ""); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	edit, ok := bot.requests[0].(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("expected EditMessageTextConfig, got %T", bot.requests[0])
	}
	if edit.MessageID != 9 || edit.Text != "done" || edit.ReplyMarkup != nil {
		t.Errorf("unexpected edit: %+v", edit)
	}
	if _, ok := bot.requests[1].(tgbotapi.CallbackConfig); !ok {
		t.Errorf("expected CallbackConfig, got %T", bot.requests[1])
	}
}

func TestConvertUpdate(t *testing.T) {
	user := &tgbotapi.User{ID: 5, FirstName: "Ivan", UserName: "ivan"}

	command := tgbotapi.Update{Message: &tgbotapi.Message{
		From:     user,
		Chat:     &tgbotapi.Chat{ID: 5},
		Text:     "/start msk_sk8cool",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}}
	u, ok := convertUpdate(command)
	if !ok {
		t.Fatal("expected command update")
	}
	if u.Kind != KindCommand || u.Command != "start" || len(u.Args) != 1 || u.Args[0] != "msk_sk8cool" {
		t.Errorf("command update = %+v", u)
	}

	callback := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    user,
		Data:    "park_park1",
		Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: 5}},
	}}
	u, ok = convertUpdate(callback)
	if !ok {
		t.Fatal("expected menu choice update")
	}
	if u.Kind != KindMenuChoice || u.Token != "park_park1" || u.Ref.MessageID != 10 || u.Actor.Username != "ivan" {
		t.Errorf("menu update = %+v", u)
	}

	text := tgbotapi.Update{Message: &tgbotapi.Message{From: user, Chat: &tgbotapi.Chat{ID: 5}, Text: "hello"}}
	if _, ok := convertUpdate(text); ok {
		t.Error("plain text should be ignored")
	}
}

func TestTelegram_Poll(t *testing.T) {
	bot := &fakeBot{updates: make(chan tgbotapi.Update, 1)}
	tg := newTelegram(bot, TelegramConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan Update, 1)

	done := make(chan error, 1)
	go func() {
		done <- tg.Poll(ctx, func(ctx context.Context, u Update) { got <- u })
	}()

	bot.updates <- tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID: "cb", From: &tgbotapi.User{ID: 1}, Data: "main_menu",
	}}

	select {
	case u := <-got:
		if u.Token != "main_menu" {
			t.Errorf("token = %s", u.Token)
		}
	case <-time.After(time.Second):
		t.Fatal("update was not dispatched")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Poll() error = %v", err)
	}
	if !bot.stopped {
		t.Error("expected polling to be stopped")
	}
}
