package gateway

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/mpetrov/chipsync/internal/models"
	"github.com/mpetrov/chipsync/internal/services"
)

// Telegram routes bot updates into the gateway and sends the results back.
// Web-app payloads arrive as web_app_data messages; everything else is a
// handful of commands.
type Telegram struct {
	bot      *tgbotapi.BotAPI
	gw       *Gateway
	admin    *services.AdminService
	webApp   string
	casesApp string
	log      zerolog.Logger
}

func NewTelegram(bot *tgbotapi.BotAPI, gw *Gateway, admin *services.AdminService, webAppURL, casesAppURL string, log zerolog.Logger) *Telegram {
	return &Telegram{
		bot:      bot,
		gw:       gw,
		admin:    admin,
		webApp:   webAppURL,
		casesApp: casesAppURL,
		log:      log.With().Str("component", "telegram").Logger(),
	}
}

// Run long-polls for updates until the context is cancelled.
func (t *Telegram) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := t.bot.GetUpdatesChan(cfg)

	t.log.Info().Str("username", t.bot.Self.UserName).Msg("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(ctx, update)
		}
	}
}

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	switch {
	case msg.WebAppData != nil:
		t.handleWebAppData(ctx, msg)
	case msg.IsCommand():
		t.handleCommand(ctx, msg)
	}
}

func (t *Telegram) handleWebAppData(ctx context.Context, msg *tgbotapi.Message) {
	dataMsg, notification := t.gw.OnIncomingAction(ctx, msg.From.ID, msg.WebAppData.Data)

	if dataMsg != "" {
		t.send(tgbotapi.NewMessage(msg.Chat.ID, dataMsg))
	}
	if notification != "" {
		t.reply(msg, notification)
	}
}

func (t *Telegram) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Hi! Pick an action:")
		if kb, ok := t.mainKeyboard(); ok {
			reply.ReplyMarkup = kb
		}
		t.send(reply)
	case "reset_balance":
		count, err := t.admin.ResetBalances(ctx, msg.From.ID)
		if errors.Is(err, services.ErrNotAuthorized) {
			t.reply(msg, "You are not allowed to run this command.")
			return
		}
		if err != nil {
			t.log.Error().Err(err).Msg("balance reset failed")
			t.reply(msg, fmt.Sprintf("Something went wrong: %v", err))
			return
		}
		t.reply(msg, fmt.Sprintf("Reset %d accounts to %d coins.", count, models.DefaultBalance))
	}
}

// mainKeyboard builds the reply keyboard with the web-app buttons. Without
// a configured web-app URL there is nothing to open, so no keyboard.
func (t *Telegram) mainKeyboard() (tgbotapi.ReplyKeyboardMarkup, bool) {
	if t.webApp == "" {
		return tgbotapi.ReplyKeyboardMarkup{}, false
	}

	rows := [][]tgbotapi.KeyboardButton{
		{{Text: "🎰 Open casino", WebApp: &tgbotapi.WebAppInfo{URL: t.webApp}}},
	}
	if t.casesApp != "" {
		rows = append(rows, []tgbotapi.KeyboardButton{
			{Text: "📦 Open cases", WebApp: &tgbotapi.WebAppInfo{URL: t.casesApp}},
		})
	}
	return tgbotapi.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}, true
}

func (t *Telegram) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	t.send(reply)
}

func (t *Telegram) send(msg tgbotapi.MessageConfig) {
	if _, err := t.bot.Send(msg); err != nil {
		t.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("failed to send message")
	}
}
