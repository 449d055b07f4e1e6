package transport

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v4"
)

// telegramAdapter sends to "tg:<chat id>" destinations. It is send-only:
// this process never polls for updates.
type telegramAdapter struct {
	bot *tele.Bot
	log zerolog.Logger
}

func newTelegram(cfg TelegramConfig, log zerolog.Logger) (*telegramAdapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, err
	}
	return &telegramAdapter{bot: b, log: log}, nil
}

func (a *telegramAdapter) Close() error { return nil }

func (a *telegramAdapter) SendText(ctx context.Context, to, text string, _ SendOptions) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	rest, ok := strings.CutPrefix(strings.TrimSpace(to), "tg:")
	if !ok {
		return Result{}, fmt.Errorf("telegram: destination %q is not a tg: chat id", to)
	}
	chatID, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return Result{}, fmt.Errorf("telegram: bad chat id %q: %w", rest, err)
	}

	msg, err := a.bot.Send(tele.ChatID(chatID), text)
	if err != nil {
		return Result{}, err
	}
	return Result{ProviderID: strconv.Itoa(msg.ID)}, nil
}
