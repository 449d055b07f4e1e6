// Package transport delivers message text to a destination over a concrete
// messaging channel. Two adapters exist: the WhatsApp gateway REST client
// and a Telegram adapter for "tg:<chat id>" destinations.
package transport

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SendOptions carry per-send parameters. OriginID selects the sending line;
// empty means the adapter's configured default.
type SendOptions struct {
	OriginID string
}

type Result struct {
	ProviderID string
}

type Transport interface {
	SendText(ctx context.Context, to, text string, opt SendOptions) (Result, error)
	Close() error
}

// TemplateSender is implemented by transports that can send provider-side
// structured templates with an ordered parameter list. Callers fall back to
// SendText when the transport lacks it.
type TemplateSender interface {
	SendTemplate(ctx context.Context, to, template string, params []string, opt SendOptions) (Result, error)
}

type Config struct {
	Driver   string
	Provider ProviderConfig
	Telegram TelegramConfig
}

// ProviderConfig points at the WhatsApp gateway.
type ProviderConfig struct {
	BaseURL       string
	Token         string
	DefaultOrigin string
	Timeout       time.Duration // 0 means defaultSendTimeout
}

type TelegramConfig struct {
	Token string
}

// Open initializes the configured transport.
func Open(cfg Config, log zerolog.Logger) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "provider", "whatsapp":
		return newProvider(cfg.Provider, log)
	case "telegram":
		return newTelegram(cfg.Telegram, log)
	default:
		return nil, errors.New("unknown transport driver: " + cfg.Driver)
	}
}
