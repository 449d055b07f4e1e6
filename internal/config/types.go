package config

// Config is the file-backed process configuration.
//
// All durations are Go duration strings (e.g. "500ms", "8s", "24h").
// Runtime-editable settings (policy override, allowlists, templates, ...)
// live in the settings store instead and are assembled into a Snapshot on
// every dispatch; see snapshot.go.
type Config struct {
	// Production is the explicit production marker. The outbound policy
	// default keys off this flag only; environment names like "prod" or
	// "staging" are deliberately not consulted because they are unreliable.
	Production bool `json:"production"`

	// Workspace identifies this deployment towards the origin resolver.
	Workspace string `json:"workspace,omitempty"`

	Logging   LoggingConfig   `json:"logging"`
	HTTP      HTTPConfig      `json:"http,omitempty"`
	Storage   StorageConfig   `json:"storage"`
	Transport TransportConfig `json:"transport"`
	Dispatch  DispatchConfig  `json:"dispatch,omitempty"`
	Summary   SummaryConfig   `json:"summary,omitempty"`
}

type LoggingConfig struct {
	Level   string `json:"level,omitempty"`   // default: "info"
	Console bool   `json:"console,omitempty"` // pretty console output instead of JSON
}

// HTTPConfig controls the trigger/health endpoint.
// Prefer binding to localhost; the endpoint carries no authentication.
type HTTPConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default: "127.0.0.1:8710"
}

type StorageConfig struct {
	Driver      string `json:"driver"` // "sqlite" | "memory" | "none"
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

type TransportConfig struct {
	Driver   string         `json:"driver"` // "provider" | "telegram"
	Provider ProviderConfig `json:"provider,omitempty"`
	Telegram TelegramConfig `json:"telegram,omitempty"`
}

// ProviderConfig points at the WhatsApp gateway REST API.
type ProviderConfig struct {
	BaseURL       string `json:"base_url"`
	Token         string `json:"token,omitempty"` // do not log
	DefaultOrigin string `json:"default_origin,omitempty"`
	Timeout       string `json:"timeout,omitempty"` // default: "8s"
}

type TelegramConfig struct {
	Token string `json:"token"`
}

// DispatchConfig tunes the dispatch coordinator.
type DispatchConfig struct {
	// RatePerSec paces transport sends across all destinations.
	RatePerSec int `json:"rate_per_sec,omitempty"` // default: 3

	// BurstLimit/BurstWindow guard against notification storms per event
	// type; a denied burst is dropped with a warning, never queued.
	BurstLimit  int    `json:"burst_limit,omitempty"`  // default: 30
	BurstWindow string `json:"burst_window,omitempty"` // default: "1m"
}

// SummaryConfig controls the periodic sales summary.
type SummaryConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule,omitempty"` // cron expression, default: "0 9 * * *"
	Period   string `json:"period,omitempty"`   // reporting lookback, default: "24h"
}
