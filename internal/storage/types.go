package storage

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "sqlite": SQLite database file
//   - "memory": in-process store (tests, ephemeral runs)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Message statuses recorded for outbound entries.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

type Conversation struct {
	ID          string
	Destination string
	CreatedAt   time.Time
}

// MessageMeta is the structured part of a log entry. Keep it compact and
// schema-stable.
type MessageMeta struct {
	EventType string
	Reference string
	Status    string
	Error     string
	OriginID  string
}

// Store is the persistence API used by the dispatcher and the config layer.
type Store interface {
	// FindOrCreateConversation returns the conversation for a destination,
	// creating it on first contact.
	FindOrCreateConversation(ctx context.Context, destination string) (Conversation, error)

	// HasReference reports whether an outbound message with the given event
	// reference already exists in the conversation.
	HasReference(ctx context.Context, conversationID, reference string) (bool, error)

	AppendMessage(ctx context.Context, conversationID string, dir Direction, text string, meta MessageMeta) error

	// Settings returns all settings rows.
	Settings(ctx context.Context) (map[string]string, error)
	SetSetting(ctx context.Context, key, value string) error

	// CountOutbound tallies outbound log entries since the given time.
	CountOutbound(ctx context.Context, since time.Time) (sent, failed int, err error)
	// CountConversations tallies conversations created since the given time.
	CountConversations(ctx context.Context, since time.Time) (int, error)

	Close() error
}
