package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is the in-process store: tests, and deployments that accept losing
// the dedup log on restart.
type Memory struct {
	mu            sync.Mutex
	conversations map[string]Conversation // destination -> conversation
	messages      map[string][]LoggedMessage
	settings      map[string]string
}

// LoggedMessage is one message-log row (exported for test inspection).
type LoggedMessage struct {
	Direction Direction
	Body      string
	Meta      MessageMeta
	At        time.Time
}

func NewMemory() *Memory {
	return &Memory{
		conversations: make(map[string]Conversation),
		messages:      make(map[string][]LoggedMessage),
		settings:      make(map[string]string),
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) FindOrCreateConversation(_ context.Context, destination string) (Conversation, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return Conversation{}, errors.New("destination is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.conversations[destination]; ok {
		return c, nil
	}
	c := Conversation{ID: uuid.NewString(), Destination: destination, CreatedAt: time.Now()}
	m.conversations[destination] = c
	return c, nil
}

func (m *Memory) HasReference(_ context.Context, conversationID, reference string) (bool, error) {
	if reference == "" {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages[conversationID] {
		if msg.Direction == DirectionOut && msg.Meta.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) AppendMessage(_ context.Context, conversationID string, dir Direction, text string, meta MessageMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[conversationID] = append(m.messages[conversationID], LoggedMessage{
		Direction: dir,
		Body:      text,
		Meta:      meta,
		At:        time.Now(),
	})
	return nil
}

func (m *Memory) Settings(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.settings))
	for k, v := range m.settings {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) SetSetting(_ context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("settings key is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *Memory) CountOutbound(_ context.Context, since time.Time) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sent, failed int
	for _, msgs := range m.messages {
		for _, msg := range msgs {
			if msg.Direction != DirectionOut || msg.At.Before(since) {
				continue
			}
			switch msg.Meta.Status {
			case StatusSent:
				sent++
			case StatusFailed:
				failed++
			}
		}
	}
	return sent, failed, nil
}

func (m *Memory) CountConversations(_ context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.conversations {
		if !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// MessagesFor returns a copy of the log for a destination's conversation.
// Test helper; not part of the Store interface.
func (m *Memory) MessagesFor(destination string) []LoggedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[destination]
	if !ok {
		return nil
	}
	return append([]LoggedMessage(nil), m.messages[c.ID]...)
}
