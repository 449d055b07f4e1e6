package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log zerolog.Logger
}

func openSQLite(cfg Config, log zerolog.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) FindOrCreateConversation(ctx context.Context, destination string) (Conversation, error) {
	if s == nil || s.db == nil {
		return Conversation{}, ErrDisabled
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return Conversation{}, errors.New("destination is empty")
	}

	var c Conversation
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, destination, created_at FROM conversations WHERE destination = ?`,
		destination,
	).Scan(&c.ID, &c.Destination, &created)
	if err == nil {
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		return c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Conversation{}, err
	}

	c = Conversation{ID: uuid.NewString(), Destination: destination, CreatedAt: time.Now()}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversations(id, destination, created_at) VALUES(?,?,?)
		 ON CONFLICT(destination) DO NOTHING`,
		c.ID, c.Destination, c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Conversation{}, err
	}
	// Re-read in case a concurrent insert won the conflict.
	err = s.db.QueryRowContext(ctx,
		`SELECT id, destination, created_at FROM conversations WHERE destination = ?`,
		destination,
	).Scan(&c.ID, &c.Destination, &created)
	if err != nil {
		return Conversation{}, err
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return c, nil
}

func (s *sqliteStore) HasReference(ctx context.Context, conversationID, reference string) (bool, error) {
	if s == nil || s.db == nil {
		return false, ErrDisabled
	}
	if reference == "" {
		return false, nil
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM messages WHERE conversation_id = ? AND reference = ? AND direction = 'out' LIMIT 1`,
		conversationID, reference,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *sqliteStore) AppendMessage(ctx context.Context, conversationID string, dir Direction, text string, meta MessageMeta) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages(id, conversation_id, direction, body, event_type, reference, status, error, origin_id, created_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?)`,
		uuid.NewString(), conversationID, string(dir), text,
		nullStr(meta.EventType), nullStr(meta.Reference), nullStr(meta.Status),
		nullStr(meta.Error), nullStr(meta.OriginID),
		time.Now().Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) Settings(ctx context.Context) (map[string]string, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (s *sqliteStore) SetSetting(ctx context.Context, key, value string) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("settings key is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings(key, value, updated_at) VALUES(?,?,?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) CountOutbound(ctx context.Context, since time.Time) (int, int, error) {
	if s == nil || s.db == nil {
		return 0, 0, ErrDisabled
	}
	var sent, failed int
	err := s.db.QueryRowContext(ctx,
		`SELECT
		   COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
		 FROM messages WHERE direction = 'out' AND created_at >= ?`,
		since.Format(time.RFC3339Nano),
	).Scan(&sent, &failed)
	return sent, failed, err
}

func (s *sqliteStore) CountConversations(ctx context.Context, since time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrDisabled
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations WHERE created_at >= ?`,
		since.Format(time.RFC3339Nano),
	).Scan(&n)
	return n, err
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
