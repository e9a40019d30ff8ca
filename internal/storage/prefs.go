package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ChatPrefs holds the per-chat settings that survive between messages. Only
// the chosen style lives here; generation jobs themselves are never stored.
type ChatPrefs struct {
	StyleTitle string
	StyleName  string
}

// PrefsStore persists ChatPrefs keyed by Telegram chat id.
type PrefsStore interface {
	Get(ctx context.Context, chatID int64) (ChatPrefs, bool, error)
	Set(ctx context.Context, chatID int64, prefs ChatPrefs) error
}

// SQLExecutor defines the contract the Postgres store needs from a pgx pool.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

const (
	qCreatePrefs = `CREATE TABLE IF NOT EXISTS chat_prefs (
		chat_id BIGINT PRIMARY KEY,
		style_title TEXT NOT NULL,
		style_name TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	qSelectPrefs = `SELECT style_title, style_name FROM chat_prefs WHERE chat_id = $1`
	qUpsertPrefs = `INSERT INTO chat_prefs (chat_id, style_title, style_name, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (chat_id) DO UPDATE
		SET style_title = EXCLUDED.style_title,
		    style_name = EXCLUDED.style_name,
		    updated_at = now()`
)

// PostgresStore keeps chat preferences in Postgres.
type PostgresStore struct {
	sql SQLExecutor
}

// NewPostgresStore wraps a SQL executor. EnsureSchema must run once before use.
func NewPostgresStore(sql SQLExecutor) *PostgresStore {
	return &PostgresStore{sql: sql}
}

// EnsureSchema creates the preferences table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, qCreatePrefs)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, chatID int64) (ChatPrefs, bool, error) {
	var prefs ChatPrefs
	row := s.sql.QueryRow(ctx, qSelectPrefs, chatID)
	if err := row.Scan(&prefs.StyleTitle, &prefs.StyleName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ChatPrefs{}, false, nil
		}
		return ChatPrefs{}, false, err
	}
	return prefs, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, chatID int64, prefs ChatPrefs) error {
	_, err := s.sql.Exec(ctx, qUpsertPrefs, chatID, prefs.StyleTitle, prefs.StyleName)
	return err
}

var _ PrefsStore = (*PostgresStore)(nil)

// MemoryStore keeps chat preferences in process memory. It is the default
// when no DATABASE_URL is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[int64]ChatPrefs
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[int64]ChatPrefs)}
}

func (s *MemoryStore) Get(_ context.Context, chatID int64) (ChatPrefs, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs, ok := s.prefs[chatID]
	return prefs, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, chatID int64, prefs ChatPrefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[chatID] = prefs
	return nil
}

var _ PrefsStore = (*MemoryStore)(nil)
