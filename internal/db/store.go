package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vistara/internal/domain"
)

var ErrCompletionNotFound = errors.New("completion not found")

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Store archives completed conversations in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS completed_conversations (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL UNIQUE,
			intent TEXT NOT NULL,
			slots JSONB NOT NULL DEFAULT '{}'::jsonb,
			completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_completed_conversations_intent_completed ON completed_conversations(intent, completed_at DESC);`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// SaveCompletion records a completion. Saving the same session twice keeps
// the first row; inserted reports whether this call wrote it.
func (s *Store) SaveCompletion(ctx context.Context, event domain.CompletionEvent) (inserted bool, err error) {
	if strings.TrimSpace(event.SessionID) == "" {
		return false, fmt.Errorf("session id is required")
	}
	raw, err := json.Marshal(slotsOrEmpty(event.Slots))
	if err != nil {
		return false, err
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO completed_conversations (session_id, intent, slots, completed_at)
		VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (session_id) DO NOTHING
	`, event.SessionID, event.Intent, string(raw), event.CompletedAt.UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// OnComplete lets the archive receive dialogue completions directly.
func (s *Store) OnComplete(ctx context.Context, event domain.CompletionEvent) error {
	_, err := s.SaveCompletion(ctx, event)
	return err
}

// ListCompletions returns the newest completions first, optionally filtered
// by intent.
func (s *Store) ListCompletions(ctx context.Context, intent string, limit int) ([]domain.ArchivedCompletion, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, intent, slots, completed_at
		FROM completed_conversations
		WHERE $1::text = '' OR intent = $1::text
		ORDER BY completed_at DESC, id DESC
		LIMIT $2
	`, strings.TrimSpace(intent), ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ArchivedCompletion, 0)
	for rows.Next() {
		item, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetCompletion(ctx context.Context, sessionID string) (domain.ArchivedCompletion, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, intent, slots, completed_at
		FROM completed_conversations
		WHERE session_id = $1
	`, sessionID)
	item, err := scanCompletion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ArchivedCompletion{}, ErrCompletionNotFound
	}
	return item, err
}

func scanCompletion(row pgx.Row) (domain.ArchivedCompletion, error) {
	var (
		out      domain.ArchivedCompletion
		slotsRaw []byte
	)
	if err := row.Scan(&out.ID, &out.SessionID, &out.Intent, &slotsRaw, &out.CompletedAt); err != nil {
		return domain.ArchivedCompletion{}, err
	}
	if err := decodeSlots(slotsRaw, &out.Slots); err != nil {
		return domain.ArchivedCompletion{}, err
	}
	return out, nil
}

func decodeSlots(raw []byte, dst *map[string]string) error {
	*dst = map[string]string{}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode slots: %w", err)
	}
	if *dst == nil {
		*dst = map[string]string{}
	}
	return nil
}

// ClampLimit maps a requested page size onto [1, MaxListLimit], with
// DefaultListLimit for non-positive values.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func slotsOrEmpty(slots map[string]string) map[string]string {
	if slots == nil {
		return map[string]string{}
	}
	return slots
}
