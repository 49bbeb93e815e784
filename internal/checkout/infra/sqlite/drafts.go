package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkout_drafts (
	user_id    TEXT PRIMARY KEY,
	form       TEXT    NOT NULL,
	step       INTEGER NOT NULL,
	updated_at TEXT    NOT NULL
)`

// DraftStore keeps drafts in a local SQLite file; meant for development.
type DraftStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*DraftStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &DraftStore{db: db}, nil
}

func (s *DraftStore) Close() error {
	return s.db.Close()
}

func (s *DraftStore) Load(ctx context.Context, userID string) (domain.Draft, error) {
	var (
		raw     string
		step    int
		updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT form, step, updated_at FROM checkout_drafts WHERE user_id = ?`, userID,
	).Scan(&raw, &step, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Draft{}, app.ErrDraftNotFound
	}
	if err != nil {
		return domain.Draft{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("decode draft timestamp: %w", err)
	}
	d := domain.Draft{Step: domain.Step(step), UpdatedAt: ts}
	if err := json.Unmarshal([]byte(raw), &d.Form); err != nil {
		return domain.Draft{}, fmt.Errorf("decode draft form: %w", err)
	}
	return d, nil
}

func (s *DraftStore) Save(ctx context.Context, userID string, d domain.Draft) error {
	raw, err := json.Marshal(d.Form)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkout_drafts (user_id, form, step, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET form = excluded.form, step = excluded.step, updated_at = excluded.updated_at`,
		userID, string(raw), int(d.Step), d.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *DraftStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM checkout_drafts WHERE user_id = ?`, userID)
	return err
}
