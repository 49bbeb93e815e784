package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkout_drafts (
	user_id    TEXT PRIMARY KEY,
	form       JSONB       NOT NULL,
	step       SMALLINT    NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

type DraftStore struct {
	pool *pgxpool.Pool
}

func NewDraftStore(pool *pgxpool.Pool) *DraftStore {
	return &DraftStore{pool: pool}
}

// Migrate creates the drafts table when missing.
func (s *DraftStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate checkout_drafts: %w", err)
	}
	return nil
}

func (s *DraftStore) Load(ctx context.Context, userID string) (domain.Draft, error) {
	var (
		raw     []byte
		step    int16
		updated time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT form, step, updated_at FROM checkout_drafts WHERE user_id = $1`, userID,
	).Scan(&raw, &step, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Draft{}, app.ErrDraftNotFound
	}
	if err != nil {
		return domain.Draft{}, err
	}

	d := domain.Draft{Step: domain.Step(step), UpdatedAt: updated.UTC()}
	if err := json.Unmarshal(raw, &d.Form); err != nil {
		return domain.Draft{}, fmt.Errorf("decode draft form: %w", err)
	}
	return d, nil
}

func (s *DraftStore) Save(ctx context.Context, userID string, d domain.Draft) error {
	raw, err := json.Marshal(d.Form)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO checkout_drafts (user_id, form, step, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET form = EXCLUDED.form, step = EXCLUDED.step, updated_at = EXCLUDED.updated_at`,
		userID, raw, int16(d.Step), d.UpdatedAt,
	)
	return err
}

func (s *DraftStore) Delete(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM checkout_drafts WHERE user_id = $1`, userID)
	return err
}
