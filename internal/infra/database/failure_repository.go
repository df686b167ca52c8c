package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/gr8terthings/signup-proxy/internal/entity"
)

const createFailuresTable = `
	CREATE TABLE IF NOT EXISTS side_effect_failures (
		id          UUID PRIMARY KEY,
		kind        TEXT NOT NULL,
		email       TEXT NOT NULL DEFAULT '',
		error       TEXT NOT NULL DEFAULT '',
		occurred_at TIMESTAMPTZ NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type FailureRepository struct {
	DB execer
}

func NewFailureRepository(db *sql.DB) *FailureRepository {
	return &FailureRepository{DB: db}
}

func (r *FailureRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, createFailuresTable); err != nil {
		return fmt.Errorf("create side_effect_failures: %w", err)
	}
	return nil
}

// Save is idempotent on the failure ID so redelivered messages are harmless.
func (r *FailureRepository) Save(ctx context.Context, f entity.SideEffectFailure) error {
	query := `
		INSERT INTO side_effect_failures (id, kind, email, error, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.DB.ExecContext(ctx, query,
		f.ID,
		string(f.Kind),
		f.Email,
		f.Error,
		f.OccurredAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
			return fmt.Errorf("invalid failure id %q: %w", f.ID, err)
		}
		return err
	}

	return nil
}
