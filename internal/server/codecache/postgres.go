package codecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/yamdb/internal/dbx"
	"github.com/dmitrijs2005/yamdb/internal/timex"
)

// Postgres keeps codes in the verification_codes table. Expiry is checked
// in the query; PurgeExpired deletes stale rows.
type Postgres struct {
	db    dbx.DBTX
	clock timex.Clock
}

// NewPostgres constructs a cache bound to the given DBTX.
func NewPostgres(db dbx.DBTX, clock timex.Clock) *Postgres {
	return &Postgres{db: db, clock: clock}
}

func (p *Postgres) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	query := `
		INSERT INTO verification_codes (cache_key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
	`
	if _, err := p.db.ExecContext(ctx, query, key, value, p.clock.Now().Add(ttl)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	query := `
		SELECT value
		FROM verification_codes
		WHERE cache_key = $1 AND expires_at > $2
	`
	var value string
	if err := p.db.QueryRowContext(ctx, query, key, p.clock.Now()).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("db error: %w", err)
	}
	return value, true, nil
}

// PurgeExpired deletes rows whose expiry has passed.
func (p *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM verification_codes
		WHERE expires_at <= $1
	`
	res, err := p.db.ExecContext(ctx, query, p.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
