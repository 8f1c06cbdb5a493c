// Package pgsql persists the ledger state as a single JSONB row in
// Postgres. The schema lives in migrations/ and is applied by the binary at
// startup. Like the file store, loaded content is untrusted until it passes
// the schema validator.
package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/asset-hq/nwt_backend/internal/core/domain"
	portsrepo "github.com/asset-hq/nwt_backend/internal/core/ports/repositories"
	"github.com/asset-hq/nwt_backend/internal/validation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxLedgerRepository stores the single ledger aggregate in the
// ledger_state table (one row, id = 1).
type PgxLedgerRepository struct {
	pool *pgxpool.Pool
}

// NewPgxLedgerRepository creates a new repository over the given pool.
func NewPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{pool: pool}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

// LoadState reads and validates the stored state. An empty table or a row
// failing the schema contract yields the known-good default state.
func (r *PgxLedgerRepository) LoadState(ctx context.Context) (domain.LedgerState, error) {
	query := `SELECT state FROM ledger_state WHERE id = 1;`

	var raw []byte
	err := r.pool.QueryRow(ctx, query).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultState(), nil
		}
		return domain.LedgerState{}, fmt.Errorf("failed to load ledger state row: %w", err)
	}

	state, err := validation.DecodeState(raw)
	if err != nil {
		slog.Warn("Stored ledger state failed validation, using default state",
			slog.String("error", err.Error()))
		return domain.DefaultState(), nil
	}
	return state, nil
}

// SaveState upserts the single aggregate row.
func (r *PgxLedgerRepository) SaveState(ctx context.Context, state domain.LedgerState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger state: %w", err)
	}

	query := `
		INSERT INTO ledger_state (id, state, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.pool.Exec(ctx, query, raw); err != nil {
		return fmt.Errorf("failed to save ledger state row: %w", err)
	}
	return nil
}
