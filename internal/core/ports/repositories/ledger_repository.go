package repositories

import (
	"context"

	"github.com/asset-hq/nwt_backend/internal/core/domain"
)

// LedgerRepository defines persistence for the whole ledger state. The state
// is stored and replaced as one aggregate; there is no partial write path.
// Implementations must treat loaded content as untrusted and pass it through
// the schema validator, falling back to domain.DefaultState when nothing
// valid is stored.
type LedgerRepository interface {
	LoadState(ctx context.Context) (domain.LedgerState, error)
	SaveState(ctx context.Context, state domain.LedgerState) error
}

// RepositoryProvider bundles the repositories needed to build the service
// container.
type RepositoryProvider struct {
	LedgerRepo LedgerRepository
}
