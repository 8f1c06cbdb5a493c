package services

import (
	"context"
	"time"

	"github.com/asset-hq/nwt_backend/internal/core/domain"
)

// FXQuoteProvider fetches the current USDCNH quote from an external source.
// Implementations live in internal/adapters/fx.
type FXQuoteProvider interface {
	FetchUSDCNH(ctx context.Context) (float64, error)
}

// WorkingRate is the resolved CNY-per-USD scalar used for all conversions at
// query time.
type WorkingRate struct {
	Rate      float64
	Source    string // "auto" or "manual"
	FetchedAt time.Time
}

// FXSvcFacade resolves the working rate and owns the cached auto quote. The
// engine never blocks on the quote source: resolution only consults the
// cache and degrades to the manual rate when no fresh auto quote exists.
type FXSvcFacade interface {
	WorkingRate(ctx context.Context, settings domain.Settings) WorkingRate
	// Refresh fetches a quote and updates the cache; best effort.
	Refresh(ctx context.Context) error
}
