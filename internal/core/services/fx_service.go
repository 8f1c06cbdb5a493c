package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/asset-hq/nwt_backend/internal/core/domain"
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
)

// fxService implements the FXSvcFacade interface. It caches the last good
// auto quote; rate resolution never blocks on the quote source.
type fxService struct {
	BaseService
	provider portssvc.FXQuoteProvider
	ttl      time.Duration

	mu        sync.RWMutex
	rate      float64
	fetchedAt time.Time
}

// NewFXService creates a new FX service. provider may be nil, in which case
// the working rate is always the manual setting. Quotes older than ttl are
// considered stale and ignored.
func NewFXService(provider portssvc.FXQuoteProvider, ttl time.Duration) portssvc.FXSvcFacade {
	return &fxService{provider: provider, ttl: ttl}
}

var _ portssvc.FXSvcFacade = (*fxService)(nil)

// WorkingRate resolves the single CNY-per-USD scalar used for conversions:
// the cached auto quote when auto FX is enabled and the quote is fresh, the
// manual setting otherwise.
func (s *fxService) WorkingRate(ctx context.Context, settings domain.Settings) portssvc.WorkingRate {
	if settings.EnableAutoFx {
		s.mu.RLock()
		rate, fetchedAt := s.rate, s.fetchedAt
		s.mu.RUnlock()

		if rate > 0 && !fetchedAt.IsZero() && time.Since(fetchedAt) <= s.ttl {
			return portssvc.WorkingRate{Rate: rate, Source: "auto", FetchedAt: fetchedAt}
		}
	}
	return portssvc.WorkingRate{Rate: settings.USDCNHManual, Source: "manual"}
}

// Refresh fetches a quote from the provider and updates the cache. Failures
// are logged and returned, but the engine keeps running on the previous
// quote or the manual rate.
func (s *fxService) Refresh(ctx context.Context) error {
	if s.provider == nil {
		return fmt.Errorf("no FX quote provider configured")
	}

	rate, err := s.provider.FetchUSDCNH(ctx)
	if err != nil {
		s.LogWarn(ctx, "FX quote fetch failed", slog.String("error", err.Error()))
		return err
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		err := fmt.Errorf("quote source returned unusable rate %v", rate)
		s.LogWarn(ctx, "FX quote rejected", slog.String("error", err.Error()))
		return err
	}

	s.mu.Lock()
	s.rate = rate
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	s.LogInfo(ctx, "FX quote refreshed", slog.Float64("usdcnh", rate))
	return nil
}
