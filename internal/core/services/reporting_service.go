package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/asset-hq/nwt_backend/internal/apperrors"
	"github.com/asset-hq/nwt_backend/internal/core/domain"
	portsrepo "github.com/asset-hq/nwt_backend/internal/core/ports/repositories"
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/utils/valuation"
)

// reportingService implements the ReportingSvcFacade interface. It is a thin
// shell around the pure valuation package: load state, resolve the working
// rate, delegate.
type reportingService struct {
	BaseService
	repo portsrepo.LedgerRepository
	fx   portssvc.FXSvcFacade
}

// NewReportingService creates a new reporting service.
func NewReportingService(repo portsrepo.LedgerRepository, fx portssvc.FXSvcFacade) portssvc.ReportingSvcFacade {
	return &reportingService{repo: repo, fx: fx}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// NetWorth values a single month at the working (or overridden) rate. Months
// that were never stored value to zeros via a synthesized record; stored
// records are valued as-is, which keeps the result usable for comparisons
// against history that predates catalog edits.
func (s *reportingService) NetWorth(ctx context.Context, monthKey string, rateOverride *float64) (*portssvc.NetWorthReport, error) {
	if !domain.IsValidMonthKey(monthKey) {
		return nil, fmt.Errorf("%w: month must match YYYY-MM", apperrors.ErrValidation)
	}

	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	rate, source := s.resolveRate(ctx, state, rateOverride)

	record := state.MonthByKey(monthKey)
	if record == nil {
		synthesized := ReconcileMonth(state.Subjects, monthKey, nil)
		record = &synthesized
	}

	value := valuation.ValueMonth(state.Subjects, *record, rate)
	s.LogDebug(ctx, "Net worth computed",
		slog.String("month", monthKey),
		slog.Float64("rate", rate),
		slog.String("rate_source", source),
	)
	return &portssvc.NetWorthReport{
		Month:      monthKey,
		Value:      value,
		Rate:       rate,
		RateSource: source,
	}, nil
}

// Series maps the full month history through the valuation engine, in stored
// (already chronological) order.
func (s *reportingService) Series(ctx context.Context, rateOverride *float64) (*portssvc.SeriesReport, error) {
	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	rate, source := s.resolveRate(ctx, state, rateOverride)
	points := valuation.BuildSeries(state.Subjects, state.Months, rate)

	return &portssvc.SeriesReport{
		Points:     points,
		Rate:       rate,
		RateSource: source,
	}, nil
}

func (s *reportingService) resolveRate(ctx context.Context, state domain.LedgerState, rateOverride *float64) (float64, string) {
	if rateOverride != nil {
		return *rateOverride, "query"
	}
	working := s.fx.WorkingRate(ctx, state.Settings)
	return working.Rate, working.Source
}
