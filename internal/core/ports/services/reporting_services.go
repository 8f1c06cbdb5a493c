package services

import (
	"context"

	"github.com/asset-hq/nwt_backend/internal/utils/valuation"
)

// NetWorthReport is a month valuation together with the rate it was computed
// at and where that rate came from ("auto" or "manual").
type NetWorthReport struct {
	Month      string
	Value      valuation.MonthValue
	Rate       float64
	RateSource string
}

// SeriesReport is the full reporting series plus rate provenance.
type SeriesReport struct {
	Points     []valuation.SeriesPoint
	Rate       float64
	RateSource string
}

// ReportingSvcFacade computes point-in-time totals and the month-over-month
// series. A nil rateOverride resolves the working rate through the FX
// service; a non-nil one pins the rate (used for what-if queries).
type ReportingSvcFacade interface {
	NetWorth(ctx context.Context, monthKey string, rateOverride *float64) (*NetWorthReport, error)
	Series(ctx context.Context, rateOverride *float64) (*SeriesReport, error)
}
