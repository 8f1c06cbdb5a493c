package dto

import (
	"github.com/asset-hq/nwt_backend/internal/utils"
	"github.com/asset-hq/nwt_backend/internal/utils/valuation"
)

// NetWorthResponse represents the valuation of a single month. Monetary
// figures are rounded to 2 decimal places for stable JSON output.
type NetWorthResponse struct {
	Month        string             `json:"month"`
	TotalCny     float64            `json:"totalCny"`
	TotalUsd     float64            `json:"totalUsd"`
	BucketTotals map[string]float64 `json:"bucketTotals"`
	IndexLikePct float64            `json:"indexLikePct"`
	Rate         float64            `json:"rate"`
	RateSource   string             `json:"rateSource"`
}

// SeriesPointResponse is one row of the net-worth trend.
type SeriesPointResponse struct {
	Month        string             `json:"month"`
	Cny          float64            `json:"cny"`
	Usd          float64            `json:"usd"`
	IndexLikePct float64            `json:"indexLikePct"`
	BucketTotals map[string]float64 `json:"bucketTotals"`
}

// SeriesResponse represents the full reporting series.
type SeriesResponse struct {
	Points     []SeriesPointResponse `json:"points"`
	Rate       float64               `json:"rate"`
	RateSource string                `json:"rateSource"`
}

// ToNetWorthResponse converts a month valuation to its DTO.
func ToNetWorthResponse(month string, v valuation.MonthValue, rate float64, rateSource string) NetWorthResponse {
	return NetWorthResponse{
		Month:        month,
		TotalCny:     utils.RoundAmount(v.TotalCNY),
		TotalUsd:     utils.RoundAmount(v.TotalUSD),
		BucketTotals: toBucketTotals(v.BucketTotals),
		IndexLikePct: utils.RoundAmount(v.IndexLikePct),
		Rate:         rate,
		RateSource:   rateSource,
	}
}

// ToSeriesResponse converts the series points to their DTO.
func ToSeriesResponse(points []valuation.SeriesPoint, rate float64, rateSource string) SeriesResponse {
	res := SeriesResponse{
		Points:     make([]SeriesPointResponse, len(points)),
		Rate:       rate,
		RateSource: rateSource,
	}
	for i, p := range points {
		res.Points[i] = SeriesPointResponse{
			Month:        p.Month,
			Cny:          utils.RoundAmount(p.CNY),
			Usd:          utils.RoundAmount(p.USD),
			IndexLikePct: utils.RoundAmount(p.IndexLikePct),
			BucketTotals: toBucketTotals(p.BucketTotals),
		}
	}
	return res
}

func toBucketTotals[K ~string](totals map[K]float64) map[string]float64 {
	out := make(map[string]float64, len(totals))
	for k, v := range totals {
		out[string(k)] = utils.RoundAmount(v)
	}
	return out
}
