// Package valuation holds the pure net-worth calculations: currency
// conversion against a single working USDCNH rate, month aggregation and the
// reporting series. Nothing here touches storage or mutates its inputs, so
// every function is safe to call on arbitrary records, including ones that
// were never reconciled against the current subject catalog.
package valuation

import (
	"github.com/asset-hq/nwt_backend/internal/core/domain"
)

// MonthValue is the aggregate valuation of a single month.
type MonthValue struct {
	TotalCNY     float64
	TotalUSD     float64
	BucketTotals map[domain.Bucket]float64
	IndexLikePct float64
}

// SeriesPoint is one row of the reporting series.
type SeriesPoint struct {
	Month        string
	CNY          float64
	USD          float64
	IndexLikePct float64
	BucketTotals map[domain.Bucket]float64
}

// ToCNY converts an amount to CNY using rate (units of CNY per 1 USD).
func ToCNY(amount float64, currency domain.Currency, rate float64) float64 {
	if currency == domain.CurrencyCNY {
		return amount
	}
	return amount * rate
}

// ToUSD converts an amount to USD. A zero rate yields 0 rather than Inf/NaN;
// this clamp is deliberate and must be preserved (a degenerate configured
// rate must never poison stored or displayed totals).
func ToUSD(amount float64, currency domain.Currency, rate float64) float64 {
	if currency == domain.CurrencyUSD {
		return amount
	}
	if rate == 0 {
		return 0
	}
	return amount / rate
}

// ToReportingCurrency converts amount from currency into target.
func ToReportingCurrency(amount float64, currency domain.Currency, rate float64, target domain.Currency) float64 {
	if target == domain.CurrencyUSD {
		return ToUSD(amount, currency, rate)
	}
	return ToCNY(amount, currency, rate)
}

// ValueMonth aggregates a month record into totals, per-bucket sums and the
// index-like exposure percentage. Entries participate only when their subject
// exists in the catalog and is not explicitly excluded from net worth. The
// two totals are accumulated independently, each entry converted to each
// target currency.
func ValueMonth(subjects []domain.Subject, record domain.MonthRecord, rate float64) MonthValue {
	subjectsByID := make(map[string]domain.Subject, len(subjects))
	for _, s := range subjects {
		subjectsByID[s.SubjectID] = s
	}

	out := MonthValue{BucketTotals: make(map[domain.Bucket]float64, 4)}
	for _, b := range domain.Buckets() {
		out.BucketTotals[b] = 0
	}

	indexLikeCNY := 0.0
	for _, e := range record.Entries {
		subject, ok := subjectsByID[e.SubjectID]
		if !ok || !subject.InNetWorth() {
			continue
		}

		cny := ToCNY(e.Amount, e.Currency, rate)
		usd := ToUSD(e.Amount, e.Currency, rate)

		out.TotalCNY += cny
		out.TotalUSD += usd
		out.BucketTotals[subject.Bucket] += cny
		if subject.IsIndexLike {
			indexLikeCNY += cny
		}
	}

	// Defined as 0 on an empty or zero-valued month; never NaN.
	if out.TotalCNY > 0 {
		out.IndexLikePct = indexLikeCNY / out.TotalCNY * 100
	}
	return out
}

// BuildSeries maps the stored month history through ValueMonth, one point per
// record in the given order. The months slice is already sorted by the upsert
// invariant; BuildSeries never re-sorts.
func BuildSeries(subjects []domain.Subject, months []domain.MonthRecord, rate float64) []SeriesPoint {
	series := make([]SeriesPoint, len(months))
	for i, m := range months {
		v := ValueMonth(subjects, m, rate)
		series[i] = SeriesPoint{
			Month:        m.Month,
			CNY:          v.TotalCNY,
			USD:          v.TotalUSD,
			IndexLikePct: v.IndexLikePct,
			BucketTotals: v.BucketTotals,
		}
	}
	return series
}
