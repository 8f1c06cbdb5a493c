package dto

import (
	"time"
)

// WorkingRateResponse reports the rate all conversions currently use and its
// provenance.
type WorkingRateResponse struct {
	Rate      float64    `json:"rate"`
	Source    string     `json:"source"`
	FetchedAt *time.Time `json:"fetchedAt,omitempty"`
}

// ToWorkingRateResponse builds the DTO for a resolved working rate.
// fetchedAt is zero when the rate comes from the manual setting.
func ToWorkingRateResponse(rate float64, source string, fetchedAt time.Time) WorkingRateResponse {
	res := WorkingRateResponse{
		Rate:   rate,
		Source: source,
	}
	if !fetchedAt.IsZero() {
		t := fetchedAt
		res.FetchedAt = &t
	}
	return res
}
