// Package yahoo fetches the USDCNH quote from the Yahoo Finance chart API.
// This is a best-effort external collaborator: the engine only ever sees the
// already-resolved scalar, and falls back to the manual rate when no quote
// is available.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
)

const (
	chartURL  = "https://query1.finance.yahoo.com/v8/finance/chart/USDCNH=X?range=1d&interval=1m"
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15"
)

// Chart API response, trimmed to the fields we read.
type chartResponse struct {
	Chart *chart `json:"chart"`
}
type chart struct {
	Result []*chartResult `json:"result"`
	Error  *chartError    `json:"error"`
}
type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
type chartResult struct {
	Meta *chartMeta `json:"meta"`
}
type chartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

// QuoteProvider fetches USDCNH spot quotes over HTTP.
type QuoteProvider struct {
	client *http.Client
}

// NewQuoteProvider creates a provider with a bounded request timeout.
func NewQuoteProvider(timeout time.Duration) *QuoteProvider {
	return &QuoteProvider{client: &http.Client{Timeout: timeout}}
}

var _ portssvc.FXQuoteProvider = (*QuoteProvider)(nil)

// FetchUSDCNH returns the latest USDCNH market price.
func (p *QuoteProvider) FetchUSDCNH(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, chartURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build quote request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote request returned HTTP %d", resp.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode quote response: %w", err)
	}
	if body.Chart == nil || len(body.Chart.Result) == 0 || body.Chart.Result[0].Meta == nil {
		if body.Chart != nil && body.Chart.Error != nil {
			return 0, fmt.Errorf("quote API error %s: %s", body.Chart.Error.Code, body.Chart.Error.Description)
		}
		return 0, fmt.Errorf("quote response missing chart meta")
	}

	rate := body.Chart.Result[0].Meta.RegularMarketPrice
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("quote response carried unusable price %v", rate)
	}
	return rate, nil
}
