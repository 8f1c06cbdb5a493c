package handlers_test

import (
	"encoding/json"
	"net/http"

	"github.com/asset-hq/nwt_backend/internal/core/domain"
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/dto"
	"github.com/asset-hq/nwt_backend/internal/utils/valuation"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestNetWorth_Success() {
	report := &portssvc.NetWorthReport{
		Month: "2024-01",
		Value: valuation.MonthValue{
			TotalCNY: 1700,
			TotalUSD: 242.857142,
			BucketTotals: map[domain.Bucket]float64{
				domain.BucketCash:   1000,
				domain.BucketInvest: 700,
				domain.BucketSocial: 0,
				domain.BucketOther:  0,
			},
			IndexLikePct: 41.176470,
		},
		Rate:       7.0,
		RateSource: "manual",
	}
	suite.mockReporting.On("NetWorth", mock.Anything, "2024-01", (*float64)(nil)).
		Return(report, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/reports/networth?month=2024-01", "", nil)

	suite.Equal(http.StatusOK, w.Code)
	var res dto.NetWorthResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Equal(1700.0, res.TotalCny)
	suite.Equal(242.86, res.TotalUsd)
	suite.Equal(41.18, res.IndexLikePct)
	suite.Equal("manual", res.RateSource)
	suite.mockReporting.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestNetWorth_RateOverridePassedThrough() {
	report := &portssvc.NetWorthReport{Month: "2024-01", Rate: 8.0, RateSource: "query"}
	suite.mockReporting.On("NetWorth", mock.Anything, "2024-01", mock.MatchedBy(func(r *float64) bool {
		return r != nil && *r == 8.0
	})).Return(report, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/reports/networth?month=2024-01&rate=8.0", "", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockReporting.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestNetWorth_NonFiniteRateRejected() {
	// ParseFloat accepts these spellings; the handler must not.
	for _, raw := range []string{"NaN", "Inf", "-Inf", "+Inf", "nan", "inf"} {
		w := suite.serve(http.MethodGet, "/api/v1/reports/networth?month=2024-01&rate="+raw, "", nil)
		suite.Equal(http.StatusBadRequest, w.Code, "rate=%s", raw)
	}
	suite.mockReporting.AssertNotCalled(suite.T(), "NetWorth", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestSeries_NonFiniteRateRejected() {
	w := suite.serve(http.MethodGet, "/api/v1/reports/series?rate=NaN", "", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReporting.AssertNotCalled(suite.T(), "Series", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestSeries_Success() {
	report := &portssvc.SeriesReport{
		Points: []valuation.SeriesPoint{
			{Month: "2024-01", CNY: 1700, USD: 242.857142},
		},
		Rate:       7.0,
		RateSource: "auto",
	}
	suite.mockReporting.On("Series", mock.Anything, (*float64)(nil)).Return(report, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/reports/series", "", nil)

	suite.Equal(http.StatusOK, w.Code)
	var res dto.SeriesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	suite.Require().Len(res.Points, 1)
	suite.Equal(242.86, res.Points[0].Usd)
	suite.Equal("auto", res.RateSource)
	suite.mockReporting.AssertExpectations(suite.T())
}
