package services_test

import (
	"context"
	"testing"

	"github.com/asset-hq/nwt_backend/internal/apperrors"
	"github.com/asset-hq/nwt_backend/internal/core/domain"
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// stubFXService always resolves to a fixed working rate.
type stubFXService struct {
	working portssvc.WorkingRate
}

func (s *stubFXService) WorkingRate(ctx context.Context, settings domain.Settings) portssvc.WorkingRate {
	return s.working
}

func (s *stubFXService) Refresh(ctx context.Context) error { return nil }

type ReportingServiceTestSuite struct {
	suite.Suite
	mockRepo *MockLedgerRepository
	fx       *stubFXService
	service  portssvc.ReportingSvcFacade
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockLedgerRepository)
	suite.fx = &stubFXService{working: portssvc.WorkingRate{Rate: 7.0, Source: "manual"}}
	suite.service = services.NewReportingService(suite.mockRepo, suite.fx)
}

func (suite *ReportingServiceTestSuite) TestNetWorth_StoredMonth() {
	ctx := context.Background()
	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()

	report, err := suite.service.NetWorth(ctx, "2024-01", nil)

	suite.Require().NoError(err)
	suite.Equal("2024-01", report.Month)
	suite.Equal(7.0, report.Rate)
	suite.Equal("manual", report.RateSource)
	// bank 1000 CNY + broker 100 USD at 7.0
	suite.InDelta(1700.0, report.Value.TotalCNY, 1e-9)
	suite.InDelta(1000.0/7.0+100.0, report.Value.TotalUSD, 1e-9)
	suite.Equal(1000.0, report.Value.BucketTotals[domain.BucketCash])
	suite.Equal(700.0, report.Value.BucketTotals[domain.BucketInvest])
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestNetWorth_UnstoredMonthIsZero() {
	ctx := context.Background()
	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()

	report, err := suite.service.NetWorth(ctx, "2030-12", nil)

	suite.Require().NoError(err)
	suite.Equal(0.0, report.Value.TotalCNY)
	suite.Equal(0.0, report.Value.TotalUSD)
	suite.Equal(0.0, report.Value.IndexLikePct)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveState", mock.Anything, mock.Anything)
}

func (suite *ReportingServiceTestSuite) TestNetWorth_InvalidMonthKey() {
	report, err := suite.service.NetWorth(context.Background(), "202401", nil)

	suite.Require().Error(err)
	suite.Nil(report)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReportingServiceTestSuite) TestNetWorth_RateOverride() {
	ctx := context.Background()
	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()

	report, err := suite.service.NetWorth(ctx, "2024-01", floatPtr(8.0))

	suite.Require().NoError(err)
	suite.Equal(8.0, report.Rate)
	suite.Equal("query", report.RateSource)
	suite.InDelta(1800.0, report.Value.TotalCNY, 1e-9)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestSeries_ChronologicalPoints() {
	ctx := context.Background()
	state := fixtureState()
	state.Months = append(state.Months, domain.MonthRecord{
		Month: "2024-02",
		Entries: []domain.MonthlyEntry{
			{SubjectID: "bank", Currency: domain.CurrencyCNY, Formula: "2000", Amount: 2000},
		},
	})
	suite.mockRepo.On("LoadState", ctx).Return(state, nil).Once()

	report, err := suite.service.Series(ctx, nil)

	suite.Require().NoError(err)
	suite.Require().Len(report.Points, 2)
	suite.Equal("2024-01", report.Points[0].Month)
	suite.Equal("2024-02", report.Points[1].Month)
	suite.InDelta(1700.0, report.Points[0].CNY, 1e-9)
	suite.InDelta(2000.0, report.Points[1].CNY, 1e-9)
	suite.Equal(7.0, report.Rate)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestSeries_EmptyHistory() {
	ctx := context.Background()
	state := fixtureState()
	state.Months = nil
	suite.mockRepo.On("LoadState", ctx).Return(state, nil).Once()

	report, err := suite.service.Series(ctx, nil)

	suite.Require().NoError(err)
	suite.Empty(report.Points)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestReportingService(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
