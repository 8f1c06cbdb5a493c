package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/asset-hq/nwt_backend/internal/apperrors"
	"github.com/asset-hq/nwt_backend/internal/core/domain"
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/core/services"
	"github.com/asset-hq/nwt_backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) LoadState(ctx context.Context) (domain.LedgerState, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.LedgerState), args.Error(1)
}

func (m *MockLedgerRepository) SaveState(ctx context.Context, state domain.LedgerState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func fixtureState() domain.LedgerState {
	return domain.LedgerState{
		Subjects: []domain.Subject{
			{SubjectID: "bank", Name: "Bank", Bucket: domain.BucketCash, DefaultCurrency: domain.CurrencyCNY},
			{SubjectID: "broker", Name: "Broker", Bucket: domain.BucketInvest, DefaultCurrency: domain.CurrencyUSD, IsIndexLike: true},
		},
		Months: []domain.MonthRecord{
			{
				Month: "2024-01",
				Entries: []domain.MonthlyEntry{
					{SubjectID: "bank", Currency: domain.CurrencyCNY, Formula: "1000", Amount: 1000},
					{SubjectID: "broker", Currency: domain.CurrencyUSD, Formula: "100", Amount: 100},
				},
			},
		},
		Settings: domain.Settings{USDCNHManual: 7.2, EnableAutoFx: true},
	}
}

// --- Test Suite ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockRepo *MockLedgerRepository
	service  portssvc.LedgerSvcFacade
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockLedgerRepository)
	suite.service = services.NewLedgerService(suite.mockRepo)
}

// --- Subjects ---

func (suite *LedgerServiceTestSuite) TestListSubjects_Success() {
	ctx := context.Background()
	state := fixtureState()
	suite.mockRepo.On("LoadState", ctx).Return(state, nil).Once()

	subjects, err := suite.service.ListSubjects(ctx)

	suite.Require().NoError(err)
	suite.Equal(state.Subjects, subjects)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListSubjects_EmptyCatalog() {
	ctx := context.Background()
	suite.mockRepo.On("LoadState", ctx).Return(domain.LedgerState{}, nil).Once()

	subjects, err := suite.service.ListSubjects(ctx)

	suite.Require().NoError(err)
	suite.NotNil(subjects)
	suite.Empty(subjects)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateSubject_Success() {
	ctx := context.Background()
	req := dto.CreateSubjectRequest{
		Name:            "Cash wallet",
		Bucket:          "Cash",
		DefaultCurrency: "CNY",
	}

	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()
	suite.mockRepo.On("SaveState", ctx, mock.MatchedBy(func(s domain.LedgerState) bool {
		return len(s.Subjects) == 3 && s.Subjects[2].Name == "Cash wallet"
	})).Return(nil).Once()

	subject, err := suite.service.CreateSubject(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(subject)
	suite.NotEmpty(subject.SubjectID)
	suite.Equal("Cash wallet", subject.Name)
	suite.Equal(domain.BucketCash, subject.Bucket)
	suite.Equal(domain.CurrencyCNY, subject.DefaultCurrency)
	suite.True(subject.InNetWorth())
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateSubject_SaveError() {
	ctx := context.Background()
	expectedErr := assert.AnError

	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()
	suite.mockRepo.On("SaveState", ctx, mock.AnythingOfType("domain.LedgerState")).Return(expectedErr).Once()

	subject, err := suite.service.CreateSubject(ctx, dto.CreateSubjectRequest{Name: "X", Bucket: "Cash", DefaultCurrency: "CNY"})

	suite.Require().Error(err)
	suite.Nil(subject)
	suite.ErrorIs(err, expectedErr)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpdateSubject_Success() {
	ctx := context.Background()
	req := dto.UpdateSubjectRequest{
		Name:              strPtr("Renamed"),
		IncludeInNetWorth: boolPtr(false),
	}

	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()
	suite.mockRepo.On("SaveState", ctx, mock.MatchedBy(func(s domain.LedgerState) bool {
		updated := s.SubjectByID("bank")
		return updated != nil && updated.Name == "Renamed" && !updated.InNetWorth()
	})).Return(nil).Once()

	subject, err := suite.service.UpdateSubject(ctx, "bank", req)

	suite.Require().NoError(err)
	suite.Equal("Renamed", subject.Name)
	suite.False(subject.InNetWorth())
	// Untouched fields keep their values.
	suite.Equal(domain.BucketCash, subject.Bucket)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpdateSubject_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()

	subject, err := suite.service.UpdateSubject(ctx, "missing", dto.UpdateSubjectRequest{Name: strPtr("X")})

	suite.Require().Error(err)
	suite.Nil(subject)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveState", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestRemoveSubject_CascadesAcrossMonths() {
	ctx := context.Background()
	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()
	suite.mockRepo.On("SaveState", ctx, mock.MatchedBy(func(s domain.LedgerState) bool {
		if s.SubjectByID("broker") != nil {
			return false
		}
		for _, m := range s.Months {
			for _, e := range m.Entries {
				if e.SubjectID == "broker" {
					return false
				}
			}
		}
		return true
	})).Return(nil).Once()

	err := suite.service.RemoveSubject(ctx, "broker")

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRemoveSubject_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()

	err := suite.service.RemoveSubject(ctx, "missing")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveState", mock.Anything, mock.Anything)
}

// --- Months ---

func (suite *LedgerServiceTestSuite) TestGetMonth_InvalidKey() {
	ctx := context.Background()

	record, err := suite.service.GetMonth(ctx, "2024-13")

	suite.Require().Error(err)
	suite.Nil(record)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "LoadState", mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestGetMonth_SynthesizesUnstoredMonth() {
	ctx := context.Background()
	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()

	record, err := suite.service.GetMonth(ctx, "2024-06")

	suite.Require().NoError(err)
	suite.Equal("2024-06", record.Month)
	suite.Require().Len(record.Entries, 2)
	suite.Equal("bank", record.Entries[0].SubjectID)
	suite.Equal(domain.CurrencyCNY, record.Entries[0].Currency)
	suite.Equal("", record.Entries[0].Formula)
	suite.Equal(0.0, record.Entries[0].Amount)
	suite.Equal("broker", record.Entries[1].SubjectID)
	suite.Equal(domain.CurrencyUSD, record.Entries[1].Currency)
	// A read never persists the synthesized record.
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveState", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestGetMonth_AlignsStoredRecordWithCatalog() {
	ctx := context.Background()
	state := fixtureState()
	// Stored record has an orphan entry and is missing the broker entry.
	state.Months[0].Entries = []domain.MonthlyEntry{
		{SubjectID: "ghost", Currency: domain.CurrencyCNY, Formula: "1", Amount: 1},
		{SubjectID: "bank", Currency: domain.CurrencyCNY, Formula: "1000", Amount: 1000},
	}
	suite.mockRepo.On("LoadState", ctx).Return(state, nil).Once()

	record, err := suite.service.GetMonth(ctx, "2024-01")

	suite.Require().NoError(err)
	suite.Require().Len(record.Entries, 2)
	suite.Equal("bank", record.Entries[0].SubjectID)
	suite.Equal(1000.0, record.Entries[0].Amount)
	suite.Equal("broker", record.Entries[1].SubjectID)
	suite.Equal(0.0, record.Entries[1].Amount)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveState", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestGetMonth_SchedulesFormulaWriteBack() {
	ctx := context.Background()
	state := fixtureState()
	// Cached amount no longer matches the formula.
	state.Months[0].Entries[0].Amount = 999

	saved := make(chan domain.LedgerState, 1)
	suite.mockRepo.On("LoadState", mock.Anything).Return(state, nil).Twice()
	suite.mockRepo.On("SaveState", mock.Anything, mock.AnythingOfType("domain.LedgerState")).
		Run(func(args mock.Arguments) {
			saved <- args.Get(1).(domain.LedgerState)
		}).Return(nil).Once()

	record, err := suite.service.GetMonth(ctx, "2024-01")

	suite.Require().NoError(err)
	// The read itself returns the stored (stale) amount.
	suite.Equal(999.0, record.Entries[0].Amount)

	select {
	case next := <-saved:
		stored := next.MonthByKey("2024-01")
		suite.Require().NotNil(stored)
		suite.Equal(1000.0, stored.Entries[0].Amount)
	case <-time.After(2 * time.Second):
		suite.FailNow("formula write-back was never persisted")
	}
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpsertMonth_InvalidKey() {
	ctx := context.Background()

	record, issues, err := suite.service.UpsertMonth(ctx, dto.UpsertMonthRequest{Month: "2024-00"})

	suite.Require().Error(err)
	suite.Nil(record)
	suite.Nil(issues)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestUpsertMonth_EvaluatesFormulas() {
	ctx := context.Background()
	req := dto.UpsertMonthRequest{
		Month: "2024-02",
		Entries: []dto.UpsertEntryRequest{
			{SubjectID: "bank", Currency: "CNY", Formula: "12000+3000-500"},
			{SubjectID: "broker", Currency: "USD", Formula: ""},
		},
	}

	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()
	suite.mockRepo.On("SaveState", ctx, mock.AnythingOfType("domain.LedgerState")).Return(nil).Once()

	record, issues, err := suite.service.UpsertMonth(ctx, req)

	suite.Require().NoError(err)
	suite.Empty(issues)
	suite.Equal("2024-02", record.Month)
	suite.Require().Len(record.Entries, 2)
	suite.Equal(14500.0, record.Entries[0].Amount)
	suite.Equal(0.0, record.Entries[1].Amount)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpsertMonth_KeepsLastGoodAmountOnFormulaFailure() {
	ctx := context.Background()
	req := dto.UpsertMonthRequest{
		Month: "2024-01",
		Entries: []dto.UpsertEntryRequest{
			{SubjectID: "bank", Currency: "CNY", Formula: "1000+oops"},
			{SubjectID: "broker", Currency: "USD", Formula: "150"},
		},
	}

	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()
	suite.mockRepo.On("SaveState", ctx, mock.AnythingOfType("domain.LedgerState")).Return(nil).Once()

	record, issues, err := suite.service.UpsertMonth(ctx, req)

	suite.Require().NoError(err)
	suite.Require().Len(issues, 1)
	suite.Equal("bank", issues[0].SubjectID)
	suite.Contains(issues[0].Message, "unknown identifier")
	// The failing entry keeps the previously cached amount and the bad formula.
	suite.Equal(1000.0, record.Entries[0].Amount)
	suite.Equal("1000+oops", record.Entries[0].Formula)
	suite.Equal(150.0, record.Entries[1].Amount)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpsertMonth_KeepsHistorySorted() {
	ctx := context.Background()
	state := fixtureState()
	state.Months = append(state.Months, domain.MonthRecord{Month: "2024-05"})

	var savedMonths []string
	suite.mockRepo.On("LoadState", ctx).Return(state, nil).Once()
	suite.mockRepo.On("SaveState", ctx, mock.AnythingOfType("domain.LedgerState")).
		Run(func(args mock.Arguments) {
			for _, m := range args.Get(1).(domain.LedgerState).Months {
				savedMonths = append(savedMonths, m.Month)
			}
		}).Return(nil).Once()

	_, _, err := suite.service.UpsertMonth(ctx, dto.UpsertMonthRequest{Month: "2024-03"})

	suite.Require().NoError(err)
	suite.Equal([]string{"2024-01", "2024-03", "2024-05"}, savedMonths)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpsertMonth_Idempotent() {
	ctx := context.Background()
	req := dto.UpsertMonthRequest{
		Month: "2024-01",
		Entries: []dto.UpsertEntryRequest{
			{SubjectID: "bank", Currency: "CNY", Formula: "1000"},
			{SubjectID: "broker", Currency: "USD", Formula: "100"},
		},
	}

	var firstSaved, secondSaved domain.LedgerState
	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()
	suite.mockRepo.On("SaveState", ctx, mock.AnythingOfType("domain.LedgerState")).
		Run(func(args mock.Arguments) { firstSaved = args.Get(1).(domain.LedgerState) }).Return(nil).Once()

	_, _, err := suite.service.UpsertMonth(ctx, req)
	suite.Require().NoError(err)

	suite.mockRepo.On("LoadState", ctx).Return(firstSaved, nil).Once()
	suite.mockRepo.On("SaveState", ctx, mock.AnythingOfType("domain.LedgerState")).
		Run(func(args mock.Arguments) { secondSaved = args.Get(1).(domain.LedgerState) }).Return(nil).Once()

	_, _, err = suite.service.UpsertMonth(ctx, req)
	suite.Require().NoError(err)

	suite.Equal(firstSaved, secondSaved)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- Settings ---

func (suite *LedgerServiceTestSuite) TestGetSettings_Success() {
	ctx := context.Background()
	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()

	settings, err := suite.service.GetSettings(ctx)

	suite.Require().NoError(err)
	suite.Equal(7.2, settings.USDCNHManual)
	suite.True(settings.EnableAutoFx)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpdateSettings_Success() {
	ctx := context.Background()
	req := dto.UpdateSettingsRequest{
		USDCNHManual:   floatPtr(7.05),
		EnableAutoFx:   boolPtr(false),
		BackgroundNote: "tracking since 2023",
	}

	suite.mockRepo.On("LoadState", ctx).Return(fixtureState(), nil).Once()
	suite.mockRepo.On("SaveState", ctx, mock.MatchedBy(func(s domain.LedgerState) bool {
		return s.Settings.USDCNHManual == 7.05 && !s.Settings.EnableAutoFx
	})).Return(nil).Once()

	settings, err := suite.service.UpdateSettings(ctx, req)

	suite.Require().NoError(err)
	suite.Equal(7.05, settings.USDCNHManual)
	suite.False(settings.EnableAutoFx)
	suite.Equal("tracking since 2023", settings.BackgroundNote)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- Run Suite ---
func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
