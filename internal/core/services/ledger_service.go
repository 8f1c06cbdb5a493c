package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/asset-hq/nwt_backend/internal/apperrors"
	"github.com/asset-hq/nwt_backend/internal/core/domain"
	portsrepo "github.com/asset-hq/nwt_backend/internal/core/ports/repositories"
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/dto"
	"github.com/asset-hq/nwt_backend/internal/utils/formula"
	"github.com/google/uuid"
)

// ledgerService implements the LedgerSvcFacade interface: subject catalog
// management, month reconciliation and the derived-amount write-back.
type ledgerService struct {
	BaseService
	repo portsrepo.LedgerRepository

	// mu serializes load-modify-save cycles. The ledger has a single
	// logical owner; the mutex only guards against concurrent HTTP
	// requests racing the same file or row.
	mu sync.Mutex
}

// NewLedgerService creates a new ledger service over the given repository.
func NewLedgerService(repo portsrepo.LedgerRepository) portssvc.LedgerSvcFacade {
	return &ledgerService{repo: repo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}
	if state.Subjects == nil {
		return []domain.Subject{}, nil
	}
	return state.Subjects, nil
}

func (s *ledgerService) CreateSubject(ctx context.Context, req dto.CreateSubjectRequest) (*domain.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	subject := domain.Subject{
		SubjectID:         uuid.NewString(),
		Name:              req.Name,
		Bucket:            domain.Bucket(req.Bucket),
		DefaultCurrency:   domain.Currency(req.DefaultCurrency),
		IsIndexLike:       req.IsIndexLike,
		IncludeInNetWorth: req.IncludeInNetWorth,
	}

	state.Subjects = append(state.Subjects, subject)
	if err := s.repo.SaveState(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save ledger state: %w", err)
	}

	s.LogInfo(ctx, "Subject created", slog.String("subject_id", subject.SubjectID))
	return &subject, nil
}

func (s *ledgerService) UpdateSubject(ctx context.Context, subjectID string, req dto.UpdateSubjectRequest) (*domain.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	subject := state.SubjectByID(subjectID)
	if subject == nil {
		return nil, fmt.Errorf("subject %s: %w", subjectID, apperrors.ErrNotFound)
	}

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.Bucket != nil {
		subject.Bucket = domain.Bucket(*req.Bucket)
	}
	if req.DefaultCurrency != nil {
		subject.DefaultCurrency = domain.Currency(*req.DefaultCurrency)
	}
	if req.IsIndexLike != nil {
		subject.IsIndexLike = *req.IsIndexLike
	}
	if req.IncludeInNetWorth != nil {
		subject.IncludeInNetWorth = req.IncludeInNetWorth
	}

	if err := s.repo.SaveState(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save ledger state: %w", err)
	}

	updated := *subject
	s.LogInfo(ctx, "Subject updated", slog.String("subject_id", subjectID))
	return &updated, nil
}

func (s *ledgerService) RemoveSubject(ctx context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}

	if state.SubjectByID(subjectID) == nil {
		return fmt.Errorf("subject %s: %w", subjectID, apperrors.ErrNotFound)
	}

	next := RemoveSubjectState(state, subjectID)
	if err := s.repo.SaveState(ctx, next); err != nil {
		return fmt.Errorf("failed to save ledger state: %w", err)
	}

	s.LogInfo(ctx, "Subject removed with cascade", slog.String("subject_id", subjectID))
	return nil
}

func (s *ledgerService) GetMonth(ctx context.Context, monthKey string) (*domain.MonthRecord, error) {
	if !domain.IsValidMonthKey(monthKey) {
		return nil, fmt.Errorf("%w: month must match YYYY-MM", apperrors.ErrValidation)
	}

	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	stored := state.MonthByKey(monthKey)
	record := ReconcileMonth(state.Subjects, monthKey, stored)

	// Derived-amount sync: when a cached amount no longer matches a
	// successful evaluation of its formula, schedule an asynchronous
	// write-back. Reads of unstored months have nothing to write back to.
	if stored != nil && hasDivergedAmounts(record.Entries) {
		logger := s.GetLogger(ctx)
		go s.syncFormulaAmounts(logger, monthKey)
	}

	return &record, nil
}

func (s *ledgerService) UpsertMonth(ctx context.Context, req dto.UpsertMonthRequest) (*domain.MonthRecord, []portssvc.FormulaIssue, error) {
	if !domain.IsValidMonthKey(req.Month) {
		return nil, nil, fmt.Errorf("%w: month must match YYYY-MM", apperrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	stored := state.MonthByKey(req.Month)

	var issues []portssvc.FormulaIssue
	record := domain.MonthRecord{
		Month:   req.Month,
		Entries: make([]domain.MonthlyEntry, 0, len(req.Entries)),
		Note:    req.Note,
	}
	for _, in := range req.Entries {
		entry := domain.MonthlyEntry{
			SubjectID: in.SubjectID,
			Currency:  domain.Currency(in.Currency),
			Formula:   in.Formula,
		}
		value, evalErr := formula.Evaluate(in.Formula)
		if evalErr != nil {
			// Keep the last good cached amount so totals stay usable
			// while the user fixes the input.
			entry.Amount = lastGoodAmount(stored, in.SubjectID)
			issues = append(issues, portssvc.FormulaIssue{
				SubjectID: in.SubjectID,
				Message:   evalErr.Error(),
			})
		} else {
			entry.Amount = value
		}
		record.Entries = append(record.Entries, entry)
	}

	next := UpsertMonthState(state, record)
	if err := s.repo.SaveState(ctx, next); err != nil {
		return nil, nil, fmt.Errorf("failed to save ledger state: %w", err)
	}

	saved := next.MonthByKey(req.Month)
	s.LogInfo(ctx, "Month upserted",
		slog.String("month", req.Month),
		slog.Int("entries", len(saved.Entries)),
		slog.Int("formula_issues", len(issues)),
	)
	return saved, issues, nil
}

func (s *ledgerService) GetSettings(ctx context.Context) (*domain.Settings, error) {
	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}
	return &state.Settings, nil
}

func (s *ledgerService) UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}

	state.Settings = domain.Settings{
		USDCNHManual:   *req.USDCNHManual,
		EnableAutoFx:   *req.EnableAutoFx,
		BackgroundNote: req.BackgroundNote,
	}
	if err := s.repo.SaveState(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save ledger state: %w", err)
	}
	return &state.Settings, nil
}

func (s *ledgerService) State(ctx context.Context) (domain.LedgerState, error) {
	state, err := s.repo.LoadState(ctx)
	if err != nil {
		return domain.LedgerState{}, fmt.Errorf("failed to load ledger state: %w", err)
	}
	return state, nil
}

func (s *ledgerService) ReplaceState(ctx context.Context, state domain.LedgerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveState(ctx, state); err != nil {
		return fmt.Errorf("failed to save ledger state: %w", err)
	}
	return nil
}

// hasDivergedAmounts reports whether any entry's cached amount differs from
// a fresh successful evaluation of its formula. Failing formulas never count
// as diverged: the last good amount stands.
func hasDivergedAmounts(entries []domain.MonthlyEntry) bool {
	for _, e := range entries {
		value, err := formula.Evaluate(e.Formula)
		if err == nil && value != e.Amount {
			return true
		}
	}
	return false
}

// syncFormulaAmounts is the asynchronous write-back: it re-evaluates the
// stored record's formulas and persists any amounts that diverged. It is
// idempotent (an already-synced record is a no-op) and re-checks under the
// lock, so a formula edited between scheduling and application wins.
func (s *ledgerService) syncFormulaAmounts(logger *slog.Logger, monthKey string) {
	ctx := context.Background()

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.repo.LoadState(ctx)
	if err != nil {
		logger.Error("Formula write-back failed to load state", slog.String("error", err.Error()))
		return
	}
	stored := state.MonthByKey(monthKey)
	if stored == nil {
		return
	}

	changed := 0
	for i := range stored.Entries {
		value, evalErr := formula.Evaluate(stored.Entries[i].Formula)
		if evalErr != nil || value == stored.Entries[i].Amount {
			continue
		}
		stored.Entries[i].Amount = value
		changed++
	}
	if changed == 0 {
		return
	}

	if err := s.repo.SaveState(ctx, state); err != nil {
		logger.Error("Formula write-back failed to save state",
			slog.String("month", monthKey),
			slog.String("error", err.Error()))
		return
	}
	logger.Info("Formula write-back applied",
		slog.String("month", monthKey),
		slog.Int("amounts_updated", changed))
}

// lastGoodAmount returns the cached amount the stored record holds for a
// subject, or 0 when there is none.
func lastGoodAmount(stored *domain.MonthRecord, subjectID string) float64 {
	if stored == nil {
		return 0
	}
	for _, e := range stored.Entries {
		if e.SubjectID == subjectID {
			return e.Amount
		}
	}
	return 0
}
