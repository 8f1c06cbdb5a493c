package services

import (
	"context"

	"github.com/asset-hq/nwt_backend/internal/core/domain"
	"github.com/asset-hq/nwt_backend/internal/dto"
)

// FormulaIssue reports a per-entry formula evaluation failure. Issues are
// never fatal: the entry keeps its last good cached amount.
type FormulaIssue struct {
	SubjectID string `json:"subjectId"`
	Message   string `json:"message"`
}

// LedgerSvcFacade is the reconciler and the single mutation path for the
// subject catalog and month history.
type LedgerSvcFacade interface {
	// Subject catalog.
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	CreateSubject(ctx context.Context, req dto.CreateSubjectRequest) (*domain.Subject, error)
	UpdateSubject(ctx context.Context, subjectID string, req dto.UpdateSubjectRequest) (*domain.Subject, error)
	// RemoveSubject deletes the subject and, in the same write, every entry
	// referencing it across all months.
	RemoveSubject(ctx context.Context, subjectID string) error

	// GetMonth returns the record for monthKey reconciled against the current
	// catalog. Reading a month that was never stored synthesizes a record
	// without persisting it. Diverged cached amounts are scheduled for an
	// asynchronous write-back.
	GetMonth(ctx context.Context, monthKey string) (*domain.MonthRecord, error)
	// UpsertMonth evaluates entry formulas, reconciles the record and
	// replaces-or-inserts it, keeping months sorted ascending. Evaluation
	// failures come back as issues; the affected entries keep their stored
	// amounts.
	UpsertMonth(ctx context.Context, req dto.UpsertMonthRequest) (*domain.MonthRecord, []FormulaIssue, error)

	GetSettings(ctx context.Context) (*domain.Settings, error)
	UpdateSettings(ctx context.Context, req dto.UpdateSettingsRequest) (*domain.Settings, error)

	// State returns a copy of the full current state (reports, export).
	State(ctx context.Context) (domain.LedgerState, error)
	// ReplaceState adopts a validated state wholesale (import).
	ReplaceState(ctx context.Context, state domain.LedgerState) error
}
