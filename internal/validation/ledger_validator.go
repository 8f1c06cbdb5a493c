// Package validation is the acceptance gate for externally sourced ledger
// state: persisted blobs and backup imports. Candidates are decoded into
// wire structs whose pointer fields distinguish "absent" from zero values,
// then checked against the structural contract with validator/v10. A failing
// candidate is rejected whole; nothing is coerced or normalized.
package validation

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/asset-hq/nwt_backend/internal/apperrors"
	"github.com/asset-hq/nwt_backend/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

type wireSubject struct {
	ID                *string `json:"id" validate:"required"`
	Name              *string `json:"name" validate:"required"`
	Bucket            *string `json:"bucket" validate:"required,oneof=Cash Invest Social Other"`
	DefaultCurrency   *string `json:"defaultCurrency" validate:"required,oneof=CNY USD"`
	IsIndexLike       *bool   `json:"isIndexLike"`
	IncludeInNetWorth *bool   `json:"includeInNetWorth"`
}

type wireEntry struct {
	SubjectID *string  `json:"subjectId" validate:"required"`
	Currency  *string  `json:"currency" validate:"required,oneof=CNY USD"`
	Formula   *string  `json:"formula" validate:"required"`
	Amount    *float64 `json:"amount" validate:"required"`
}

type wireMonthRecord struct {
	Month   *string     `json:"month" validate:"required,yyyymm"`
	Entries []wireEntry `json:"entries" validate:"required,dive"`
	Note    *string     `json:"note"`
}

type wireSettings struct {
	USDCNHManual   *float64 `json:"usdcnhManual" validate:"required"`
	EnableAutoFx   *bool    `json:"enableAutoFx" validate:"required"`
	BackgroundNote *string  `json:"backgroundNote"`
}

type wireState struct {
	Subjects []wireSubject     `json:"subjects" validate:"required,dive"`
	Months   []wireMonthRecord `json:"months" validate:"required,dive"`
	Settings *wireSettings     `json:"settings" validate:"required"`
}

// envelope is the optional versioned wrapper produced by backup/export.
type envelope struct {
	SchemaVersion *float64        `json:"schemaVersion"`
	State         json.RawMessage `json:"state"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Calendar months only: YYYY-MM with MM in 01..12.
	_ = v.RegisterValidation("yyyymm", func(fl validator.FieldLevel) bool {
		return domain.IsValidMonthKey(fl.Field().String())
	})
	return v
}

// Unwrap strips the versioned backup envelope if present: when the outer
// value carries a numeric schemaVersion and a distinct state field, the
// inner state is the candidate; otherwise the outer value is.
func Unwrap(raw []byte) []byte {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return raw
	}
	if env.SchemaVersion != nil && len(env.State) > 0 {
		return env.State
	}
	return raw
}

// DecodeState validates an untrusted JSON candidate against the LedgerState
// contract and returns the decoded state. Any structural mismatch (arrays
// where objects are expected, missing fields, unknown enum values, malformed
// month keys, non-finite numbers) rejects the candidate as a whole with an
// error wrapping apperrors.ErrValidation.
func DecodeState(raw []byte) (domain.LedgerState, error) {
	var w wireState
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.LedgerState{}, fmt.Errorf("%w: malformed ledger state: %v", apperrors.ErrValidation, err)
	}
	if err := validate.Struct(&w); err != nil {
		return domain.LedgerState{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := checkFinite(&w); err != nil {
		return domain.LedgerState{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	state := domain.LedgerState{
		Subjects: make([]domain.Subject, len(w.Subjects)),
		Months:   make([]domain.MonthRecord, len(w.Months)),
		Settings: domain.Settings{
			USDCNHManual: *w.Settings.USDCNHManual,
			EnableAutoFx: *w.Settings.EnableAutoFx,
		},
	}
	if w.Settings.BackgroundNote != nil {
		state.Settings.BackgroundNote = *w.Settings.BackgroundNote
	}
	for i, s := range w.Subjects {
		subject := domain.Subject{
			SubjectID:         *s.ID,
			Bucket:            domain.Bucket(*s.Bucket),
			DefaultCurrency:   domain.Currency(*s.DefaultCurrency),
			IncludeInNetWorth: s.IncludeInNetWorth,
		}
		if s.Name != nil {
			subject.Name = *s.Name
		}
		if s.IsIndexLike != nil {
			subject.IsIndexLike = *s.IsIndexLike
		}
		state.Subjects[i] = subject
	}
	for i, m := range w.Months {
		record := domain.MonthRecord{
			Month:   *m.Month,
			Entries: make([]domain.MonthlyEntry, len(m.Entries)),
		}
		if m.Note != nil {
			record.Note = *m.Note
		}
		for j, e := range m.Entries {
			record.Entries[j] = domain.MonthlyEntry{
				SubjectID: *e.SubjectID,
				Currency:  domain.Currency(*e.Currency),
				Formula:   *e.Formula,
				Amount:    *e.Amount,
			}
		}
		state.Months[i] = record
	}
	return state, nil
}

// DecodeCandidate unwraps an optional backup envelope and validates the
// candidate inside it. This is the single entry point for import payloads.
func DecodeCandidate(raw []byte) (domain.LedgerState, error) {
	return DecodeState(Unwrap(raw))
}

func checkFinite(w *wireState) error {
	if math.IsNaN(*w.Settings.USDCNHManual) || math.IsInf(*w.Settings.USDCNHManual, 0) {
		return fmt.Errorf("settings.usdcnhManual is not finite")
	}
	for _, m := range w.Months {
		for _, e := range m.Entries {
			if math.IsNaN(*e.Amount) || math.IsInf(*e.Amount, 0) {
				return fmt.Errorf("entry amount for subject %q in %s is not finite", *e.SubjectID, *m.Month)
			}
		}
	}
	return nil
}
