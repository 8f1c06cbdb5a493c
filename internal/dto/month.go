package dto

import (
	"github.com/asset-hq/nwt_backend/internal/core/domain"
)

// UpsertEntryRequest is one entry in a month upsert. The formula is the
// source of truth; the service evaluates it into the cached amount.
type UpsertEntryRequest struct {
	SubjectID string `json:"subjectId" binding:"required"`
	Currency  string `json:"currency" binding:"required,oneof=CNY USD"`
	Formula   string `json:"formula"`
}

// UpsertMonthRequest replaces-or-inserts the record for one month. The month
// key comes from the URL path.
type UpsertMonthRequest struct {
	Month   string               `json:"-"`
	Entries []UpsertEntryRequest `json:"entries" binding:"required,dive"`
	Note    string               `json:"note"`
}

// EntryResponse defines the data returned for a monthly entry.
type EntryResponse struct {
	SubjectID string  `json:"subjectId"`
	Currency  string  `json:"currency"`
	Formula   string  `json:"formula"`
	Amount    float64 `json:"amount"`
}

// MonthResponse defines the data returned for a month record.
type MonthResponse struct {
	Month   string          `json:"month"`
	Entries []EntryResponse `json:"entries"`
	Note    string          `json:"note,omitempty"`
}

// FormulaIssueResponse reports a per-entry formula failure in an upsert
// response. The entry keeps its previous amount.
type FormulaIssueResponse struct {
	SubjectID string `json:"subjectId"`
	Message   string `json:"message"`
}

// UpsertMonthResponse is the persisted record plus any evaluation issues.
type UpsertMonthResponse struct {
	Record MonthResponse          `json:"record"`
	Issues []FormulaIssueResponse `json:"issues,omitempty"`
}

// ToMonthResponse converts a domain.MonthRecord to a MonthResponse DTO.
func ToMonthResponse(m *domain.MonthRecord) MonthResponse {
	entries := make([]EntryResponse, len(m.Entries))
	for i, e := range m.Entries {
		entries[i] = EntryResponse{
			SubjectID: e.SubjectID,
			Currency:  string(e.Currency),
			Formula:   e.Formula,
			Amount:    e.Amount,
		}
	}
	return MonthResponse{
		Month:   m.Month,
		Entries: entries,
		Note:    m.Note,
	}
}
