package services

import (
	"sort"

	"github.com/asset-hq/nwt_backend/internal/core/domain"
)

// The functions in this file are the pure reconciliation core: they take
// state values in and return new state values, leaving their inputs
// untouched. The ledger service wraps them with persistence.

// ReconcileMonth produces a canonical record for monthKey whose entries
// exactly match the subject catalog: one entry per subject, in catalog
// order. Stored entries with a matching subject are kept unchanged; missing
// ones are synthesized with the subject's default currency, an empty formula
// and amount 0; entries referencing no current subject are dropped.
func ReconcileMonth(subjects []domain.Subject, monthKey string, stored *domain.MonthRecord) domain.MonthRecord {
	record := domain.MonthRecord{
		Month:   monthKey,
		Entries: make([]domain.MonthlyEntry, 0, len(subjects)),
	}

	var existing map[string]domain.MonthlyEntry
	if stored != nil {
		record.Note = stored.Note
		existing = make(map[string]domain.MonthlyEntry, len(stored.Entries))
		for _, e := range stored.Entries {
			existing[e.SubjectID] = e
		}
	}

	for _, subject := range subjects {
		if hit, ok := existing[subject.SubjectID]; ok {
			record.Entries = append(record.Entries, hit)
			continue
		}
		record.Entries = append(record.Entries, domain.MonthlyEntry{
			SubjectID: subject.SubjectID,
			Currency:  subject.DefaultCurrency,
			Formula:   "",
			Amount:    0,
		})
	}
	return record
}

// UpsertMonthState reconciles record against the state's catalog, then
// replaces any stored record with the same month key (or inserts it) and
// re-sorts months ascending. This is the sole mutation path for the month
// history and is idempotent.
func UpsertMonthState(state domain.LedgerState, record domain.MonthRecord) domain.LedgerState {
	merged := ReconcileMonth(state.Subjects, record.Month, &record)

	out := state.Clone()
	months := out.Months[:0]
	for _, m := range out.Months {
		if m.Month != merged.Month {
			months = append(months, m)
		}
	}
	months = append(months, merged)
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	out.Months = months
	return out
}

// RemoveSubjectState removes the subject and every entry referencing it
// across all months in one step, so no partially cascaded state is ever
// observable.
func RemoveSubjectState(state domain.LedgerState, subjectID string) domain.LedgerState {
	out := state.Clone()

	subjects := out.Subjects[:0]
	for _, s := range out.Subjects {
		if s.SubjectID != subjectID {
			subjects = append(subjects, s)
		}
	}
	out.Subjects = subjects

	for i := range out.Months {
		entries := out.Months[i].Entries[:0]
		for _, e := range out.Months[i].Entries {
			if e.SubjectID != subjectID {
				entries = append(entries, e)
			}
		}
		out.Months[i].Entries = entries
	}
	return out
}
