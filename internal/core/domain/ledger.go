package domain

import "regexp"

// Currency is one of the two currencies the ledger tracks.
type Currency string

const (
	CurrencyCNY Currency = "CNY"
	CurrencyUSD Currency = "USD"
)

// IsValid reports whether the currency is one of the supported codes.
func (c Currency) IsValid() bool {
	return c == CurrencyCNY || c == CurrencyUSD
}

// Bucket is the coarse category of a subject.
type Bucket string

const (
	BucketCash   Bucket = "Cash"
	BucketInvest Bucket = "Invest"
	BucketSocial Bucket = "Social"
	BucketOther  Bucket = "Other"
)

// Buckets returns all buckets in display order.
func Buckets() []Bucket {
	return []Bucket{BucketCash, BucketInvest, BucketSocial, BucketOther}
}

// IsValid reports whether the bucket is one of the known categories.
func (b Bucket) IsValid() bool {
	switch b {
	case BucketCash, BucketInvest, BucketSocial, BucketOther:
		return true
	}
	return false
}

// Subject represents a named financial account or holding tracked across
// months. Subject IDs are unique, stable and never reused; monthly entries
// reference subjects only by ID.
type Subject struct {
	SubjectID         string   `json:"id"`
	Name              string   `json:"name"`
	Bucket            Bucket   `json:"bucket"`
	DefaultCurrency   Currency `json:"defaultCurrency"`
	IsIndexLike       bool     `json:"isIndexLike,omitempty"`
	IncludeInNetWorth *bool    `json:"includeInNetWorth,omitempty"`
}

// InNetWorth reports whether the subject participates in net worth totals.
// Only an explicit false opts a subject out; absence means included.
func (s Subject) InNetWorth() bool {
	return s.IncludeInNetWorth == nil || *s.IncludeInNetWorth
}

// MonthlyEntry is the value recorded for one subject in one month.
// Formula is the source of truth; Amount caches its last successful
// evaluation.
type MonthlyEntry struct {
	SubjectID string   `json:"subjectId"`
	Currency  Currency `json:"currency"`
	Formula   string   `json:"formula"`
	Amount    float64  `json:"amount"`
}

// MonthRecord holds the entries for one calendar month.
type MonthRecord struct {
	Month   string         `json:"month"`
	Entries []MonthlyEntry `json:"entries"`
	Note    string         `json:"note,omitempty"`
}

// Settings holds the user-level configuration stored with the ledger.
type Settings struct {
	USDCNHManual   float64 `json:"usdcnhManual"`
	EnableAutoFx   bool    `json:"enableAutoFx"`
	BackgroundNote string  `json:"backgroundNote,omitempty"`
}

// LedgerState is the root aggregate: the subject catalog, the month history
// (sorted ascending by month key) and settings.
type LedgerState struct {
	Subjects []Subject     `json:"subjects"`
	Months   []MonthRecord `json:"months"`
	Settings Settings      `json:"settings"`
}

var monthKeyRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// IsValidMonthKey reports whether s is a YYYY-MM key with a calendar month
// in 01..12. Lexicographic order on valid keys equals chronological order.
func IsValidMonthKey(s string) bool {
	return monthKeyRegex.MatchString(s)
}

// SubjectByID returns the subject with the given ID, or nil.
func (st LedgerState) SubjectByID(subjectID string) *Subject {
	for i := range st.Subjects {
		if st.Subjects[i].SubjectID == subjectID {
			return &st.Subjects[i]
		}
	}
	return nil
}

// MonthByKey returns the stored record for the given month key, or nil.
// It never synthesizes a record; reconciliation is the ledger service's job.
func (st LedgerState) MonthByKey(month string) *MonthRecord {
	for i := range st.Months {
		if st.Months[i].Month == month {
			return &st.Months[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the state, so callers can mutate the copy
// without aliasing the original's slices.
func (st LedgerState) Clone() LedgerState {
	out := LedgerState{
		Subjects: make([]Subject, len(st.Subjects)),
		Months:   make([]MonthRecord, len(st.Months)),
		Settings: st.Settings,
	}
	for i, s := range st.Subjects {
		if s.IncludeInNetWorth != nil {
			v := *s.IncludeInNetWorth
			s.IncludeInNetWorth = &v
		}
		out.Subjects[i] = s
	}
	for i, m := range st.Months {
		entries := make([]MonthlyEntry, len(m.Entries))
		copy(entries, m.Entries)
		m.Entries = entries
		out.Months[i] = m
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

// DefaultState returns the starter ledger used when no persisted state
// exists or the persisted state fails validation.
func DefaultState() LedgerState {
	return LedgerState{
		Subjects: []Subject{
			{SubjectID: "wechat", Name: "WeChat Pay", Bucket: BucketCash, DefaultCurrency: CurrencyCNY, IncludeInNetWorth: boolPtr(true)},
			{SubjectID: "alipay", Name: "Alipay", Bucket: BucketCash, DefaultCurrency: CurrencyCNY, IncludeInNetWorth: boolPtr(true)},
			{SubjectID: "bank", Name: "Bank account", Bucket: BucketCash, DefaultCurrency: CurrencyCNY, IncludeInNetWorth: boolPtr(true)},
			{SubjectID: "usdIndex", Name: "USD broker (index ETF)", Bucket: BucketInvest, DefaultCurrency: CurrencyUSD, IsIndexLike: true, IncludeInNetWorth: boolPtr(true)},
			{SubjectID: "usdOther", Name: "USD broker (cash/bonds/stocks)", Bucket: BucketInvest, DefaultCurrency: CurrencyUSD, IncludeInNetWorth: boolPtr(true)},
			{SubjectID: "cnyEtf", Name: "CNY broker (ETF)", Bucket: BucketInvest, DefaultCurrency: CurrencyCNY, IsIndexLike: true, IncludeInNetWorth: boolPtr(true)},
			{SubjectID: "crypto", Name: "Crypto (in USDT)", Bucket: BucketInvest, DefaultCurrency: CurrencyUSD, IncludeInNetWorth: boolPtr(true)},
			{SubjectID: "receivable", Name: "Receivable (next month)", Bucket: BucketOther, DefaultCurrency: CurrencyCNY, IncludeInNetWorth: boolPtr(true)},
			{SubjectID: "housingFund", Name: "Housing fund", Bucket: BucketSocial, DefaultCurrency: CurrencyCNY, IncludeInNetWorth: boolPtr(true)},
		},
		Months: []MonthRecord{},
		Settings: Settings{
			USDCNHManual: 7.2,
			EnableAutoFx: true,
		},
	}
}
