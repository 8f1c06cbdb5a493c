package validation

import (
	"testing"

	"github.com/asset-hq/nwt_backend/internal/apperrors"
	"github.com/asset-hq/nwt_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validState = `{
	"subjects": [
		{"id": "bank", "name": "Bank", "bucket": "Cash", "defaultCurrency": "CNY"},
		{"id": "broker", "name": "Broker", "bucket": "Invest", "defaultCurrency": "USD", "isIndexLike": true, "includeInNetWorth": false}
	],
	"months": [
		{"month": "2024-01", "entries": [
			{"subjectId": "bank", "currency": "CNY", "formula": "1000", "amount": 1000},
			{"subjectId": "broker", "currency": "USD", "formula": "", "amount": 0}
		], "note": "start"}
	],
	"settings": {"usdcnhManual": 7.2, "enableAutoFx": true}
}`

func TestDecodeState_Valid(t *testing.T) {
	state, err := DecodeState([]byte(validState))

	require.NoError(t, err)
	require.Len(t, state.Subjects, 2)
	assert.Equal(t, "bank", state.Subjects[0].SubjectID)
	assert.Equal(t, domain.BucketCash, state.Subjects[0].Bucket)
	assert.True(t, state.Subjects[0].InNetWorth())
	assert.True(t, state.Subjects[1].IsIndexLike)
	assert.False(t, state.Subjects[1].InNetWorth())

	require.Len(t, state.Months, 1)
	assert.Equal(t, "2024-01", state.Months[0].Month)
	assert.Equal(t, "start", state.Months[0].Note)
	require.Len(t, state.Months[0].Entries, 2)
	assert.Equal(t, 1000.0, state.Months[0].Entries[0].Amount)

	assert.Equal(t, 7.2, state.Settings.USDCNHManual)
	assert.True(t, state.Settings.EnableAutoFx)
}

func TestDecodeState_EmptyCollectionsValid(t *testing.T) {
	raw := `{"subjects": [], "months": [], "settings": {"usdcnhManual": 7.0, "enableAutoFx": false}}`

	state, err := DecodeState([]byte(raw))

	require.NoError(t, err)
	assert.Empty(t, state.Subjects)
	assert.Empty(t, state.Months)
}

func TestDecodeState_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"subjects": [`},
		{"subjects is an object", `{"subjects": {}, "months": [], "settings": {"usdcnhManual": 7.2, "enableAutoFx": true}}`},
		{"months field absent", `{"subjects": [], "settings": {"usdcnhManual": 7.2, "enableAutoFx": true}}`},
		{"settings absent", `{"subjects": [], "months": []}`},
		{"usdcnhManual absent", `{"subjects": [], "months": [], "settings": {"enableAutoFx": true}}`},
		{"enableAutoFx absent", `{"subjects": [], "months": [], "settings": {"usdcnhManual": 7.2}}`},
		{"subject missing id", `{"subjects": [{"name": "X", "bucket": "Cash", "defaultCurrency": "CNY"}], "months": [], "settings": {"usdcnhManual": 7.2, "enableAutoFx": true}}`},
		{"unknown bucket", `{"subjects": [{"id": "x", "name": "X", "bucket": "Stocks", "defaultCurrency": "CNY"}], "months": [], "settings": {"usdcnhManual": 7.2, "enableAutoFx": true}}`},
		{"unknown currency", `{"subjects": [{"id": "x", "name": "X", "bucket": "Cash", "defaultCurrency": "EUR"}], "months": [], "settings": {"usdcnhManual": 7.2, "enableAutoFx": true}}`},
		{"month key not calendar", `{"subjects": [], "months": [{"month": "2024-13", "entries": []}], "settings": {"usdcnhManual": 7.2, "enableAutoFx": true}}`},
		{"month key malformed", `{"subjects": [], "months": [{"month": "202401", "entries": []}], "settings": {"usdcnhManual": 7.2, "enableAutoFx": true}}`},
		{"entry missing amount", `{"subjects": [], "months": [{"month": "2024-01", "entries": [{"subjectId": "x", "currency": "CNY", "formula": ""}]}], "settings": {"usdcnhManual": 7.2, "enableAutoFx": true}}`},
		{"entry amount is a string", `{"subjects": [], "months": [{"month": "2024-01", "entries": [{"subjectId": "x", "currency": "CNY", "formula": "", "amount": "10"}]}], "settings": {"usdcnhManual": 7.2, "enableAutoFx": true}}`},
		{"top level array", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeState([]byte(tt.raw))
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestUnwrap(t *testing.T) {
	enveloped := `{"schemaVersion": 1, "state": {"subjects": []}}`
	assert.JSONEq(t, `{"subjects": []}`, string(Unwrap([]byte(enveloped))))

	bare := `{"subjects": []}`
	assert.Equal(t, bare, string(Unwrap([]byte(bare))))

	// A version without a state field is not an envelope.
	versionOnly := `{"schemaVersion": 1}`
	assert.Equal(t, versionOnly, string(Unwrap([]byte(versionOnly))))

	notJSON := `garbage`
	assert.Equal(t, notJSON, string(Unwrap([]byte(notJSON))))
}

func TestDecodeCandidate_Enveloped(t *testing.T) {
	raw := `{"schemaVersion": 1, "state": ` + validState + `}`

	state, err := DecodeCandidate([]byte(raw))

	require.NoError(t, err)
	assert.Len(t, state.Subjects, 2)
	assert.Len(t, state.Months, 1)
}

func TestDecodeCandidate_EnvelopedInvalidState(t *testing.T) {
	raw := `{"schemaVersion": 1, "state": {"subjects": []}}`

	_, err := DecodeCandidate([]byte(raw))

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
