package dto

import (
	"github.com/asset-hq/nwt_backend/internal/core/domain"
)

// BackupSchemaVersion tags exported envelopes. Import accepts both wrapped
// and bare states; see internal/validation.
const BackupSchemaVersion = 1

// BackupEnvelope is the versioned JSON envelope produced by export and
// accepted by import.
type BackupEnvelope struct {
	SchemaVersion int                `json:"schemaVersion"`
	State         domain.LedgerState `json:"state"`
}
