package services

import (
	"context"

	"github.com/asset-hq/nwt_backend/internal/dto"
)

// BackupSvcFacade produces and consumes the versioned backup envelope.
// Import is all-or-nothing: a candidate that fails validation leaves the
// existing state untouched.
type BackupSvcFacade interface {
	Export(ctx context.Context) (*dto.BackupEnvelope, error)
	Import(ctx context.Context, raw []byte) error
}
