package services

import (
	"context"
	"fmt"
	"log/slog"

	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/dto"
	"github.com/asset-hq/nwt_backend/internal/validation"
)

// backupService implements the BackupSvcFacade interface: the versioned
// envelope on the way out, the schema validator on the way in. It goes
// through the ledger facade rather than the repository, so an import is
// serialized with every other ledger write (including the asynchronous
// formula write-back) and can never be reverted by one racing it.
type backupService struct {
	BaseService
	ledger portssvc.LedgerSvcFacade
}

// NewBackupService creates a new backup service over the ledger facade.
func NewBackupService(ledger portssvc.LedgerSvcFacade) portssvc.BackupSvcFacade {
	return &backupService{ledger: ledger}
}

var _ portssvc.BackupSvcFacade = (*backupService)(nil)

func (s *backupService) Export(ctx context.Context) (*dto.BackupEnvelope, error) {
	state, err := s.ledger.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger state: %w", err)
	}
	return &dto.BackupEnvelope{
		SchemaVersion: dto.BackupSchemaVersion,
		State:         state,
	}, nil
}

// Import validates the candidate (with or without the envelope) and adopts
// it wholesale. A failing candidate mutates nothing.
func (s *backupService) Import(ctx context.Context, raw []byte) error {
	state, err := validation.DecodeCandidate(raw)
	if err != nil {
		s.LogWarn(ctx, "Import rejected by schema validator", slog.String("error", err.Error()))
		return err
	}

	if err := s.ledger.ReplaceState(ctx, state); err != nil {
		return fmt.Errorf("failed to adopt imported state: %w", err)
	}

	s.LogInfo(ctx, "Ledger state imported",
		slog.Int("subjects", len(state.Subjects)),
		slog.Int("months", len(state.Months)),
	)
	return nil
}
