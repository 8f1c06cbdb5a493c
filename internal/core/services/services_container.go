package services

import (
	portsrepo "github.com/asset-hq/nwt_backend/internal/core/ports/repositories"
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/pkg/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, fxProvider portssvc.FXQuoteProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Ledger = NewLedgerService(repos.LedgerRepo)
	container.FX = NewFXService(fxProvider, cfg.FXQuoteTTL)
	container.Reporting = NewReportingService(repos.LedgerRepo, container.FX)
	container.Backup = NewBackupService(container.Ledger)

	return container
}

// Compile-time interface checks for the concrete services.
var (
	_ portssvc.LedgerSvcFacade    = (*ledgerService)(nil)
	_ portssvc.ReportingSvcFacade = (*reportingService)(nil)
	_ portssvc.FXSvcFacade        = (*fxService)(nil)
	_ portssvc.BackupSvcFacade    = (*backupService)(nil)
)
