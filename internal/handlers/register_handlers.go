package handlers

import (
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/middleware"
	"github.com/asset-hq/nwt_backend/pkg/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// using interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Health check stays public.
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// entity route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.APIKeyAuth(cfg.APIKey))

	registerSubjectRoutes(v1, services.Ledger)
	registerMonthRoutes(v1, services.Ledger)
	registerSettingsRoutes(v1, services.Ledger)
	registerReportingRoutes(v1, services.Reporting)
	registerFXRoutes(v1, services.FX, services.Ledger)
	registerFormulaRoutes(v1)
	registerBackupRoutes(v1, services.Backup)
}
