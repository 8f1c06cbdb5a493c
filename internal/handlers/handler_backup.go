package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/asset-hq/nwt_backend/internal/apperrors"
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maxImportBytes bounds the import payload; a personal ledger never gets
// close to this.
const maxImportBytes = 8 << 20

// backupHandler handles export/import of the versioned backup envelope.
type backupHandler struct {
	backupService portssvc.BackupSvcFacade
}

// registerBackupRoutes registers routes related to backup and restore.
func registerBackupRoutes(rg *gin.RouterGroup, backupService portssvc.BackupSvcFacade) {
	h := &backupHandler{backupService: backupService}

	backup := rg.Group("/backup")
	{
		backup.GET("/export", h.exportState)
		backup.POST("/import", h.importState)
	}
}

// exportState godoc
// @Summary Export the ledger as a versioned JSON envelope
// @Produce json
// @Success 200 {object} dto.BackupEnvelope
// @Router /backup/export [get]
func (h *backupHandler) exportState(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	envelope, err := h.backupService.Export(c.Request.Context())
	if err != nil {
		logger.Error("Failed to export state", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export state"})
		return
	}

	c.JSON(http.StatusOK, envelope)
}

// importState godoc
// @Summary Import a ledger backup
// @Description Accepts a raw LedgerState or a {schemaVersion, state} envelope. A candidate failing validation is rejected in full; the existing state is untouched.
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Candidate rejected"
// @Router /backup/import [post]
func (h *backupHandler) importState(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	if err := h.backupService.Import(c.Request.Context(), raw); err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Import rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to import state", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "imported"})
}
