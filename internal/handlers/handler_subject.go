package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/asset-hq/nwt_backend/internal/apperrors"
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/dto"
	"github.com/asset-hq/nwt_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// subjectHandler handles HTTP requests related to the subject catalog.
type subjectHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newSubjectHandler(ls portssvc.LedgerSvcFacade) *subjectHandler {
	return &subjectHandler{ledgerService: ls}
}

// registerSubjectRoutes registers routes related to subjects.
func registerSubjectRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newSubjectHandler(ledgerService)

	subjects := rg.Group("/subjects")
	{
		subjects.GET("", h.listSubjects)
		subjects.POST("", h.createSubject)
		subjects.PUT("/:subjectID", h.updateSubject)
		subjects.DELETE("/:subjectID", h.removeSubject)
	}
}

// listSubjects godoc
// @Summary List catalog subjects
// @Produce json
// @Success 200 {array} dto.SubjectResponse
// @Router /subjects [get]
func (h *subjectHandler) listSubjects(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	subjects, err := h.ledgerService.ListSubjects(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list subjects", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list subjects"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListSubjectResponse(subjects))
}

// createSubject godoc
// @Summary Add a subject to the catalog
// @Accept json
// @Produce json
// @Param subject body dto.CreateSubjectRequest true "Subject details"
// @Success 201 {object} dto.SubjectResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /subjects [post]
func (h *subjectHandler) createSubject(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSubject", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	created, err := h.ledgerService.CreateSubject(c.Request.Context(), req)
	if err != nil {
		logger.Error("Failed to create subject", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subject"})
		return
	}

	logger.Info("Subject created", slog.String("subject_id", created.SubjectID))
	c.JSON(http.StatusCreated, dto.ToSubjectResponse(created))
}

// updateSubject godoc
// @Summary Update a subject in place
// @Accept json
// @Produce json
// @Param subjectID path string true "Subject ID"
// @Param subject body dto.UpdateSubjectRequest true "Fields to update"
// @Success 200 {object} dto.SubjectResponse
// @Failure 404 {object} map[string]string "Subject not found"
// @Router /subjects/{subjectID} [put]
func (h *subjectHandler) updateSubject(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	subjectID := c.Param("subjectID")

	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateSubject", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	updated, err := h.ledgerService.UpdateSubject(c.Request.Context(), subjectID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
			return
		}
		logger.Error("Failed to update subject", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subject"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSubjectResponse(updated))
}

// removeSubject godoc
// @Summary Remove a subject and its entries across all months
// @Produce json
// @Param subjectID path string true "Subject ID"
// @Success 204 "Removed"
// @Failure 404 {object} map[string]string "Subject not found"
// @Router /subjects/{subjectID} [delete]
func (h *subjectHandler) removeSubject(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	subjectID := c.Param("subjectID")

	if err := h.ledgerService.RemoveSubject(c.Request.Context(), subjectID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
			return
		}
		logger.Error("Failed to remove subject", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove subject"})
		return
	}

	logger.Info("Subject removed", slog.String("subject_id", subjectID))
	c.Status(http.StatusNoContent)
}
