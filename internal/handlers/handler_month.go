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

// monthHandler handles HTTP requests related to month records.
type monthHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newMonthHandler(ls portssvc.LedgerSvcFacade) *monthHandler {
	return &monthHandler{ledgerService: ls}
}

// registerMonthRoutes registers routes related to month records.
func registerMonthRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newMonthHandler(ledgerService)

	months := rg.Group("/months")
	{
		months.GET("/:month", h.getMonth)
		months.PUT("/:month", h.upsertMonth)
	}
}

// getMonth godoc
// @Summary Get the reconciled record for one month
// @Description Returns the month's entries aligned with the current subject catalog. A month that was never stored is synthesized without being persisted.
// @Produce json
// @Param month path string true "Month key (YYYY-MM)"
// @Success 200 {object} dto.MonthResponse
// @Failure 400 {object} map[string]string "Invalid month key"
// @Router /months/{month} [get]
func (h *monthHandler) getMonth(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	monthKey := c.Param("month")

	record, err := h.ledgerService.GetMonth(c.Request.Context(), monthKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to get month", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve month"})
		return
	}

	c.JSON(http.StatusOK, dto.ToMonthResponse(record))
}

// upsertMonth godoc
// @Summary Replace-or-insert the record for one month
// @Description Evaluates each entry's formula into its cached amount. Entries whose formula fails keep their last good amount and are reported as issues.
// @Accept json
// @Produce json
// @Param month path string true "Month key (YYYY-MM)"
// @Param record body dto.UpsertMonthRequest true "Month entries"
// @Success 200 {object} dto.UpsertMonthResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Router /months/{month} [put]
func (h *monthHandler) upsertMonth(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	var req dto.UpsertMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertMonth", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.Month = c.Param("month")

	record, issues, err := h.ledgerService.UpsertMonth(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to upsert month", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save month"})
		return
	}

	res := dto.UpsertMonthResponse{Record: dto.ToMonthResponse(record)}
	for _, issue := range issues {
		res.Issues = append(res.Issues, dto.FormulaIssueResponse{
			SubjectID: issue.SubjectID,
			Message:   issue.Message,
		})
	}
	c.JSON(http.StatusOK, res)
}
