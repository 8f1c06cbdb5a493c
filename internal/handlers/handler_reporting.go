package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/asset-hq/nwt_backend/internal/apperrors"
	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/dto"
	"github.com/asset-hq/nwt_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for valuations and the net-worth
// series.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers routes related to reports.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/networth", h.netWorth)
		reports.GET("/series", h.series)
	}
}

// rateOverride parses an optional ?rate= query parameter pinning the
// conversion rate for this request. ParseFloat accepts "NaN" and "Inf";
// those must never reach the valuation engine.
func rateOverride(c *gin.Context) (*float64, error) {
	raw := c.Query("rate")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("rate must be a finite number")
	}
	return &v, nil
}

// netWorth godoc
// @Summary Net worth totals for one month
// @Produce json
// @Param month query string true "Month key (YYYY-MM)"
// @Param rate query number false "Override the working USDCNH rate"
// @Success 200 {object} dto.NetWorthResponse
// @Failure 400 {object} map[string]string "Invalid month key or rate"
// @Router /reports/networth [get]
func (h *reportingHandler) netWorth(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)
	monthKey := c.Query("month")

	override, err := rateOverride(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rate parameter"})
		return
	}

	report, err := h.reportingService.NetWorth(c.Request.Context(), monthKey, override)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to compute net worth", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute net worth"})
		return
	}

	c.JSON(http.StatusOK, dto.ToNetWorthResponse(report.Month, report.Value, report.Rate, report.RateSource))
}

// series godoc
// @Summary Net worth series across all stored months
// @Produce json
// @Param rate query number false "Override the working USDCNH rate"
// @Success 200 {object} dto.SeriesResponse
// @Router /reports/series [get]
func (h *reportingHandler) series(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	override, err := rateOverride(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rate parameter"})
		return
	}

	report, err := h.reportingService.Series(c.Request.Context(), override)
	if err != nil {
		logger.Error("Failed to build series", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build series"})
		return
	}

	c.JSON(http.StatusOK, dto.ToSeriesResponse(report.Points, report.Rate, report.RateSource))
}
