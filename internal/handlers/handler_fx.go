package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/asset-hq/nwt_backend/internal/core/ports/services"
	"github.com/asset-hq/nwt_backend/internal/dto"
	"github.com/asset-hq/nwt_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// fxHandler exposes the resolved working rate.
type fxHandler struct {
	fxService     portssvc.FXSvcFacade
	ledgerService portssvc.LedgerSvcFacade
}

// registerFXRoutes registers routes related to the working FX rate.
func registerFXRoutes(rg *gin.RouterGroup, fxService portssvc.FXSvcFacade, ledgerService portssvc.LedgerSvcFacade) {
	h := &fxHandler{fxService: fxService, ledgerService: ledgerService}

	fx := rg.Group("/fx")
	{
		fx.GET("", h.workingRate)
		fx.POST("/refresh", h.refresh)
	}
}

// workingRate godoc
// @Summary Current working USDCNH rate and its source
// @Produce json
// @Success 200 {object} dto.WorkingRateResponse
// @Router /fx [get]
func (h *fxHandler) workingRate(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	settings, err := h.ledgerService.GetSettings(c.Request.Context())
	if err != nil {
		logger.Error("Failed to load settings for FX resolution", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve working rate"})
		return
	}

	rate := h.fxService.WorkingRate(c.Request.Context(), *settings)
	c.JSON(http.StatusOK, dto.ToWorkingRateResponse(rate.Rate, rate.Source, rate.FetchedAt))
}

// refresh godoc
// @Summary Force a quote refresh from the FX source
// @Produce json
// @Success 200 {object} dto.WorkingRateResponse
// @Failure 502 {object} map[string]string "Quote source unavailable"
// @Router /fx/refresh [post]
func (h *fxHandler) refresh(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	if err := h.fxService.Refresh(c.Request.Context()); err != nil {
		logger.Warn("Manual FX refresh failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Quote source unavailable"})
		return
	}

	settings, err := h.ledgerService.GetSettings(c.Request.Context())
	if err != nil {
		logger.Error("Failed to load settings for FX resolution", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve working rate"})
		return
	}

	rate := h.fxService.WorkingRate(c.Request.Context(), *settings)
	c.JSON(http.StatusOK, dto.ToWorkingRateResponse(rate.Rate, rate.Source, rate.FetchedAt))
}
