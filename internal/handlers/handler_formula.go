package handlers

import (
	"net/http"

	"github.com/asset-hq/nwt_backend/internal/dto"
	"github.com/asset-hq/nwt_backend/internal/utils/formula"
	"github.com/gin-gonic/gin"
)

// registerFormulaRoutes registers the formula preview endpoint used by the
// entry editor for live evaluation.
func registerFormulaRoutes(rg *gin.RouterGroup) {
	rg.POST("/formula/eval", evalFormula)
}

// evalFormula godoc
// @Summary Evaluate a formula without storing anything
// @Accept json
// @Produce json
// @Param formula body dto.EvalFormulaRequest true "Formula text"
// @Success 200 {object} dto.EvalFormulaResponse
// @Router /formula/eval [post]
func evalFormula(c *gin.Context) {
	var req dto.EvalFormulaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	value, err := formula.Evaluate(req.Formula)
	if err != nil {
		c.JSON(http.StatusOK, dto.EvalFormulaResponse{Ok: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.EvalFormulaResponse{Ok: true, Value: value})
}
