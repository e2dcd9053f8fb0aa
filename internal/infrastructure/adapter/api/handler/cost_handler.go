package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/reelkit/credits-service/internal/domain/entity"
	domainerr "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	costUseCase "github.com/reelkit/credits-service/internal/domain/usecase/cost"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// CostHandler handles admin cost table HTTP requests
type CostHandler struct {
	costResolver *costUseCase.Resolver
	logger       coreport.Logger
}

// NewCostHandler creates a new cost handler instance
func NewCostHandler(costResolver *costUseCase.Resolver, logger coreport.Logger) *CostHandler {
	return &CostHandler{
		costResolver: costResolver,
		logger:       logger,
	}
}

// GetCosts handles the GET /api/v1/admin/costs endpoint
func (h *CostHandler) GetCosts(c *gin.Context) {
	table, version, err := h.costResolver.Overrides(c.Request.Context())
	if err != nil {
		if errors.Is(err, domainerr.ErrCostConfigMissing) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(err),
				Message: "No cost override table configured",
			})
			return
		}
		h.logger.Error("Error reading cost table", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInternalServer),
			Message: "Internal server error",
		})
		return
	}

	raw, err := json.Marshal(table)
	if err != nil {
		h.logger.Error("Error marshaling cost table", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInternalServer),
			Message: "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, dto.CostTableResponse{
		Version: version,
		Costs:   raw,
	})
}

// UpdateCosts handles the PUT /api/v1/admin/costs endpoint
func (h *CostHandler) UpdateCosts(c *gin.Context) {
	var table entity.CostTable
	if err := c.ShouldBindJSON(&table); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid cost table format: " + err.Error(),
		})
		return
	}

	version, err := h.costResolver.SetOverrides(c.Request.Context(), table)
	if err != nil {
		if errors.Is(err, domainerr.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(err),
				Message: "Invalid cost table: " + err.Error(),
			})
			return
		}
		h.logger.Error("Error updating cost table", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInternalServer),
			Message: "Internal server error",
		})
		return
	}

	raw, err := json.Marshal(table)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInternalServer),
			Message: "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, dto.CostTableResponse{
		Version: version,
		Costs:   raw,
	})
}
