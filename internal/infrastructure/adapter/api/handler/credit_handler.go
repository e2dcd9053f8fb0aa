package handler

import (
	"errors"
	"net/http"
	"strconv"

	domainerr "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	costUseCase "github.com/reelkit/credits-service/internal/domain/usecase/cost"
	ledgerUseCase "github.com/reelkit/credits-service/internal/domain/usecase/ledger"
	userUseCase "github.com/reelkit/credits-service/internal/domain/usecase/user"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// CreditHandler handles credit balance and ledger HTTP requests
type CreditHandler struct {
	ledgerService *ledgerUseCase.Service
	costResolver  *costUseCase.Resolver
	userService   *userUseCase.UseCase
	logger        coreport.Logger
}

// NewCreditHandler creates a new credit handler instance
func NewCreditHandler(
	ledgerService *ledgerUseCase.Service,
	costResolver *costUseCase.Resolver,
	userService *userUseCase.UseCase,
	logger coreport.Logger,
) *CreditHandler {
	return &CreditHandler{
		ledgerService: ledgerService,
		costResolver:  costResolver,
		userService:   userService,
		logger:        logger,
	}
}

// CreateUser handles the POST /api/v1/users endpoint. Provisions a credit
// account for a platform user, granting the configured signup bonus.
func (h *CreditHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	created, err := h.userService.CreateUser(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, domainerr.ErrDuplicateUser) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(err),
				Message: "User already exists",
			})
			return
		}
		h.respondLedgerError(c, req.UserID, err)
		return
	}

	c.JSON(http.StatusCreated, dto.BalanceResponse{
		UserID:  created.ID,
		Credits: created.Credits(),
	})
}

// GetBalance handles the GET /api/v1/users/{userId}/credits endpoint
func (h *CreditHandler) GetBalance(c *gin.Context) {
	userIDParam := c.Param("userId")
	userID, err := strconv.ParseUint(userIDParam, 10, 64)
	if err != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidUserID),
			Message: "Invalid user ID format",
		})
		return
	}

	balance, err := h.userService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMessage := "Internal server error"

		if errors.Is(err, domainerr.ErrUserNotFound) {
			statusCode = http.StatusNotFound
			errorMessage = "User not found"
		}

		h.logger.Error("Error getting user balance", map[string]any{
			"userId": userID,
			"error":  err.Error(),
		})

		c.JSON(statusCode, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: errorMessage,
		})
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		UserID:  balance.UserID,
		Credits: balance.Credits,
	})
}

// CheckCredits handles the POST /api/v1/credits/check endpoint
func (h *CreditHandler) CheckCredits(c *gin.Context) {
	var req dto.CheckCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	cost, err := h.resolveCost(c, req.MediaType, req.Model, req.Variant)
	if err != nil {
		return
	}

	allowed, balance, err := h.ledgerService.CheckCredits(c.Request.Context(), req.UserID, cost)
	if err != nil {
		h.respondLedgerError(c, req.UserID, err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckCreditsResponse{
		Allowed: allowed,
		Cost:    cost,
		Balance: balance,
	})
}

// DeductCredits handles the POST /api/v1/credits/deduct endpoint
func (h *CreditHandler) DeductCredits(c *gin.Context) {
	var req dto.DeductCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	cost, err := h.resolveCost(c, req.MediaType, req.Model, req.Variant)
	if err != nil {
		return
	}

	description := req.Description
	if description == "" {
		description = req.MediaType + " generation"
	}

	txn, err := h.ledgerService.DeductCredits(c.Request.Context(), req.UserID, cost, description)
	if err != nil {
		h.respondLedgerError(c, req.UserID, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeductCreditsResponse{
		Reference: txn.Reference,
		UserID:    req.UserID,
		Cost:      cost,
		Balance:   txn.BalanceAfter,
	})
}

// RefundCredits handles the POST /api/v1/credits/refund endpoint
func (h *CreditHandler) RefundCredits(c *gin.Context) {
	var req dto.RefundCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	description := req.Description
	if description == "" {
		description = "generation refund"
	}

	txn, err := h.ledgerService.RefundCredits(c.Request.Context(), req.UserID, req.Amount, description)
	if err != nil {
		if errors.Is(err, domainerr.ErrRefundsDisabled) {
			c.JSON(http.StatusConflict, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(err),
				Message: "Refunds are disabled",
			})
			return
		}
		h.respondLedgerError(c, req.UserID, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeductCreditsResponse{
		Reference: txn.Reference,
		UserID:    req.UserID,
		Cost:      req.Amount,
		Balance:   txn.BalanceAfter,
	})
}

// ListTransactions handles the GET /api/v1/users/{userId}/transactions endpoint
func (h *CreditHandler) ListTransactions(c *gin.Context) {
	userIDParam := c.Param("userId")
	userID, err := strconv.ParseUint(userIDParam, 10, 64)
	if err != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidUserID),
			Message: "Invalid user ID format",
		})
		return
	}

	limit := 0
	if limitParam := c.Query("limit"); limitParam != "" {
		limit, err = strconv.Atoi(limitParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
				Message: "Invalid limit parameter",
			})
			return
		}
	}

	txns, err := h.userService.ListTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		h.respondLedgerError(c, userID, err)
		return
	}

	responses := make([]dto.TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, dto.TransactionResponse{
			Reference:    txn.Reference,
			UserID:       txn.UserID,
			Amount:       txn.Amount,
			Type:         string(txn.Type),
			Description:  txn.Description,
			BalanceAfter: txn.BalanceAfter,
			CreatedAt:    txn.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	c.JSON(http.StatusOK, responses)
}

// resolveCost maps a media type, model and variant to a cost, writing the
// error response itself when resolution fails.
func (h *CreditHandler) resolveCost(c *gin.Context, mediaType, model, variant string) (int64, error) {
	cost, err := h.costResolver.GetCost(c.Request.Context(), mediaType, model, variant)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMessage := "Internal server error"

		switch {
		case errors.Is(err, domainerr.ErrUnknownMediaType):
			statusCode = http.StatusBadRequest
			errorMessage = "Unknown media type: " + mediaType
		case errors.Is(err, domainerr.ErrCostConfigMissing):
			statusCode = http.StatusInternalServerError
			errorMessage = "Cost configuration unavailable"
		}

		h.logger.Error("Error resolving usage cost", map[string]any{
			"mediaType": mediaType,
			"model":     model,
			"variant":   variant,
			"error":     err.Error(),
		})

		c.JSON(statusCode, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: errorMessage,
		})
		return 0, err
	}
	return cost, nil
}

// respondLedgerError maps ledger errors to HTTP responses
func (h *CreditHandler) respondLedgerError(c *gin.Context, userID uint64, err error) {
	var insufficientErr *domainerr.InsufficientCreditsError
	if errors.As(err, &insufficientErr) {
		c.JSON(http.StatusPaymentRequired, dto.InsufficientCreditsResponse{
			Code:      domainerr.ErrorCode(err),
			Message:   "Insufficient credits",
			Required:  insufficientErr.Required,
			Available: insufficientErr.Available,
		})
		return
	}

	statusCode := http.StatusInternalServerError
	errorMessage := "Internal server error"

	switch {
	case errors.Is(err, domainerr.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errorMessage = "User not found"
	case errors.Is(err, domainerr.ErrInvalidUserID), errors.Is(err, domainerr.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
		errorMessage = "Invalid request"
	}

	if statusCode == http.StatusInternalServerError {
		h.logger.Error("Ledger operation failed", map[string]any{
			"userId": userID,
			"error":  err.Error(),
		})
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: errorMessage,
	})
}
