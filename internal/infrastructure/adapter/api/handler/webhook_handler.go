package handler

import (
	"errors"
	"io"
	"net/http"

	domainerr "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	paymentUseCase "github.com/reelkit/credits-service/internal/domain/usecase/payment"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the HMAC signature on provider callbacks
const SignatureHeader = "X-Payment-Signature"

// WebhookHandler handles payment provider callbacks
type WebhookHandler struct {
	processor *paymentUseCase.Processor
	logger    coreport.Logger
}

// NewWebhookHandler creates a new webhook handler instance
func NewWebhookHandler(processor *paymentUseCase.Processor, logger coreport.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    logger,
	}
}

// HandlePaymentEvent handles the POST /webhooks/payment endpoint.
// The raw body is verified against the signature header before parsing, so
// the payload must be read unmodified.
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Unable to read request body",
		})
		return
	}

	signature := c.GetHeader(SignatureHeader)
	result, err := h.processor.Process(c.Request.Context(), payload, signature)
	if err != nil {
		switch {
		case errors.Is(err, domainerr.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(err),
				Message: "Invalid webhook signature",
			})
		case errors.Is(err, domainerr.ErrInvalidRequest), errors.Is(err, domainerr.ErrInvalidUserID), errors.Is(err, domainerr.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(err),
				Message: "Invalid event payload",
			})
		default:
			// 5xx tells the provider to retry the delivery
			h.logger.Error("Payment event processing failed", map[string]any{
				"error": err.Error(),
			})
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(err),
				Message: "Event processing failed",
			})
		}
		return
	}

	c.JSON(http.StatusOK, dto.WebhookAckResponse{
		Status:    string(result.Outcome),
		EventType: result.EventType,
		Reference: result.Reference,
	})
}
