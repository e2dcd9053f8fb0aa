package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/reelkit/credits-service/internal/domain/entity"
	errs "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	"github.com/reelkit/credits-service/internal/domain/usecase/ledger"
)

// EventTypeCheckoutCompleted is the only event type that mutates the ledger;
// every other type is acknowledged and ignored.
const EventTypeCheckoutCompleted = "checkout.completed"

// Event is the payment provider's webhook payload
type Event struct {
	EventType     string        `json:"eventType"`
	IdempotencyID string        `json:"idempotencyId"`
	Metadata      EventMetadata `json:"metadata"`
}

// EventMetadata carries the purchase details attached by the checkout flow
type EventMetadata struct {
	UserID  uint64 `json:"userId"`
	Credits int64  `json:"credits"`
}

// Outcome classifies how an event was handled
type Outcome string

// Processing outcomes
const (
	OutcomeCredited  Outcome = "credited"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
)

// Result describes the terminal state reached for one delivered event
type Result struct {
	Outcome   Outcome
	EventType string
	Reference string // Ledger reference when Outcome is credited
}

// Processor drives the webhook state machine: verify signature, branch on
// event type, extract purchase metadata, credit the ledger. Delivery is
// at-least-once, so the crediting step is idempotent on the provider's
// idempotency id; any error past verification is reported back to the
// provider, which retries.
type Processor struct {
	ledger *ledger.Service
	secret string
	logger coreport.Logger
}

// NewProcessor creates a webhook processor with the shared webhook secret
func NewProcessor(ledgerService *ledger.Service, secret string, logger coreport.Logger) *Processor {
	return &Processor{
		ledger: ledgerService,
		secret: secret,
		logger: logger,
	}
}

// Process handles one delivered webhook event.
//
// Possible errors:
// - ErrInvalidSignature: If the signature does not verify (reject, no side effects)
// - ErrInvalidRequest: If the body is not a well-formed event
// Any other error means crediting failed and the provider should redeliver.
func (p *Processor) Process(ctx context.Context, payload []byte, signatureHeader string) (*Result, error) {
	if err := VerifySignature(payload, signatureHeader, p.secret); err != nil {
		p.logger.Warn("Webhook signature verification failed", map[string]any{
			"payload_bytes": len(payload),
		})
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook body: %s", errs.ErrInvalidRequest, err.Error())
	}

	if event.EventType != EventTypeCheckoutCompleted {
		p.logger.Debug("Ignoring webhook event type", map[string]any{
			"event_type": event.EventType,
		})
		return &Result{Outcome: OutcomeIgnored, EventType: event.EventType}, nil
	}

	if event.Metadata.UserID == 0 || event.Metadata.Credits <= 0 {
		// Acknowledge without mutation: redelivery would fail the same way
		p.logger.Warn("Checkout event missing purchase metadata, acknowledged without credit", map[string]any{
			"event_type":     event.EventType,
			"idempotency_id": event.IdempotencyID,
			"user_id":        event.Metadata.UserID,
			"credits":        event.Metadata.Credits,
		})
		return &Result{Outcome: OutcomeIgnored, EventType: event.EventType}, nil
	}

	if event.IdempotencyID == "" {
		p.logger.Warn("Checkout event carries no idempotency id, duplicate delivery would double-credit", map[string]any{
			"user_id": event.Metadata.UserID,
		})
	}

	txn, err := p.ledger.AddCredits(
		ctx,
		event.Metadata.UserID,
		event.Metadata.Credits,
		entity.TypePurchase,
		"credit purchase",
		event.IdempotencyID,
	)
	if err != nil {
		if errors.Is(err, errs.ErrDuplicatePayment) {
			return &Result{Outcome: OutcomeDuplicate, EventType: event.EventType}, nil
		}
		return nil, err
	}

	p.logger.Info("Purchase credited", map[string]any{
		"user_id":        event.Metadata.UserID,
		"credits":        event.Metadata.Credits,
		"idempotency_id": event.IdempotencyID,
		"reference":      txn.Reference,
	})

	return &Result{
		Outcome:   OutcomeCredited,
		EventType: event.EventType,
		Reference: txn.Reference,
	}, nil
}
