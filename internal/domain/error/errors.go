package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInsufficientCredits = 4001
	CodeInvalidAmount       = 4002
	CodeInvalidUserID       = 4003
	CodeDuplicatePayment    = 4004
	CodeConstraintViolation = 4005
	CodeInvalidRequest      = 4006
	CodeUnknownMediaType    = 4007
	CodeInvalidSignature    = 4010
	CodeUnauthorized        = 4011
	CodeRefundsDisabled     = 4030
	CodeUserNotFound        = 4040
	CodeDuplicateUser       = 4090

	// 5xxx - Server errors
	CodeInternalServer    = 5000
	CodeCostConfigMissing = 5001
)

// Base error types
var (
	// ErrInsufficientCredits is returned when a debit would take the balance below zero
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInvalidAmount is returned when a credit amount is zero or negative
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidUserID is returned when the user ID is not a positive integer
	ErrInvalidUserID = errors.New("user ID must be positive")

	// ErrInvalidRequest is returned when a request payload fails validation
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUserNotFound is returned when the referenced user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned when creating a user that already exists
	ErrDuplicateUser = errors.New("user already exists")

	// ErrDuplicatePayment is returned when a ledger entry for the same external
	// payment id was already recorded
	ErrDuplicatePayment = errors.New("payment already processed")

	// ErrTransactionNotFound is returned when a ledger entry cannot be found
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrCostConfigMissing is returned when the usage-cost configuration cannot be read
	ErrCostConfigMissing = errors.New("usage cost configuration missing")

	// ErrUnknownMediaType is returned when no cost is defined for a media type
	ErrUnknownMediaType = errors.New("no cost defined for media type")

	// ErrInvalidSignature is returned when a webhook signature does not verify
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrUnauthorized is returned when no valid session accompanies a request
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRefundsDisabled is returned when a refund is requested but the refund
	// policy is switched off
	ErrRefundsDisabled = errors.New("refunds are disabled")

	// ErrConstraintViolation is returned for database constraint violations
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrDatabaseConnection is returned for database connectivity failures
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrInternalServer is returned for unexpected internal failures
	ErrInternalServer = errors.New("internal server error")
)

// InsufficientCreditsError carries the amounts needed to build an actionable
// user-facing message. It matches ErrInsufficientCredits under errors.Is.
type InsufficientCreditsError struct {
	Required  int64
	Available int64
}

// Error implements the error interface
func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, have %d", e.Required, e.Available)
}

// Is reports whether this error matches ErrInsufficientCredits
func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

// NewInsufficientCreditsError creates an InsufficientCreditsError with the
// required and available amounts
func NewInsufficientCreditsError(required, available int64) *InsufficientCreditsError {
	return &InsufficientCreditsError{Required: required, Available: available}
}

// ErrorCode returns the numeric API code for a domain error
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientCredits):
		return CodeInsufficientCredits
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidUserID):
		return CodeInvalidUserID
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrDuplicateUser):
		return CodeDuplicateUser
	case errors.Is(err, ErrDuplicatePayment):
		return CodeDuplicatePayment
	case errors.Is(err, ErrUnknownMediaType):
		return CodeUnknownMediaType
	case errors.Is(err, ErrCostConfigMissing):
		return CodeCostConfigMissing
	case errors.Is(err, ErrInvalidSignature):
		return CodeInvalidSignature
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrRefundsDisabled):
		return CodeRefundsDisabled
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	default:
		return CodeInternalServer
	}
}

// IsInsufficientCreditsError checks if the error is an insufficient credits error
func IsInsufficientCreditsError(err error) bool {
	return errors.Is(err, ErrInsufficientCredits)
}

// IsUserNotFoundError checks if the error is a user not found error
func IsUserNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsDuplicatePaymentError checks if the error is a duplicate payment error
func IsDuplicatePaymentError(err error) bool {
	return errors.Is(err, ErrDuplicatePayment)
}

// IsValidationError checks if the error belongs to the request validation family
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidRequest)
}
