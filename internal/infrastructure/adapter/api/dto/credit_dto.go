package dto

// BalanceResponse represents the API response for a user's credit balance
type BalanceResponse struct {
	UserID  uint64 `json:"userId"`
	Credits int64  `json:"credits"`
}

// CreateUserRequest provisions a credit account for a platform user
type CreateUserRequest struct {
	UserID uint64 `json:"userId" binding:"required"`
}

// CheckCreditsRequest asks whether a user can afford a generation
type CheckCreditsRequest struct {
	UserID    uint64 `json:"userId" binding:"required"`
	MediaType string `json:"mediaType" binding:"required"`
	Model     string `json:"model"`
	Variant   string `json:"variant"`
}

// CheckCreditsResponse reports affordability for a generation request
type CheckCreditsResponse struct {
	Allowed bool  `json:"allowed"`
	Cost    int64 `json:"cost"`
	Balance int64 `json:"balance"`
}

// DeductCreditsRequest charges a user for a generation
type DeductCreditsRequest struct {
	UserID      uint64 `json:"userId" binding:"required"`
	MediaType   string `json:"mediaType" binding:"required"`
	Model       string `json:"model"`
	Variant     string `json:"variant"`
	Description string `json:"description"`
}

// RefundCreditsRequest returns credits for a failed generation
type RefundCreditsRequest struct {
	UserID      uint64 `json:"userId" binding:"required"`
	Amount      int64  `json:"amount" binding:"required"`
	Description string `json:"description"`
}

// TransactionResponse represents a single ledger entry in API responses
type TransactionResponse struct {
	Reference    string `json:"reference"`
	UserID       uint64 `json:"userId"`
	Amount       int64  `json:"amount"`
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	BalanceAfter int64  `json:"balanceAfter"`
	CreatedAt    string `json:"createdAt"`
}

// DeductCreditsResponse reports the result of a successful debit
type DeductCreditsResponse struct {
	Reference string `json:"reference"`
	UserID    uint64 `json:"userId"`
	Cost      int64  `json:"cost"`
	Balance   int64  `json:"balance"`
}

// InsufficientCreditsResponse carries the shortfall details for a rejected debit
type InsufficientCreditsResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Required  int64  `json:"required"`
	Available int64  `json:"available"`
}
