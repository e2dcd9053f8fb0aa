package dto

import "encoding/json"

// WebhookAckResponse acknowledges a processed payment webhook
type WebhookAckResponse struct {
	Status    string `json:"status"`
	EventType string `json:"eventType,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// CostTableResponse returns the active cost override table for admins
type CostTableResponse struct {
	Version int64           `json:"version"`
	Costs   json.RawMessage `json:"costs"`
}
