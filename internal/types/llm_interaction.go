package types

import (
	"time"

	"github.com/google/uuid"
)

type InteractionStatus string

const (
	InteractionSuccess InteractionStatus = "success"
	InteractionError   InteractionStatus = "error"
)

// LlmInteraction records one call to a completion provider.
type LlmInteraction struct {
	ID           uuid.UUID         `json:"id"`
	Operation    string            `json:"operation"`
	Provider     string            `json:"provider"`
	ModelUsed    string            `json:"model_used"`
	Prompt       string            `json:"prompt"`
	ResponseText string            `json:"response_text"`
	Status       InteractionStatus `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	LatencyMs    int               `json:"latency_ms"`
	CreatedAt    time.Time         `json:"created_at"`
}
