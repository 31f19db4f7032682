package dto

import (
	"time"

	domainWebhook "mallhub/internal/domain/webhook"
)

type SigningRequest struct {
	SignatureHeader string `json:"signature_header" binding:"omitempty,max=64"`
	TimestampHeader string `json:"timestamp_header" binding:"omitempty,max=64"`
	Version         string `json:"version" binding:"omitempty,max=16"`
	ToleranceSec    int    `json:"tolerance_sec" binding:"omitempty,min=1"`
}

type RetryPolicyRequest struct {
	MaxAttempts    int    `json:"max_attempts"`
	Strategy       string `json:"strategy" binding:"omitempty,oneof=fixed exponential"`
	BaseBackoffSec int    `json:"base_backoff_sec"`
	TimeoutSec     int    `json:"timeout_sec"`
}

type CreateEndpointRequest struct {
	URL         string              `json:"url" binding:"required,url,max=2048"`
	Method      string              `json:"method" binding:"omitempty,oneof=POST PUT PATCH post put patch"`
	Events      []string            `json:"events" binding:"required,min=1,dive,required,max=128"`
	Secret      string              `json:"secret" binding:"omitempty,min=16,max=128"`
	Headers     map[string]string   `json:"headers"`
	VerifySSL   *bool               `json:"verify_ssl"`
	Description string              `json:"description" binding:"max=1024"`
	Signing     *SigningRequest     `json:"signing"`
	Retry       *RetryPolicyRequest `json:"retry"`
}

type UpdateEndpointRequest struct {
	URL          *string             `json:"url" binding:"omitempty,url,max=2048"`
	Method       *string             `json:"method" binding:"omitempty,oneof=POST PUT PATCH post put patch"`
	Active       *bool               `json:"active"`
	Events       []string            `json:"events" binding:"omitempty,min=1,dive,required,max=128"`
	Headers      map[string]string   `json:"headers"`
	VerifySSL    *bool               `json:"verify_ssl"`
	Description  *string             `json:"description" binding:"omitempty,max=1024"`
	Signing      *SigningRequest     `json:"signing"`
	Retry        *RetryPolicyRequest `json:"retry"`
	RotateSecret bool                `json:"rotate_secret"`
}

type TestSendRequest struct {
	EndpointID string `json:"endpoint_id"`
	URL        string `json:"url" binding:"omitempty,url,max=2048"`
}

type EndpointResponse struct {
	ID              string                      `json:"id"`
	URL             string                      `json:"url"`
	Method          string                      `json:"method"`
	Active          bool                        `json:"active"`
	Events          []string                    `json:"events"`
	Headers         map[string]string           `json:"headers"`
	VerifySSL       bool                        `json:"verify_ssl"`
	Description     string                      `json:"description,omitempty"`
	Signing         domainWebhook.SigningConfig `json:"signing"`
	Retry           domainWebhook.RetryPolicy   `json:"retry"`
	LastDeliveredAt *time.Time                  `json:"last_delivered_at,omitempty"`
	LastStatus      int                         `json:"last_status,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`

	// Secret is only populated on create and after a rotation.
	Secret string `json:"secret,omitempty"`
}

type DeliveryResponse struct {
	ID             string            `json:"id"`
	EndpointID     string            `json:"endpoint_id,omitempty"`
	URL            string            `json:"url"`
	EventType      string            `json:"event_type"`
	Status         string            `json:"status"`
	Attempt        int               `json:"attempt"`
	Success        bool              `json:"success"`
	RequestHeaders map[string]string `json:"request_headers,omitempty"`
	ResponseStatus int               `json:"response_status,omitempty"`
	ResponseBody   string            `json:"response_body,omitempty"`
	Error          string            `json:"error,omitempty"`
	DurationMs     int64             `json:"duration_ms"`
	RetryOf        string            `json:"retry_of,omitempty"`
	Payload        RawJSON           `json:"payload,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	FinishedAt     *time.Time        `json:"finished_at,omitempty"`
}

// RawJSON embeds a stored payload without re-encoding it.
type RawJSON []byte

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

type DeliveryListRequest struct {
	EndpointID     string
	EventType      string
	Status         string
	IncludePayload bool
	Page           int
	PageSize       int
}
