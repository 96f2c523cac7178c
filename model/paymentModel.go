// model/payment.go
package model

import "time"

// PaymentState is the three-way classification of a gateway status response.
// All gateway vocabulary (QUEUED/SUCCESS/FAILED, paid/success flags) is
// normalized into this enum at the gateway client boundary; nothing above it
// inspects raw gateway fields.
type PaymentState string

const (
	PaymentPending PaymentState = "pending"
	PaymentSuccess PaymentState = "success"
	PaymentFailure PaymentState = "failure"
)

// StatusResult is the normalized outcome of one status check.
type StatusResult struct {
	State         PaymentState `json:"state"`
	GatewayStatus string       `json:"status,omitempty"`
	Amount        int64        `json:"amount,omitempty"`
	TransactionID string       `json:"transaction_id,omitempty"`
	Err           string       `json:"error,omitempty"`
}

// PaymentAttempt is process-local state for one STK push attempt. The client
// reference is generated locally; once the gateway returns its own reference
// that one is authoritative for status checks and the client reference is
// kept for display only.
type PaymentAttempt struct {
	ClientReference   string    `json:"client_reference"`
	GatewayReference  string    `json:"gateway_reference,omitempty"`
	CheckoutRequestID string    `json:"checkout_request_id,omitempty"`
	Phone             string    `json:"phone"`
	Amount            int64     `json:"amount"`
	StartedAt         time.Time `json:"started_at"`
}

// Reference reports which reference should be used for status polling.
func (a PaymentAttempt) Reference() string {
	if a.GatewayReference != "" {
		return a.GatewayReference
	}
	return a.ClientReference
}
