package payherorepo

import (
	"context"
	"fmt"

	"github.com/opaygodly-bot/uwezo-funds/model"
)

type InitiateReq struct {
	// Phone in canonical international form (2547XXXXXXXX); the client
	// re-localizes it to the 0XXXXXXXXX form PayHero expects.
	Phone           string
	Amount          int64
	CustomerName    string
	ClientReference string
}

type InitiateResp struct {
	// GatewayReference is PayHero's authoritative reference for status
	// checks. Empty when the gateway omitted it; callers then keep polling
	// under the client reference (degraded mode).
	GatewayReference  string
	CheckoutRequestID string
	RequestID         string
}

// GatewayError is a structured non-2xx response from PayHero.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("PayHero API error: %d", e.StatusCode)
}

type Repo interface {
	Initiate(ctx context.Context, req InitiateReq) (*InitiateResp, error)
	Status(ctx context.Context, reference string) (*model.StatusResult, error)
}
