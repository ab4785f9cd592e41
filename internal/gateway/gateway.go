// Package gateway talks to the external mobile-money payment provider.
package gateway

import "context"

// TransactionState is the provider-reported state of a push payment.
type TransactionState string

const (
	StatePending   TransactionState = "pending"
	StateCompleted TransactionState = "completed"
	StateFailed    TransactionState = "failed"
)

// PushRequest asks the provider to prompt the customer's phone for
// approval of a payment.
type PushRequest struct {
	Amount      float64
	Currency    string
	PhoneNumber string // canonical +256 form
	Description string
	Reference   string // our payment ID, echoed back on the callback
	CallbackURL string
}

// PushResponse carries the provider's tracking identifier for a
// submitted push request.
type PushResponse struct {
	TrackingID string
	Message    string
}

// StatusResponse is the provider's answer to a status query.
type StatusResponse struct {
	TrackingID  string
	State       TransactionState
	Description string
}

// Gateway is the contract with the external payment provider. Given a
// tracking ID, the provider eventually reports pending, completed, or
// failed.
type Gateway interface {
	// RequestToPay submits a push-to-phone payment prompt and returns
	// a tracking ID for later status queries.
	RequestToPay(ctx context.Context, req PushRequest) (*PushResponse, error)

	// TransactionStatus queries the current state of a push request.
	TransactionStatus(ctx context.Context, trackingID string) (*StatusResponse, error)
}
