package models

import "time"

// Payment statuses. A payment is immutable once it reaches a terminal
// status (succeeded, failed or refunded).
const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Payment methods.
const (
	MethodPayPal = "paypal"
	MethodManual = "manual"
)

// Payment records one attempted charge against an account.
// OrderID and CaptureID hold the gateway identifiers for paid plans;
// free-plan activations are recorded with method "manual" and no order.
type Payment struct {
	ID         string    `json:"id"`
	AccountUID string    `json:"account_uid"`
	PlanName   string    `json:"plan_name"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	Method     string    `json:"method"`
	OrderID    string    `json:"order_id,omitempty"`
	CaptureID  string    `json:"capture_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
