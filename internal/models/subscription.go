package models

import "time"

// Subscription statuses.
const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
	SubscriptionExpired  = "expired"
	SubscriptionTrialing = "trialing"
)

// Subscription is the authoritative statement of an account's current
// entitlement. EndDate may be nil, which means the subscription never
// expires (the free tier). A canceled subscription keeps granting
// entitlements until EndDate passes.
type Subscription struct {
	ID         string     `json:"id"`
	AccountUID string     `json:"account_uid"`
	Plan       string     `json:"plan"`
	Price      float64    `json:"price"`
	Currency   string     `json:"currency"`
	Status     string     `json:"status"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	AutoRenew  bool       `json:"auto_renew"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
}
