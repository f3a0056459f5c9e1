package paymentprovider

// Capture status reported by the gateway when an order completes.
const StatusCompleted = "COMPLETED"

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	Amount      amount `json:"amount"`
	Description string `json:"description,omitempty"`
}

type applicationContext struct {
	BrandName   string `json:"brand_name,omitempty"`
	LandingPage string `json:"landing_page,omitempty"`
	UserAction  string `json:"user_action,omitempty"`
	ReturnURL   string `json:"return_url,omitempty"`
	CancelURL   string `json:"cancel_url,omitempty"`
}

type createOrderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

// Link is one HATEOAS link from an order response; the "approve" link
// is where the payer must be redirected.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
	Meth string `json:"method"`
}

// CreateOrderResponse is the gateway's answer to an order creation.
type CreateOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []Link `json:"links"`
}

// ApprovalURL returns the link the payer must visit to approve the
// order, or an empty string when the gateway sent none.
func (r *CreateOrderResponse) ApprovalURL() string {
	for _, l := range r.Links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

// CaptureOrderResponse is the gateway's answer to a capture attempt.
// Status "COMPLETED" means funds are secured.
type CaptureOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
