package paymentprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, orderHandler http.HandlerFunc) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "test-token", ExpiresIn: 3600})
	})
	mux.HandleFunc("/v2/checkout/orders", orderHandler)
	mux.HandleFunc("/v2/checkout/orders/", orderHandler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Options{
		ClientID:  "id",
		Secret:    "secret",
		APIURL:    srv.URL,
		BrandName: "TeamPlayMate",
		ReturnURL: "http://localhost/ok",
		CancelURL: "http://localhost/cancel",
	})
}

func TestCreateOrder(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CAPTURE", body.Intent)
		require.Len(t, body.PurchaseUnits, 1)
		assert.Equal(t, "49.99", body.PurchaseUnits[0].Amount.Value)
		assert.Equal(t, "USD", body.PurchaseUnits[0].Amount.CurrencyCode)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreateOrderResponse{
			ID:     "ORDER-1",
			Status: "CREATED",
			Links: []Link{
				{Href: "https://paypal.test/self", Rel: "self"},
				{Href: "https://paypal.test/approve", Rel: "approve"},
			},
		})
	})

	client := newTestClient(srv)
	resp, err := client.CreateOrder(context.Background(), "49.99", "USD", "pro")
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", resp.ID)
	assert.Equal(t, "https://paypal.test/approve", resp.ApprovalURL())
}

func TestCaptureOrder(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/ORDER-1/capture")
		_ = json.NewEncoder(w).Encode(CaptureOrderResponse{ID: "ORDER-1", Status: StatusCompleted})
	})

	client := newTestClient(srv)
	resp, err := client.CaptureOrder(context.Background(), "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
}

func TestCreateOrderGatewayError(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	client := newTestClient(srv)
	_, err := client.CreateOrder(context.Background(), "49.99", "USD", "pro")
	require.Error(t, err)
}

func TestApprovalURLMissing(t *testing.T) {
	resp := &CreateOrderResponse{Links: []Link{{Href: "x", Rel: "self"}}}
	assert.Empty(t, resp.ApprovalURL())
}
