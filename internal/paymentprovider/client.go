// Package paymentprovider is a thin HTTP client for the PayPal Orders
// v2 API: client-credentials token, order creation, order capture.
package paymentprovider

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"context"
)

// Options configures a Client.
type Options struct {
	ClientID   string
	Secret     string
	APIURL     string // e.g. https://api-m.sandbox.paypal.com
	BrandName  string
	ReturnURL  string
	CancelURL  string
}

// Client talks to the gateway. Safe for concurrent use; the OAuth
// access token is cached until shortly before it expires.
type Client struct {
	opts       Options
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a gateway client with a 10 second request timeout.
func NewClient(opts Options) *Client {
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	const op = "paymentprovider.getAccessToken"

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.opts.APIURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.opts.ClientID + ":" + c.opts.Secret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%s: unexpected status %s: %s", op, resp.Status, body)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.accessToken = tok.AccessToken
	// renew one minute early
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.opts.APIURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateOrder opens a capture-intent order for the given amount and
// returns the order id plus the payer approval link.
func (c *Client) CreateOrder(ctx context.Context, value, currency, description string) (*CreateOrderResponse, error) {
	const op = "paymentprovider.CreateOrder"

	reqBody := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Amount:      amount{CurrencyCode: currency, Value: value},
			Description: description,
		}},
		ApplicationContext: applicationContext{
			BrandName:   c.opts.BrandName,
			LandingPage: "LOGIN",
			UserAction:  "PAY_NOW",
			ReturnURL:   c.opts.ReturnURL,
			CancelURL:   c.opts.CancelURL,
		},
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/v2/checkout/orders", reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s: unexpected status %s: %s", op, resp.Status, body)
	}

	var orderResp CreateOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &orderResp, nil
}

// CaptureOrder finalizes a previously approved order. The caller must
// inspect the returned status; anything but COMPLETED means the funds
// were not secured.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*CaptureOrderResponse, error) {
	const op = "paymentprovider.CaptureOrder"

	req, err := c.newRequest(ctx, http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", struct{}{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s: unexpected status %s: %s", op, resp.Status, body)
	}

	var captureResp CaptureOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&captureResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &captureResp, nil
}
