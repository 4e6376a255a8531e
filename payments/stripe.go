package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"raffle/services"
)

const defaultBaseURL = "https://api.stripe.com"

// Client talks to Stripe Checkout. A nil *Client is the disabled payment gate:
// main constructs it once from the environment and threads it (or nil) into
// the service, so no other code checks configuration presence.
type Client struct {
	baseURL    string
	secretKey  string
	successURL string
	cancelURL  string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClientFromEnv returns nil when STRIPE_SECRET_KEY is unset.
func NewClientFromEnv() *Client {
	key := strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	if key == "" {
		return nil
	}
	base := strings.TrimRight(os.Getenv("STRIPE_BASE_URL"), "/")
	if base == "" {
		base = defaultBaseURL
	}
	frontend := strings.TrimRight(os.Getenv("FRONTEND_URL"), "/")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}
	return &Client{
		baseURL:    base,
		secretKey:  key,
		successURL: frontend + "/?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  frontend + "/?canceled=1",
		httpClient: &http.Client{Timeout: 20 * time.Second},
		log:        logrus.WithField("component", "stripe"),
	}
}

type checkoutSessionResponse struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession opens a one-item payment session carrying the caller's
// metadata. The metadata round-trips verbatim to RetrieveCheckoutSession.
func (c *Client) CreateCheckoutSession(ctx context.Context, params services.CheckoutParams) (*services.CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)
	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	form.Set("line_items[0][quantity]", "1")
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	sess, err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	c.log.WithField("session_id", sess.ID).Info("checkout session created")
	return sess, nil
}

// RetrieveCheckoutSession fetches payment status and metadata by session id.
func (c *Client) RetrieveCheckoutSession(ctx context.Context, id string) (*services.CheckoutSession, error) {
	return c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*services.CheckoutSession, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe %d %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("stripe %d", resp.StatusCode)
	}

	var out checkoutSessionResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &services.CheckoutSession{
		ID:            out.ID,
		URL:           out.URL,
		PaymentStatus: out.PaymentStatus,
		AmountTotal:   out.AmountTotal,
		Currency:      out.Currency,
		Metadata:      out.Metadata,
	}, nil
}
