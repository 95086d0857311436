package bankapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Client is the outbound REST connector for the remote banking API. Every call is
// bounded by the configured timeout; hitting it is reported as a NetworkError with
// Timeout set rather than left to look like a generic transport failure.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

// NewClient validates the base URL and prepares the HTTP client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("bank api base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse bank api url: %w", err)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Login exchanges customer credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp)
	return resp, err
}

// Register creates a customer account. The new customer is not authenticated by
// this call.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	var resp RegisterResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &resp)
	return resp, err
}

// SubmitPayment posts a settlement-currency payment. A nil return means the backend
// accepted the submission for asynchronous approval; final status never comes back
// on this call.
func (c *Client) SubmitPayment(ctx context.Context, token string, req PaymentRequest) error {
	return c.do(ctx, http.MethodPost, "/payments/new", token, req, nil)
}

// SubmitDeposit posts a card deposit in settlement currency.
func (c *Client) SubmitDeposit(ctx context.Context, token string, req DepositRequest) error {
	return c.do(ctx, http.MethodPost, "/payments/deposit", token, req, nil)
}

// Transactions fetches the customer's transaction history.
func (c *Client) Transactions(ctx context.Context, token, customerID string) ([]Transaction, error) {
	var out []Transaction
	path := "/payments/customer/" + url.PathEscape(customerID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Dashboard fetches the customer's account summary.
func (c *Client) Dashboard(ctx context.Context, token, customerID string) (DashboardSummary, error) {
	var out DashboardSummary
	path := "/payments/dashboard/" + url.PathEscape(customerID)
	err := c.do(ctx, http.MethodGet, path, token, nil, &out)
	return out, err
}

type errorPayload struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	op := method + " " + path

	endpoint := *c.baseURL
	endpoint.Path = endpoint.Path + path

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		netErr := &NetworkError{Op: op, Err: err, Timeout: isTimeout(err)}
		c.logger.Warn("bank api request failed", "op", op, "timeout", netErr.Timeout, "error", err)
		return netErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload := errorPayload{}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Message == "" {
			payload.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: payload.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
