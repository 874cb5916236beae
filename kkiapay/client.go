// Package kkiapay is a minimal REST client for the Kkiapay mobile-money
// gateway. Only the transaction verification endpoint is wrapped: the
// payment widget itself runs in the shopper's browser, the backend only ever
// needs to ask the gateway "what really happened to transaction X".
package kkiapay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrTransactionNotFound means the gateway does not know the transaction id.
	ErrTransactionNotFound = errors.New("kkiapay: transaction not found")
	// ErrGatewayUnavailable covers network failures, timeouts and gateway 5xx
	// responses. Callers must treat it as transient.
	ErrGatewayUnavailable = errors.New("kkiapay: gateway unavailable")
)

// Transaction is the gateway's authoritative view of a payment
type Transaction struct {
	TransactionID string  `json:"transactionId"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Source        string  `json:"source"` // payment method label, e.g. MTN, MOOV
	Reason        string  `json:"reason,omitempty"`
}

// Verifier is the single operation the reconciliation flow depends on.
// Handlers hold this interface so tests can substitute a fake gateway.
type Verifier interface {
	VerifyTransaction(ctx context.Context, transactionID string) (*Transaction, error)
}

// Client calls the Kkiapay private API
type Client struct {
	baseURL    string
	privateKey string
	httpClient *http.Client
}

// NewClient builds a client for the given base URL (live or sandbox) using
// the private API key. The HTTP timeout bounds every verification call.
func NewClient(baseURL, privateKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		privateKey: privateKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// VerifyTransaction asks the gateway for the authoritative status of a
// transaction. Client-reported statuses are never trusted; this call is the
// only source of truth on the browser-callback path.
func (c *Client) VerifyTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	payload, err := json.Marshal(map[string]string{"transactionId": transactionID})
	if err != nil {
		return nil, fmt.Errorf("kkiapay: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/transactions/status", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("kkiapay: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-key", c.privateKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, transactionID)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("kkiapay: unexpected status %d: %s", resp.StatusCode, body)
	}

	var txn Transaction
	if err := json.Unmarshal(body, &txn); err != nil {
		return nil, fmt.Errorf("kkiapay: failed to decode response: %w", err)
	}
	if txn.TransactionID == "" {
		txn.TransactionID = transactionID
	}

	return &txn, nil
}
