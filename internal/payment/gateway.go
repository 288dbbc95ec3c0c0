// Package payment defines the payment-gateway contract and the
// reversible transaction-id derivation used to tie gateway callbacks
// back to orders.
package payment

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// txnPrefix is fixed so a transaction id can always be reversed to its
// order id.
const txnPrefix = "VH-"

// Gateway statuses as reported by the external payment provider. Any
// other value is treated as a failure by the settlement machine.
const (
	StateCompleted = "COMPLETED"
	StatePending   = "PENDING"
)

// Status is the gateway's answer for one transaction. Raw carries the
// provider payload verbatim for persistence on the order.
type Status struct {
	State string `json:"state"`
	Raw   string `json:"-"`
}

// Gateway queries the external payment provider for a transaction state.
type Gateway interface {
	GetStatus(transactionID string) (*Status, error)
}

// TransactionID derives the gateway transaction id for an order.
func TransactionID(orderID string) string {
	return txnPrefix + orderID
}

// OrderIDFromTransaction recovers the order id from a transaction id.
func OrderIDFromTransaction(transactionID string) (string, error) {
	if !strings.HasPrefix(transactionID, txnPrefix) {
		return "", fmt.Errorf("transaction id %q does not carry the %q prefix", transactionID, txnPrefix)
	}
	return strings.TrimPrefix(transactionID, txnPrefix), nil
}

// HTTPGateway queries a JSON-over-HTTP payment provider.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a gateway client for the given provider base URL.
func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetStatus fetches the provider's status for a transaction. A transport
// or decode failure is returned as an error so callers can distinguish
// "we don't know" from a reported failure.
func (g *HTTPGateway) GetStatus(transactionID string) (*Status, error) {
	url := fmt.Sprintf("%s/status/%s", g.baseURL, transactionID)
	resp, err := g.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("payment status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment status request returned %d", resp.StatusCode)
	}

	var payload struct {
		State string          `json:"state"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode payment status response: %w", err)
	}
	return &Status{State: payload.State, Raw: string(payload.Data)}, nil
}
