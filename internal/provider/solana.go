package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/cissero/platform/internal/guard"
)

const (
	solanaCircuitKey = "solana"
	LamportsPerSOL   = 1_000_000_000
)

var base58Address = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// ValidateAddress checks that s looks like a base58 Solana public key.
func ValidateAddress(s string) error {
	if !base58Address.MatchString(s) {
		return fmt.Errorf("invalid wallet address")
	}
	return nil
}

// SolanaClient talks to a Solana JSON-RPC node. It only reads balances and
// relays transactions the wallet already signed; it never holds keys.
type SolanaClient struct {
	rpcURL  string
	breaker *guard.CircuitBreaker
	logger  *slog.Logger
	client  *http.Client
	nextID  atomic.Int64
}

// NewSolanaClient creates a JSON-RPC client for rpcURL.
func NewSolanaClient(rpcURL string, breaker *guard.CircuitBreaker, logger *slog.Logger) *SolanaClient {
	return &SolanaClient{
		rpcURL:  rpcURL,
		breaker: breaker,
		logger:  logger,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetBalance returns the balance of address in lamports.
func (c *SolanaClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	if err := ValidateAddress(address); err != nil {
		return 0, err
	}

	var result struct {
		Value uint64 `json:"value"`
	}
	err := c.breaker.Do(ctx, solanaCircuitKey, func(ctx context.Context) error {
		return c.call(ctx, "getBalance", []interface{}{address, map[string]string{"commitment": "confirmed"}}, &result)
	})
	if err != nil {
		return 0, err
	}
	return result.Value, nil
}

// SendTransaction relays a signed, base64-encoded transaction and returns
// its signature.
func (c *SolanaClient) SendTransaction(ctx context.Context, signedTx string) (string, error) {
	if _, err := base64.StdEncoding.DecodeString(signedTx); err != nil {
		return "", fmt.Errorf("transaction must be base64: %w", err)
	}

	var signature string
	err := c.breaker.Do(ctx, solanaCircuitKey, func(ctx context.Context) error {
		return c.call(ctx, "sendTransaction", []interface{}{signedTx, map[string]string{"encoding": "base64"}}, &signature)
	})
	if err != nil {
		return "", err
	}
	return signature, nil
}

// rpcError is a JSON-RPC error object returned by the node.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (c *SolanaClient) call(ctx context.Context, method string, params []interface{}, dest interface{}) error {
	body, _ := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      c.nextID.Add(1),
		"method":  method,
		"params":  params,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", method, resp.StatusCode)
	}

	var response struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("decode %s: %w", method, err)
	}
	if response.Error != nil {
		return response.Error
	}
	if err := json.Unmarshal(response.Result, dest); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
