package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient implements Client using HTTP JSON-RPC 2.0.
//
// Quote calls retry with exponential backoff; ExecuteSwap and CreatePool are
// single-shot, because a transport error after submission leaves the outcome
// unknown and this subsystem has no internal retry policy for execution.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts for quote calls.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new venue JSON-RPC HTTP client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("venue error %d: %s", e.Code, e.Message)
}

// Wire shapes. Amounts travel as decimal strings.

type quoteParams struct {
	Asset    string `json:"asset"`
	AmountIn string `json:"amountIn"`
}

type quoteResult struct {
	AmountOut string `json:"amountOut"`
}

type executeSwapParams struct {
	Asset    string `json:"asset"`
	AmountIn string `json:"amountIn"`
}

type executeSwapResult struct {
	GrossOut string `json:"grossOut"`
}

type createPoolParams struct {
	Asset       string `json:"asset"`
	AssetAmount string `json:"assetAmount"`
	BaseAmount  string `json:"baseAmount"`
}

type createPoolResult struct {
	PoolAddress    string `json:"poolAddress"`
	AssetDeposited string `json:"assetDeposited"`
	BaseDeposited  string `json:"baseDeposited"`
	ReceiptAmount  string `json:"receiptAmount"`
}

// Quote returns the venue's advisory output estimate.
func (c *HTTPClient) Quote(ctx context.Context, asset domain.AssetID, amountIn *uint256.Int) (*domain.QuoteResult, error) {
	params := quoteParams{Asset: string(asset), AmountIn: domain.FormatAmount(amountIn)}

	var result quoteResult
	if err := c.call(ctx, "venue_quote", params, &result, c.maxRetries); err != nil {
		return nil, err
	}

	out, err := domain.ParseAmount(result.AmountOut)
	if err != nil {
		return nil, fmt.Errorf("venue quote amount: %w", err)
	}
	return &domain.QuoteResult{AmountOut: out}, nil
}

// ExecuteSwap submits a swap for execution. Single-shot, no retries.
func (c *HTTPClient) ExecuteSwap(ctx context.Context, asset domain.AssetID, amountIn *uint256.Int) (*ExecResult, error) {
	params := executeSwapParams{Asset: string(asset), AmountIn: domain.FormatAmount(amountIn)}

	var result executeSwapResult
	if err := c.call(ctx, "venue_executeSwap", params, &result, 0); err != nil {
		return nil, err
	}

	out, err := domain.ParseAmount(result.GrossOut)
	if err != nil {
		return nil, fmt.Errorf("venue gross output: %w", err)
	}
	return &ExecResult{GrossOut: out}, nil
}

// CreatePool seeds a new pool. Single-shot, no retries.
func (c *HTTPClient) CreatePool(ctx context.Context, asset domain.AssetID, assetAmount, baseAmount *uint256.Int) (*PoolResult, error) {
	params := createPoolParams{
		Asset:       string(asset),
		AssetAmount: domain.FormatAmount(assetAmount),
		BaseAmount:  domain.FormatAmount(baseAmount),
	}

	var result createPoolResult
	if err := c.call(ctx, "venue_createPool", params, &result, 0); err != nil {
		return nil, err
	}

	assetDep, err := domain.ParseAmount(result.AssetDeposited)
	if err != nil {
		return nil, fmt.Errorf("venue asset deposit: %w", err)
	}
	baseDep, err := domain.ParseAmount(result.BaseDeposited)
	if err != nil {
		return nil, fmt.Errorf("venue base deposit: %w", err)
	}
	receipt, err := domain.ParseAmount(result.ReceiptAmount)
	if err != nil {
		return nil, fmt.Errorf("venue receipt amount: %w", err)
	}

	return &PoolResult{
		PoolAddress:    result.PoolAddress,
		AssetDeposited: assetDep,
		BaseDeposited:  baseDep,
		ReceiptAmount:  receipt,
	}, nil
}

// call performs a JSON-RPC call with up to maxRetries retries and exponential
// backoff. Transport failures and 429/5xx responses are retried; JSON-RPC
// errors are not.
func (c *HTTPClient) call(ctx context.Context, method string, params interface{}, result interface{}, maxRetries int) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
