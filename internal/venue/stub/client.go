package stub

import (
	"context"
	"errors"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/venue"
)

// ErrNoPool is returned when no behavior was configured for an asset.
var ErrNoPool = errors.New("no pool configured for asset")

// Client implements venue.Client for testing.
type Client struct {
	// Quotes maps asset to the advisory quote returned by Quote.
	Quotes map[domain.AssetID]*uint256.Int
	// SwapOutputs maps asset to the gross output returned by ExecuteSwap.
	SwapOutputs map[domain.AssetID]*uint256.Int
	// Pools maps asset to the result returned by CreatePool.
	Pools map[domain.AssetID]*venue.PoolResult

	// FailQuote / FailExecute / FailCreate force the corresponding call to fail.
	FailQuote   bool
	FailExecute bool
	FailCreate  bool

	// Call counters.
	QuoteCalls   int
	ExecuteCalls int
	CreateCalls  int
}

// NewClient creates a new stub venue client.
func NewClient() *Client {
	return &Client{
		Quotes:      make(map[domain.AssetID]*uint256.Int),
		SwapOutputs: make(map[domain.AssetID]*uint256.Int),
		Pools:       make(map[domain.AssetID]*venue.PoolResult),
	}
}

// Quote returns the configured advisory quote for the asset.
func (c *Client) Quote(_ context.Context, asset domain.AssetID, _ *uint256.Int) (*domain.QuoteResult, error) {
	c.QuoteCalls++
	if c.FailQuote {
		return nil, errors.New("stub: quote failure")
	}
	out, ok := c.Quotes[asset]
	if !ok {
		// Fall back to the execution output so tests only configure one map.
		out, ok = c.SwapOutputs[asset]
		if !ok {
			return nil, ErrNoPool
		}
	}
	return &domain.QuoteResult{AmountOut: new(uint256.Int).Set(out)}, nil
}

// ExecuteSwap returns the configured gross output for the asset.
func (c *Client) ExecuteSwap(_ context.Context, asset domain.AssetID, _ *uint256.Int) (*venue.ExecResult, error) {
	c.ExecuteCalls++
	if c.FailExecute {
		return nil, errors.New("stub: execution failure")
	}
	out, ok := c.SwapOutputs[asset]
	if !ok {
		return nil, ErrNoPool
	}
	return &venue.ExecResult{GrossOut: new(uint256.Int).Set(out)}, nil
}

// CreatePool returns the configured pool result for the asset.
func (c *Client) CreatePool(_ context.Context, asset domain.AssetID, _, _ *uint256.Int) (*venue.PoolResult, error) {
	c.CreateCalls++
	if c.FailCreate {
		return nil, errors.New("stub: pool creation failure")
	}
	p, ok := c.Pools[asset]
	if !ok {
		return nil, ErrNoPool
	}
	result := *p
	result.AssetDeposited = new(uint256.Int).Set(p.AssetDeposited)
	result.BaseDeposited = new(uint256.Int).Set(p.BaseDeposited)
	result.ReceiptAmount = new(uint256.Int).Set(p.ReceiptAmount)
	return &result, nil
}

// SetSwapOutput configures the gross output ExecuteSwap reports for an asset.
func (c *Client) SetSwapOutput(asset domain.AssetID, grossOut uint64) {
	c.SwapOutputs[asset] = uint256.NewInt(grossOut)
}

// SetQuote configures the advisory quote for an asset.
func (c *Client) SetQuote(asset domain.AssetID, amountOut uint64) {
	c.Quotes[asset] = uint256.NewInt(amountOut)
}

// SetPool configures the CreatePool result for an asset.
func (c *Client) SetPool(asset domain.AssetID, p *venue.PoolResult) {
	c.Pools[asset] = p
}

// Verify interface compliance at compile time.
var _ venue.Client = (*Client)(nil)
