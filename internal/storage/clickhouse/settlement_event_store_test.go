package clickhouse

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memeswap-router/internal/domain"
)

func testEvent(eventID string, timestampMs int64) *domain.SettlementEvent {
	return &domain.SettlementEvent{
		EventID:     eventID,
		Kind:        domain.EventSwapSettled,
		Asset:       "asset1",
		Account:     "trader",
		AmountIn:    uint256.NewInt(1_000_000),
		AmountOut:   uint256.NewInt(1_980_000),
		CreatorFee:  uint256.NewInt(14_000),
		PlatformFee: uint256.NewInt(6_000),
		Timestamp:   timestampMs,
	}
}

func TestSettlementEventStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSettlementEventStore(conn)

	require.NoError(t, store.Insert(ctx, testEvent("event1", 1704067200000)))

	events, err := store.GetByAsset(ctx, "asset1", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "event1", e.EventID)
	assert.Equal(t, domain.EventSwapSettled, e.Kind)
	assert.Equal(t, domain.AssetID("asset1"), e.Asset)
	assert.Equal(t, domain.AccountID("trader"), e.Account)
	assert.Equal(t, "1000000", e.AmountIn.Dec())
	assert.Equal(t, "1980000", e.AmountOut.Dec())
	assert.Equal(t, "14000", e.CreatorFee.Dec())
	assert.Equal(t, "6000", e.PlatformFee.Dec())
	assert.Equal(t, int64(1704067200000), e.Timestamp)
}

func TestSettlementEventStore_NewestFirstWithLimit(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSettlementEventStore(conn)

	require.NoError(t, store.Insert(ctx, testEvent("event1", 1704067200000)))
	require.NoError(t, store.Insert(ctx, testEvent("event2", 1704067260000)))
	require.NoError(t, store.Insert(ctx, testEvent("event3", 1704067320000)))

	events, err := store.GetByAsset(ctx, "asset1", 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "event3", events[0].EventID)
	assert.Equal(t, "event2", events[1].EventID)
}

func TestSettlementEventStore_OtherAssetInvisible(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSettlementEventStore(conn)

	event := testEvent("event1", 1704067200000)
	event.Asset = "asset2"
	require.NoError(t, store.Insert(ctx, event))

	events, err := store.GetByAsset(ctx, "asset1", 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSettlementEventStore_Wide128BitAmountRoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSettlementEventStore(conn)

	// 2^128 - 1
	max128 := new(uint256.Int).SubUint64(
		new(uint256.Int).Lsh(uint256.NewInt(1), 128),
		1,
	)
	event := testEvent("event1", 1704067200000)
	event.AmountOut = max128

	require.NoError(t, store.Insert(ctx, event))

	events, err := store.GetByAsset(ctx, "asset1", 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, max128.Dec(), events[0].AmountOut.Dec())
}

func TestSettlementEventStore_LockEventsCarryLockID(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSettlementEventStore(conn)

	event := &domain.SettlementEvent{
		EventID:   "event1",
		Kind:      domain.EventLiquidityLocked,
		Asset:     "asset1",
		Account:   "creator1",
		LockID:    "lock1",
		AmountOut: uint256.NewInt(500_000),
		Timestamp: 1704067200000,
	}
	require.NoError(t, store.Insert(ctx, event))

	events, err := store.GetByAsset(ctx, "asset1", 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventLiquidityLocked, events[0].Kind)
	assert.Equal(t, "lock1", events[0].LockID)
	// Unset amounts come back as zero.
	assert.True(t, events[0].AmountIn.IsZero())
}
