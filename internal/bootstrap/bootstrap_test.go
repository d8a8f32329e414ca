package bootstrap

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/holiman/uint256"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/events"
	"memeswap-router/internal/idhash"
	"memeswap-router/internal/storage/memory"
	"memeswap-router/internal/venue"
	"memeswap-router/internal/venue/stub"
)

const (
	adminAccount       = domain.AccountID("admin")
	serviceAccount     = domain.AccountID("bootstrapper")
	beneficiaryAccount = domain.AccountID("creator1")
	strangerAccount    = domain.AccountID("stranger")
	poolAsset          = domain.AssetID("asset1")
)

type lockCall struct {
	caller      domain.AccountID
	asset       domain.AssetID
	amount      *uint256.Int
	unlockTime  int64
	beneficiary domain.AccountID
}

// fakeLocker records Lock calls and hands back deterministic lock ids.
type fakeLocker struct {
	calls []lockCall
	fail  bool
}

func (f *fakeLocker) Lock(
	_ context.Context,
	caller domain.AccountID,
	asset domain.AssetID,
	amount *uint256.Int,
	unlockTime int64,
	beneficiary domain.AccountID,
) (string, error) {
	if f.fail {
		return "", errors.New("fake: lock failure")
	}
	f.calls = append(f.calls, lockCall{
		caller:      caller,
		asset:       asset,
		amount:      new(uint256.Int).Set(amount),
		unlockTime:  unlockTime,
		beneficiary: beneficiary,
	})
	return idhash.ComputeLockID(asset, beneficiary, unlockTime, amount.Dec()), nil
}

type bootstrapFixture struct {
	bootstrapper *Bootstrapper
	venue        *stub.Client
	locker       *fakeLocker
	store        *memory.BootstrapStore
	nowMs        int64
}

func newFixture(unlockDelay time.Duration) *bootstrapFixture {
	logger := log.New(io.Discard, "", 0)
	f := &bootstrapFixture{
		venue:  stub.NewClient(),
		locker: &fakeLocker{},
		store:  memory.NewBootstrapStore(),
		nowMs:  1704067200000,
	}
	f.bootstrapper = New(f.venue, f.locker, f.store, adminAccount, serviceAccount, unlockDelay, events.Nop{}, logger)
	f.bootstrapper.now = func() time.Time { return time.UnixMilli(f.nowMs) }
	return f
}

func (f *bootstrapFixture) request() *Request {
	return &Request{
		Asset:              poolAsset,
		InitialAssetAmount: uint256.NewInt(10_000_000),
		InitialBaseAmount:  uint256.NewInt(5_000_000),
		MinAssetAmount:     uint256.NewInt(9_500_000),
		MinBaseAmount:      uint256.NewInt(4_750_000),
		Beneficiary:        beneficiaryAccount,
		Deadline:           f.nowMs + 60_000,
	}
}

func (f *bootstrapFixture) configurePool(assetDeposited, baseDeposited, receipt uint64) {
	f.venue.SetPool(poolAsset, &venue.PoolResult{
		PoolAddress:    "pool-addr-1",
		AssetDeposited: uint256.NewInt(assetDeposited),
		BaseDeposited:  uint256.NewInt(baseDeposited),
		ReceiptAmount:  uint256.NewInt(receipt),
	})
}

func TestBootstrapper_Bootstrap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)
	f.configurePool(10_000_000, 5_000_000, 7_000_000)

	record, err := f.bootstrapper.Bootstrap(ctx, adminAccount, f.request())
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	if record.PoolAddress != "pool-addr-1" {
		t.Errorf("pool address: got %s, want pool-addr-1", record.PoolAddress)
	}
	if record.LockID == "" {
		t.Fatal("expected nonempty lock id")
	}
	if record.ReceiptAmount.Uint64() != 7_000_000 {
		t.Errorf("receipt: got %s, want 7000000", record.ReceiptAmount.Dec())
	}

	if len(f.locker.calls) != 1 {
		t.Fatalf("expected 1 lock call, got %d", len(f.locker.calls))
	}
	call := f.locker.calls[0]
	if call.caller != serviceAccount {
		t.Errorf("lock caller: got %s, want %s", call.caller, serviceAccount)
	}
	if call.beneficiary != beneficiaryAccount {
		t.Errorf("beneficiary: got %s, want %s", call.beneficiary, beneficiaryAccount)
	}
	if call.amount.Uint64() != 7_000_000 {
		t.Errorf("locked amount: got %s, want 7000000", call.amount.Dec())
	}
	if want := f.nowMs + DefaultUnlockDelay.Milliseconds(); call.unlockTime != want {
		t.Errorf("unlock time: got %d, want %d", call.unlockTime, want)
	}

	stored, err := f.store.GetByAsset(ctx, poolAsset)
	if err != nil {
		t.Fatalf("store get failed: %v", err)
	}
	if stored.LockID != record.LockID {
		t.Errorf("stored lock id: got %s, want %s", stored.LockID, record.LockID)
	}
}

func TestBootstrapper_RejectsNonAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)
	f.configurePool(10_000_000, 5_000_000, 7_000_000)

	_, err := f.bootstrapper.Bootstrap(ctx, strangerAccount, f.request())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if f.venue.CreateCalls != 0 {
		t.Error("unauthorized request must not reach the venue")
	}
}

func TestBootstrapper_SecondBootstrapFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)
	f.configurePool(10_000_000, 5_000_000, 7_000_000)

	if _, err := f.bootstrapper.Bootstrap(ctx, adminAccount, f.request()); err != nil {
		t.Fatalf("first bootstrap failed: %v", err)
	}

	_, err := f.bootstrapper.Bootstrap(ctx, adminAccount, f.request())
	if !errors.Is(err, domain.ErrBootstrapAlreadyDone) {
		t.Fatalf("expected ErrBootstrapAlreadyDone, got %v", err)
	}
	if f.venue.CreateCalls != 1 {
		t.Errorf("venue must be called once, got %d", f.venue.CreateCalls)
	}
	if len(f.locker.calls) != 1 {
		t.Errorf("receipt must be locked once, got %d", len(f.locker.calls))
	}
}

func TestBootstrapper_AssetDepositBelowFloor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)
	f.configurePool(9_000_000, 5_000_000, 7_000_000)

	_, err := f.bootstrapper.Bootstrap(ctx, adminAccount, f.request())
	if !errors.Is(err, domain.ErrSlippageExceeded) {
		t.Fatalf("expected ErrSlippageExceeded, got %v", err)
	}
	if len(f.locker.calls) != 0 {
		t.Error("failed bootstrap must not lock a receipt")
	}
	if _, err := f.store.GetByAsset(ctx, poolAsset); err == nil {
		t.Error("failed bootstrap must not record completion")
	}
}

func TestBootstrapper_BaseDepositBelowFloor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)
	f.configurePool(10_000_000, 4_000_000, 7_000_000)

	_, err := f.bootstrapper.Bootstrap(ctx, adminAccount, f.request())
	if !errors.Is(err, domain.ErrSlippageExceeded) {
		t.Fatalf("expected ErrSlippageExceeded, got %v", err)
	}
}

func TestBootstrapper_VenueFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)
	f.configurePool(10_000_000, 5_000_000, 7_000_000)
	f.venue.FailCreate = true

	_, err := f.bootstrapper.Bootstrap(ctx, adminAccount, f.request())
	if !errors.Is(err, domain.ErrVenueExecutionFailed) {
		t.Fatalf("expected ErrVenueExecutionFailed, got %v", err)
	}
	if _, err := f.store.GetByAsset(ctx, poolAsset); err == nil {
		t.Error("failed bootstrap must not record completion")
	}
}

func TestBootstrapper_LockFailureLeavesNoRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)
	f.configurePool(10_000_000, 5_000_000, 7_000_000)
	f.locker.fail = true

	_, err := f.bootstrapper.Bootstrap(ctx, adminAccount, f.request())
	if err == nil {
		t.Fatal("expected lock failure to fail the bootstrap")
	}
	if _, err := f.store.GetByAsset(ctx, poolAsset); err == nil {
		t.Error("bootstrap must not record completion when the receipt is not escrowed")
	}
}

func TestBootstrapper_ExpiredDeadline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)
	f.configurePool(10_000_000, 5_000_000, 7_000_000)

	req := f.request()
	req.Deadline = f.nowMs - 1

	_, err := f.bootstrapper.Bootstrap(ctx, adminAccount, req)
	if !errors.Is(err, domain.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if f.venue.CreateCalls != 0 {
		t.Error("expired request must not reach the venue")
	}
}

func TestBootstrapper_ZeroAmounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(0)

	req := f.request()
	req.InitialAssetAmount = uint256.NewInt(0)
	if _, err := f.bootstrapper.Bootstrap(ctx, adminAccount, req); !errors.Is(err, domain.ErrZeroAmount) {
		t.Errorf("zero asset amount: expected ErrZeroAmount, got %v", err)
	}

	req = f.request()
	req.InitialBaseAmount = nil
	if _, err := f.bootstrapper.Bootstrap(ctx, adminAccount, req); !errors.Is(err, domain.ErrZeroAmount) {
		t.Errorf("nil base amount: expected ErrZeroAmount, got %v", err)
	}
}

func TestBootstrapper_CustomUnlockDelay(t *testing.T) {
	ctx := context.Background()
	delay := 7 * 24 * time.Hour

	f := newFixture(delay)
	f.configurePool(10_000_000, 5_000_000, 7_000_000)

	if _, err := f.bootstrapper.Bootstrap(ctx, adminAccount, f.request()); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if want := f.nowMs + delay.Milliseconds(); f.locker.calls[0].unlockTime != want {
		t.Errorf("unlock time: got %d, want %d", f.locker.calls[0].unlockTime, want)
	}
}
