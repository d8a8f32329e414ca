package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filippo.io/edwards25519"
	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"

	"memeswap-router/internal/bootstrap"
	"memeswap-router/internal/domain"
	"memeswap-router/internal/events"
	"memeswap-router/internal/fees"
	"memeswap-router/internal/locker"
	"memeswap-router/internal/registry"
	"memeswap-router/internal/router"
	"memeswap-router/internal/storage/memory"
	"memeswap-router/internal/venue"
	"memeswap-router/internal/venue/stub"
)

// testAccount derives the n-th multiple of the ed25519 base point, so every
// returned id passes the on-curve check at the API boundary.
func testAccount(n int) string {
	p := edwards25519.NewGeneratorPoint()
	g := edwards25519.NewGeneratorPoint()
	for i := 1; i < n; i++ {
		p.Add(p, g)
	}
	return base58.Encode(p.Bytes())
}

// testAsset derives a 32-byte asset id from a name.
func testAsset(name string) string {
	sum := sha256.Sum256([]byte(name))
	return base58.Encode(sum[:])
}

var (
	adminAcct    = testAccount(1)
	treasuryAcct = testAccount(2)
	traderAcct   = testAccount(3)
	creatorAcct  = testAccount(4)
	serviceAcct  = testAccount(5)
	memeAsset    = testAsset("meme-token")
)

type apiFixture struct {
	server *httptest.Server
	venue  *stub.Client
	nowMs  int64
}

func newFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := log.New(io.Discard, "", 0)
	venueClient := stub.NewClient()

	creatorStore := memory.NewCreatorStore()
	balanceStore := memory.NewBalanceStore()
	lockStore := memory.NewLockStore()
	bootstrapStore := memory.NewBootstrapStore()

	reg := registry.New(creatorStore, domain.AccountID(adminAcct), events.Nop{}, logger)
	lkr := locker.New(lockStore, balanceStore, domain.AccountID(serviceAcct), events.Nop{}, logger)
	rtr := router.New(
		venueClient,
		fees.DefaultParameters(),
		reg,
		balanceStore,
		domain.AccountID(treasuryAcct),
		events.Nop{},
		logger,
	)
	btr := bootstrap.New(
		venueClient, lkr, bootstrapStore,
		domain.AccountID(adminAcct), domain.AccountID(serviceAcct),
		0, events.Nop{}, logger,
	)

	srv := NewServer(rtr, reg, lkr, btr, nil, logger)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	return &apiFixture{
		server: ts,
		venue:  venueClient,
		nowMs:  time.Now().UnixMilli(),
	}
}

func (f *apiFixture) post(t *testing.T, path string, body any) (*http.Response, []byte) {
	t.Helper()
	return f.do(t, http.MethodPost, path, body)
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, payload
}

func errorKind(t *testing.T, payload []byte) string {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(payload, &e); err != nil {
		t.Fatalf("unmarshal error body %q: %v", payload, err)
	}
	return e.Kind
}

func TestAPI_Health(t *testing.T) {
	f := newFixture(t)

	resp, payload := f.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if string(payload) != "ok" {
		t.Errorf("body: got %q, want ok", payload)
	}
}

func TestAPI_SwapSettles(t *testing.T) {
	f := newFixture(t)
	f.venue.SwapOutputs[domain.AssetID(memeAsset)] = mustAmount(t, "2000000")

	resp, payload := f.post(t, "/v1/swap", swapRequest{
		Trader:       traderAcct,
		Asset:        memeAsset,
		AmountIn:     "1000000",
		MinAmountOut: "0",
		DeadlineMs:   f.nowMs + 60_000,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, body %s", resp.StatusCode, payload)
	}

	var result swapResponse
	if err := json.Unmarshal(payload, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.SettlementID == "" {
		t.Error("expected settlement id")
	}
	// Default schedule: 5% fee on 2,000,000 gross.
	if result.FeeAmount != "100000" {
		t.Errorf("fee: got %s, want 100000", result.FeeAmount)
	}
	if result.AmountOut != "1900000" {
		t.Errorf("net: got %s, want 1900000", result.AmountOut)
	}
}

func TestAPI_SwapRejectsInvalidTrader(t *testing.T) {
	f := newFixture(t)

	resp, payload := f.post(t, "/v1/swap", swapRequest{
		Trader:       "not-base58-!!",
		Asset:        memeAsset,
		AmountIn:     "1000000",
		MinAmountOut: "0",
		DeadlineMs:   f.nowMs + 60_000,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", resp.StatusCode)
	}
	if kind := errorKind(t, payload); kind != "invalid_account" {
		t.Errorf("kind: got %s, want invalid_account", kind)
	}
}

func TestAPI_SwapExpiredDeadline(t *testing.T) {
	f := newFixture(t)
	f.venue.SwapOutputs[domain.AssetID(memeAsset)] = mustAmount(t, "2000000")

	resp, payload := f.post(t, "/v1/swap", swapRequest{
		Trader:       traderAcct,
		Asset:        memeAsset,
		AmountIn:     "1000000",
		MinAmountOut: "0",
		DeadlineMs:   f.nowMs - 60_000,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", resp.StatusCode)
	}
	if kind := errorKind(t, payload); kind != "expired" {
		t.Errorf("kind: got %s, want expired", kind)
	}
}

func TestAPI_SwapVenueFailureIsBadGateway(t *testing.T) {
	f := newFixture(t)
	f.venue.SwapOutputs[domain.AssetID(memeAsset)] = mustAmount(t, "2000000")
	f.venue.FailExecute = true

	resp, payload := f.post(t, "/v1/swap", swapRequest{
		Trader:       traderAcct,
		Asset:        memeAsset,
		AmountIn:     "1000000",
		MinAmountOut: "0",
		DeadlineMs:   f.nowMs + 60_000,
	})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", resp.StatusCode)
	}
	if kind := errorKind(t, payload); kind != "venue_execution_failed" {
		t.Errorf("kind: got %s, want venue_execution_failed", kind)
	}
}

func TestAPI_RegisterAndLookupCreator(t *testing.T) {
	f := newFixture(t)

	resp, payload := f.post(t, "/v1/creators", registerCreatorRequest{
		Caller:  adminAcct,
		Asset:   memeAsset,
		Creator: creatorAcct,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", resp.StatusCode, payload)
	}

	resp, payload = f.do(t, http.MethodGet, "/v1/creators/"+memeAsset, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup status: got %d", resp.StatusCode)
	}
	var c creatorResponse
	if err := json.Unmarshal(payload, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Creator != creatorAcct {
		t.Errorf("creator: got %s, want %s", c.Creator, creatorAcct)
	}
}

func TestAPI_RegisterRejectsNonAdmin(t *testing.T) {
	f := newFixture(t)

	resp, payload := f.post(t, "/v1/creators", registerCreatorRequest{
		Caller:  traderAcct,
		Asset:   memeAsset,
		Creator: creatorAcct,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403", resp.StatusCode)
	}
	if kind := errorKind(t, payload); kind != "unauthorized" {
		t.Errorf("kind: got %s, want unauthorized", kind)
	}
}

func TestAPI_LookupUnregisteredIsNotFound(t *testing.T) {
	f := newFixture(t)

	resp, payload := f.do(t, http.MethodGet, "/v1/creators/"+memeAsset, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", resp.StatusCode)
	}
	if kind := errorKind(t, payload); kind != "not_registered" {
		t.Errorf("kind: got %s, want not_registered", kind)
	}
}

func TestAPI_ReassignCreator(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.post(t, "/v1/creators", registerCreatorRequest{
		Caller:  adminAcct,
		Asset:   memeAsset,
		Creator: creatorAcct,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status: got %d", resp.StatusCode)
	}

	newCreator := testAccount(6)
	resp, payload := f.do(t, http.MethodPut, "/v1/creators/"+memeAsset, reassignCreatorRequest{
		Caller:  adminAcct,
		Creator: newCreator,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reassign status: got %d, body %s", resp.StatusCode, payload)
	}

	var c creatorResponse
	_, payload = f.do(t, http.MethodGet, "/v1/creators/"+memeAsset, nil)
	if err := json.Unmarshal(payload, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Creator != newCreator {
		t.Errorf("creator: got %s, want %s", c.Creator, newCreator)
	}
}

func TestAPI_BootstrapAndLockLifecycle(t *testing.T) {
	f := newFixture(t)
	f.venue.SetPool(domain.AssetID(memeAsset), &venue.PoolResult{
		PoolAddress:    "pool-addr-1",
		AssetDeposited: mustAmount(t, "10000000"),
		BaseDeposited:  mustAmount(t, "5000000"),
		ReceiptAmount:  mustAmount(t, "7000000"),
	})

	resp, payload := f.post(t, "/v1/pools", bootstrapRequest{
		Caller:             adminAcct,
		Asset:              memeAsset,
		InitialAssetAmount: "10000000",
		InitialBaseAmount:  "5000000",
		MinAssetAmount:     "9500000",
		MinBaseAmount:      "4750000",
		Beneficiary:        creatorAcct,
		DeadlineMs:         f.nowMs + 60_000,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("bootstrap status: got %d, body %s", resp.StatusCode, payload)
	}

	var b bootstrapResponse
	if err := json.Unmarshal(payload, &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.LockID == "" {
		t.Fatal("expected lock id")
	}

	resp, payload = f.do(t, http.MethodGet, "/v1/locks/"+b.LockID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lock status: got %d", resp.StatusCode)
	}
	var lock lockResponse
	if err := json.Unmarshal(payload, &lock); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if lock.ReceiptAmount != "7000000" {
		t.Errorf("receipt: got %s, want 7000000", lock.ReceiptAmount)
	}
	if lock.Released {
		t.Error("fresh lock must not be released")
	}

	// The lock was just created with a 30 day delay, so release is too early.
	resp, payload = f.post(t, "/v1/locks/"+b.LockID+"/release", releaseLockRequest{
		Caller: creatorAcct,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("release status: got %d, want 409, body %s", resp.StatusCode, payload)
	}
	if kind := errorKind(t, payload); kind != "too_early" {
		t.Errorf("kind: got %s, want too_early", kind)
	}

	// A second bootstrap for the same asset is refused.
	resp, payload = f.post(t, "/v1/pools", bootstrapRequest{
		Caller:             adminAcct,
		Asset:              memeAsset,
		InitialAssetAmount: "10000000",
		InitialBaseAmount:  "5000000",
		MinAssetAmount:     "0",
		MinBaseAmount:      "0",
		Beneficiary:        creatorAcct,
		DeadlineMs:         f.nowMs + 60_000,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second bootstrap status: got %d, body %s", resp.StatusCode, payload)
	}
	if kind := errorKind(t, payload); kind != "bootstrap_already_done" {
		t.Errorf("kind: got %s, want bootstrap_already_done", kind)
	}
}

func TestAPI_ReleaseUnknownLockIsNotFound(t *testing.T) {
	f := newFixture(t)

	resp, payload := f.post(t, "/v1/locks/nope/release", releaseLockRequest{
		Caller: creatorAcct,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", resp.StatusCode)
	}
	if kind := errorKind(t, payload); kind != "lock_not_found" {
		t.Errorf("kind: got %s, want lock_not_found", kind)
	}
}

func TestAPI_QuoteRejectsMalformedAmount(t *testing.T) {
	f := newFixture(t)

	resp, payload := f.post(t, "/v1/quote", quoteRequest{
		Asset:    memeAsset,
		AmountIn: "-5",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", resp.StatusCode)
	}
	if kind := errorKind(t, payload); kind != "invalid_amount" {
		t.Errorf("kind: got %s, want invalid_amount", kind)
	}
}

func mustAmount(t *testing.T, s string) *uint256.Int {
	t.Helper()
	a, err := domain.ParseAmount(s)
	if err != nil {
		t.Fatalf("parse amount %q: %v", s, err)
	}
	return a
}
