package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/holiman/uint256"

	"memeswap-router/internal/bootstrap"
	"memeswap-router/internal/domain"
	"memeswap-router/internal/storage"
)

// errorResponse is the JSON error body. Kind is a stable machine-readable
// name from the domain error taxonomy.
type errorResponse struct {
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		s.logger.Printf("internal error: %v", err)
	}
	writeJSON(w, status, errorResponse{
		Kind:    domain.ErrorKind(err),
		Message: err.Error(),
	})
}

func (s *Server) writeBadRequest(w http.ResponseWriter, kind string, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Kind:    kind,
		Message: err.Error(),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrLockNotFound),
		errors.Is(err, domain.ErrNotRegistered),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyRegistered),
		errors.Is(err, domain.ErrAlreadyReleased),
		errors.Is(err, domain.ErrBootstrapAlreadyDone),
		errors.Is(err, domain.ErrTooEarly):
		return http.StatusConflict
	case errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrZeroAmount),
		errors.Is(err, domain.ErrInvalidUnlockTime),
		errors.Is(err, domain.ErrArithmeticOverflow),
		errors.Is(err, domain.ErrSlippageExceeded):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrVenueExecutionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func parseAmountField(name, value string) (*uint256.Int, error) {
	amount, err := domain.ParseAmount(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return amount, nil
}

// swapRequest is the POST /v1/swap body. Amounts are decimal strings.
type swapRequest struct {
	Trader       string `json:"trader"`
	Asset        string `json:"asset"`
	AmountIn     string `json:"amount_in"`
	MinAmountOut string `json:"min_amount_out"`
	DeadlineMs   int64  `json:"deadline_ms"`
}

type swapResponse struct {
	SettlementID string `json:"settlement_id"`
	AmountOut    string `json:"amount_out"`
	FeeAmount    string `json:"fee_amount"`
	CreatorFee   string `json:"creator_fee"`
	PlatformFee  string `json:"platform_fee"`
	GrossOut     string `json:"gross_out"`
	QuotedOut    string `json:"quoted_out"`
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "malformed_body", err)
		return
	}

	trader, err := domain.ParseAccountID(req.Trader)
	if err != nil {
		s.writeBadRequest(w, "invalid_account", err)
		return
	}
	asset, err := domain.ParseAssetID(req.Asset)
	if err != nil {
		s.writeBadRequest(w, "invalid_asset", err)
		return
	}
	amountIn, err := parseAmountField("amount_in", req.AmountIn)
	if err != nil {
		s.writeBadRequest(w, "invalid_amount", err)
		return
	}
	minOut, err := parseAmountField("min_amount_out", req.MinAmountOut)
	if err != nil {
		s.writeBadRequest(w, "invalid_amount", err)
		return
	}

	result, err := s.router.Swap(r.Context(), trader, &domain.SwapRequest{
		Asset:        asset,
		AmountIn:     amountIn,
		MinAmountOut: minOut,
		Deadline:     req.DeadlineMs,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, swapResponse{
		SettlementID: result.SettlementID,
		AmountOut:    domain.FormatAmount(result.AmountOut),
		FeeAmount:    domain.FormatAmount(result.FeeAmount),
		CreatorFee:   domain.FormatAmount(result.CreatorFee),
		PlatformFee:  domain.FormatAmount(result.PlatformFee),
		GrossOut:     domain.FormatAmount(result.GrossOut),
		QuotedOut:    domain.FormatAmount(result.QuotedOut),
	})
}

type quoteRequest struct {
	Asset    string `json:"asset"`
	AmountIn string `json:"amount_in"`
}

type quoteResponse struct {
	AmountOut string `json:"amount_out"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "malformed_body", err)
		return
	}

	asset, err := domain.ParseAssetID(req.Asset)
	if err != nil {
		s.writeBadRequest(w, "invalid_asset", err)
		return
	}
	amountIn, err := parseAmountField("amount_in", req.AmountIn)
	if err != nil {
		s.writeBadRequest(w, "invalid_amount", err)
		return
	}

	quote, err := s.router.Quote(r.Context(), asset, amountIn)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		AmountOut: domain.FormatAmount(quote.AmountOut),
	})
}

type registerCreatorRequest struct {
	Caller  string `json:"caller"`
	Asset   string `json:"asset"`
	Creator string `json:"creator"`
}

type reassignCreatorRequest struct {
	Caller  string `json:"caller"`
	Creator string `json:"creator"`
}

type creatorResponse struct {
	Asset        string `json:"asset"`
	Creator      string `json:"creator"`
	RegisteredAt int64  `json:"registered_at,omitempty"`
	UpdatedAt    int64  `json:"updated_at,omitempty"`
}

func (s *Server) handleRegisterCreator(w http.ResponseWriter, r *http.Request) {
	var req registerCreatorRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "malformed_body", err)
		return
	}

	caller, err := domain.ParseAccountID(req.Caller)
	if err != nil {
		s.writeBadRequest(w, "invalid_account", err)
		return
	}
	asset, err := domain.ParseAssetID(req.Asset)
	if err != nil {
		s.writeBadRequest(w, "invalid_asset", err)
		return
	}
	creator, err := domain.ParseAccountID(req.Creator)
	if err != nil {
		s.writeBadRequest(w, "invalid_account", err)
		return
	}

	if err := s.registry.Register(r.Context(), caller, asset, creator); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, creatorResponse{
		Asset:   string(asset),
		Creator: string(creator),
	})
}

func (s *Server) handleReassignCreator(w http.ResponseWriter, r *http.Request) {
	asset, err := domain.ParseAssetID(r.PathValue("asset"))
	if err != nil {
		s.writeBadRequest(w, "invalid_asset", err)
		return
	}

	var req reassignCreatorRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "malformed_body", err)
		return
	}

	caller, err := domain.ParseAccountID(req.Caller)
	if err != nil {
		s.writeBadRequest(w, "invalid_account", err)
		return
	}
	creator, err := domain.ParseAccountID(req.Creator)
	if err != nil {
		s.writeBadRequest(w, "invalid_account", err)
		return
	}

	if err := s.registry.Reassign(r.Context(), caller, asset, creator); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creatorResponse{
		Asset:   string(asset),
		Creator: string(creator),
	})
}

func (s *Server) handleGetCreator(w http.ResponseWriter, r *http.Request) {
	asset, err := domain.ParseAssetID(r.PathValue("asset"))
	if err != nil {
		s.writeBadRequest(w, "invalid_asset", err)
		return
	}

	creator, found, err := s.registry.Lookup(r.Context(), asset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		s.writeError(w, domain.ErrNotRegistered)
		return
	}
	writeJSON(w, http.StatusOK, creatorResponse{
		Asset:   string(asset),
		Creator: string(creator),
	})
}

func (s *Server) handleListCreators(w http.ResponseWriter, r *http.Request) {
	records, err := s.registry.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]creatorResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, creatorResponse{
			Asset:        string(rec.Asset),
			Creator:      string(rec.Creator),
			RegisteredAt: rec.RegisteredAt,
			UpdatedAt:    rec.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type bootstrapRequest struct {
	Caller             string `json:"caller"`
	Asset              string `json:"asset"`
	InitialAssetAmount string `json:"initial_asset_amount"`
	InitialBaseAmount  string `json:"initial_base_amount"`
	MinAssetAmount     string `json:"min_asset_amount"`
	MinBaseAmount      string `json:"min_base_amount"`
	Beneficiary        string `json:"beneficiary"`
	DeadlineMs         int64  `json:"deadline_ms"`
}

type bootstrapResponse struct {
	Asset          string `json:"asset"`
	PoolAddress    string `json:"pool_address"`
	LockID         string `json:"lock_id"`
	AssetDeposited string `json:"asset_deposited"`
	BaseDeposited  string `json:"base_deposited"`
	ReceiptAmount  string `json:"receipt_amount"`
	CompletedAt    int64  `json:"completed_at"`
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	var req bootstrapRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "malformed_body", err)
		return
	}

	caller, err := domain.ParseAccountID(req.Caller)
	if err != nil {
		s.writeBadRequest(w, "invalid_account", err)
		return
	}
	asset, err := domain.ParseAssetID(req.Asset)
	if err != nil {
		s.writeBadRequest(w, "invalid_asset", err)
		return
	}
	beneficiary, err := domain.ParseAccountID(req.Beneficiary)
	if err != nil {
		s.writeBadRequest(w, "invalid_account", err)
		return
	}
	assetAmount, err := parseAmountField("initial_asset_amount", req.InitialAssetAmount)
	if err != nil {
		s.writeBadRequest(w, "invalid_amount", err)
		return
	}
	baseAmount, err := parseAmountField("initial_base_amount", req.InitialBaseAmount)
	if err != nil {
		s.writeBadRequest(w, "invalid_amount", err)
		return
	}
	minAsset, err := parseAmountField("min_asset_amount", req.MinAssetAmount)
	if err != nil {
		s.writeBadRequest(w, "invalid_amount", err)
		return
	}
	minBase, err := parseAmountField("min_base_amount", req.MinBaseAmount)
	if err != nil {
		s.writeBadRequest(w, "invalid_amount", err)
		return
	}

	record, err := s.bootstrapper.Bootstrap(r.Context(), caller, &bootstrap.Request{
		Asset:              asset,
		InitialAssetAmount: assetAmount,
		InitialBaseAmount:  baseAmount,
		MinAssetAmount:     minAsset,
		MinBaseAmount:      minBase,
		Beneficiary:        beneficiary,
		Deadline:           req.DeadlineMs,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bootstrapResponseFrom(record))
}

func (s *Server) handleGetBootstrap(w http.ResponseWriter, r *http.Request) {
	asset, err := domain.ParseAssetID(r.PathValue("asset"))
	if err != nil {
		s.writeBadRequest(w, "invalid_asset", err)
		return
	}

	record, err := s.bootstrapper.Get(r.Context(), asset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bootstrapResponseFrom(record))
}

func bootstrapResponseFrom(record *domain.PoolBootstrap) bootstrapResponse {
	return bootstrapResponse{
		Asset:          string(record.Asset),
		PoolAddress:    record.PoolAddress,
		LockID:         record.LockID,
		AssetDeposited: domain.FormatAmount(record.AssetDeposited),
		BaseDeposited:  domain.FormatAmount(record.BaseDeposited),
		ReceiptAmount:  domain.FormatAmount(record.ReceiptAmount),
		CompletedAt:    record.CompletedAt,
	}
}

type lockResponse struct {
	LockID        string `json:"lock_id"`
	Asset         string `json:"asset"`
	ReceiptAmount string `json:"receipt_amount"`
	UnlockTimeMs  int64  `json:"unlock_time_ms"`
	Beneficiary   string `json:"beneficiary"`
	Released      bool   `json:"released"`
	CreatedAt     int64  `json:"created_at"`
	ReleasedAt    int64  `json:"released_at,omitempty"`
}

func (s *Server) handleGetLock(w http.ResponseWriter, r *http.Request) {
	lock, err := s.locker.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lockResponse{
		LockID:        lock.LockID,
		Asset:         string(lock.Asset),
		ReceiptAmount: domain.FormatAmount(lock.ReceiptAmount),
		UnlockTimeMs:  lock.UnlockTime,
		Beneficiary:   string(lock.Beneficiary),
		Released:      lock.Released,
		CreatedAt:     lock.CreatedAt,
		ReleasedAt:    lock.ReleasedAt,
	})
}

type releaseLockRequest struct {
	Caller string `json:"caller"`
}

type releaseLockResponse struct {
	LockID   string `json:"lock_id"`
	Released string `json:"released_amount"`
}

func (s *Server) handleReleaseLock(w http.ResponseWriter, r *http.Request) {
	var req releaseLockRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeBadRequest(w, "malformed_body", err)
		return
	}

	caller, err := domain.ParseAccountID(req.Caller)
	if err != nil {
		s.writeBadRequest(w, "invalid_account", err)
		return
	}

	lockID := r.PathValue("id")
	amount, err := s.locker.Release(r.Context(), caller, lockID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, releaseLockResponse{
		LockID:   lockID,
		Released: domain.FormatAmount(amount),
	})
}
