package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"memeswap-router/internal/domain"
	"memeswap-router/internal/events"
	"memeswap-router/internal/idhash"
	"memeswap-router/internal/observability"
	"memeswap-router/internal/storage"
)

// Registry binds traded assets to creator accounts. Binding is a one-shot
// admin operation; changing the creator afterwards goes through Reassign.
// Routers consult Lookup at settlement time, so a reassign takes effect on
// the next swap with no grace period.
type Registry struct {
	store   storage.CreatorStore
	emitter events.Emitter
	logger  *log.Logger

	admin domain.AccountID
	now   func() time.Time

	mu sync.Mutex
}

// New creates a creator registry. The admin account is the only caller
// allowed to register or reassign.
func New(
	store storage.CreatorStore,
	admin domain.AccountID,
	emitter events.Emitter,
	logger *log.Logger,
) *Registry {
	return &Registry{
		store:   store,
		emitter: emitter,
		logger:  logger,
		admin:   admin,
		now:     time.Now,
	}
}

// Register binds an asset to a creator account. Registering the same
// creator twice is a no-op; registering a different creator for a bound
// asset fails with ErrAlreadyRegistered.
func (r *Registry) Register(
	ctx context.Context,
	caller domain.AccountID,
	asset domain.AssetID,
	creator domain.AccountID,
) error {
	if caller != r.admin {
		return domain.ErrUnauthorized
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.GetByAsset(ctx, asset)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("get creator: %w", err)
	}
	if existing != nil {
		if existing.Creator == creator {
			return nil
		}
		return domain.ErrAlreadyRegistered
	}

	nowMs := r.now().UnixMilli()
	record := &domain.CreatorRecord{
		Asset:        asset,
		Creator:      creator,
		RegisteredAt: nowMs,
		UpdatedAt:    nowMs,
	}

	if err := r.store.Insert(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return domain.ErrAlreadyRegistered
		}
		return fmt.Errorf("insert creator: %w", err)
	}

	r.logger.Printf("registered creator %s for asset %s", creator, asset)
	observability.RecordCreatorRegistered()
	r.emit(ctx, domain.EventCreatorRegistered, asset, creator, nowMs)
	return nil
}

// Reassign replaces the creator for an already bound asset.
func (r *Registry) Reassign(
	ctx context.Context,
	caller domain.AccountID,
	asset domain.AssetID,
	creator domain.AccountID,
) error {
	if caller != r.admin {
		return domain.ErrUnauthorized
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.GetByAsset(ctx, asset)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.ErrNotRegistered
		}
		return fmt.Errorf("get creator: %w", err)
	}

	nowMs := r.now().UnixMilli()
	record := &domain.CreatorRecord{
		Asset:        asset,
		Creator:      creator,
		RegisteredAt: existing.RegisteredAt,
		UpdatedAt:    nowMs,
	}

	if err := r.store.Update(ctx, record); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.ErrNotRegistered
		}
		return fmt.Errorf("update creator: %w", err)
	}

	r.logger.Printf("reassigned creator for asset %s: %s -> %s", asset, existing.Creator, creator)
	observability.RecordCreatorReassigned()
	r.emit(ctx, domain.EventCreatorReassigned, asset, creator, nowMs)
	return nil
}

// Lookup resolves the creator for an asset. The second return is false
// when the asset has no binding; callers route the creator share to the
// platform in that case.
func (r *Registry) Lookup(ctx context.Context, asset domain.AssetID) (domain.AccountID, bool, error) {
	record, err := r.store.GetByAsset(ctx, asset)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.AccountID(""), false, nil
		}
		return domain.AccountID(""), false, fmt.Errorf("get creator: %w", err)
	}
	return record.Creator, true, nil
}

// List returns all bindings ordered by registration time.
func (r *Registry) List(ctx context.Context) ([]*domain.CreatorRecord, error) {
	return r.store.List(ctx)
}

func (r *Registry) emit(ctx context.Context, kind domain.EventKind, asset domain.AssetID, account domain.AccountID, ts int64) {
	r.emitter.Emit(ctx, &domain.SettlementEvent{
		EventID:   idhash.ComputeEventID(kind, asset, account, "", ts),
		Kind:      kind,
		Asset:     asset,
		Account:   account,
		Timestamp: ts,
	})
}
