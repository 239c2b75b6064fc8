package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clinicore/clinicore/internal/cache"
	"github.com/clinicore/clinicore/internal/models"
	"github.com/clinicore/clinicore/pkg/logger"
	"github.com/clinicore/clinicore/pkg/metrics"
)

// DefaultPermissionTTL bounds how long a resolved permission set may be served
// without recomputation. Mutation paths invalidate synchronously, so the TTL
// only backstops invalidations this process never saw (another instance
// writing the same database).
const DefaultPermissionTTL = 15 * time.Minute

// Resolver computes the effective permission set for an actor: the union of
// permission codes reachable through assigned roles plus direct grants. The
// resolved set is cached per actor; every mutation path must call one of the
// invalidation methods before returning to its caller.
type Resolver struct {
	db    *gorm.DB
	store cache.Store
	ttl   time.Duration
	log   *zap.Logger
}

// NewResolver constructs a Resolver. A nil store disables caching, which is
// only sensible in tests.
func NewResolver(db *gorm.DB, store cache.Store, ttl time.Duration) (*Resolver, error) {
	if db == nil {
		return nil, errors.New("resolver: db is required")
	}
	if ttl <= 0 {
		ttl = DefaultPermissionTTL
	}
	return &Resolver{
		db:    db,
		store: store,
		ttl:   ttl,
		log:   logger.WithComponent("resolver"),
	}, nil
}

func actorCacheKey(actorID uint) string {
	return fmt.Sprintf("perms:actor:%d", actorID)
}

// Resolve returns the actor's effective permission codes, sorted. The cached
// entry holds codes only; decomposition into full catalog rows happens lazily
// at the call sites that need it.
func (r *Resolver) Resolve(ctx context.Context, actorID uint) ([]string, error) {
	ctx = ensureContext(ctx)

	if r.store != nil {
		payload, ok, err := r.store.Get(ctx, actorCacheKey(actorID))
		if err != nil {
			// A broken cache must not break resolution; fall through to the
			// database but surface the condition.
			r.log.Warn("permission cache read failed", zap.Uint("actor_id", actorID), zap.Error(err))
		} else if ok {
			var codes []string
			if err := json.Unmarshal(payload, &codes); err == nil {
				metrics.PermissionCacheEvents.WithLabelValues("hit").Inc()
				return codes, nil
			}
			r.log.Warn("permission cache entry corrupt; recomputing", zap.Uint("actor_id", actorID))
		}
	}
	metrics.PermissionCacheEvents.WithLabelValues("miss").Inc()

	codes, err := r.resolveFromStore(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		payload, err := json.Marshal(codes)
		if err != nil {
			return nil, fmt.Errorf("resolver: encode permission set: %w", err)
		}
		if err := r.store.Set(ctx, actorCacheKey(actorID), payload, r.ttl); err != nil {
			r.log.Warn("permission cache write failed", zap.Uint("actor_id", actorID), zap.Error(err))
		}
	}

	return codes, nil
}

func (r *Resolver) resolveFromStore(ctx context.Context, actorID uint) ([]string, error) {
	var actor models.StaffUser
	if err := r.db.WithContext(ctx).
		Preload("Roles", "is_active = ?", true).
		Preload("Roles.Permissions").
		Preload("DirectPermissions").
		First(&actor, "id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActorNotFound
		}
		return nil, fmt.Errorf("resolver: load actor: %w", err)
	}

	set := make(map[string]struct{})
	for _, role := range actor.Roles {
		for _, perm := range role.Permissions {
			set[perm.Code] = struct{}{}
		}
	}
	for _, perm := range actor.DirectPermissions {
		set[perm.Code] = struct{}{}
	}

	codes := make([]string, 0, len(set))
	for code := range set {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

// Invalidate synchronously evicts the actor's cached permission set.
func (r *Resolver) Invalidate(ctx context.Context, actorIDs ...uint) error {
	if r.store == nil || len(actorIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(actorIDs))
	for _, id := range actorIDs {
		keys = append(keys, actorCacheKey(id))
	}
	return r.store.Delete(ensureContext(ctx), keys...)
}

// InvalidateRoleHolders evicts the cached set of every actor currently holding
// the role. A role-content edit affects all holders, so per-actor eviction
// alone would leave stale allows in place until TTL expiry.
func (r *Resolver) InvalidateRoleHolders(ctx context.Context, roleID uint) error {
	if r.store == nil {
		return nil
	}
	ctx = ensureContext(ctx)

	var holderIDs []uint
	if err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("role_id = ?", roleID).
		Pluck("staff_user_id", &holderIDs).Error; err != nil {
		return fmt.Errorf("resolver: load role holders: %w", err)
	}

	return r.Invalidate(ctx, holderIDs...)
}

// Flush drops every cached permission set. Used by bulk mutations that cannot
// cheaply enumerate the affected actors.
func (r *Resolver) Flush(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	return r.store.Flush(ensureContext(ctx))
}
