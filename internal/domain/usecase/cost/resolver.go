package cost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/reelkit/credits-service/internal/domain/entity"
	errs "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	"github.com/reelkit/credits-service/internal/domain/port/persistence"
)

// Resolver maps a generation request (media type, model, variant) to its
// credit cost. The admin override table in settings is consulted first, then
// the compiled defaults. A cost of zero is never returned: an unresolvable
// request fails loudly rather than granting free generations.
//
// The override table is cached with a bounded TTL and invalidated explicitly
// on admin writes; a TTL of zero disables caching and every lookup reads the
// configuration fresh.
type Resolver struct {
	settings     persistence.SettingRepository
	defaults     entity.CostTable
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cacheTTL     time.Duration

	mu       sync.RWMutex
	cached   entity.CostTable
	cachedAt time.Time
	hasCache bool
}

// NewResolver creates a cost resolver backed by the given setting repository
func NewResolver(
	settings persistence.SettingRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cacheTTL time.Duration,
) *Resolver {
	return &Resolver{
		settings:     settings,
		defaults:     DefaultCostTable(),
		timeProvider: timeProvider,
		logger:       logger,
		cacheTTL:     cacheTTL,
	}
}

// GetCost returns the credit cost for the given media type, model and
// optional variant.
//
// Possible errors:
// - ErrUnknownMediaType: If neither the override table nor the defaults price the media type
// - ErrCostConfigMissing: If the stored configuration cannot be read or parsed
func (r *Resolver) GetCost(ctx context.Context, mediaType, model, variant string) (int64, error) {
	if mediaType == "" {
		return 0, fmt.Errorf("%w: media type is required", errs.ErrInvalidRequest)
	}

	overrides, err := r.overrideTable(ctx)
	if err != nil {
		return 0, err
	}

	if overrides != nil {
		if credits, ok := overrides.Resolve(mediaType, model, variant); ok {
			if credits <= 0 {
				return 0, fmt.Errorf("%w: override resolved to non-positive cost for %s/%s", errs.ErrCostConfigMissing, mediaType, model)
			}
			return credits, nil
		}
	}

	if credits, ok := r.defaults.Resolve(mediaType, model, variant); ok {
		return credits, nil
	}

	return 0, fmt.Errorf("%w: %s", errs.ErrUnknownMediaType, mediaType)
}

// Overrides returns the stored override table and its version for the admin
// configuration surface. Always reads the settings row directly, bypassing
// the lookup cache.
func (r *Resolver) Overrides(ctx context.Context) (entity.CostTable, int64, error) {
	raw, version, err := r.settings.Get(ctx, persistence.SettingKeyUsageCosts)
	if err != nil {
		return nil, 0, err
	}

	var table entity.CostTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, 0, fmt.Errorf("%w: stored cost table is not valid JSON: %s", errs.ErrCostConfigMissing, err.Error())
	}

	return table, version, nil
}

// SetOverrides validates and stores a new override table, bumping the setting
// version and invalidating the cache so the next lookup sees the new prices.
func (r *Resolver) SetOverrides(ctx context.Context, table entity.CostTable) (int64, error) {
	if err := table.Validate(); err != nil {
		return 0, err
	}

	raw, err := json.Marshal(table)
	if err != nil {
		return 0, fmt.Errorf("failed to encode cost table: %w", err)
	}

	version, err := r.settings.Set(ctx, persistence.SettingKeyUsageCosts, raw)
	if err != nil {
		return 0, err
	}

	r.Invalidate()

	r.logger.Info("Usage cost overrides updated", map[string]any{
		"version":     version,
		"media_types": len(table),
	})

	return version, nil
}

// Invalidate drops the cached override table
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.hasCache = false
	r.cached = nil
	r.mu.Unlock()
}

// overrideTable returns the override table, served from cache while fresh.
// A missing setting row is not fatal: the compiled defaults still price every
// known media type, and the row is seeded at migration anyway.
func (r *Resolver) overrideTable(ctx context.Context) (entity.CostTable, error) {
	if r.cacheTTL > 0 {
		r.mu.RLock()
		if r.hasCache && r.timeProvider.Since(r.cachedAt).Std() < r.cacheTTL {
			table := r.cached
			r.mu.RUnlock()
			return table, nil
		}
		r.mu.RUnlock()
	}

	raw, _, err := r.settings.Get(ctx, persistence.SettingKeyUsageCosts)
	if err != nil {
		if errors.Is(err, errs.ErrCostConfigMissing) {
			r.logger.Warn("Usage cost overrides not found, using compiled defaults", nil)
			r.storeCache(nil)
			return nil, nil
		}
		return nil, err
	}

	var table entity.CostTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("%w: stored cost table is not valid JSON: %s", errs.ErrCostConfigMissing, err.Error())
	}

	r.storeCache(table)
	return table, nil
}

func (r *Resolver) storeCache(table entity.CostTable) {
	if r.cacheTTL <= 0 {
		return
	}
	r.mu.Lock()
	r.cached = table
	r.cachedAt = r.timeProvider.Now()
	r.hasCache = true
	r.mu.Unlock()
}
