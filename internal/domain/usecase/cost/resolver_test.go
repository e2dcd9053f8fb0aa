package cost

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/reelkit/credits-service/internal/domain/entity"
	errs "github.com/reelkit/credits-service/internal/domain/error"
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	"github.com/reelkit/credits-service/internal/domain/port/persistence"
	coremocks "github.com/reelkit/credits-service/mocks/port/core"
	persistencemocks "github.com/reelkit/credits-service/mocks/port/persistence"
)

func quietLogger() *coremocks.MockLogger {
	logger := new(coremocks.MockLogger)
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	logger.On("Error", mock.Anything, mock.Anything).Maybe()
	return logger
}

func fixedClock(at time.Time) *coremocks.MockTimeProvider {
	tp := new(coremocks.MockTimeProvider)
	tp.On("Now").Return(at).Maybe()
	tp.On("Since", mock.Anything).Return(coreport.Duration(0)).Maybe()
	return tp
}

func overridesJSON(t *testing.T, table entity.CostTable) []byte {
	t.Helper()
	raw, err := json.Marshal(table)
	require.NoError(t, err)
	return raw
}

func TestResolverGetCost(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Override variant cost wins over defaults", func(t *testing.T) {
		// Arrange
		settings := new(persistencemocks.MockSettingRepository)
		overrides := entity.CostTable{
			"VIDEO": entity.MediaTypeCosts{
				Default: 12,
				Models: map[string]entity.CostEntry{
					"veo": entity.VariantCost(map[string]int64{"4k": 50, "default": 25}),
				},
			},
		}
		settings.On("Get", ctx, persistence.SettingKeyUsageCosts).Return(overridesJSON(t, overrides), int64(3), nil)
		resolver := NewResolver(settings, fixedClock(now), quietLogger(), 0)

		// Act
		credits, err := resolver.GetCost(ctx, "VIDEO", "veo", "4k")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(50), credits)
	})

	t.Run("Override media type default applies to unknown models", func(t *testing.T) {
		settings := new(persistencemocks.MockSettingRepository)
		overrides := entity.CostTable{
			"IMAGE": entity.MediaTypeCosts{Default: 7},
		}
		settings.On("Get", ctx, persistence.SettingKeyUsageCosts).Return(overridesJSON(t, overrides), int64(1), nil)
		resolver := NewResolver(settings, fixedClock(now), quietLogger(), 0)

		credits, err := resolver.GetCost(ctx, "IMAGE", "some-new-model", "")

		require.NoError(t, err)
		assert.Equal(t, int64(7), credits)
	})

	t.Run("Missing override row falls back to compiled defaults", func(t *testing.T) {
		settings := new(persistencemocks.MockSettingRepository)
		settings.On("Get", ctx, persistence.SettingKeyUsageCosts).Return(nil, int64(0), errs.ErrCostConfigMissing)
		resolver := NewResolver(settings, fixedClock(now), quietLogger(), 0)

		credits, err := resolver.GetCost(ctx, "VIDEO", "veo", "4k")

		require.NoError(t, err)
		defaults := DefaultCostTable()
		expected, ok := defaults.Resolve("VIDEO", "veo", "4k")
		require.True(t, ok)
		assert.Equal(t, expected, credits)
	})

	t.Run("Media type absent from overrides falls through to defaults", func(t *testing.T) {
		settings := new(persistencemocks.MockSettingRepository)
		overrides := entity.CostTable{
			"IMAGE": entity.MediaTypeCosts{Default: 7},
		}
		settings.On("Get", ctx, persistence.SettingKeyUsageCosts).Return(overridesJSON(t, overrides), int64(1), nil)
		resolver := NewResolver(settings, fixedClock(now), quietLogger(), 0)

		credits, err := resolver.GetCost(ctx, "VIDEO", "kling", "")

		require.NoError(t, err)
		defaults := DefaultCostTable()
		expected, ok := defaults.Resolve("VIDEO", "kling", "")
		require.True(t, ok)
		assert.Equal(t, expected, credits)
	})

	t.Run("Unknown media type everywhere is an error", func(t *testing.T) {
		settings := new(persistencemocks.MockSettingRepository)
		settings.On("Get", ctx, persistence.SettingKeyUsageCosts).Return(nil, int64(0), errs.ErrCostConfigMissing)
		resolver := NewResolver(settings, fixedClock(now), quietLogger(), 0)

		_, err := resolver.GetCost(ctx, "HOLOGRAM", "", "")

		assert.ErrorIs(t, err, errs.ErrUnknownMediaType)
	})

	t.Run("Zero override cost is an error, never free", func(t *testing.T) {
		settings := new(persistencemocks.MockSettingRepository)
		// Stored table with a zero default slipped past validation
		raw := []byte(`{"IMAGE":{"default":0}}`)
		settings.On("Get", ctx, persistence.SettingKeyUsageCosts).Return(raw, int64(1), nil)
		resolver := NewResolver(settings, fixedClock(now), quietLogger(), 0)

		_, err := resolver.GetCost(ctx, "IMAGE", "", "")

		assert.ErrorIs(t, err, errs.ErrCostConfigMissing)
	})

	t.Run("Corrupt stored JSON is an error", func(t *testing.T) {
		settings := new(persistencemocks.MockSettingRepository)
		settings.On("Get", ctx, persistence.SettingKeyUsageCosts).Return([]byte(`{not json`), int64(1), nil)
		resolver := NewResolver(settings, fixedClock(now), quietLogger(), 0)

		_, err := resolver.GetCost(ctx, "IMAGE", "", "")

		assert.ErrorIs(t, err, errs.ErrCostConfigMissing)
	})

	t.Run("Empty media type is rejected", func(t *testing.T) {
		settings := new(persistencemocks.MockSettingRepository)
		resolver := NewResolver(settings, fixedClock(now), quietLogger(), 0)

		_, err := resolver.GetCost(ctx, "", "veo", "")

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
		settings.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestResolverCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	overrides := entity.CostTable{
		"IMAGE": entity.MediaTypeCosts{Default: 7},
	}

	t.Run("Fresh cache serves lookups without hitting storage", func(t *testing.T) {
		// Arrange
		settings := new(persistencemocks.MockSettingRepository)
		tp := new(coremocks.MockTimeProvider)
		tp.On("Now").Return(now)
		tp.On("Since", mock.Anything).Return(coreport.Duration(time.Second))
		settings.On("Get", ctx, persistence.SettingKeyUsageCosts).Return(overridesJSON(t, overrides), int64(1), nil).Once()
		resolver := NewResolver(settings, tp, quietLogger(), 30*time.Second)

		// Act
		first, err := resolver.GetCost(ctx, "IMAGE", "", "")
		require.NoError(t, err)
		second, err := resolver.GetCost(ctx, "IMAGE", "", "")
		require.NoError(t, err)

		// Assert
		assert.Equal(t, first, second)
		settings.AssertNumberOfCalls(t, "Get", 1)
	})

	t.Run("Stale cache re-reads storage", func(t *testing.T) {
		// Arrange
		settings := new(persistencemocks.MockSettingRepository)
		tp := new(coremocks.MockTimeProvider)
		tp.On("Now").Return(now)
		tp.On("Since", mock.Anything).Return(coreport.Duration(time.Minute))
		settings.On("Get", ctx, persistence.SettingKeyUsageCosts).Return(overridesJSON(t, overrides), int64(1), nil)
		resolver := NewResolver(settings, tp, quietLogger(), 30*time.Second)

		// Act
		_, err := resolver.GetCost(ctx, "IMAGE", "", "")
		require.NoError(t, err)
		_, err = resolver.GetCost(ctx, "IMAGE", "", "")
		require.NoError(t, err)

		// Assert
		settings.AssertNumberOfCalls(t, "Get", 2)
	})

	t.Run("Zero TTL disables caching entirely", func(t *testing.T) {
		settings := new(persistencemocks.MockSettingRepository)
		settings.On("Get", ctx, persistence.SettingKeyUsageCosts).Return(overridesJSON(t, overrides), int64(1), nil)
		resolver := NewResolver(settings, fixedClock(now), quietLogger(), 0)

		_, err := resolver.GetCost(ctx, "IMAGE", "", "")
		require.NoError(t, err)
		_, err = resolver.GetCost(ctx, "IMAGE", "", "")
		require.NoError(t, err)

		settings.AssertNumberOfCalls(t, "Get", 2)
	})

	t.Run("Invalidate drops the cache immediately", func(t *testing.T) {
		// Arrange
		settings := new(persistencemocks.MockSettingRepository)
		tp := new(coremocks.MockTimeProvider)
		tp.On("Now").Return(now)
		tp.On("Since", mock.Anything).Return(coreport.Duration(time.Second))
		settings.On("Get", ctx, persistence.SettingKeyUsageCosts).Return(overridesJSON(t, overrides), int64(1), nil)
		resolver := NewResolver(settings, tp, quietLogger(), 30*time.Second)

		// Act
		_, err := resolver.GetCost(ctx, "IMAGE", "", "")
		require.NoError(t, err)
		resolver.Invalidate()
		_, err = resolver.GetCost(ctx, "IMAGE", "", "")
		require.NoError(t, err)

		// Assert
		settings.AssertNumberOfCalls(t, "Get", 2)
	})
}

func TestResolverSetOverrides(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Valid table is stored and bumps the version", func(t *testing.T) {
		// Arrange
		settings := new(persistencemocks.MockSettingRepository)
		table := entity.CostTable{
			"IMAGE": entity.MediaTypeCosts{Default: 9},
		}
		settings.On("Set", ctx, persistence.SettingKeyUsageCosts, mock.Anything).Return(int64(4), nil)
		resolver := NewResolver(settings, fixedClock(now), quietLogger(), 0)

		// Act
		version, err := resolver.SetOverrides(ctx, table)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(4), version)
		settings.AssertExpectations(t)
	})

	t.Run("Invalid table never reaches storage", func(t *testing.T) {
		settings := new(persistencemocks.MockSettingRepository)
		resolver := NewResolver(settings, fixedClock(now), quietLogger(), 0)

		_, err := resolver.SetOverrides(ctx, entity.CostTable{})

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
		settings.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDefaultCostTable(t *testing.T) {
	defaults := DefaultCostTable()

	t.Run("Every media type has a positive default", func(t *testing.T) {
		require.NoError(t, defaults.Validate())
	})

	t.Run("Known media types resolve", func(t *testing.T) {
		for _, mediaType := range []string{MediaTypeImage, MediaTypeVideo, MediaTypeUpscale} {
			credits, ok := defaults.Resolve(mediaType, "", "")
			assert.True(t, ok, mediaType)
			assert.Positive(t, credits, mediaType)
		}
	})

	t.Run("Video variant pricing", func(t *testing.T) {
		fourK, ok := defaults.Resolve(MediaTypeVideo, "veo", "4k")
		require.True(t, ok)
		fallback, ok := defaults.Resolve(MediaTypeVideo, "veo", "resolution-from-the-future")
		require.True(t, ok)
		assert.Greater(t, fourK, fallback)
	})
}
