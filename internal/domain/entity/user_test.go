package entity

import (
	"testing"
	"time"

	errs "github.com/reelkit/credits-service/internal/domain/error"
	coremocks "github.com/reelkit/credits-service/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mockTime := new(coremocks.MockTimeProvider)
	mockTime.On("Now").Return(fixedTime)

	t.Run("Valid user creation", func(t *testing.T) {
		user, err := NewUser(1, 100, mockTime)

		require.NoError(t, err)
		assert.Equal(t, uint64(1), user.ID)
		assert.Equal(t, int64(100), user.Credits())
		assert.Equal(t, fixedTime, user.CreatedAt)
		assert.Equal(t, fixedTime, user.UpdatedAt)
		assert.Equal(t, uint64(0), user.TransactionCount)
	})

	t.Run("Zero ID should return error", func(t *testing.T) {
		user, err := NewUser(0, 100, mockTime)

		assert.ErrorIs(t, err, errs.ErrInvalidUserID)
		assert.Nil(t, user)
	})

	t.Run("Negative initial credits should return error", func(t *testing.T) {
		user, err := NewUser(1, -1, mockTime)

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
		assert.Nil(t, user)
	})

	t.Run("Zero initial credits is allowed", func(t *testing.T) {
		user, err := NewUser(1, 0, mockTime)

		require.NoError(t, err)
		assert.Equal(t, int64(0), user.Credits())
	})
}

func TestUserCanAfford(t *testing.T) {
	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mockTime := new(coremocks.MockTimeProvider)
	mockTime.On("Now").Return(fixedTime)

	user, err := NewUser(1, 10, mockTime)
	require.NoError(t, err)

	assert.True(t, user.CanAfford(10))
	assert.True(t, user.CanAfford(3))
	assert.False(t, user.CanAfford(11))
}

func TestUserApplyDebit(t *testing.T) {
	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mockTime := new(coremocks.MockTimeProvider)
	mockTime.On("Now").Return(fixedTime)

	t.Run("Debit within balance", func(t *testing.T) {
		user, err := NewUser(1, 10, mockTime)
		require.NoError(t, err)

		require.NoError(t, user.ApplyDebit(3, mockTime))
		assert.Equal(t, int64(7), user.Credits())
		assert.Equal(t, uint64(1), user.TransactionCount)
	})

	t.Run("Debit to exactly zero", func(t *testing.T) {
		user, err := NewUser(1, 10, mockTime)
		require.NoError(t, err)

		require.NoError(t, user.ApplyDebit(10, mockTime))
		assert.Equal(t, int64(0), user.Credits())
	})

	t.Run("Debit past zero is rejected with shortfall details", func(t *testing.T) {
		user, err := NewUser(1, 10, mockTime)
		require.NoError(t, err)

		err = user.ApplyDebit(11, mockTime)
		require.Error(t, err)

		var insufficientErr *errs.InsufficientCreditsError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, int64(11), insufficientErr.Required)
		assert.Equal(t, int64(10), insufficientErr.Available)

		// Balance must be untouched after a rejected debit
		assert.Equal(t, int64(10), user.Credits())
		assert.Equal(t, uint64(0), user.TransactionCount)
	})

	t.Run("Non-positive amount is rejected", func(t *testing.T) {
		user, err := NewUser(1, 10, mockTime)
		require.NoError(t, err)

		assert.ErrorIs(t, user.ApplyDebit(0, mockTime), errs.ErrInvalidAmount)
		assert.ErrorIs(t, user.ApplyDebit(-5, mockTime), errs.ErrInvalidAmount)
	})
}

func TestUserApplyCredit(t *testing.T) {
	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mockTime := new(coremocks.MockTimeProvider)
	mockTime.On("Now").Return(fixedTime)

	t.Run("Credit increases balance", func(t *testing.T) {
		user, err := NewUser(1, 5, mockTime)
		require.NoError(t, err)

		require.NoError(t, user.ApplyCredit(20, mockTime))
		assert.Equal(t, int64(25), user.Credits())
		assert.Equal(t, uint64(1), user.TransactionCount)
	})

	t.Run("Non-positive amount is rejected", func(t *testing.T) {
		user, err := NewUser(1, 5, mockTime)
		require.NoError(t, err)

		assert.ErrorIs(t, user.ApplyCredit(0, mockTime), errs.ErrInvalidAmount)
	})
}
