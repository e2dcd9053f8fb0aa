package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSettingRepository is a mock implementation of the persistence.SettingRepository interface
type MockSettingRepository struct {
	mock.Mock
}

// Get mocks the Get method
func (m *MockSettingRepository) Get(ctx context.Context, key string) ([]byte, int64, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]byte), args.Get(1).(int64), args.Error(2)
}

// Set mocks the Set method
func (m *MockSettingRepository) Set(ctx context.Context, key string, value []byte) (int64, error) {
	args := m.Called(ctx, key, value)
	return args.Get(0).(int64), args.Error(1)
}
