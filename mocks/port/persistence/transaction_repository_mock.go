package persistence

import (
	"context"

	"github.com/reelkit/credits-service/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock implementation of the persistence.TransactionRepository interface
type MockTransactionRepository struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockTransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

// GetByReference mocks the GetByReference method
func (m *MockTransactionRepository) GetByReference(ctx context.Context, reference string) (*entity.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

// ListByUser mocks the ListByUser method
func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Transaction), args.Error(1)
}

// ExternalPaymentExists mocks the ExternalPaymentExists method
func (m *MockTransactionRepository) ExternalPaymentExists(ctx context.Context, externalPaymentID string) (bool, error) {
	args := m.Called(ctx, externalPaymentID)
	return args.Bool(0), args.Error(1)
}

// SumByUser mocks the SumByUser method
func (m *MockTransactionRepository) SumByUser(ctx context.Context, userID uint64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
