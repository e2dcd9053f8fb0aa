package persistence

import (
	"context"

	persistenceport "github.com/reelkit/credits-service/internal/domain/port/persistence"
	"github.com/stretchr/testify/mock"
)

// MockUnitOfWork is a mock implementation of the persistence.UnitOfWork interface
type MockUnitOfWork struct {
	mock.Mock
}

// Begin mocks the Begin method
func (m *MockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

// Commit mocks the Commit method
func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Rollback mocks the Rollback method
func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// GetUserRepository mocks the GetUserRepository method
func (m *MockUnitOfWork) GetUserRepository(ctx context.Context) persistenceport.UserRepository {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(persistenceport.UserRepository)
}

// GetTransactionRepository mocks the GetTransactionRepository method
func (m *MockUnitOfWork) GetTransactionRepository(ctx context.Context) persistenceport.TransactionRepository {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(persistenceport.TransactionRepository)
}
