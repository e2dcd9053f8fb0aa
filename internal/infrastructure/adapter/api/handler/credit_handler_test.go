package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/reelkit/credits-service/internal/domain/entity"
	errs "github.com/reelkit/credits-service/internal/domain/error"
	"github.com/reelkit/credits-service/internal/domain/usecase/cost"
	"github.com/reelkit/credits-service/internal/domain/usecase/ledger"
	"github.com/reelkit/credits-service/internal/domain/usecase/user"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/api/dto"
	coremocks "github.com/reelkit/credits-service/mocks/port/core"
	persistencemocks "github.com/reelkit/credits-service/mocks/port/persistence"
)

type creditFixture struct {
	uow         *persistencemocks.MockUnitOfWork
	userRepo    *persistencemocks.MockUserRepository
	txRepo      *persistencemocks.MockTransactionRepository
	settingRepo *persistencemocks.MockSettingRepository
	timeMock    *coremocks.MockTimeProvider
	router      *gin.Engine
}

func newCreditFixture(t *testing.T) *creditFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	timeMock := new(coremocks.MockTimeProvider)
	timeMock.On("Now").Return(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	mockLogger := new(coremocks.MockLogger)
	mockLogger.On("Debug", mock.Anything, mock.Anything).Maybe()
	mockLogger.On("Info", mock.Anything, mock.Anything).Maybe()
	mockLogger.On("Warn", mock.Anything, mock.Anything).Maybe()
	mockLogger.On("Error", mock.Anything, mock.Anything).Maybe()

	uow := new(persistencemocks.MockUnitOfWork)
	userRepo := new(persistencemocks.MockUserRepository)
	txRepo := new(persistencemocks.MockTransactionRepository)

	// No stored overrides: pricing comes from the compiled defaults.
	settingRepo := new(persistencemocks.MockSettingRepository)
	settingRepo.On("Get", mock.Anything, "usage_costs").Return([]byte(nil), int64(0), errs.ErrCostConfigMissing).Maybe()

	ledgerService := ledger.NewService(uow, timeMock, mockLogger, true)
	resolver := cost.NewResolver(settingRepo, timeMock, mockLogger, 0)
	userService := user.NewUseCase(userRepo, txRepo, ledgerService, timeMock, mockLogger, 0)

	handler := NewCreditHandler(ledgerService, resolver, userService, mockLogger)

	router := gin.New()
	router.POST("/api/v1/users", handler.CreateUser)
	router.GET("/api/v1/users/:userId/credits", handler.GetBalance)
	router.POST("/api/v1/credits/check", handler.CheckCredits)
	router.POST("/api/v1/credits/deduct", handler.DeductCredits)
	router.POST("/api/v1/credits/refund", handler.RefundCredits)

	return &creditFixture{
		uow:         uow,
		userRepo:    userRepo,
		txRepo:      txRepo,
		settingRepo: settingRepo,
		timeMock:    timeMock,
		router:      router,
	}
}

func (f *creditFixture) postJSON(path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

func (f *creditFixture) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

func testUser(t *testing.T, id uint64, credits int64) *entity.User {
	t.Helper()
	timeMock := new(coremocks.MockTimeProvider)
	timeMock.On("Now").Return(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	u, err := entity.NewUser(id, credits, timeMock)
	require.NoError(t, err)
	return u
}

func TestCreateUser(t *testing.T) {
	t.Run("New account is provisioned with 201", func(t *testing.T) {
		f := newCreditFixture(t)
		f.userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
			return u.ID == 7 && u.Credits() == 0
		})).Return(nil)

		recorder := f.postJSON("/api/v1/users", dto.CreateUserRequest{UserID: 7})

		assert.Equal(t, http.StatusCreated, recorder.Code)
		var resp dto.BalanceResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, uint64(7), resp.UserID)
	})

	t.Run("Existing account returns 409", func(t *testing.T) {
		f := newCreditFixture(t)
		f.userRepo.On("Create", mock.Anything, mock.Anything).Return(errs.ErrDuplicateUser)

		recorder := f.postJSON("/api/v1/users", dto.CreateUserRequest{UserID: 7})

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})
}

func TestGetBalance(t *testing.T) {
	t.Run("Known user returns balance", func(t *testing.T) {
		f := newCreditFixture(t)
		f.userRepo.On("GetByID", mock.Anything, uint64(7)).Return(testUser(t, 7, 120), nil)

		recorder := f.get("/api/v1/users/7/credits")

		assert.Equal(t, http.StatusOK, recorder.Code)
		var resp dto.BalanceResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, uint64(7), resp.UserID)
		assert.Equal(t, int64(120), resp.Credits)
	})

	t.Run("Unknown user returns 404", func(t *testing.T) {
		f := newCreditFixture(t)
		f.userRepo.On("GetByID", mock.Anything, uint64(9)).Return(nil, errs.ErrUserNotFound)

		recorder := f.get("/api/v1/users/9/credits")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Non-numeric user id returns 400", func(t *testing.T) {
		f := newCreditFixture(t)

		recorder := f.get("/api/v1/users/abc/credits")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestCheckCredits(t *testing.T) {
	t.Run("Balance below cost is reported, not rejected", func(t *testing.T) {
		// Arrange
		f := newCreditFixture(t)
		f.uow.On("GetUserRepository", mock.Anything).Return(f.userRepo)
		f.userRepo.On("GetByID", mock.Anything, uint64(7)).Return(testUser(t, 7, 5), nil)

		// Act: kling videos cost 10
		recorder := f.postJSON("/api/v1/credits/check", dto.CheckCreditsRequest{
			UserID:    7,
			MediaType: "VIDEO",
			Model:     "kling",
		})

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		var resp dto.CheckCreditsResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.False(t, resp.Allowed)
		assert.Equal(t, int64(10), resp.Cost)
		assert.Equal(t, int64(5), resp.Balance)
	})

	t.Run("Unknown media type returns 400", func(t *testing.T) {
		f := newCreditFixture(t)

		recorder := f.postJSON("/api/v1/credits/check", dto.CheckCreditsRequest{
			UserID:    7,
			MediaType: "AUDIO",
		})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		f.uow.AssertNotCalled(t, "GetUserRepository", mock.Anything)
	})
}

func TestDeductCredits(t *testing.T) {
	t.Run("Sufficient balance debits and returns the new balance", func(t *testing.T) {
		// Arrange
		f := newCreditFixture(t)
		txCtx := context.WithValue(context.Background(), struct{ key string }{"tx"}, true)
		f.uow.On("Begin", mock.Anything).Return(txCtx, nil)
		f.uow.On("GetUserRepository", txCtx).Return(f.userRepo)
		f.uow.On("GetTransactionRepository", txCtx).Return(f.txRepo)
		f.userRepo.On("DeductCredits", txCtx, uint64(7), int64(10)).Return(int64(40), true, nil)
		f.txRepo.On("Create", txCtx, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.Type == entity.TypeUsage && txn.Amount == -10 && txn.BalanceAfter == 40
		})).Return(nil)
		f.uow.On("Commit", txCtx).Return(nil)

		// Act
		recorder := f.postJSON("/api/v1/credits/deduct", dto.DeductCreditsRequest{
			UserID:    7,
			MediaType: "VIDEO",
			Model:     "kling",
		})

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		var resp dto.DeductCreditsResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, int64(10), resp.Cost)
		assert.Equal(t, int64(40), resp.Balance)
		assert.NotEmpty(t, resp.Reference)
		f.uow.AssertExpectations(t)
	})

	t.Run("Insufficient balance returns 402 with required and available", func(t *testing.T) {
		// Arrange
		f := newCreditFixture(t)
		txCtx := context.WithValue(context.Background(), struct{ key string }{"tx"}, true)
		f.uow.On("Begin", mock.Anything).Return(txCtx, nil)
		f.uow.On("GetUserRepository", txCtx).Return(f.userRepo)
		f.userRepo.On("DeductCredits", txCtx, uint64(7), int64(10)).Return(int64(3), false, nil)
		f.uow.On("Rollback", txCtx).Return(nil)

		// Act
		recorder := f.postJSON("/api/v1/credits/deduct", dto.DeductCreditsRequest{
			UserID:    7,
			MediaType: "VIDEO",
			Model:     "kling",
		})

		// Assert
		assert.Equal(t, http.StatusPaymentRequired, recorder.Code)
		var resp dto.InsufficientCreditsResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, int64(10), resp.Required)
		assert.Equal(t, int64(3), resp.Available)
		f.txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Missing user id returns 400 before resolving cost", func(t *testing.T) {
		f := newCreditFixture(t)

		recorder := f.postJSON("/api/v1/credits/deduct", map[string]any{
			"mediaType": "VIDEO",
		})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		f.uow.AssertNotCalled(t, "Begin", mock.Anything)
	})
}

func TestRefundCredits(t *testing.T) {
	t.Run("Refund credits the user through the ledger", func(t *testing.T) {
		// Arrange
		f := newCreditFixture(t)
		txCtx := context.WithValue(context.Background(), struct{ key string }{"tx"}, true)
		f.uow.On("Begin", mock.Anything).Return(txCtx, nil)
		f.uow.On("GetUserRepository", txCtx).Return(f.userRepo)
		f.uow.On("GetTransactionRepository", txCtx).Return(f.txRepo)
		f.userRepo.On("AddCredits", txCtx, uint64(7), int64(10)).Return(int64(50), nil)
		f.txRepo.On("Create", txCtx, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.Type == entity.TypeRefund && txn.Amount == 10
		})).Return(nil)
		f.uow.On("Commit", txCtx).Return(nil)

		// Act
		recorder := f.postJSON("/api/v1/credits/refund", dto.RefundCreditsRequest{
			UserID: 7,
			Amount: 10,
		})

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		var resp dto.DeductCreditsResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Equal(t, int64(50), resp.Balance)
		f.uow.AssertExpectations(t)
	})
}
