package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	coremocks "github.com/reelkit/credits-service/mocks/port/core"
)

const authTestSecret = "auth-test-secret"

func signToken(t *testing.T, userID uint64, admin bool, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Admin:  admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString([]byte(authTestSecret))
	require.NoError(t, err)
	return signed
}

func authRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockLogger := new(coremocks.MockLogger)
	mockLogger.On("Warn", mock.Anything, mock.Anything).Maybe()

	router := gin.New()
	authed := router.Group("/", Auth(authTestSecret, mockLogger))
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetUint64(ContextUserIDKey)})
	})

	admin := authed.Group("/admin", RequireAdmin())
	admin.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router
}

func doGet(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAuth(t *testing.T) {
	t.Run("Valid token passes and exposes the user id", func(t *testing.T) {
		router := authRouter(t)
		token := signToken(t, 42, false, time.Now().Add(time.Hour))

		recorder := doGet(router, "/me", token)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, `{"userId": 42}`, recorder.Body.String())
	})

	t.Run("Missing header returns 401", func(t *testing.T) {
		router := authRouter(t)

		recorder := doGet(router, "/me", "")

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Expired token returns 401", func(t *testing.T) {
		router := authRouter(t)
		token := signToken(t, 42, false, time.Now().Add(-time.Hour))

		recorder := doGet(router, "/me", token)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("Token signed with another secret returns 401", func(t *testing.T) {
		router := authRouter(t)
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 42})
		signed, err := token.SignedString([]byte("some-other-secret"))
		require.NoError(t, err)

		recorder := doGet(router, "/me", signed)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("Admin claim grants access", func(t *testing.T) {
		router := authRouter(t)
		token := signToken(t, 1, true, time.Now().Add(time.Hour))

		recorder := doGet(router, "/admin/ping", token)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Non-admin token returns 403", func(t *testing.T) {
		router := authRouter(t)
		token := signToken(t, 42, false, time.Now().Add(time.Hour))

		recorder := doGet(router, "/admin/ping", token)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}
