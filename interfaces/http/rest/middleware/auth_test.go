package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/interfaces/http/rest/middleware"
	"github.com/tradestreak/wall-street-service/pkg/auth"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

func newValidator(t *testing.T) (*auth.JWTValidator, auth.JWTConfig) {
	t.Helper()
	cfg := auth.JWTConfig{SecretKey: "test-secret", Issuer: "wall-street-service"}
	validator, err := auth.NewJWTValidator(cfg)
	require.NoError(t, err)
	return validator, cfg
}

func echoUserHandler(t *testing.T, gotUser *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := common.GetUserID(r.Context()); ok {
			*gotUser = userID
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_ValidToken(t *testing.T) {
	validator, cfg := newValidator(t)
	token, err := auth.GenerateToken(cfg, "user-123", "jane", time.Minute)
	require.NoError(t, err)

	var gotUser string
	handler := middleware.RequireAuth(validator, zap.NewNop())(echoUserHandler(t, &gotUser))

	req := httptest.NewRequest(http.MethodGet, "/wall-street/mood/predictions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-123", gotUser)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	validator, _ := newValidator(t)

	var gotUser string
	handler := middleware.RequireAuth(validator, zap.NewNop())(echoUserHandler(t, &gotUser))

	req := httptest.NewRequest(http.MethodGet, "/wall-street/mood/predictions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, gotUser)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	validator, _ := newValidator(t)
	handler := middleware.RequireAuth(validator, zap.NewNop())(echoUserHandler(t, new(string)))

	for _, header := range []string{"Basic abc", "Bearer", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	validator, cfg := newValidator(t)
	token, err := auth.GenerateToken(cfg, "user-123", "jane", -time.Minute)
	require.NoError(t, err)

	handler := middleware.RequireAuth(validator, zap.NewNop())(echoUserHandler(t, new(string)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	validator, _ := newValidator(t)
	token, err := auth.GenerateToken(auth.JWTConfig{SecretKey: "other-secret", Issuer: "wall-street-service"}, "user-123", "jane", time.Minute)
	require.NoError(t, err)

	handler := middleware.RequireAuth(validator, zap.NewNop())(echoUserHandler(t, new(string)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	validator, cfg := newValidator(t)
	token, err := auth.GenerateToken(cfg, "user-123", "jane", time.Minute)
	require.NoError(t, err)

	t.Run("with token", func(t *testing.T) {
		var gotUser string
		handler := middleware.OptionalAuth(validator)(echoUserHandler(t, &gotUser))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-123", gotUser)
	})

	t.Run("without token", func(t *testing.T) {
		var gotUser string
		handler := middleware.OptionalAuth(validator)(echoUserHandler(t, &gotUser))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, gotUser)
	})

	t.Run("with bad token", func(t *testing.T) {
		var gotUser string
		handler := middleware.OptionalAuth(validator)(echoUserHandler(t, &gotUser))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, gotUser)
	})
}
