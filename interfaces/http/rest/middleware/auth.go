package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/pkg/auth"
	"github.com/tradestreak/wall-street-service/pkg/common"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

// RequireAuth validates the bearer token and puts the user id in the
// request context. Requests without a valid token get 401.
func RequireAuth(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				common.RespondAppError(w, apperrors.NewUnauthorizedError("missing authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Rejected token",
					zap.Error(err),
					zap.String("path", r.URL.Path))
				common.RespondAppError(w, apperrors.NewUnauthorizedError(authErrorMessage(err)))
				return
			}

			ctx := common.WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth puts the user id in the context when a valid token is
// present and passes the request through untouched otherwise. Routes that
// personalize public data (leaderboards, upcoming earnings) use this.
func OptionalAuth(validator *auth.JWTValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := validator.ValidateToken(token); err == nil {
					r = r.WithContext(common.WithUserID(r.Context(), claims.UserID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func authErrorMessage(err error) string {
	switch err {
	case auth.ErrExpiredToken:
		return "token has expired"
	case auth.ErrInvalidSignature:
		return "invalid token signature"
	default:
		return "invalid token"
	}
}
