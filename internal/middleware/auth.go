package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"birthchart-server/internal/auth"
	"birthchart-server/internal/shared/cookies"
	"birthchart-server/internal/shared/errors"
	"birthchart-server/internal/shared/response"
)

type contextKey string

const UserContextKey contextKey = "user"

// JWTMiddleware rejects requests without a valid session token and puts the
// token's claims on the request context.
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "jwt",
			"method", r.Method,
			"path", r.URL.Path,
		)

		token, ok := cookies.AuthToken(r)
		if !ok {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		claims, err := auth.ValidateJWT(token)
		if err != nil {
			response.Error(w, r, logger, errors.WrapUnauthorized("invalid token", err))
			return
		}

		logger.Debug("JWT authentication successful", "user_id", claims.UserID)
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), claims)))
	})
}

func ContextWithUser(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func GetUserFromContext(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(UserContextKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
