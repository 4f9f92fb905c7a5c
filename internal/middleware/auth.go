package middleware

import (
	"net/http"

	"rawmart-be/internal/auth"
	"rawmart-be/internal/logger"
	"rawmart-be/internal/utils"

	"go.uber.org/zap"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthMiddleware authenticates optionally: requests without a token pass
// through anonymously, requests with a bad or expired token get 401.
func AuthMiddleware(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parser.Parse(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejected session token", zap.Error(err))
				utils.WriteJSONError(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}

			id, err := claims.AccountID()
			if err != nil {
				utils.WriteJSONError(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUserContext(r.Context(), id, claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
