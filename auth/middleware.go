package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SirPedr/homero/apperror"
)

// Middleware returns an access-token authentication middleware. The token
// is read from the access_token cookie set at login, falling back to an
// Authorization Bearer header for non-browser clients. Verified claims
// are placed in the request context.
func Middleware(issuer *TokenIssuer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				WriteError(w, r, apperror.NewAuthError("authentication required", nil))
				return
			}

			claims, err := issuer.VerifyAccessToken(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, ErrTokenExpired):
					WriteError(w, r, apperror.NewAuthError("token has expired", err))
				case errors.Is(err, ErrTokenSignatureInvalid):
					WriteError(w, r, apperror.NewAuthError("invalid token signature", err))
				default:
					WriteError(w, r, apperror.NewAuthError("invalid token", err))
				}
				return
			}

			ctx := NewContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}
