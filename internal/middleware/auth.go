package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"writersuite/internal/auth"
	"writersuite/internal/httputil"
)

// Auth validates the bearer token of every request and attaches the writer
// to the request. A nil verifier disables authentication.
func Auth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("request rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithWriter(r, httputil.Writer{ID: claims.GetUserID(), Role: claims.Role}))
		})
	}
}
