package middleware

import (
	"net/http"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/session"
	"github.com/frahmantamala/employee-management/internal/transport"
	"github.com/frahmantamala/employee-management/pkg/logger"
)

type TokenValidator interface {
	Validate(token string) (*session.Claims, error)
}

type SessionAuthorizer interface {
	Authorize(username string) (session.Session, error)
}

// RequireSession admits a request when its bearer token is valid and names
// the user currently holding the session. The username is put in the
// request context.
func RequireSession(tokens TokenValidator, sessions SessionAuthorizer, base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := base.ExtractTokenFromHeader(r)
			if token == "" {
				base.HandleServiceError(w, internal.ErrUnauthenticated)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				base.Logger.Warn("auth middleware: token validation failed", "error", err)
				base.HandleServiceError(w, err)
				return
			}

			if _, err := sessions.Authorize(claims.Subject); err != nil {
				base.Logger.Warn("auth middleware: token does not match the active session", "username", claims.Subject)
				base.HandleServiceError(w, err)
				return
			}

			ctx := internal.ContextWithUsername(r.Context(), claims.Subject)
			ctx = logger.With(ctx, "username", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
