package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/florista/bouquet-bff/api/responses"
	pkgAuth "github.com/florista/bouquet-bff/pkg/auth"
	"github.com/florista/bouquet-bff/pkg/auth/session"
	"github.com/florista/bouquet-bff/pkg/config"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
)

// Auth validates a bearer token, loads its Redis session and seeds the
// request context with the caller's identity and backend token.
func Auth(cfg config.JWTConfig, sessions session.Reader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			ctx, err := authenticate(r.Context(), cfg, sessions, logg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth behaves like Auth when a valid token is present. Requests
// without one, or with one that no longer resolves to a session, continue
// anonymously so public pages keep working after a session expires.
func OptionalAuth(cfg config.JWTConfig, sessions session.Reader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, err := authenticate(r.Context(), cfg, sessions, logg, token)
			if err != nil {
				if pkgerrors.Is(err, pkgerrors.CodeDependency) {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				if logg != nil {
					logg.Debug(logg.WithField(r.Context(), "reason", err.Error()), "auth.optional.anonymous")
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

func authenticate(ctx context.Context, cfg config.JWTConfig, sessions session.Reader, logg *logger.Logger, token string) (context.Context, error) {
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.SessionID() == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session store not configured")
	}

	sess, err := sessions.Get(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	}
	if sess.User.ID != claims.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session does not match token")
	}

	ctx = WithSession(ctx, claims.UserID, string(claims.Role), claims.SessionID(), sess.BackendToken)
	if logg != nil {
		ctx = logg.WithActor(ctx, claims.UserID, string(claims.Role))
	}
	return ctx, nil
}
