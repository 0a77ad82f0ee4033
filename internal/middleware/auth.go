package middleware

import (
	"context"
	"errors"
	"net/http"

	"swaply/internal/session"

	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// RequireSession loads the caller's session and rejects requests without a
// signed-in identity. The session is placed on the request context for the
// handler.
func RequireSession(manager *session.Manager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := manager.Get(r.Context(), r)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					logger.Error("Session load failed", zap.Error(err))
				}
				RespondWithError(w, http.StatusUnauthorized, "please login first")
				return
			}
			if !sess.LoggedIn() {
				RespondWithError(w, http.StatusUnauthorized, "please login first")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession attaches a session to a context.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the session stored by RequireSession.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok
}
