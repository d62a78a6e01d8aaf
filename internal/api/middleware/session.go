package middleware

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/bracula/campus/internal/api/types"
	"github.com/bracula/campus/internal/auth"
	appErr "github.com/bracula/campus/pkg/errors"
	"github.com/bracula/campus/pkg/logger"
)

const sessionKey ctxKey = "session"

// NotLoggedIn is the message every protected endpoint answers without a session.
const NotLoggedIn = "User not logged in"

// RequireSession resolves the session cookie and rejects the request with
// 401 unless it names a live session. The session is passed on in the
// request context.
func RequireSession(m *auth.Manager, cookies auth.CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.Resolve(r.Context(), cookies.Token(r))
			if err != nil && !appErr.IsCode(err, appErr.CodeSessionInvalid) {
				logger.L().Error("session lookup failed", zap.String("id", GetRequestID(r.Context())), zap.Error(err))
				types.WriteJSON(w, types.StatusFor(err), types.FromAppError(err))
				return
			}
			if s == nil {
				if err != nil {
					cookies.Clear(w)
				}
				types.WriteMessage(w, http.StatusUnauthorized, NotLoggedIn)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(ctx context.Context) (*auth.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*auth.Session)
	return s, ok && s != nil
}
