package middleware

import (
	"context"
	"net/http"

	dashauth "github.com/zcscompany/dashauth"
	"github.com/zcscompany/dashauth/permission"
)

type sessionContextKey struct{}

// SessionFromContext returns the session snapshot injected by a guard.
func SessionFromContext(ctx context.Context) (dashauth.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(dashauth.Session)
	return sess, ok
}

// RequireAuth returns middleware that admits only authenticated sessions.
// Unauthenticated requests are redirected to loginPath, or rejected with
// 401 when loginPath is empty.
func RequireAuth(manager *dashauth.Manager, loginPath string) func(http.Handler) http.Handler {
	return guard(manager, loginPath, func(dashauth.Session) bool { return true })
}

// RequireMinRole returns middleware that admits only authenticated sessions
// whose user ranks at least as high as required. Failing the role check on
// an authenticated session yields 403, not a redirect.
func RequireMinRole(manager *dashauth.Manager, required permission.Role) func(http.Handler) http.Handler {
	return guard(manager, "", func(sess dashauth.Session) bool {
		return sess.User != nil && sess.User.Role.AtLeast(required)
	})
}

// RequirePermission returns middleware that admits only authenticated
// sessions whose user holds the named permission.
func RequirePermission(manager *dashauth.Manager, name string) func(http.Handler) http.Handler {
	return guard(manager, "", func(sess dashauth.Session) bool {
		return sess.User != nil && sess.User.Permissions.Has(name)
	})
}

func guard(manager *dashauth.Manager, loginPath string, allow func(dashauth.Session) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			sess := manager.Snapshot()
			if !sess.Authenticated {
				if loginPath != "" {
					http.Redirect(w, r, loginPath, http.StatusFound)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !allow(sess) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
