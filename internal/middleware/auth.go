package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/AnshRaj112/serenify-advisor/internal/models"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "session"

type identityKey struct{}

// IdentityResolver maps a session cookie value to the caller.
type IdentityResolver interface {
	Resolve(ctx context.Context, cookie string) (models.Identity, bool)
}

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the authenticated caller, if any.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(models.Identity)
	return id, ok
}

// LoadIdentity resolves the session cookie on every request and stores the
// identity in the request context. Anonymous requests pass through untouched.
func LoadIdentity(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookieName)
			if err == nil && c.Value != "" {
				if id, ok := resolver.Resolve(r.Context(), c.Value); ok {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth redirects anonymous callers to the login page, remembering
// where they were going.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFrom(r.Context()); !ok {
			target := "/login?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
