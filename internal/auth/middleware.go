package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mentorhub/apiserver/types"
)

type contextKey string

const principalContextKey contextKey = "principal"

// FromContext returns the resolved principal attached by
// ResolvePrincipal, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(Principal)
	return principal, ok
}

// WithPrincipal attaches a principal to the context. Exposed for tests.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// Middleware bundles the codec and resolver into route guards.
type Middleware struct {
	codec    *Codec
	resolver *Resolver
}

// NewMiddleware constructs the guard set.
func NewMiddleware(codec *Codec, resolver *Resolver) *Middleware {
	return &Middleware{codec: codec, resolver: resolver}
}

// ResolvePrincipal verifies the bearer token, loads the principal and
// attaches it to the request context. A request without an Authorization
// header passes through anonymous; a present-but-bad token is rejected
// immediately with 401, and a store outage during resolution with 503.
func (m *Middleware) ResolvePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		id, kind, err := m.codec.Verify(tokenString)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "not authorized, token failed")
			return
		}

		principal, err := m.resolver.Resolve(r.Context(), id, kind)
		if err != nil {
			if errors.Is(err, ErrStoreUnavailable) {
				respondError(w, http.StatusServiceUnavailable, "service unavailable")
				return
			}
			respondError(w, http.StatusUnauthorized, "not authorized, token failed")
			return
		}

		ctx := WithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			respondError(w, http.StatusUnauthorized, "not authorized, no token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireKind rejects principals of any other kind with 403. Anonymous
// requests get 401: authentication is always checked first.
func RequireKind(kind types.PrincipalKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := FromContext(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "not authorized, no token")
				return
			}
			if principal.Kind != kind {
				respondError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits only admin-flagged users.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "not authorized, no token")
			return
		}
		if !principal.IsAdmin() {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePremiumOrEnrolled admits users who are premium or hold at least
// one course enrollment. The check is a pure function of the resolved
// record; the enrollment count is loaded with it.
func RequirePremiumOrEnrolled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "not authorized, no token")
			return
		}
		if principal.Kind != types.KindUser {
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		if !principal.User.Premium && principal.User.EnrollmentCount == 0 {
			respondError(w, http.StatusForbidden, "premium or enrollment required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
