package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmehra2102/storefront/internal/identity/domain"
)

// Headers set by the upstream gateway after authentication.
const (
	HeaderUserID       = "X-User-ID"
	HeaderUserRole     = "X-User-Role"
	HeaderUserProducts = "X-User-Products"
)

type ctxKey struct{}

// Middleware resolves the caller identity from gateway headers. Requests
// without X-User-ID continue as an anonymous buyer.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, err := domain.ParseRole(r.Header.Get(HeaderUserRole))
		if err != nil {
			http.Error(w, `{"error":"invalid role"}`, http.StatusBadRequest)
			return
		}
		var owned []string
		if v := r.Header.Get(HeaderUserProducts); v != "" {
			owned = strings.Split(v, ",")
		}
		id := domain.New(strings.TrimSpace(r.Header.Get(HeaderUserID)), role, owned...)
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the resolved identity, or an anonymous buyer.
func FromContext(ctx context.Context) domain.Identity {
	if id, ok := ctx.Value(ctxKey{}).(domain.Identity); ok {
		return id
	}
	return domain.New("", domain.RoleBuyer)
}
