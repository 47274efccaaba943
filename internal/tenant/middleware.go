package tenant

import (
	"context"
	"errors"
	"log"
	"net/http"

	"multi-tenant-booking/internal/model"
)

type contextKey string

const clientKey contextKey = "client"

// Middleware resolves the tenant from r.Host and injects it into the request context.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		client, err := r.Resolve(req.Context(), req.Host)
		switch {
		case errors.Is(err, model.ErrTenantNotFound):
			http.Error(w, "tenant not found", http.StatusNotFound)
			return
		case err != nil:
			log.Printf("[Tenant] Resolve %q failed: %v", req.Host, err)
			http.Error(w, "service unavailable", http.StatusInternalServerError)
			return
		}

		ctx := WithClient(req.Context(), client)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func WithClient(ctx context.Context, c *model.Client) context.Context {
	return context.WithValue(ctx, clientKey, c)
}

// FromContext returns the resolved client, or nil in single-tenant mode.
func FromContext(ctx context.Context) *model.Client {
	c, _ := ctx.Value(clientKey).(*model.Client)
	return c
}
