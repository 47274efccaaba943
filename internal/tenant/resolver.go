// Package tenant maps a request host onto the client that owns it.
package tenant

import (
	"context"
	"net"
	"strings"

	"multi-tenant-booking/internal/model"
)

// Lookup is the read-only datastore query the resolver depends on.
type Lookup interface {
	ClientBySubdomain(ctx context.Context, subdomain string) (*model.Client, error)
}

type Resolver struct {
	lookup Lookup
}

func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// SubdomainLabel returns the leftmost label of host, lowercased and without
// a port. A bare domain still yields its leftmost label.
func SubdomainLabel(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	label, _, _ := strings.Cut(host, ".")
	return label
}

// Resolve returns the client whose subdomain matches host. An unknown label
// yields model.ErrTenantNotFound; datastore failures are returned as-is.
func (r *Resolver) Resolve(ctx context.Context, host string) (*model.Client, error) {
	label := SubdomainLabel(host)
	if label == "" {
		return nil, model.ErrTenantNotFound
	}
	return r.lookup.ClientBySubdomain(ctx, label)
}
