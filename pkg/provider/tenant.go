package provider

import (
	"fmt"
	"net/http"

	"github.com/idpsrv/go-idp/pkg/goidp"
)

// TenantSet serves multiple tenants from one HTTP server. Requests are
// dispatched by the tenant id path segment, which each provider's routes
// already carry.
type TenantSet struct {
	providers []Provider
}

// NewTenantSet groups providers into one routable set. Tenant ids must be
// unique, since two tenants under the same id would share an issuer.
func NewTenantSet(providers ...Provider) (TenantSet, error) {
	seen := map[string]bool{}
	for _, p := range providers {
		if seen[p.TenantID()] {
			return TenantSet{}, fmt.Errorf("duplicate tenant id: %s", p.TenantID())
		}
		seen[p.TenantID()] = true
	}

	return TenantSet{providers: providers}, nil
}

// Provider returns the tenant registered under the given id.
func (s TenantSet) Provider(tenantID string) (Provider, bool) {
	for _, p := range s.providers {
		if p.TenantID() == tenantID {
			return p, true
		}
	}

	return Provider{}, false
}

func (s TenantSet) Handler(middlewares ...goidp.MiddlewareFunc) http.Handler {
	server := http.NewServeMux()
	for _, p := range s.providers {
		p.registerHandlers(server, middlewares...)
	}

	return server
}

func (s TenantSet) Run(address string, middlewares ...goidp.MiddlewareFunc) error {
	return http.ListenAndServe(address, s.Handler(middlewares...))
}
