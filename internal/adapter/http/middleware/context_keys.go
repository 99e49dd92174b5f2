package middleware

import (
	"context"

	"github.com/servilocal/listing-service/internal/listing/domain"
)

// contextKey is a private type so context values cannot collide with other
// packages.
type contextKey string

const principalCtxKey = contextKey("principal")

// PrincipalFromContext returns the verified principal for the request, or nil
// for an anonymous caller.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalCtxKey).(*domain.Principal)
	return p
}

func withPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}
