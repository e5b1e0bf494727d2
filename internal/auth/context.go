package auth

import (
	"context"

	"github.com/gyro-pay/gyro/internal/ledger"
)

type principalKey struct{}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFrom returns the authenticated principal, if any.
func PrincipalFrom(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(principalKey{}).(string)
	return p, ok && p != ""
}

// ContextAuthorizer satisfies ledger.Authorizer by comparing the requested
// principal with the one the JWT middleware placed on the context.
type ContextAuthorizer struct{}

// RequireAuth fails with ledger.ErrNotAuthorized unless ctx proves control of principal.
func (ContextAuthorizer) RequireAuth(ctx context.Context, principal string) error {
	caller, ok := PrincipalFrom(ctx)
	if !ok || caller != principal {
		return ledger.ErrNotAuthorized
	}
	return nil
}
