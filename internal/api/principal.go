package api

import (
	"context"

	"git.sr.ht/~jakintosh/inkwell/internal/service"
)

type principalKey struct{}

// PrincipalFrom returns the caller resolved by the authenticator, if any.
func PrincipalFrom(ctx context.Context) (service.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*service.Principal)
	if !ok || p == nil {
		return service.Principal{}, false
	}
	return *p, true
}

func withPrincipal(ctx context.Context, p service.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, &p)
}

func withoutPrincipal(ctx context.Context) context.Context {
	return context.WithValue(ctx, principalKey{}, (*service.Principal)(nil))
}
