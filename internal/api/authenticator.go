package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"git.sr.ht/~jakintosh/inkwell/internal/routes"
	"git.sr.ht/~jakintosh/inkwell/internal/service"
	"git.sr.ht/~jakintosh/inkwell/internal/tokens"
)

const bearerPrefix = "Bearer "

// Authenticate runs ahead of every handler. Preflight requests pass
// untouched, the refresh route is gated on its cookie, and every other
// request is resolved to a principal when it carries a bearer token. Routes
// classified AuthRequired are refused when no principal was resolved.
func (a *API) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		class := a.routes.Classify(r.Method, r.URL.Path)
		if class == routes.RefreshOnly {
			if code, ok := a.checkRefreshCookie(r); !ok {
				a.EntryPoint(w, r.WithContext(withoutPrincipal(r.Context())), code)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx, code, ok := a.resolveBearer(r)
		if !ok {
			a.EntryPoint(w, r.WithContext(withoutPrincipal(r.Context())), code)
			return
		}

		if class == routes.AuthRequired {
			if _, ok := PrincipalFrom(ctx); !ok {
				a.EntryPoint(w, r.WithContext(ctx), CodeUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) checkRefreshCookie(r *http.Request) (ErrorCode, bool) {
	if len(r.Cookies()) == 0 {
		return CodeCookieMissing, false
	}

	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return CodeRefreshCookieMissing, false
	}

	if _, err := a.tokenVerifier.Verify(cookie.Value, tokens.ClassRefresh); err != nil {
		return CodeRefreshTokenInvalid, false
	}
	return ErrorCode{}, true
}

// resolveBearer returns the request context with the caller attached. A
// request without a bearer token is returned unchanged.
func (a *API) resolveBearer(r *http.Request) (context.Context, ErrorCode, bool) {
	ctx := r.Context()

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ctx, ErrorCode{}, true
	}
	encoded := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

	token, err := a.tokenVerifier.Verify(encoded, tokens.ClassAccess)
	if err != nil {
		return ctx, CodeAccessTokenExpired, false
	}

	principal, err := a.service.ResolvePrincipal(ctx, token.Subject())
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return ctx, CodeUnauthorized, false
		}
		a.logger.Error(ctx, "failed to resolve principal", "method", r.Method, "path", r.RequestURI, "error", err)
		return ctx, CodeInternal, false
	}

	return withPrincipal(ctx, principal), ErrorCode{}, true
}
