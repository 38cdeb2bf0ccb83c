package api

import (
	"net/http"
)

// EntryPoint answers a request that lacks a usable credential.
func (a *API) EntryPoint(
	w http.ResponseWriter,
	r *http.Request,
	code ErrorCode,
) {
	a.writeFailure(w, r, code)
}

// AccessDenied answers a request whose principal may not perform the action.
func (a *API) AccessDenied(
	w http.ResponseWriter,
	r *http.Request,
	code ErrorCode,
) {
	if code.Code == "" {
		code = CodeForbidden
	}
	a.writeFailure(w, r, code)
}

func (a *API) writeFailure(
	w http.ResponseWriter,
	r *http.Request,
	code ErrorCode,
) {
	args := []any{"method", r.Method, "path", r.RequestURI, "code", code.Code}
	if code.Status >= http.StatusInternalServerError {
		a.logger.Error(r.Context(), code.Message, args...)
	} else {
		a.logger.Warn(r.Context(), code.Message, args...)
	}

	a.writeJSON(w, r, code.Status, Response[struct{}]{
		Message: code.Message,
		Code:    code.Code,
		Data:    struct{}{},
	})
}

// Recover turns a panic in next into a CodeInternal response.
func (a *API) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				a.logger.Error(r.Context(), "handler panic", "method", r.Method, "path", r.RequestURI, "panic", rec)
				a.writeFailure(w, r, CodeInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
