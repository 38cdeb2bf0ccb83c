package api

import (
	"errors"
	"fmt"
	"net/http"

	"git.sr.ht/~jakintosh/inkwell/internal/service"
)

// ErrorCode is one entry of the closed set of failures the API reports.
type ErrorCode struct {
	Status  int
	Code    string
	Message string
}

var (
	CodeInvalidCredentials   = ErrorCode{http.StatusUnauthorized, "AUTH000", "invalid email or password"}
	CodeUnauthorized         = ErrorCode{http.StatusUnauthorized, "AUTH001", "authentication required"}
	CodeAccessTokenExpired   = ErrorCode{http.StatusUnauthorized, "AUTH002", "access token expired"}
	CodeRefreshTokenInvalid  = ErrorCode{http.StatusUnauthorized, "AUTH003", "refresh token invalid, please log in again"}
	CodeForbidden            = ErrorCode{http.StatusForbidden, "AUTH004", "permission denied"}
	CodeCookieMissing        = ErrorCode{http.StatusBadRequest, "AUTH005", "cookie missing"}
	CodeRefreshCookieMissing = ErrorCode{http.StatusUnauthorized, "AUTH006", "refresh cookie missing"}

	CodeInvalidRequest   = ErrorCode{http.StatusBadRequest, "COMMON000", "invalid_request"}
	CodeNotFound         = ErrorCode{http.StatusNotFound, "COMMON001", "not_found"}
	CodeBadRequest       = ErrorCode{http.StatusBadRequest, "COMMON002", "bad_request"}
	CodeInternal         = ErrorCode{http.StatusInternalServerError, "COMMON003", "internal_server_error"}
	CodeMethodNotAllowed = ErrorCode{http.StatusMethodNotAllowed, "COMMON004", "method_not_allowed"}

	CodeEmailDuplicated    = ErrorCode{http.StatusConflict, "USER000", "email already in use"}
	CodeNicknameDuplicated = ErrorCode{http.StatusConflict, "USER001", "nickname already in use"}
	CodeUserNotFound       = ErrorCode{http.StatusNotFound, "USER002", "user not found"}
)

func (c ErrorCode) withDetail(detail string) ErrorCode {
	c.Message = fmt.Sprintf("%s: %s", c.Message, detail)
	return c
}

// writeError reports a service error through the failure translator.
// Unrecognized errors are logged in full and reported as CodeInternal.
func (a *API) writeError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		a.EntryPoint(w, r, CodeInvalidCredentials)
	case errors.Is(err, service.ErrTokenInvalid):
		a.EntryPoint(w, r, CodeRefreshTokenInvalid)
	case errors.Is(err, service.ErrUnauthorized):
		a.EntryPoint(w, r, CodeUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		a.AccessDenied(w, r, CodeForbidden)
	case errors.Is(err, service.ErrEmailExists):
		a.writeFailure(w, r, CodeEmailDuplicated)
	case errors.Is(err, service.ErrNicknameExists):
		a.writeFailure(w, r, CodeNicknameDuplicated)
	case errors.Is(err, service.ErrInvalidProfile):
		a.writeFailure(w, r, CodeBadRequest.withDetail(err.Error()))
	case errors.Is(err, service.ErrUserNotFound):
		a.writeFailure(w, r, CodeUserNotFound)
	default:
		a.logger.Error(r.Context(), "unhandled error", "method", r.Method, "path", r.RequestURI, "error", err)
		a.writeFailure(w, r, CodeInternal)
	}
}
