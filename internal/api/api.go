// Package api exposes inkwell's HTTP surface: the auth endpoints, the user
// endpoints, the request authenticator and the uniform JSON envelope every
// response is written in.
package api

import (
	"encoding/json"
	"net/http"

	"git.sr.ht/~jakintosh/inkwell/internal/logging"
	"git.sr.ht/~jakintosh/inkwell/internal/routes"
	"git.sr.ht/~jakintosh/inkwell/internal/service"
	"git.sr.ht/~jakintosh/inkwell/internal/tokens"
)

const maxRequestBody = 1 << 20

type API struct {
	service       *service.Service
	tokenVerifier tokens.Verifier
	routes        *routes.Table
	secureCookies bool
	logger        logging.Logger
}

func New(
	svc *service.Service,
	verifier tokens.Verifier,
	table *routes.Table,
	secureCookies bool,
	logger logging.Logger,
) *API {
	return &API{
		service:       svc,
		tokenVerifier: verifier,
		routes:        table,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// Response is the envelope of every JSON body the API writes.
type Response[T any] struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Data    T      `json:"data"`
}

type SuccessCode struct {
	Status  int
	Code    string
	Message string
}

var (
	SuccessGet  = SuccessCode{http.StatusOK, "SUCCESS000", "success"}
	SuccessAuth = SuccessCode{http.StatusOK, "SUCCESS003", "success"}
)

func decodeRequest[T any](
	a *API,
	req *T,
	w http.ResponseWriter,
	r *http.Request,
) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		a.writeFailure(w, r, CodeInvalidRequest)
		return false
	}
	return true
}

func (a *API) writeSuccess(
	w http.ResponseWriter,
	r *http.Request,
	code SuccessCode,
	data any,
) {
	a.writeJSON(w, r, code.Status, Response[any]{
		Message: code.Message,
		Code:    code.Code,
		Data:    data,
	})
}

func (a *API) writeJSON(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	body any,
) {
	payload, err := json.Marshal(body)
	if err != nil {
		a.logger.Error(r.Context(), "failed to encode response", "path", r.RequestURI, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		a.logger.Warn(r.Context(), "failed to write response", "path", r.RequestURI, "error", err)
	}
}
