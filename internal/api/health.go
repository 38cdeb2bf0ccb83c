package api

import (
	"net/http"
)

func (a *API) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("hello")); err != nil {
			a.logger.Warn(r.Context(), "failed to write health check", "error", err)
		}
	}
}
