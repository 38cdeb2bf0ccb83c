package api

import (
	"net/http"
)

func (a *API) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFrom(r.Context())
		if !ok {
			a.EntryPoint(w, r, CodeUnauthorized)
			return
		}

		if err := a.service.Logout(r.Context(), principal); err != nil {
			a.writeError(w, r, err)
			return
		}

		http.SetCookie(w, a.expiredRefreshCookie())
		w.WriteHeader(http.StatusNoContent)
	}
}
