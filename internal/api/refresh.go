package api

import (
	"net/http"
)

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (a *API) Refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(RefreshCookieName)
		if err != nil {
			a.EntryPoint(w, r, CodeRefreshCookieMissing)
			return
		}

		session, err := a.service.Refresh(r.Context(), cookie.Value)
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		http.SetCookie(w, a.refreshCookie(session.RefreshToken, a.service.Lifetimes().Refresh))
		a.writeSuccess(w, r, SuccessAuth, RefreshResponse{AccessToken: session.AccessToken})
	}
}
