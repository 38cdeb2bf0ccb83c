package api

import (
	"net/http"
	"strconv"

	"git.sr.ht/~jakintosh/inkwell/internal/service"
	"github.com/gorilla/mux"
)

type UserResponse struct {
	UserID          int64  `json:"userId"`
	Email           string `json:"email,omitempty"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl"`
}

func userResponse(user *service.User, withEmail bool) UserResponse {
	res := UserResponse{
		UserID:          user.ID,
		Nickname:        user.Nickname,
		ProfileImageURL: user.ProfileImageURL,
	}
	if withEmail {
		res.Email = user.Email
	}
	return res
}

func (a *API) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFrom(r.Context())
		if !ok {
			a.EntryPoint(w, r, CodeUnauthorized)
			return
		}

		user, err := a.service.Profile(r.Context(), principal.UserID)
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		a.writeSuccess(w, r, SuccessGet, userResponse(user, true))
	}
}

func (a *API) GetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := a.userIDVar(w, r)
		if !ok {
			return
		}

		user, err := a.service.Profile(r.Context(), id)
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		principal, signedIn := PrincipalFrom(r.Context())
		a.writeSuccess(w, r, SuccessGet, userResponse(user, signedIn && principal.UserID == id))
	}
}

func (a *API) DeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFrom(r.Context())
		if !ok {
			a.EntryPoint(w, r, CodeUnauthorized)
			return
		}

		id, ok := a.userIDVar(w, r)
		if !ok {
			return
		}

		if err := a.service.DeleteAccount(r.Context(), principal, id); err != nil {
			a.writeError(w, r, err)
			return
		}

		http.SetCookie(w, a.expiredRefreshCookie())
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *API) userIDVar(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		a.writeFailure(w, r, CodeBadRequest.withDetail("malformed user id"))
		return 0, false
	}
	return id, true
}
