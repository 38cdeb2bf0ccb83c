package api

import (
	"net/http"

	"git.sr.ht/~jakintosh/inkwell/internal/service"
)

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl"`
}

func (a *API) Signup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := SignupRequest{}
		if ok := decodeRequest(a, &req, w, r); !ok {
			return
		}

		session, err := a.service.Signup(r.Context(), service.SignupRequest{
			Email:           req.Email,
			Password:        req.Password,
			Nickname:        req.Nickname,
			ProfileImageURL: req.ProfileImageURL,
		})
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		a.writeSession(w, r, SuccessAuth, session)
	}
}
