package api

import (
	"net/http"

	"git.sr.ht/~jakintosh/inkwell/internal/service"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	UserID          int64  `json:"userId"`
	Email           string `json:"email"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl"`
	AccessToken     string `json:"accessToken"`
}

func (a *API) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := LoginRequest{}
		if ok := decodeRequest(a, &req, w, r); !ok {
			return
		}

		session, err := a.service.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		a.writeSession(w, r, SuccessGet, session)
	}
}

func (a *API) writeSession(
	w http.ResponseWriter,
	r *http.Request,
	code SuccessCode,
	session *service.Session,
) {
	http.SetCookie(w, a.refreshCookie(session.RefreshToken, a.service.Lifetimes().Refresh))
	a.writeSuccess(w, r, code, SessionResponse{
		UserID:          session.User.ID,
		Email:           session.User.Email,
		Nickname:        session.User.Nickname,
		ProfileImageURL: session.User.ProfileImageURL,
		AccessToken:     session.AccessToken,
	})
}
