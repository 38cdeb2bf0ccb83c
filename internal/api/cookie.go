package api

import (
	"net/http"
	"time"
)

const (
	RefreshCookieName = "refresh_token"
	RefreshCookiePath = "/auth/refresh"
)

func (a *API) refreshCookie(value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     RefreshCookiePath,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: a.sameSite(),
	}
}

// expiredRefreshCookie is written as Max-Age=0, which tells the client to
// drop the cookie.
func (a *API) expiredRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: a.sameSite(),
	}
}

// browsers drop SameSite=None cookies that are not Secure
func (a *API) sameSite() http.SameSite {
	if a.secureCookies {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
