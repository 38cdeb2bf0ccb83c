package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router returns the complete handler. Requests pass recovery, then
// authentication, then preflight handling, before reaching the route table.
func (a *API) Router() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.writeFailure(w, r, CodeNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.writeFailure(w, r, CodeMethodNotAllowed)
	})

	r.HandleFunc("/hc", a.Health()).Methods(http.MethodGet)

	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", a.Login()).Methods(http.MethodPost)
	auth.HandleFunc("/signup", a.Signup()).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", a.Refresh()).Methods(http.MethodPost)
	auth.HandleFunc("/logout", a.Logout()).Methods(http.MethodPost)

	users := r.PathPrefix("/users").Subrouter()
	users.HandleFunc("/me", a.Me()).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}", a.GetUser()).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}", a.DeleteUser()).Methods(http.MethodDelete)

	return a.Recover(a.Authenticate(preflight(r)))
}

// preflight answers OPTIONS on any path.
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
