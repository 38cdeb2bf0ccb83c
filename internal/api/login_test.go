package api_test

import (
	"net/http"
	"testing"

	"git.sr.ht/~jakintosh/inkwell/internal/api"
	"git.sr.ht/~jakintosh/inkwell/internal/testutil"
)

type sessionEnvelope struct {
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Data    api.SessionResponse `json:"data"`
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// setup env
	registered := env.RegisterTestUser(t, "alice@example.com", "alice")

	// valid login returns the session body
	body := `{"email": "alice@example.com", "password": "` + testutil.TestPassword + `"}`
	var response sessionEnvelope
	result := testutil.PostJSON(env.Router, "/auth/login", body, &response)
	testutil.ExpectStatus(t, http.StatusOK, result)
	if response.Code != "SUCCESS000" {
		t.Errorf("expected SUCCESS000, got %s", response.Code)
	}
	if response.Data.UserID != registered.User.ID {
		t.Errorf("expected user id %d, got %d", registered.User.ID, response.Data.UserID)
	}
	if response.Data.Nickname != "alice" || response.Data.Email != "alice@example.com" {
		t.Errorf("unexpected profile in response: %+v", response.Data)
	}
	if response.Data.AccessToken == "" {
		t.Fatal("expected access token in body")
	}

	// the access token is usable
	result = testutil.Get(env.Router, "/users/me", nil, testutil.Bearer(response.Data.AccessToken))
	testutil.ExpectStatus(t, http.StatusOK, result)
}

func TestLogin_RefreshCookie(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// setup env
	env.RegisterTestUser(t, "alice@example.com", "alice")

	// login sets the scoped refresh cookie
	body := `{"email": "alice@example.com", "password": "` + testutil.TestPassword + `"}`
	result := testutil.PostJSON(env.Router, "/auth/login", body, nil)
	testutil.ExpectStatus(t, http.StatusOK, result)

	cookie := testutil.ResponseCookie(t, result, api.RefreshCookieName)
	if cookie.Value == "" {
		t.Error("refresh cookie is empty")
	}
	if cookie.Path != "/auth/refresh" {
		t.Errorf("expected cookie path /auth/refresh, got %q", cookie.Path)
	}
	if !cookie.HttpOnly {
		t.Error("refresh cookie must be HttpOnly")
	}
	if !cookie.Secure {
		t.Error("refresh cookie must be Secure")
	}
	if cookie.SameSite != http.SameSiteNoneMode {
		t.Errorf("expected SameSite=None, got %v", cookie.SameSite)
	}
	if want := int(testutil.TestRefreshLifetime.Seconds()); cookie.MaxAge != want {
		t.Errorf("expected Max-Age %d, got %d", want, cookie.MaxAge)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// setup env
	env.RegisterTestUser(t, "alice@example.com", "alice")

	// wrong password and unknown email are indistinguishable
	wrongPassword := `{"email": "alice@example.com", "password": "Wr0ngpass!"}`
	result := testutil.PostJSON(env.Router, "/auth/login", wrongPassword, nil)
	testutil.ExpectCode(t, http.StatusUnauthorized, "AUTH000", result)

	unknownEmail := `{"email": "nobody@example.com", "password": "` + testutil.TestPassword + `"}`
	result = testutil.PostJSON(env.Router, "/auth/login", unknownEmail, nil)
	testutil.ExpectCode(t, http.StatusUnauthorized, "AUTH000", result)
}

func TestLogin_MalformedJSON(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// bad JSON is rejected before the service is called
	result := testutil.PostJSON(env.Router, "/auth/login", `{"email":`, nil)
	testutil.ExpectCode(t, http.StatusBadRequest, "COMMON000", result)
	if ct := result.Headers.Get("Content-Type"); ct != "application/json; charset=UTF-8" {
		t.Errorf("unexpected content type %q", ct)
	}
}
