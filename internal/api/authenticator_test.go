package api_test

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/testutil"
)

func TestAuthenticate_MissingToken(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// protected route without a token
	result := testutil.Get(env.Router, "/users/me", nil)
	testutil.ExpectCode(t, http.StatusUnauthorized, "AUTH001", result)
}

func TestAuthenticate_ForgedToken(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// setup env
	session := env.RegisterTestUser(t, "alice@example.com", "alice")

	// a tampered token is reported as expired
	forged := session.AccessToken[:len(session.AccessToken)-2] + "xx"
	result := testutil.Get(env.Router, "/users/me", nil, testutil.Bearer(forged))
	testutil.ExpectCode(t, http.StatusUnauthorized, "AUTH002", result)

	// so is a refresh token presented as a bearer
	result = testutil.Get(env.Router, "/users/me", nil, testutil.Bearer(session.RefreshToken))
	testutil.ExpectCode(t, http.StatusUnauthorized, "AUTH002", result)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	t.Parallel()
	now := time.Now()
	env := testutil.SetupTestEnvWithRouter(t, testutil.WithClock(func() time.Time { return now }))

	// setup env
	session := env.RegisterTestUser(t, "alice@example.com", "alice")

	// valid before expiry
	result := testutil.Get(env.Router, "/users/me", nil, testutil.Bearer(session.AccessToken))
	testutil.ExpectStatus(t, http.StatusOK, result)

	// rejected once the lifetime has elapsed
	now = now.Add(testutil.TestAccessLifetime)
	result = testutil.Get(env.Router, "/users/me", nil, testutil.Bearer(session.AccessToken))
	testutil.ExpectCode(t, http.StatusUnauthorized, "AUTH002", result)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// setup env
	session := env.RegisterTestUser(t, "alice@example.com", "alice")
	access := env.IssueTestAccessToken(t, strconv.FormatInt(session.User.ID, 10))
	if _, err := env.DB.DeleteUser(t.Context(), session.User.ID); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	// a still-valid token for a deleted user is unauthorized
	result := testutil.Get(env.Router, "/users/me", nil, testutil.Bearer(access.Encoded()))
	testutil.ExpectCode(t, http.StatusUnauthorized, "AUTH001", result)
}

func TestAuthenticate_Preflight(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// preflight passes whatever it carries
	paths := []string{"/users/me", "/auth/refresh", "/not/a/route"}
	for _, path := range paths {
		result := testutil.Do(env.Router, http.MethodOptions, path, "", nil,
			testutil.Bearer("garbage"))
		testutil.ExpectStatus(t, http.StatusNoContent, result)
	}
}

func TestAuthenticate_PublicRoute(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// anonymous access to a public route
	result := testutil.Get(env.Router, "/hc", nil)
	testutil.ExpectStatus(t, http.StatusOK, result)
	if string(result.Body) != "hello" {
		t.Errorf("expected hello, got %q", string(result.Body))
	}

	// a bad bearer fails even where none is required
	result = testutil.Get(env.Router, "/hc", nil, testutil.Bearer("garbage"))
	testutil.ExpectCode(t, http.StatusUnauthorized, "AUTH002", result)
}

func TestAuthenticate_BearerPrefixCaseSensitive(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// setup env
	session := env.RegisterTestUser(t, "alice@example.com", "alice")

	// a lower case scheme is not a bearer token
	result := testutil.Get(env.Router, "/users/me", nil,
		testutil.Header{Key: "Authorization", Value: "bearer " + session.AccessToken})
	testutil.ExpectCode(t, http.StatusUnauthorized, "AUTH001", result)

	// surrounding whitespace in the token is trimmed
	result = testutil.Get(env.Router, "/users/me", nil,
		testutil.Header{Key: "Authorization", Value: "Bearer  " + session.AccessToken + " "})
	testutil.ExpectStatus(t, http.StatusOK, result)
}

func TestAuthenticate_UnknownRoute(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	// setup env
	session := env.RegisterTestUser(t, "alice@example.com", "alice")
	bearer := testutil.Bearer(session.AccessToken)

	// unclassified routes require authentication
	result := testutil.Get(env.Router, "/nowhere", nil)
	testutil.ExpectCode(t, http.StatusUnauthorized, "AUTH001", result)

	// and are not found once authenticated
	result = testutil.Get(env.Router, "/nowhere", nil, bearer)
	testutil.ExpectCode(t, http.StatusNotFound, "COMMON001", result)

	// a known path with the wrong method
	result = testutil.Do(env.Router, http.MethodPut, "/users/1", "", nil, bearer)
	testutil.ExpectCode(t, http.StatusMethodNotAllowed, "COMMON004", result)
}
