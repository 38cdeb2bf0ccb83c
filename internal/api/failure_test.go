package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"git.sr.ht/~jakintosh/inkwell/internal/api"
	"git.sr.ht/~jakintosh/inkwell/internal/logging"
	"git.sr.ht/~jakintosh/inkwell/internal/testutil"
)

func TestRecover_Panic(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	a := api.New(env.Service, env.Codec, env.Routes, true, logging.Discard())

	// a panicking handler becomes an internal error
	handler := a.Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/hc", nil))

	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["code"] != "COMMON003" {
		t.Errorf("expected COMMON003, got %v", body["code"])
	}
	if data, ok := body["data"].(map[string]any); !ok || len(data) != 0 {
		t.Errorf("expected empty data object, got %v", body["data"])
	}
}

func TestEntryPoint_Envelope(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	a := api.New(env.Service, env.Codec, env.Routes, true, logging.Discard())

	// the envelope carries only the code's own message
	res := httptest.NewRecorder()
	a.EntryPoint(res, httptest.NewRequest(http.MethodGet, "/users/me", nil), api.CodeUnauthorized)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); ct != "application/json; charset=UTF-8" {
		t.Errorf("unexpected content type %q", ct)
	}
	want := `{"message":"authentication required","code":"AUTH001","data":{}}`
	if got := res.Body.String(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
