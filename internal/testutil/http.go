package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// HTTPResult captures HTTP response details for test assertions
type HTTPResult struct {
	Code    int
	Error   error
	Headers http.Header
	Body    []byte
}

// Header represents an HTTP header key-value pair
type Header struct {
	Key   string
	Value string
}

// ContentTypeJSON returns a header for JSON content type
func ContentTypeJSON() Header {
	return Header{
		Key:   "Content-Type",
		Value: "application/json",
	}
}

// Bearer returns an Authorization header carrying token
func Bearer(token string) Header {
	return Header{
		Key:   "Authorization",
		Value: "Bearer " + token,
	}
}

// Cookie returns a Cookie header carrying a single name=value pair
func Cookie(name string, value string) Header {
	return Header{
		Key:   "Cookie",
		Value: name + "=" + value,
	}
}

// ExpectStatus validates the HTTP status code and fails the test if it doesn't match
func ExpectStatus(
	t *testing.T,
	expected int,
	result HTTPResult,
) {
	t.Helper()
	if result.Error != nil {
		t.Fatalf("request error: %v", result.Error)
	}
	if result.Code != expected {
		t.Fatalf("expected status %d, got %d. Body: %s", expected, result.Code, string(result.Body))
	}
}

// ExpectCode decodes the response envelope, then checks its status and code
func ExpectCode(
	t *testing.T,
	status int,
	code string,
	result HTTPResult,
) {
	t.Helper()
	ExpectStatus(t, status, result)
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(result.Body, &body); err != nil {
		t.Fatalf("failed to decode envelope: %v\n%s", err, string(result.Body))
	}
	if body.Code != code {
		t.Fatalf("expected code %s, got %s. Body: %s", code, body.Code, string(result.Body))
	}
}

// ResponseCookie returns the named cookie set by the response
func ResponseCookie(
	t *testing.T,
	result HTTPResult,
	name string,
) *http.Cookie {
	t.Helper()
	for _, c := range (&http.Response{Header: result.Headers}).Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("expected response cookie %q", name)
	return nil
}

// Get performs a GET request and optionally decodes JSON response
func Get(
	router http.Handler,
	url string,
	response any,
	headers ...Header,
) HTTPResult {
	return Do(router, http.MethodGet, url, "", response, headers...)
}

// Post performs a POST request and optionally decodes JSON response
func Post(
	router http.Handler,
	url string,
	body string,
	response any,
	headers ...Header,
) HTTPResult {
	return Do(router, http.MethodPost, url, body, response, headers...)
}

// Do performs a request with any method and optionally decodes JSON response
func Do(
	router http.Handler,
	method string,
	url string,
	body string,
	response any,
	headers ...Header,
) HTTPResult {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	res := httptest.NewRecorder()
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}
	router.ServeHTTP(res, req)

	if response != nil && res.Body.Len() > 0 {
		if err := json.Unmarshal(res.Body.Bytes(), response); err != nil {
			return HTTPResult{
				Code:    res.Code,
				Error:   fmt.Errorf("failed to decode JSON: %v\n%s", err, res.Body.String()),
				Headers: res.Header(),
				Body:    res.Body.Bytes(),
			}
		}
	}

	return HTTPResult{Code: res.Code, Headers: res.Header(), Body: res.Body.Bytes()}
}

// PostJSON performs a POST with JSON body
func PostJSON(
	router http.Handler,
	urlPath string,
	body string,
	response any,
	headers ...Header,
) HTTPResult {
	return Post(router, urlPath, body, response, append([]Header{ContentTypeJSON()}, headers...)...)
}
