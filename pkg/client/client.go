package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelInfo
	LogLevelDebug
)
const LogLevelDefault = LogLevelError

const (
	CodeInvalidCredentials  = "AUTH000"
	CodeUnauthorized        = "AUTH001"
	CodeAccessTokenExpired  = "AUTH002"
	CodeRefreshTokenInvalid = "AUTH003"
)

var (
	ErrNoToken       = errors.New("no token")
	ErrTokenRequest  = errors.New("failed to fetch token")
	ErrTokenResponse = errors.New("invalid token response")
)

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inkwell: %d %s: %s", e.Status, e.Code, e.Message)
}

type User struct {
	ID              int64  `json:"userId"`
	Email           string `json:"email"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl"`
}

type Session struct {
	User
	AccessToken string `json:"accessToken"`
}

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl"`
}

type envelope struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logLevel   LogLevel

	mu          sync.Mutex
	accessToken string
}

type Option func(*Client)

// WithHTTPClient uses hc for every request. A cookie jar is attached when
// hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogLevel(level LogLevel) Option {
	return func(c *Client) { c.logLevel = level }
}

func New(
	baseURL string,
	opts ...Option,
) (
	*Client,
	error,
) {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logLevel:   LogLevelDefault,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

func (c *Client) log(level LogLevel, format string, v ...any) {
	if c.logLevel >= level {
		log.Printf(format, v...)
	}
}

// AccessToken returns the current access token, or "" when signed out.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

func (c *Client) setAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

func (c *Client) Login(
	ctx context.Context,
	email string,
	password string,
) (
	*Session,
	error,
) {
	body := map[string]string{"email": email, "password": password}
	return c.openSession(ctx, "/auth/login", body)
}

func (c *Client) Signup(
	ctx context.Context,
	req SignupRequest,
) (
	*Session,
	error,
) {
	return c.openSession(ctx, "/auth/signup", req)
}

func (c *Client) openSession(
	ctx context.Context,
	path string,
	body any,
) (
	*Session,
	error,
) {
	session := new(Session)
	if err := c.call(ctx, http.MethodPost, path, body, false, session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, ErrTokenResponse
	}
	c.setAccessToken(session.AccessToken)
	c.log(LogLevelInfo, "opened session for user %d\n", session.ID)
	return session, nil
}

// Refresh redeems the refresh cookie for a new token pair.
func (c *Client) Refresh(ctx context.Context) error {
	var res struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.call(ctx, http.MethodPost, "/auth/refresh", nil, false, &res); err != nil {
		c.log(LogLevelDebug, "couldn't refresh tokens: %v\n", err)
		return err
	}
	if res.AccessToken == "" {
		return ErrTokenResponse
	}
	c.setAccessToken(res.AccessToken)
	return nil
}

// Logout drops the refresh cookie on the server's instruction and forgets
// the access token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.call(ctx, http.MethodPost, "/auth/logout", nil, true, nil); err != nil {
		return err
	}
	c.setAccessToken("")
	return nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	user := new(User)
	if err := c.call(ctx, http.MethodGet, "/users/me", nil, true, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) User(ctx context.Context, id int64) (*User, error) {
	user := new(User)
	path := fmt.Sprintf("/users/%d", id)
	if err := c.call(ctx, http.MethodGet, path, nil, false, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount deletes the signed in user's own account.
func (c *Client) DeleteAccount(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/users/%d", id)
	if err := c.call(ctx, http.MethodDelete, path, nil, true, nil); err != nil {
		return err
	}
	c.setAccessToken("")
	return nil
}

// call performs a request and decodes the envelope's data into out. An
// authenticated call whose access token has expired is retried once after a
// refresh.
func (c *Client) call(
	ctx context.Context,
	method string,
	path string,
	body any,
	authenticated bool,
	out any,
) error {
	err := c.do(ctx, method, path, body, authenticated, out)

	var apiErr *APIError
	if authenticated && errors.As(err, &apiErr) && apiErr.Code == CodeAccessTokenExpired {
		c.log(LogLevelDebug, "access token expired, refreshing\n")
		if err := c.Refresh(ctx); err != nil {
			return err
		}
		return c.do(ctx, method, path, body, authenticated, out)
	}
	return err
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body any,
	authenticated bool,
	out any,
) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		token := c.AccessToken()
		if token == "" {
			return ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log(LogLevelDebug, "%s %s\n", method, req.URL)
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.log(LogLevelError, "request failed: %v\n", err)
		return fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		return nil
	}

	env := envelope{}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		c.log(LogLevelError, "failed to decode response: %v\n", err)
		return fmt.Errorf("%w: %v", ErrTokenResponse, err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: res.StatusCode, Code: env.Code, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: %v", ErrTokenResponse, err)
		}
	}
	return nil
}
