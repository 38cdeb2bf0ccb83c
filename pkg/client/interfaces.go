package client

import "context"

// Authenticator covers the session lifecycle calls of a Client.
// Consuming projects should depend on this interface rather than *Client
// to enable testing with mock implementations.
type Authenticator interface {
	Login(ctx context.Context, email string, password string) (*Session, error)
	Signup(ctx context.Context, req SignupRequest) (*Session, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Compile-time check that *Client implements Authenticator.
var _ Authenticator = (*Client)(nil)
