// Package client talks to an inkwell server on behalf of a Go program.
//
// A Client holds the access token in memory and the refresh token in a
// cookie jar, mirroring what a browser does. The refresh cookie is scoped to
// the refresh route, so it is never sent anywhere else.
//
// # Quick Start
//
//	c, err := client.New("https://blog.example.com")
//	if err != nil {
//	    return err
//	}
//
//	if _, err := c.Login(ctx, "alice@example.com", "Passw0rd!"); err != nil {
//	    return err
//	}
//
//	me, err := c.Me(ctx)
//
// # Token Refresh
//
// Authenticated calls that come back with code AUTH002 (access token
// expired) are retried once after calling Refresh. Refresh may also be
// called directly.
//
// # Errors
//
// Failures reported by the server are returned as *APIError, carrying the
// HTTP status and the machine readable code:
//
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) && apiErr.Code == client.CodeInvalidCredentials {
//	    // prompt again
//	}
package client
