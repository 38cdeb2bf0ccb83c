// Package tokens mints and verifies the HS256 JSON Web Tokens that carry
// inkwell sessions.
//
// Two disjoint token classes exist:
//
//   - Access: short-lived, sent as "Authorization: Bearer <token>"
//   - Refresh: long-lived, sent only as the refresh cookie
//
// Each class is signed with its own key and carries a "typ" claim naming the
// class. A token of one class never verifies as the other.
//
// # Usage
//
// Keys are built once from configuration and handed to the codec:
//
//	keys, err := tokens.NewKeys(accessSecret, refreshSecret)
//	if err != nil {
//	    return err
//	}
//	codec := tokens.NewCodec(keys, "inkwell", logger)
//
//	token, err := codec.Mint(tokens.ClassAccess, "42", 30*time.Minute)
//	...
//	verified, err := codec.Verify(token.Encoded(), tokens.ClassAccess)
//	if err != nil {
//	    // expired, forged, malformed or wrong class; the cause is only logged
//	}
//	userID := verified.Subject()
//
// # Errors
//
// Verify reports every failure as [ErrTokenInvalid]. The underlying cause is
// written to the codec's logger and is never returned to the caller.
package tokens
