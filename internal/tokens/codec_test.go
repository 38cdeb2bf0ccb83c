package tokens_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/logging"
	"git.sr.ht/~jakintosh/inkwell/internal/tokens"
)

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	for _, class := range []tokens.Class{tokens.ClassAccess, tokens.ClassRefresh} {
		t.Run(class.String(), func(t *testing.T) {
			t.Parallel()

			// mint then verify with the same class yields the subject
			minted, err := codec.Mint(class, "42", time.Hour)
			if err != nil {
				t.Fatalf("Mint failed: %v", err)
			}
			verified, err := codec.Verify(minted.Encoded(), class)
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if verified.Subject() != "42" {
				t.Errorf("Subject = %s, want 42", verified.Subject())
			}
			if verified.Class() != class {
				t.Errorf("Class = %s, want %s", verified.Class(), class)
			}
			if verified.ID() != minted.ID() {
				t.Errorf("ID = %s, want %s", verified.ID(), minted.ID())
			}
			if verified.Issuer() != "test.inkwell" {
				t.Errorf("Issuer = %s, want test.inkwell", verified.Issuer())
			}
			if !verified.Expiration().Equal(minted.Expiration()) {
				t.Errorf("Expiration = %v, want %v", verified.Expiration(), minted.Expiration())
			}
		})
	}
}

func TestCodec_ClassIsolation(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	// access token never verifies as refresh
	access, err := codec.Mint(tokens.ClassAccess, "42", time.Hour)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if _, err := codec.Verify(access.Encoded(), tokens.ClassRefresh); err == nil {
		t.Error("access token verified as refresh")
	}

	// refresh token never verifies as access
	refresh, err := codec.Mint(tokens.ClassRefresh, "42", time.Hour)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if _, err := codec.Verify(refresh.Encoded(), tokens.ClassAccess); err == nil {
		t.Error("refresh token verified as access")
	}
}

func TestCodec_ZeroTTL(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	// a token with no lifetime is expired on arrival
	token, err := codec.Mint(tokens.ClassAccess, "42", 0)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if _, err := codec.Verify(token.Encoded(), tokens.ClassAccess); err == nil {
		t.Error("expected zero-ttl token to fail verification")
	}
}

func TestCodec_ExpiryIsStrict(t *testing.T) {
	t.Parallel()
	issued := time.Unix(1_700_000_000, 0)
	now := issued
	codec := newTestCodec(t, tokens.WithClock(func() time.Time { return now }))

	token, err := codec.Mint(tokens.ClassRefresh, "7", time.Minute)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	// one second before expiry is still valid
	now = issued.Add(time.Minute - time.Second)
	if _, err := codec.Verify(token.Encoded(), tokens.ClassRefresh); err != nil {
		t.Errorf("expected token valid before expiry: %v", err)
	}

	// exactly at expiry is invalid
	now = issued.Add(time.Minute)
	if _, err := codec.Verify(token.Encoded(), tokens.ClassRefresh); err == nil {
		t.Error("expected token invalid at expiry")
	}
}

func TestCodec_LifetimeIsFixed(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	token, err := codec.Mint(tokens.ClassAccess, "42", 30*time.Minute)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if got := token.Expiration().Sub(token.IssuedAt()); got != 30*time.Minute {
		t.Errorf("lifetime = %v, want 30m", got)
	}
}

func TestCodec_UniqueIDs(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	// same subject and class, minted twice, differ in id and encoding
	first, err := codec.Mint(tokens.ClassRefresh, "42", time.Hour)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	second, err := codec.Mint(tokens.ClassRefresh, "42", time.Hour)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if first.ID() == second.ID() {
		t.Error("expected distinct token ids")
	}
	if first.Encoded() == second.Encoded() {
		t.Error("expected distinct encodings")
	}
}

func TestCodec_Tampered(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	token, err := codec.Mint(tokens.ClassAccess, "42", time.Hour)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	// swap the claims section for one claiming another subject
	other, err := codec.Mint(tokens.ClassAccess, "1", time.Hour)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	parts := strings.Split(token.Encoded(), ".")
	otherParts := strings.Split(other.Encoded(), ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]
	if _, err := codec.Verify(forged, tokens.ClassAccess); err == nil {
		t.Error("expected forged token to fail verification")
	}
}

func TestCodec_ForeignKey(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	keys, err := tokens.NewKeys(
		bytes.Repeat([]byte("x"), tokens.MinKeyLength),
		bytes.Repeat([]byte("y"), tokens.MinKeyLength),
	)
	if err != nil {
		t.Fatalf("NewKeys failed: %v", err)
	}
	foreign := tokens.NewCodec(keys, "test.inkwell", logging.Discard())

	// token from a codec with different keys is rejected
	token, err := foreign.Mint(tokens.ClassAccess, "42", time.Hour)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if _, err := codec.Verify(token.Encoded(), tokens.ClassAccess); err == nil {
		t.Error("expected token from foreign key to fail verification")
	}
}

func TestCodec_WrongIssuer(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)
	other := tokens.NewCodec(newTestKeys(t), "elsewhere", logging.Discard())

	token, err := other.Mint(tokens.ClassAccess, "42", time.Hour)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if _, err := codec.Verify(token.Encoded(), tokens.ClassAccess); err == nil {
		t.Error("expected token from other issuer to fail verification")
	}
}

func TestCodec_Malformed(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	inputs := []string{
		"",
		"not-a-token",
		"a.b",
		"a.b.c",
		// {"alg":"none","typ":"JWT"} with an access claim set and no signature
		"eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiI0MiIsInR5cCI6ImFjY2VzcyJ9.",
	}
	for _, input := range inputs {
		if _, err := codec.Verify(input, tokens.ClassAccess); err == nil {
			t.Errorf("expected %q to fail verification", input)
		}
	}
}

func TestCodec_FailuresAreOpaque(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	codec := tokens.NewCodec(newTestKeys(t), "test.inkwell", logger)

	token, err := codec.Mint(tokens.ClassAccess, "42", -time.Minute)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	// caller sees only the generic error
	_, err = codec.Verify(token.Encoded(), tokens.ClassAccess)
	if !errors.Is(err, tokens.ErrTokenInvalid()) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if strings.Contains(err.Error(), "expired") {
		t.Errorf("error leaks cause: %v", err)
	}

	// operator log carries the cause
	if !strings.Contains(buf.String(), "expired") {
		t.Errorf("expected expiry cause in log, got %s", buf.String())
	}
}

func TestCodec_MintRejectsBadInput(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	if _, err := codec.Mint(tokens.ClassAccess, "", time.Hour); !errors.Is(err, tokens.ErrEmptySubject()) {
		t.Errorf("expected ErrEmptySubject, got %v", err)
	}
	if _, err := codec.Mint(tokens.Class(0), "42", time.Hour); !errors.Is(err, tokens.ErrUnknownClass()) {
		t.Errorf("expected ErrUnknownClass, got %v", err)
	}
}
