package service

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

const passwordSpecials = "!@#$%^&*()"

func validateSignup(req SignupRequest) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if err := validatePassword(req.Password); err != nil {
		return err
	}
	return validateNickname(req.Nickname)
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return fmt.Errorf("%w: malformed email", ErrInvalidProfile)
	}
	return nil
}

// validatePassword requires 8 to 20 characters drawn from letters, digits
// and passwordSpecials, with at least one of each kind and both cases.
func validatePassword(password string) error {
	if n := len(password); n < 8 || n > 20 {
		return fmt.Errorf("%w: password must be 8 to 20 characters", ErrInvalidProfile)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII:
			return fmt.Errorf("%w: password contains an unsupported character", ErrInvalidProfile)
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return fmt.Errorf("%w: password contains an unsupported character", ErrInvalidProfile)
		}
	}
	if !upper || !lower || !digit || !special {
		return fmt.Errorf(
			"%w: password needs upper and lower case letters, a digit and one of %s",
			ErrInvalidProfile,
			passwordSpecials,
		)
	}
	return nil
}

func validateNickname(nickname string) error {
	if n := utf8.RuneCountInString(nickname); n < 2 || n > 10 {
		return fmt.Errorf("%w: nickname must be 2 to 10 characters", ErrInvalidProfile)
	}
	first, _ := utf8.DecodeRuneInString(nickname)
	if unicode.IsSpace(first) {
		return fmt.Errorf("%w: nickname cannot start with whitespace", ErrInvalidProfile)
	}
	return nil
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
