package account

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrEmptyName occurs when the submitted name is empty after trimming.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInvalidName occurs when the name contains anything but letters and spaces.
	ErrInvalidName = errors.New("name can only contain letters and spaces")

	// ErrInvalidMobile occurs when the mobile number is not exactly 10 digits.
	ErrInvalidMobile = errors.New("mobile number must be exactly 10 digits")

	// ErrInvalidEmail occurs when a provided email address is malformed.
	ErrInvalidEmail = errors.New("email address is invalid")
)

var titleCaser = cases.Title(language.English)

// Account is the holder profile created once per session. It is immutable
// until logout discards the whole session.
type Account struct {
	Name      string
	Mobile    string
	Email     string
	CreatedAt time.Time
}

// New validates the submitted details and builds an Account. The name is
// normalized to title case. Email is optional; when present it must contain
// an "@". Validation stops at the first failing field so nothing partial is
// ever committed.
func New(name, mobile, email string) (Account, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Account{}, ErrEmptyName
	}
	for _, r := range trimmed {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return Account{}, ErrInvalidName
		}
	}
	if !isTenDigits(mobile) {
		return Account{}, ErrInvalidMobile
	}
	if email != "" && !strings.Contains(email, "@") {
		return Account{}, ErrInvalidEmail
	}

	return Account{
		Name:      titleCaser.String(trimmed),
		Mobile:    mobile,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func isTenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
