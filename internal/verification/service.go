package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mybank/mybank/internal/notification"
	"github.com/mybank/mybank/internal/otp"
)

var (
	// ErrNoMethod occurs when a code is submitted before a method was chosen.
	ErrNoMethod = errors.New("verification method not chosen")

	// ErrNotIssued occurs when an OTP is submitted before one was issued.
	ErrNotIssued = errors.New("no code has been issued")

	// ErrCodeMismatch occurs when the submitted code does not match.
	ErrCodeMismatch = errors.New("invalid code")

	// ErrCodeExpired occurs when the issued code has outlived its validity window.
	ErrCodeExpired = errors.New("code has expired")

	// ErrTooManyAttempts occurs once the per-code attempt budget is spent.
	ErrTooManyAttempts = errors.New("too many failed attempts")

	// ErrDeliveryFailed wraps notifier errors; the challenge stays unissued.
	ErrDeliveryFailed = errors.New("could not deliver code")
)

// Service runs identity challenges. The static PIN is stored only as a bcrypt
// hash; OTP codes carry an expiry and an attempt budget.
type Service struct {
	pinHash     []byte
	gen         *otp.Generator
	notifier    notification.Notifier
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

// NewService hashes the configured static PIN and wires the OTP generator and
// notifier.
func NewService(staticPIN string, gen *otp.Generator, notifier notification.Notifier, ttl time.Duration, maxAttempts int) (*Service, error) {
	if staticPIN == "" {
		return nil, fmt.Errorf("static PIN must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(staticPIN), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash static PIN: %w", err)
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Service{
		pinHash:     hash,
		gen:         gen,
		notifier:    notifier,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}, nil
}

// Choose records the verification method on the challenge. Switching methods
// discards any issued code.
func (s *Service) Choose(c *Challenge, m Method) error {
	switch m {
	case MethodPIN, MethodOTP:
	default:
		return fmt.Errorf("unknown verification method %q", m)
	}
	if c.Method != m {
		c.Reset()
		c.Method = m
	}
	return nil
}

// Issue generates a one-time code and hands it to the notifier. Issuing while
// a live code is outstanding is a no-op so repeated clicks do not resend; an
// expired code is replaced by a fresh one. On delivery failure the challenge
// stays unissued and the caller may retry.
func (s *Service) Issue(ctx context.Context, c *Challenge, destination string) error {
	if c.Method != MethodOTP {
		return fmt.Errorf("method %q does not issue codes", c.Method)
	}
	now := s.now()
	if c.State == StateIssued && !c.Expired(now) {
		return nil
	}

	code, err := s.gen.Generate()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	if err := s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindVerificationCode,
		Destination: destination,
		Body:        fmt.Sprintf("Your MyBank verification code is %s", code),
	}); err != nil {
		c.Reset()
		c.Method = MethodOTP
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	c.code = code
	c.State = StateIssued
	c.Attempts = 0
	c.IssuedAt = now
	c.ExpiresAt = now.Add(s.ttl)
	return nil
}

// Submit checks the submitted code against the challenge. A match moves the
// challenge to Verified and clears the secret; a mismatch burns one attempt
// and leaves everything else untouched.
func (s *Service) Submit(c *Challenge, code string) error {
	switch c.Method {
	case MethodPIN:
		if code == "" || bcrypt.CompareHashAndPassword(s.pinHash, []byte(code)) != nil {
			c.Attempts++
			return ErrCodeMismatch
		}
	case MethodOTP:
		if c.State != StateIssued {
			return ErrNotIssued
		}
		if c.Expired(s.now()) {
			return ErrCodeExpired
		}
		if c.Attempts >= s.maxAttempts {
			return ErrTooManyAttempts
		}
		if code == "" || code != c.code {
			c.Attempts++
			return ErrCodeMismatch
		}
	default:
		return ErrNoMethod
	}

	c.State = StateVerified
	c.code = ""
	return nil
}

// IsAuthError reports whether err is one of the recoverable challenge errors
// the caller should surface as a retryable authentication failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrCodeMismatch) ||
		errors.Is(err, ErrNotIssued) ||
		errors.Is(err, ErrCodeExpired) ||
		errors.Is(err, ErrTooManyAttempts) ||
		errors.Is(err, ErrNoMethod)
}
