package verification

import "time"

// Method selects how the session holder proves their identity.
type Method string

const (
	// MethodPIN compares against the configured static PIN.
	MethodPIN Method = "pin"
	// MethodOTP requires a freshly issued one-time code.
	MethodOTP Method = "otp"
)

// State tracks challenge progress.
type State string

const (
	// StateNotStarted means no code has been issued yet.
	StateNotStarted State = "not_started"
	// StateIssued means an OTP was generated and handed to the notifier.
	StateIssued State = "issued"
	// StateVerified means the submitted code matched.
	StateVerified State = "verified"
)

// Challenge is the in-progress identity check for one session. The zero value
// is a fresh, method-less challenge.
type Challenge struct {
	Method   Method
	State    State
	Attempts int

	// OTP fields. Unused for the PIN method.
	code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Reset returns the challenge to its initial state, discarding any issued code.
func (c *Challenge) Reset() {
	*c = Challenge{State: StateNotStarted}
}

// Expired reports whether an issued code has passed its validity window.
func (c *Challenge) Expired(now time.Time) bool {
	return c.State == StateIssued && now.After(c.ExpiresAt)
}
