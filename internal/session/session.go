package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mybank/mybank/internal/account"
	"github.com/mybank/mybank/internal/assistant"
	"github.com/mybank/mybank/internal/verification"
)

// Stage is the coarse phase of a session.
type Stage string

const (
	// StageAwaitingSetup means no account exists yet.
	StageAwaitingSetup Stage = "awaiting_setup"
	// StageAwaitingVerification means the account exists but identity is unproven.
	StageAwaitingVerification Stage = "awaiting_verification"
	// StageActive means the dashboard is unlocked.
	StageActive Stage = "active"
)

var (
	// ErrNotFound occurs when the session identifier is unknown.
	ErrNotFound = errors.New("session not found")

	// ErrWrongStage occurs when an event arrives outside its stage. The
	// session is left untouched.
	ErrWrongStage = errors.New("not allowed in current stage")
)

// Session owns all state for one user: the account, the identity challenge,
// the ledger account code, and the chat log. All mutation goes through the
// Manager, which serializes access with the per-session mutex.
type Session struct {
	id        string
	createdAt time.Time

	mu          sync.Mutex
	stage       Stage
	account     *account.Account
	challenge   verification.Challenge
	accountCode string
	chat        assistant.History
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot is the read-only view of a session handed to callers after each
// event.
type Snapshot struct {
	ID             string              `json:"id"`
	Stage          Stage               `json:"stage"`
	Name           string              `json:"name,omitempty"`
	Mobile         string              `json:"mobile,omitempty"`
	Email          string              `json:"email,omitempty"`
	Method         verification.Method `json:"verification_method,omitempty"`
	ChallengeState verification.State  `json:"challenge_state,omitempty"`
	Balance        int64               `json:"balance"`
	Chat           []assistant.Message `json:"chat"`
}

// snapshotLocked builds a Snapshot; the caller holds s.mu.
func (s *Session) snapshotLocked(balance int64) Snapshot {
	snap := Snapshot{
		ID:      s.id,
		Stage:   s.stage,
		Balance: balance,
		Chat:    s.chat.Messages(),
	}
	if s.account != nil {
		snap.Name = s.account.Name
		snap.Mobile = s.account.Mobile
		snap.Email = s.account.Email
	}
	if s.stage == StageAwaitingVerification {
		snap.Method = s.challenge.Method
		snap.ChallengeState = s.challenge.State
	}
	return snap
}

func (s *Session) requireStage(want Stage) error {
	if s.stage != want {
		return fmt.Errorf("%w: session is %s, event needs %s", ErrWrongStage, s.stage, want)
	}
	return nil
}
