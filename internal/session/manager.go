package session

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mybank/mybank/internal/account"
	"github.com/mybank/mybank/internal/assistant"
	"github.com/mybank/mybank/internal/ledger"
	"github.com/mybank/mybank/internal/verification"
)

// Manager owns all live sessions and drives their state machines. Sessions
// are fully isolated from each other; each event is one atomic transition
// under the session's own mutex.
type Manager struct {
	ledger    ledger.Ledger
	verifier  *verification.Service
	assistant *assistant.Service
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager wires the session manager with its collaborators.
func NewManager(led ledger.Ledger, verifier *verification.Service, asst *assistant.Service, logger *slog.Logger) *Manager {
	return &Manager{
		ledger:    led,
		verifier:  verifier,
		assistant: asst,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Start creates a fresh session in the setup stage. The chat opens with the
// assistant's welcome entry, matching the dashboard's first render.
func (m *Manager) Start(_ context.Context) Snapshot {
	s := &Session{
		id:        uuid.NewString(),
		createdAt: time.Now().UTC(),
		stage:     StageAwaitingSetup,
	}
	s.chat.Append(assistant.RoleAssistant, assistant.WelcomeText)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info("session started", "session_id", s.id)
	return s.snapshotLocked(0)
}

func (m *Manager) get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Snapshot returns the current view of a session.
func (m *Manager) Snapshot(ctx context.Context, id string) (Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(m.balanceLocked(ctx, s)), nil
}

// balanceLocked reads the ledger balance for the session, treating a missing
// account as zero. The caller holds s.mu.
func (m *Manager) balanceLocked(ctx context.Context, s *Session) int64 {
	if s.accountCode == "" {
		return 0
	}
	balance, err := m.ledger.Balance(ctx, s.accountCode)
	if err != nil {
		return 0
	}
	return balance
}

// CreateAccount validates the submitted details and moves the session to the
// verification stage. Nothing is committed on a validation failure.
func (m *Manager) CreateAccount(ctx context.Context, id, name, mobile, email string) (Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStage(StageAwaitingSetup); err != nil {
		return Snapshot{}, err
	}

	acct, err := account.New(name, mobile, email)
	if err != nil {
		return Snapshot{}, err
	}

	code := "session:" + s.id
	if err := m.ledger.Open(ctx, code); err != nil {
		return Snapshot{}, fmt.Errorf("open ledger account: %w", err)
	}

	s.account = &acct
	s.accountCode = code
	s.challenge.Reset()
	s.stage = StageAwaitingVerification

	m.logger.Info("account created", "session_id", s.id, "name", acct.Name)
	return s.snapshotLocked(0), nil
}

// ChooseMethod records the verification method. The stage does not change.
func (m *Manager) ChooseMethod(_ context.Context, id string, method verification.Method) (Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStage(StageAwaitingVerification); err != nil {
		return Snapshot{}, err
	}
	if err := m.verifier.Choose(&s.challenge, method); err != nil {
		return Snapshot{}, err
	}
	return s.snapshotLocked(0), nil
}

// IssueCode generates and delivers a one-time code to the account's mobile
// number, or email when the account carries one.
func (m *Manager) IssueCode(ctx context.Context, id string) (Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStage(StageAwaitingVerification); err != nil {
		return Snapshot{}, err
	}

	destination := s.account.Mobile
	if s.account.Email != "" {
		destination = s.account.Email
	}
	if err := m.verifier.Issue(ctx, &s.challenge, destination); err != nil {
		return Snapshot{}, err
	}

	m.logger.Info("verification code issued", "session_id", s.id, "destination", destination)
	return s.snapshotLocked(0), nil
}

// SubmitCode checks the code; a match unlocks the dashboard.
func (m *Manager) SubmitCode(ctx context.Context, id, code string) (Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStage(StageAwaitingVerification); err != nil {
		return Snapshot{}, err
	}
	if err := m.verifier.Submit(&s.challenge, code); err != nil {
		return Snapshot{}, err
	}

	s.stage = StageActive
	m.logger.Info("session verified", "session_id", s.id, "method", s.challenge.Method)
	return s.snapshotLocked(m.balanceLocked(ctx, s)), nil
}

// Deposit credits the session's ledger account and returns the committed entry.
func (m *Manager) Deposit(ctx context.Context, id string, amount int64) (ledger.Entry, error) {
	s, err := m.get(id)
	if err != nil {
		return ledger.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStage(StageActive); err != nil {
		return ledger.Entry{}, err
	}
	return m.ledger.Deposit(ctx, s.accountCode, amount)
}

// Withdraw debits the session's ledger account and returns the committed entry.
func (m *Manager) Withdraw(ctx context.Context, id string, amount int64) (ledger.Entry, error) {
	s, err := m.get(id)
	if err != nil {
		return ledger.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStage(StageActive); err != nil {
		return ledger.Entry{}, err
	}
	return m.ledger.Withdraw(ctx, s.accountCode, amount)
}

// Transactions returns a restartable iterator over the most recent limit
// entries, newest first. The iterator ranges over a snapshot, so the log can
// keep growing underneath it.
func (m *Manager) Transactions(ctx context.Context, id string, limit int) (iter.Seq[ledger.Entry], error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStage(StageActive); err != nil {
		return nil, err
	}

	entries, err := m.ledger.History(ctx, s.accountCode, limit)
	if err != nil {
		return nil, err
	}
	return func(yield func(ledger.Entry) bool) {
		for _, entry := range entries {
			if !yield(entry) {
				return
			}
		}
	}, nil
}

// AskQuestion routes a free-text question to the assistant. The chat is
// available in every stage, as the dashboard shows it alongside setup and
// verification too; before account creation the context carries the
// placeholder name and a zero balance.
func (m *Manager) AskQuestion(ctx context.Context, id, text string) (assistant.Reply, error) {
	s, err := m.get(id)
	if err != nil {
		return assistant.Reply{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := assistant.Context{Balance: m.balanceLocked(ctx, s)}
	if s.account != nil {
		sc.Name = s.account.Name
	}
	return m.assistant.Respond(ctx, text, sc, &s.chat), nil
}

// ClearChat truncates the chat log to empty.
func (m *Manager) ClearChat(ctx context.Context, id string) (Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chat.Clear()
	return s.snapshotLocked(m.balanceLocked(ctx, s)), nil
}

// Logout discards every piece of session state and returns the session to
// the setup stage. The session identifier survives so the same client can
// run through the cycle again.
func (m *Manager) Logout(ctx context.Context, id string) (Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireStage(StageActive); err != nil {
		return Snapshot{}, err
	}

	if s.accountCode != "" {
		if err := m.ledger.Drop(ctx, s.accountCode); err != nil {
			return Snapshot{}, fmt.Errorf("drop ledger account: %w", err)
		}
	}

	s.account = nil
	s.accountCode = ""
	s.challenge = verification.Challenge{}
	s.chat.Clear()
	s.chat.Append(assistant.RoleAssistant, assistant.WelcomeText)
	s.stage = StageAwaitingSetup

	m.logger.Info("session logged out", "session_id", s.id)
	return s.snapshotLocked(0), nil
}
