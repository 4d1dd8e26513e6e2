package state

import (
	"log"

	"fin-query-be/pkg/store"
)

// Manager handles funnel status transitions
type Manager struct {
	logger *log.Logger
}

// NewManager creates a new state manager
func NewManager(logger *log.Logger) *Manager {
	return &Manager{logger: logger}
}

// To moves the session to a non-terminal working status.
func (m *Manager) To(session *store.Session, status string) {
	m.logger.Printf("[STATE] %s -> %s", session.Status, status)
	session.Status = status
}

// ToAwaitingUser suspends the session with a chase question. No collaborator
// runs again until the next user turn arrives.
func (m *Manager) ToAwaitingUser(session *store.Session, question string, options []string) {
	session.ChaseQuestion = question
	session.ChaseOptions = options
	m.logger.Printf("[STATE] %s -> %s (chase: %s)", session.Status, store.StatusAwaitingUser, question)
	session.Status = store.StatusAwaitingUser
}

// ToAnswerable finishes the session successfully.
func (m *Manager) ToAnswerable(session *store.Session, caveats string) {
	session.Caveats = caveats
	session.ChaseQuestion = ""
	session.ChaseOptions = nil
	m.logger.Printf("[STATE] %s -> %s (%d evidence chunks)", session.Status, store.StatusAnswerable, len(session.Evidence))
	session.Status = store.StatusAnswerable
}

// ToFailed finishes the session with an explicit reason.
func (m *Manager) ToFailed(session *store.Session, reason string) {
	session.FailureReason = reason
	session.ChaseQuestion = ""
	session.ChaseOptions = nil
	m.logger.Printf("[STATE] %s -> %s (%s)", session.Status, store.StatusFailed, reason)
	session.Status = store.StatusFailed
}
