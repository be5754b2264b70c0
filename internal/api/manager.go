package api

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"compstone/server/internal/database"
	"compstone/server/internal/valuation"
)

// Manager owns the active valuation sessions. Sessions are not
// goroutine-safe on their own, so every mutate-then-recompute transaction
// goes through the manager's mutex.
type Manager struct {
	db       *database.Database
	logger   *logrus.Logger
	mu       sync.Mutex
	sessions map[string]*valuation.Session

	// DefaultID names the session created at startup from the first target
	// on record, so single-user deployments never have to mint one.
	DefaultID string
}

func NewManager(db *database.Database, logger *logrus.Logger) (*Manager, error) {
	m := &Manager{
		db:       db,
		logger:   logger,
		sessions: make(map[string]*valuation.Session),
	}

	targets, err := db.GetTargets()
	if err != nil {
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}
	if len(targets) == 0 {
		logger.Warn("No target properties on record; sessions must be created explicitly")
		return m, nil
	}

	id, err := m.CreateSession(targets[0].ID)
	if err != nil {
		return nil, err
	}
	m.DefaultID = id
	return m, nil
}

// CreateSession loads the target and a fresh comp set from the database and
// opens a new session over them.
func (m *Manager) CreateSession(targetID int64) (string, error) {
	target, err := m.db.GetTargetByID(targetID)
	if err != nil {
		return "", fmt.Errorf("failed to load target %d: %w", targetID, err)
	}
	if target == nil {
		return "", fmt.Errorf("no target with id %d", targetID)
	}

	comps, err := m.db.GetComps()
	if err != nil {
		return "", fmt.Errorf("failed to load comps: %w", err)
	}

	session := valuation.NewSession(target, comps)

	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.sessions[id] = session

	m.logger.WithFields(logrus.Fields{
		"session": id,
		"target":  target.Address,
		"comps":   len(comps),
	}).Info("Created valuation session")
	return id, nil
}

// Do runs fn against the named session while holding the manager lock. An
// empty id resolves to the default session.
func (m *Manager) Do(id string, fn func(*valuation.Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.DefaultID
	}
	session, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("no session with id %q", id)
	}
	return fn(session)
}

// SessionIDs returns the ids of all open sessions.
func (m *Manager) SessionIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// RecomputeAll refreshes every session's derived figures. The scheduler
// calls this nightly because appreciation adjustments depend on the current
// date.
func (m *Manager) RecomputeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.sessions {
		session.Recompute()
		m.logger.WithField("session", id).Debug("Recomputed session")
	}
}
