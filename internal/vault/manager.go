package vault

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/taigrr/docvault/internal/backend"
	"github.com/taigrr/docvault/internal/logging"
	"github.com/taigrr/docvault/internal/metrics"
	"github.com/taigrr/docvault/internal/vaulterr"
)

var errNotOpen = errors.New("project is not open")

// Manager owns the sessions of every open project and the recent documents
// list shared between them.
type Manager struct {
	backend backend.Backend
	opts    []Option
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	recent   recentList
}

// NewManager creates a Manager whose sessions use b. opts apply to every
// session it opens.
func NewManager(b backend.Backend, opts ...Option) *Manager {
	return &Manager{
		backend:  b,
		opts:     opts,
		logger:   logging.L(),
		sessions: make(map[string]*Session),
	}
}

// Open returns the session of projectID, creating and loading it on first
// use.
func (m *Manager) Open(ctx context.Context, projectID string) (*Session, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, vaulterr.Invalid("open project", "project id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[projectID]; ok {
		return s, nil
	}

	opts := append(slices.Clone(m.opts), withHooks(m.recent.add, m.recent.prune))
	s := NewSession(projectID, m.backend, opts...)
	if err := s.LoadDocuments(ctx, LoadOptions{}); err != nil {
		return nil, err
	}

	m.sessions[projectID] = s
	metrics.SetActiveSessions(len(m.sessions))
	m.logger.Info("project opened",
		zap.String("project", projectID),
		zap.String("session_id", s.ID()),
		zap.Int("documents", len(s.Documents())),
	)
	return s, nil
}

// Session returns the open session of projectID.
func (m *Manager) Session(projectID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[strings.TrimSpace(projectID)]
	return s, ok
}

// Projects returns the ids of the open projects, sorted.
func (m *Manager) Projects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close disposes the session of projectID. Unsaved edits are discarded.
func (m *Manager) Close(projectID string) error {
	projectID = strings.TrimSpace(projectID)

	m.mu.Lock()
	s, ok := m.sessions[projectID]
	if ok {
		delete(m.sessions, projectID)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return vaulterr.E(vaulterr.StateConflict, "close project", "", errNotOpen)
	}
	s.Dispose()
	metrics.ForgetProject(projectID)
	metrics.SetActiveSessions(count)
	m.logger.Info("project closed", zap.String("project", projectID))
	return nil
}

// CloseAll disposes every session.
func (m *Manager) CloseAll() {
	for _, id := range m.Projects() {
		_ = m.Close(id)
	}
}

// Recent returns recently opened documents, most recent first. An empty
// projectID lists every project.
func (m *Manager) Recent(projectID string) []RecentDocument {
	return m.recent.list(strings.TrimSpace(projectID))
}

// ClearRecent empties the recent documents list.
func (m *Manager) ClearRecent() {
	m.recent.clear()
}
