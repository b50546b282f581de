package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bankverify/callsheet/internal/assign"
	"github.com/bankverify/callsheet/internal/repository"
)

// Manager hands out one Session per caller identity. Sessions live for the
// process lifetime; the durable part of a caller's state is only their name
// and whatever the store already holds.
type Manager struct {
	repo          repository.BankRepository
	selector      *assign.Selector
	settlingDelay time.Duration
	logger        *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager(repo repository.BankRepository, selector *assign.Selector, settlingDelay time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		repo:          repo,
		selector:      selector,
		settlingDelay: settlingDelay,
		logger:        logger,
		sessions:      make(map[string]*Session),
	}
}

// Get returns the session for identity, creating it on first use.
func (m *Manager) Get(identity string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[identity]; ok {
		return s
	}
	s := NewSession(identity, m.repo, m.selector, m.settlingDelay, m.logger)
	m.sessions[identity] = s
	return s
}
