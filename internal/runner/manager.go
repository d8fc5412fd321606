package runner

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hperssn/sous/internal/domain"
	"github.com/hperssn/sous/internal/narration"
)

var ErrClientNotFound = errors.New("client not found")

const (
	defaultIdleTTL         = time.Hour
	defaultCleanupInterval = 5 * time.Minute
)

// Client is one device's cooking controller and the relay its narration is
// pushed through.
type Client struct {
	ID         string
	Controller *Controller
	Relay      *narration.Relay
}

type ManagerConfig struct {
	Recipes    domain.RecipeRepository
	Controller Options
	// IdleTTL evicts clients that have no live session and have not been
	// used for this long.
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

// SessionManager keeps one controller per client, so each client has at
// most one live session.
type SessionManager struct {
	mu      sync.Mutex
	cfg     ManagerConfig
	logger  *slog.Logger
	clients map[string]*Client
	stop    chan struct{}
	once    sync.Once
}

func NewSessionManager(cfg ManagerConfig) *SessionManager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}
	if cfg.Controller.Now == nil {
		cfg.Controller.Now = time.Now
	}
	logger := cfg.Controller.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &SessionManager{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[string]*Client),
		stop:    make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

func (m *SessionManager) cleanupLoop() {
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupIdle()
		case <-m.stop:
			return
		}
	}
}

// CleanupIdle evicts clients without a live session that have been quiet
// longer than the idle TTL. It returns how many were evicted.
func (m *SessionManager) CleanupIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.cfg.Controller.Now().Add(-m.cfg.IdleTTL)
	evicted := 0

	for id, cl := range m.clients {
		if cl.Controller.State() != StateIdle || !cl.Controller.LastActivity().Before(cutoff) {
			continue
		}
		m.closeClient(cl)
		delete(m.clients, id)
		evicted++
	}
	if evicted > 0 {
		m.logger.Debug("evicted idle clients", "count", evicted)
	}
	return evicted
}

// Client returns the client's controller, creating it on first use.
func (m *SessionManager) Client(clientID string) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cl, ok := m.clients[clientID]; ok {
		return cl
	}

	opts := m.cfg.Controller
	opts.Logger = m.logger.With("client_id", clientID)
	relay := narration.NewRelay(opts.Now)

	cl := &Client{
		ID:         clientID,
		Controller: NewController(relay, m.cfg.Recipes, opts),
		Relay:      relay,
	}
	m.clients[clientID] = cl
	return cl
}

func (m *SessionManager) Lookup(clientID string) (*Client, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cl, ok := m.clients[clientID]
	return cl, ok
}

// Remove ends the client's session without completing it and forgets the
// client.
func (m *SessionManager) Remove(clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cl, ok := m.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}
	m.closeClient(cl)
	delete(m.clients, clientID)
	return nil
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// Close stops the cleanup loop, ends every session, and waits for pending
// completion reports. Concurrent and repeated calls all return only after
// the first one has finished.
func (m *SessionManager) Close() {
	m.once.Do(func() {
		close(m.stop)

		m.mu.Lock()
		clients := m.clients
		m.clients = make(map[string]*Client)
		m.mu.Unlock()

		for _, cl := range clients {
			m.closeClient(cl)
		}
		for _, cl := range clients {
			cl.Controller.Wait()
		}
	})
}

func (m *SessionManager) closeClient(cl *Client) {
	cl.Controller.Close()
	cl.Relay.Close()
}
