package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/drawing-board/backend/internal/board"
	"github.com/drawing-board/backend/internal/models"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// MaxSessions limits concurrent boards to prevent memory exhaustion
const MaxSessions = 10

// SessionMaxAge is how long an idle board is kept before cleanup
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow protects boards that were used recently
const SessionKeepAliveWindow = 5 * time.Minute

// ErrSessionNotFound is returned for unknown or cleaned-up session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Options configures a Manager.
type Options struct {
	MaxSessions int
	KeepAlive   time.Duration
	Defaults    models.BoardConfig
	Env         board.Env
}

// DefaultOptions returns the built-in limits and board defaults.
func DefaultOptions() Options {
	return Options{
		MaxSessions: MaxSessions,
		KeepAlive:   SessionKeepAliveWindow,
		Defaults:    models.DefaultBoardConfig(),
		Env:         board.DefaultEnv(),
	}
}

// Manager owns the board sessions. Events on one board are applied one at
// a time; different boards proceed independently.
type Manager struct {
	sessions map[string]*SessionState
	mu       sync.RWMutex
	opts     Options
	now      func() time.Time
}

// SessionState holds a board's render state and bookkeeping.
type SessionState struct {
	mu           sync.Mutex
	Session      models.BoardSession
	Board        board.State
	LastAccessed time.Time
}

// NewManager creates a session manager with the default options.
func NewManager() *Manager {
	return NewManagerWithOptions(DefaultOptions())
}

// NewManagerWithOptions creates a session manager with specific limits.
func NewManagerWithOptions(opts Options) *Manager {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = MaxSessions
	}
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = SessionKeepAliveWindow
	}
	if opts.Defaults == (models.BoardConfig{}) {
		opts.Defaults = models.DefaultBoardConfig()
	}
	return &Manager{
		sessions: make(map[string]*SessionState),
		opts:     opts,
		now:      time.Now,
	}
}

// Defaults returns the configuration new boards start with.
func (m *Manager) Defaults() models.BoardConfig {
	return m.opts.Defaults
}

// Create starts a board with cfg, or the defaults when cfg is nil, and
// renders its first pass.
func (m *Manager) Create(cfg *models.BoardConfig) (models.BoardSession, board.Pass, error) {
	config := m.opts.Defaults
	if cfg != nil {
		config = *cfg
	}
	if err := config.Validate(); err != nil {
		return models.BoardSession{}, board.Pass{}, err
	}

	m.evictIfNeeded()

	id := uuid.New().String()
	now := m.now()
	next, pass := board.Render(board.NewState(config), board.Refresh{}, m.opts.Env)
	state := &SessionState{
		Session: models.BoardSession{
			ID:        id,
			Status:    models.SessionStatusActive,
			CreatedAt: now.UnixMilli(),
		},
		LastAccessed: now,
	}
	state.store(next)
	logWarnings(id, pass.Warnings)

	m.mu.Lock()
	m.sessions[id] = state
	m.mu.Unlock()

	log.Infof("[Session %s] Created %dx%d board", shortID(id), config.Width, config.Height)
	return state.Session, pass, nil
}

// Apply renders ev against the board's current state. A ConfigChanged
// event with an invalid configuration is rejected with a *models.ValidationError
// before it reaches the board.
func (m *Manager) Apply(id string, ev board.Event) (models.BoardSession, board.Pass, error) {
	if cc, ok := ev.(board.ConfigChanged); ok {
		if err := cc.Config.Validate(); err != nil {
			return models.BoardSession{}, board.Pass{}, err
		}
	}

	state, ok := m.lookup(id)
	if !ok {
		return models.BoardSession{}, board.Pass{}, ErrSessionNotFound
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	next, pass := board.Render(state.Board, ev, m.opts.Env)
	state.store(next)
	state.LastAccessed = m.now()
	state.Session.LastAccessed = state.LastAccessed.UnixMilli()

	if pass.Reset {
		log.Debugf("[Session %s] %s reset surface to %s", shortID(id), ev.EventName(), pass.SurfaceKey)
	}
	logWarnings(id, pass.Warnings)
	return state.Session, pass, nil
}

// Get returns a board's summary.
func (m *Manager) Get(id string) (models.BoardSession, bool) {
	state, ok := m.lookup(id)
	if !ok {
		return models.BoardSession{}, false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.Session, true
}

// Snapshot returns a copy of a board's render state.
func (m *Manager) Snapshot(id string) (board.State, bool) {
	state, ok := m.lookup(id)
	if !ok {
		return board.State{}, false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.Board, true
}

// TouchSession updates the LastAccessed timestamp so the board is not
// cleaned up while a client is connected.
func (m *Manager) TouchSession(id string) bool {
	state, ok := m.lookup(id)
	if !ok {
		return false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	state.LastAccessed = m.now()
	state.Session.LastAccessed = state.LastAccessed.UnixMilli()
	return true
}

// Delete removes a board and returns its final summary.
func (m *Manager) Delete(id string) (models.BoardSession, bool) {
	m.mu.Lock()
	state, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return models.BoardSession{}, false
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	state.Session.Status = models.SessionStatusClosed
	log.Infof("[Session %s] Closed", shortID(id))
	return state.Session, true
}

// List returns all boards, most recently used first.
func (m *Manager) List() []models.BoardSession {
	m.mu.RLock()
	states := make([]*SessionState, 0, len(m.sessions))
	for _, s := range m.sessions {
		states = append(states, s)
	}
	m.mu.RUnlock()

	out := make([]models.BoardSession, 0, len(states))
	for _, s := range states {
		s.mu.Lock()
		out = append(out, s.Session)
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastAccessed > out[j].LastAccessed
	})
	return out
}

// Count returns the number of live boards.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupOldSessions removes boards idle for longer than maxAge, but keeps
// boards accessed within the keep-alive window.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-m.opts.KeepAlive)

	for id, state := range m.sessions {
		state.mu.Lock()
		last := state.LastAccessed
		state.mu.Unlock()

		if last.After(keepAliveCutoff) || !last.Before(cutoff) {
			continue
		}
		delete(m.sessions, id)
		log.Infof("[Manager] Cleaned up aged session %s (last accessed: %s ago)",
			shortID(id), now.Sub(last).Round(time.Second))
	}
}

// evictIfNeeded removes the least recently used boards when at capacity.
func (m *Manager) evictIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < m.opts.MaxSessions {
		return
	}

	type aged struct {
		id   string
		last time.Time
	}
	all := make([]aged, 0, len(m.sessions))
	for id, s := range m.sessions {
		s.mu.Lock()
		all = append(all, aged{id, s.LastAccessed})
		s.mu.Unlock()
	}
	sort.Slice(all, func(i, j int) bool { return all[i].last.Before(all[j].last) })

	toFree := len(m.sessions) - m.opts.MaxSessions + 1
	for _, a := range all[:toFree] {
		delete(m.sessions, a.id)
		log.Infof("[Manager] Evicted session %s to stay under %d boards", shortID(a.id), m.opts.MaxSessions)
	}
}

func (m *Manager) lookup(id string) (*SessionState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// store records the board state and refreshes the summary. Callers hold s.mu
// or own s exclusively.
func (s *SessionState) store(b board.State) {
	s.Board = b
	s.Session.Epoch = b.Epoch
	s.Session.SurfaceKey = b.SurfaceKey
	s.Session.Config = b.Config
	s.Session.HasDocument = b.Document != nil
	s.Session.HasImage = len(b.Image) > 0
	s.Session.HasFrame = b.Frame != nil
	s.Session.ObjectCount = len(b.Live.Objects)
	if s.Session.LastAccessed == 0 {
		s.Session.LastAccessed = s.LastAccessed.UnixMilli()
	}
}

func logWarnings(id string, warnings []string) {
	for _, w := range warnings {
		log.Warnf("[Session %s] %s", shortID(id), w)
	}
}

// shortID safely truncates an ID for logging (handles short IDs gracefully)
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
