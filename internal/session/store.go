package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultIdleTTL bounds how long an untouched workspace is kept.
	DefaultIdleTTL = 2 * time.Hour
	// DefaultMaxSessions caps live workspaces. Past it, the least recently
	// seen workspace is evicted.
	DefaultMaxSessions = 10000
)

// Store keeps workspaces in memory, keyed by session id.
type Store struct {
	opts        Options
	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time
	onSize      func(int)

	mu    sync.Mutex
	items map[string]*Workspace
}

// StoreConfig configures a Store.
type StoreConfig struct {
	Options Options
	IdleTTL time.Duration
	Now     func() time.Time
	// OnSize observes the number of live workspaces after each change.
	OnSize func(int)
	// MaxSessions defaults to DefaultMaxSessions.
	MaxSessions int
}

// NewStore constructs an empty Store.
func NewStore(cfg StoreConfig) *Store {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	limit := cfg.MaxSessions
	if limit <= 0 {
		limit = DefaultMaxSessions
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		opts:        cfg.Options,
		idleTTL:     ttl,
		maxSessions: limit,
		now:         now,
		onSize:      cfg.OnSize,
		items:       map[string]*Workspace{},
	}
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.now() }

// Get returns the workspace for id.
func (s *Store) Get(id string) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.items[id]
	return ws, ok
}

// Create builds and keeps a workspace under a fresh id, evicting the least
// recently seen workspace when the store is full.
func (s *Store) Create() *Workspace {
	now := s.now()
	ws := NewWorkspace(uuid.NewString(), s.opts, now)
	s.mu.Lock()
	var evicted *Workspace
	if len(s.items) >= s.maxSessions {
		evicted = s.oldestLocked(now)
		if evicted != nil {
			delete(s.items, evicted.ID)
		}
	}
	s.items[ws.ID] = ws
	size := len(s.items)
	s.mu.Unlock()
	if evicted != nil {
		evicted.close()
	}
	s.reportSize(size)
	return ws
}

// Transient builds a workspace that is never stored. It serves read-only
// requests from visitors without a session so they cost no memory.
func (s *Store) Transient() *Workspace {
	return NewWorkspace("", s.opts, s.now())
}

func (s *Store) oldestLocked(now time.Time) *Workspace {
	var (
		oldest *Workspace
		idle   time.Duration = -1
	)
	for _, ws := range s.items {
		if d := ws.idleSince(now); d > idle {
			oldest, idle = ws, d
		}
	}
	return oldest
}

// Resolve returns the workspace for id, creating a new one when id is unknown.
// The boolean reports whether a new workspace was created.
func (s *Store) Resolve(id string) (*Workspace, bool) {
	if id != "" {
		if ws, ok := s.Get(id); ok {
			return ws, false
		}
	}
	return s.Create(), true
}

// Len reports the number of live workspaces.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep evicts workspaces idle for longer than the configured TTL.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	var evicted []*Workspace
	for id, ws := range s.items {
		if ws.idleSince(now) > s.idleTTL {
			evicted = append(evicted, ws)
			delete(s.items, id)
		}
	}
	size := len(s.items)
	s.mu.Unlock()

	for _, ws := range evicted {
		ws.close()
	}
	if len(evicted) > 0 {
		s.reportSize(size)
	}
	return len(evicted)
}

// Run sweeps on every tick until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) reportSize(n int) {
	if s.onSize != nil {
		s.onSize(n)
	}
}
