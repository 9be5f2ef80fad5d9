// Package session implements the in-memory, tenant-scoped session store.
//
// Sessions are ephemeral: they live only in process memory, expire a fixed
// lifetime after creation, and at most one session per user exists at any
// time. Expired entries are reaped by a background sweep and additionally
// filtered out lazily on lookup, so Get never returns a stale session even
// between sweeps.
package session

import (
	"sync"
	"time"

	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/models"
)

// DefaultSweepInterval is how often the background sweep scans for expired
// sessions when no interval is configured.
const DefaultSweepInterval = time.Minute

// Store is a concurrently-accessed session registry. All mutating
// operations are atomic with respect to concurrent requests.
type Store struct {
	lifetime time.Duration
	logger   *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*models.Session

	done chan struct{}
	once sync.Once

	// now is overridable in tests.
	now func() time.Time
}

// NewStore constructs a session store whose sessions live for lifetime
// (measured from creation, not sliding) and starts the background sweep.
// Callers must Close the store to stop the sweep goroutine.
func NewStore(lifetime, sweepInterval time.Duration, logger *logger.Logger) *Store {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	s := &Store{
		lifetime: lifetime,
		logger:   logger,
		sessions: make(map[string]*models.Session),
		done:     make(chan struct{}),
		now:      time.Now,
	}

	go s.sweep(sweepInterval)

	return s
}

// Create registers a fresh session for the given user and returns it.
// Any other live session belonging to the same user is evicted first, so a
// user's previous login stops working the moment a new one succeeds.
func (s *Store) Create(tenantID int64, userID, role, status string, authContext any) *models.Session {
	now := s.now()
	session := &models.Session{
		ID:          utils.RandomKey(utils.SessionKeyLength),
		TenantID:    tenantID,
		UserID:      userID,
		Role:        role,
		Status:      status,
		AuthContext: authContext,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.lifetime),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.revokeAllLocked(userID)
	s.sessions[session.ID] = session

	return session
}

// Get returns the session with the given id, or nil when the id is unknown
// or the session has expired. Expired entries found here are removed
// without waiting for the sweep.
func (s *Store) Get(id string) *models.Session {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil
	}

	if session.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil
	}

	return session
}

// Revoke removes a single session by id. Removing an unknown id is a no-op.
func (s *Store) Revoke(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// RevokeAll removes every live session belonging to the given user.
func (s *Store) RevokeAll(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokeAllLocked(userID)
}

// Len returns the number of live entries, expired ones included until the
// next sweep.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the background sweep. Safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) revokeAllLocked(userID string) {
	for id, other := range s.sessions {
		if other.UserID == userID {
			s.logger.Debug().Str("user_id", userID).Msg("revoking old session")
			delete(s.sessions, id)
		}
	}
}

func (s *Store) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := s.now()

			s.mu.Lock()
			for id, session := range s.sessions {
				if session.Expired(now) {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
