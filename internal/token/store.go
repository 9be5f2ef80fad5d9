// Package token implements the one-time anti-automation token contract
// consumed by the submission endpoint: a token is issued to a prospective
// submitter, accumulates staged file uploads, and is redeemable exactly
// once at finalization. Unknown, expired and already-redeemed tokens all
// fail the same way.
package token

import (
	"errors"
	"sync"
	"time"

	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/models"
)

// ErrInvalidToken is returned for unknown, expired or already-redeemed
// token ids. Callers get no further detail: distinguishing the cases would
// let an attacker probe the token space.
var ErrInvalidToken = errors.New("token is invalid or already used")

// IDLength is the length of token identifiers.
const IDLength = 42

// Token is one issued anti-automation token.
type Token struct {
	ID       string
	TenantID int64

	// UploadedFiles are the descriptors staged against this token before
	// finalization. The submission pipeline attaches them to the stored
	// submission.
	UploadedFiles []models.UploadedFile

	CreatedAt time.Time
	ExpiresAt time.Time

	redeemed bool
}

// Store is a concurrently-accessed registry of issued tokens with a
// background sweep for expired entries.
type Store struct {
	lifetime time.Duration

	mu     sync.Mutex
	tokens map[string]*Token

	done chan struct{}
	once sync.Once

	now func() time.Time
}

// NewStore constructs a token store whose tokens live for lifetime and
// starts the background sweep. Callers must Close the store.
func NewStore(lifetime, sweepInterval time.Duration) *Store {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	s := &Store{
		lifetime: lifetime,
		tokens:   make(map[string]*Token),
		done:     make(chan struct{}),
		now:      time.Now,
	}

	go s.sweep(sweepInterval)

	return s
}

// Issue creates and registers a fresh token for the tenant.
func (s *Store) Issue(tenantID int64) *Token {
	now := s.now()
	t := &Token{
		ID:        utils.RandomKey(IDLength),
		TenantID:  tenantID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.lifetime),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.ID] = t

	return t
}

// AttachFile stages an uploaded-file descriptor against the token.
// Fails with ErrInvalidToken when the token cannot accept uploads anymore.
func (s *Store) AttachFile(id string, file models.UploadedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[id]
	if !ok || t.redeemed || s.now().After(t.ExpiresAt) {
		return ErrInvalidToken
	}

	t.UploadedFiles = append(t.UploadedFiles, file)
	return nil
}

// Redeem marks the token as used and returns it. A token redeems at most
// once; the second attempt fails exactly like an unknown id. The token
// stays in the store until Delete so that a failed submission does not
// forget the staged files it still has to clean up.
func (s *Store) Redeem(id string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[id]
	if !ok || t.redeemed || s.now().After(t.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	t.redeemed = true
	return t, nil
}

// Delete removes the token. Called only after the submission transaction
// has committed.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, id)
}

// Close stops the background sweep. Safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
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
			for id, t := range s.tokens {
				if now.After(t.ExpiresAt) {
					delete(s.tokens, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
