package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiplinehq/tipline/internal/logger"
	"github.com/tiplinehq/tipline/internal/utils"
)

func newTestStore(t *testing.T, lifetime time.Duration) *Store {
	t.Helper()
	s := NewStore(lifetime, time.Hour, logger.Nop())
	t.Cleanup(s.Close)
	return s
}

func TestCreate_ReturnsPopulatedSession(t *testing.T) {
	s := newTestStore(t, time.Hour)

	session := s.Create(1, "user-1", "receiver", "enabled", nil)

	require.NotNil(t, session)
	assert.Len(t, session.ID, utils.SessionKeyLength)
	assert.Equal(t, int64(1), session.TenantID)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "receiver", session.Role)
	assert.WithinDuration(t, session.CreatedAt.Add(time.Hour), session.ExpiresAt, time.Second)
}

func TestGet_ReturnsCreatedSession(t *testing.T) {
	s := newTestStore(t, time.Hour)

	created := s.Create(1, "user-1", "receiver", "enabled", nil)
	got := s.Get(created.ID)

	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
}

func TestGet_UnknownID_ReturnsNil(t *testing.T) {
	s := newTestStore(t, time.Hour)

	assert.Nil(t, s.Get("no-such-session"))
}

func TestCreate_SecondSessionEvictsFirst(t *testing.T) {
	s := newTestStore(t, time.Hour)

	first := s.Create(1, "user-1", "receiver", "enabled", nil)
	second := s.Create(1, "user-1", "receiver", "enabled", nil)

	assert.Nil(t, s.Get(first.ID), "old session must be revoked on re-login")
	require.NotNil(t, s.Get(second.ID))
	assert.Equal(t, 1, s.Len())
}

func TestCreate_DifferentUsersCoexist(t *testing.T) {
	s := newTestStore(t, time.Hour)

	a := s.Create(1, "user-a", "receiver", "enabled", nil)
	b := s.Create(1, "user-b", "admin", "enabled", nil)

	assert.NotNil(t, s.Get(a.ID))
	assert.NotNil(t, s.Get(b.ID))
}

func TestGet_ExpiredSession_ReturnsNilAndEvicts(t *testing.T) {
	s := newTestStore(t, time.Minute)

	created := s.Create(1, "user-1", "receiver", "enabled", nil)

	// Jump the store's clock past the expiry.
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	assert.Nil(t, s.Get(created.ID))
	assert.Equal(t, 0, s.Len(), "expired entry must be removed on lookup")
}

func TestRevokeAll_RemovesOnlyThatUser(t *testing.T) {
	s := newTestStore(t, time.Hour)

	a := s.Create(1, "user-a", "receiver", "enabled", nil)
	b := s.Create(1, "user-b", "receiver", "enabled", nil)

	s.RevokeAll("user-a")

	assert.Nil(t, s.Get(a.ID))
	assert.NotNil(t, s.Get(b.ID))
}

func TestRevoke_SingleSession(t *testing.T) {
	s := newTestStore(t, time.Hour)

	created := s.Create(1, "user-1", "receiver", "enabled", nil)
	s.Revoke(created.ID)

	assert.Nil(t, s.Get(created.ID))
}

func TestStore_ConcurrentCreateAndGet(t *testing.T) {
	s := newTestStore(t, time.Hour)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				session := s.Create(1, "shared-user", "receiver", "enabled", nil)
				s.Get(session.ID)
				s.RevokeAll("shared-user")
			}
		}()
	}

	for i := 0; i < 8; i++ {
		<-done
	}

	// At most one live session can remain for the shared user.
	assert.LessOrEqual(t, s.Len(), 1)
}
