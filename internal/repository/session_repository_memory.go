package repository

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/apply-loan/internal/domain"
)

const memorySweepInterval = time.Minute

type memoryEntry struct {
	session   domain.FormSession
	expiresAt time.Time
}

// MemorySessionRepository keeps sessions in process memory.
type MemorySessionRepository struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	sessions  map[string]memoryEntry
	stopSweep chan struct{}
	stopOnce  sync.Once
}

// NewMemorySessionRepository creates an in-memory repository and starts its expiry sweeper.
func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	r := newMemorySessionRepository(ttl, time.Now)
	go r.sweepLoop()
	return r
}

func newMemorySessionRepository(ttl time.Duration, now func() time.Time) *MemorySessionRepository {
	return &MemorySessionRepository{
		ttl:       ttl,
		now:       now,
		sessions:  make(map[string]memoryEntry),
		stopSweep: make(chan struct{}),
	}
}

// Get returns a copy of the stored session.
func (r *MemorySessionRepository) Get(_ context.Context, id string) (*domain.FormSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !r.now().Before(entry.expiresAt) {
		delete(r.sessions, id)
		return nil, ErrSessionNotFound
	}
	session := entry.session
	return &session, nil
}

// Save stores a copy of the session.
func (r *MemorySessionRepository) Save(_ context.Context, session *domain.FormSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = memoryEntry{session: *session, expiresAt: r.now().Add(r.ttl)}
	return nil
}

// Delete removes the session. Deleting an unknown session is not an error.
func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// PurgeExpired drops expired sessions and returns how many were removed.
func (r *MemorySessionRepository) PurgeExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, entry := range r.sessions {
		if !now.Before(entry.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Stop ends the background sweeper.
func (r *MemorySessionRepository) Stop() {
	r.stopOnce.Do(func() { close(r.stopSweep) })
}

func (r *MemorySessionRepository) sweepLoop() {
	ticker := time.NewTicker(memorySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.PurgeExpired()
		case <-r.stopSweep:
			return
		}
	}
}
