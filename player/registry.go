package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Registry keeps the open sessions of a server process, one per enrollment.
type Registry struct {
	mu       sync.Mutex
	deps     Dependencies
	sessions map[string]*Session
}

func NewRegistry(deps Dependencies) *Registry {
	return &Registry{
		deps:     deps.withDefaults(),
		sessions: make(map[string]*Session),
	}
}

// Open returns the session for enrollmentID, opening it on first use. Opening
// an already open session also re-runs the idempotent start.
func (r *Registry) Open(ctx context.Context, enrollmentID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[enrollmentID]; ok {
		if err := s.Start(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := Open(ctx, r.deps, enrollmentID)
	if err != nil {
		return nil, err
	}
	r.sessions[enrollmentID] = s
	return s, nil
}

func (r *Registry) Get(enrollmentID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[enrollmentID]
	return s, ok
}

// Close flushes and forgets a session. The session stays open when the flush
// fails so nothing is lost. Callers still holding a closed session get
// ErrSessionClosed and must reopen, so an enrollment never has two live
// sessions.
func (r *Registry) Close(ctx context.Context, enrollmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[enrollmentID]
	if !ok {
		return nil
	}
	if err := s.close(ctx); err != nil {
		return fmt.Errorf("close session %s: %w", enrollmentID, err)
	}
	delete(r.sessions, enrollmentID)
	return nil
}

// FlushAll flushes every open session with pending writes.
func (r *Registry) FlushAll(ctx context.Context) (flushed int, err error) {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if !s.HasPendingWrites() {
			continue
		}
		if ferr := s.Flush(ctx); ferr != nil {
			errs = append(errs, fmt.Errorf("enrollment %s: %w", s.EnrollmentID(), ferr))
			continue
		}
		flushed++
	}
	return flushed, errors.Join(errs...)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
