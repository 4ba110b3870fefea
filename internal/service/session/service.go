package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
	"github.com/heartkeylab/heartkey/backend/internal/service/counsel"
)

var (
	ErrPersonaRequired = errors.New("persona id is required")
	ErrPersonaUnknown  = errors.New("persona not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrBusy            = errors.New("a turn is already in flight")
	ErrStoryBusy       = errors.New("a story is already being generated")
	ErrStoryLocked     = errors.New("conversation not deep enough for a story")
)

// Service owns all live sessions. Sessions exist only in memory; leaving
// the conversation tears them down for good.
type Service struct {
	personas persona.Store
	client   counsel.Client
	effects  Effects

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService bootstraps the in-memory session service.
func NewService(personas persona.Store, client counsel.Client, effects Effects) *Service {
	if effects == nil {
		effects = NopEffects{}
	}
	return &Service{
		personas: personas,
		client:   client,
		effects:  effects,
		sessions: make(map[string]*Session),
	}
}

// CreateSession provisions a session bound to a persona and runs the init
// turn before returning, so the caller's first snapshot already carries the
// counselor's opening.
func (s *Service) CreateSession(ctx context.Context, personaID string) (*Session, error) {
	if personaID == "" {
		return nil, ErrPersonaRequired
	}
	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return nil, ErrPersonaUnknown
	}

	sess := newSession(uuid.NewString(), p, s.client, s.effects, time.Now)

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	sess.Begin(ctx)
	return sess, nil
}

// GetSession retrieves a live session by identifier.
func (s *Service) GetSession(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// CloseSession tears the session down and discards it; in-flight
// resolutions become no-ops.
func (s *Service) CloseSession(sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.Close()
	return nil
}
