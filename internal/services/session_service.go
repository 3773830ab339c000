// internal/services/session_service.go
package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Corphon/ScriptBreakdown/internal/utils"
)

// SessionService maps browser sessions to their controllers. Sessions
// expire after ttl without access; expiry closes the controller.
type SessionService struct {
	mu        sync.Mutex
	sessions  *cache.Cache
	generator Generator
	logger    *zap.Logger
	metrics   *utils.Metrics
}

// NewSessionService creates an empty registry
func NewSessionService(generator Generator, ttl time.Duration, logger *zap.Logger, metrics *utils.Metrics) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}

	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}

	s := &SessionService{
		sessions:  cache.New(ttl, cleanup),
		generator: generator,
		logger:    logger.Named("session"),
		metrics:   metrics,
	}
	s.sessions.OnEvicted(s.onEvicted)
	return s
}

// Get returns the controller for id and extends its lifetime
func (s *SessionService) Get(id string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchLocked(id)
}

// GetOrCreate returns the controller for id, creating one when id is
// unknown or expired. Malformed ids are replaced by a fresh one, so the
// returned id may differ from the argument.
func (s *SessionService) GetOrCreate(id string) (string, *Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	if controller, ok := s.touchLocked(id); ok {
		return id, controller
	}

	// an expired entry may still sit in the cache; evict it properly
	s.sessions.Delete(id)

	controller := NewController(s.generator, s.logger.With(zap.String("session_id", id)))
	s.sessions.SetDefault(id, controller)
	s.metrics.SetActiveSessions(s.sessions.ItemCount())
	s.logger.Debug("session created", zap.String("session_id", id))
	return id, controller
}

// Delete ends a session and closes its controller
func (s *SessionService) Delete(id string) {
	s.sessions.Delete(id)
}

// Count returns the number of live sessions
func (s *SessionService) Count() int {
	return s.sessions.ItemCount()
}

// Close ends every session
func (s *SessionService) Close() {
	for id := range s.sessions.Items() {
		s.sessions.Delete(id)
	}
}

func (s *SessionService) touchLocked(id string) (*Controller, bool) {
	value, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	controller := value.(*Controller)
	s.sessions.SetDefault(id, controller)
	return controller, true
}

func (s *SessionService) onEvicted(id string, value interface{}) {
	if controller, ok := value.(*Controller); ok {
		controller.Close()
	}
	s.metrics.SetActiveSessions(s.sessions.ItemCount())
	s.logger.Debug("session ended", zap.String("session_id", id))
}
