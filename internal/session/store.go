// Package session keeps one order composer per open food details screen.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ashendes/food-details/internal/composer"
	"github.com/ashendes/food-details/internal/metrics"
	"github.com/ashendes/food-details/internal/patterns"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrNotFound is returned for an unknown session id
var ErrNotFound = errors.New("session not found")

// Factory builds the composer for a new session
type Factory func(id string) *composer.Composer

// Session serializes the intents sent to one composer
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	composer *composer.Composer
	catalog  composer.Catalog
	timeout  time.Duration
	loadErr  error
}

// Do runs fn with exclusive access to the composer
func (s *Session) Do(fn func(c *composer.Composer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.composer)
}

// Load fetches a food and applies it. The session lock is not held during the
// fetch, so intents keep being served while it is in flight. A load superseded
// by a newer one, whether it succeeded or failed, leaves the state and the load
// error alone and returns composer.ErrLoadSuperseded.
func (s *Session) Load(ctx context.Context, foodID int64) error {
	s.mu.Lock()
	ticket := s.composer.BeginLoad()
	s.mu.Unlock()

	ctx, cancel := patterns.WithTimeout(ctx, s.timeout)
	defer cancel()

	food, fetchErr := s.catalog.FetchFood(ctx, foodID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if fetchErr != nil {
		if !s.composer.IsCurrent(ticket) {
			return composer.ErrLoadSuperseded
		}
		err := fmt.Errorf("load food %d: %w", foodID, fetchErr)
		s.loadErr = err
		return err
	}

	if err := s.composer.ApplyLoad(ticket, food); err != nil {
		if !errors.Is(err, composer.ErrLoadSuperseded) {
			s.loadErr = err
		}
		return err
	}

	s.loadErr = nil
	return nil
}

// LoadError returns the error of the last failed load, if any
func (s *Session) LoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Store holds the open sessions
type Store struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
	catalog  composer.Catalog
	factory  Factory
	timeout  time.Duration
}

// NewStore creates a store. Composers are built by factory and loads go through
// catalog with the given fetch timeout.
func NewStore(catalog composer.Catalog, factory Factory, loadTimeout time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		catalog:  catalog,
		factory:  factory,
		timeout:  loadTimeout,
	}
}

// Create opens a new session
func (st *Store) Create() *Session {
	id := uuid.New().String()
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		composer:  st.factory(id),
		catalog:   st.catalog,
		timeout:   st.timeout,
	}

	st.mutex.Lock()
	st.sessions[id] = s
	count := len(st.sessions)
	st.mutex.Unlock()

	metrics.ComposerSessions.Set(float64(count))
	log.WithField("session_id", id).Debug("Session opened")

	return s
}

// Get returns a session by id
func (st *Store) Get(id string) (*Session, error) {
	st.mutex.RLock()
	s, ok := st.sessions[id]
	st.mutex.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete discards a session and its state
func (st *Store) Delete(id string) error {
	st.mutex.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	count := len(st.sessions)
	st.mutex.Unlock()

	if !ok {
		return ErrNotFound
	}

	metrics.ComposerSessions.Set(float64(count))
	log.WithField("session_id", id).Debug("Session closed")
	return nil
}

// Len returns the number of open sessions
func (st *Store) Len() int {
	st.mutex.RLock()
	defer st.mutex.RUnlock()
	return len(st.sessions)
}
