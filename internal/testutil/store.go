package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/joinportal/intake/internal/model"
	"github.com/joinportal/intake/internal/repository"
)

// MemoryStore is an in-memory application store with the same email
// uniqueness guarantee as the join_applications unique index.
type MemoryStore struct {
	mu      sync.Mutex
	byID    map[string]*model.Application
	byEmail map[string]string

	// Failure injection. When set, the matching call returns the error.
	ExistsErr error
	CreateErr error
	// SkipExistsCheck makes ApplicationExistsByEmail always report false,
	// simulating a concurrent insert that lands after the pre-check.
	SkipExistsCheck bool

	ExistsCalls int
	CreateCalls int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*model.Application),
		byEmail: make(map[string]string),
	}
}

// ApplicationExistsByEmail implements service.ApplicationStore.
func (s *MemoryStore) ApplicationExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ExistsCalls++
	if s.ExistsErr != nil {
		return false, s.ExistsErr
	}
	if s.SkipExistsCheck {
		return false, nil
	}
	_, ok := s.byEmail[email]
	return ok, nil
}

// CreateApplication implements service.ApplicationStore.
func (s *MemoryStore) CreateApplication(_ context.Context, app *model.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CreateCalls++
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if _, ok := s.byEmail[app.Email]; ok {
		return repository.ErrEmailExists
	}

	app.CreatedAt = time.Now().UTC()
	stored := *app
	s.byID[app.ID] = &stored
	s.byEmail[app.Email] = app.ID
	return nil
}

// Get returns a stored application by ID.
func (s *MemoryStore) Get(id string) (*model.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.byID[id]
	return app, ok
}

// Len returns the number of stored applications.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
