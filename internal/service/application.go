// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joinportal/intake/internal/metrics"
	"github.com/joinportal/intake/internal/model"
	"github.com/joinportal/intake/internal/repository"
)

// Service errors.
var (
	ErrDuplicateApplication = errors.New("application with this email already exists")
	ErrStorage              = errors.New("application storage failed")
)

// ApplicationStore persists applications.
type ApplicationStore interface {
	ApplicationExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateApplication(ctx context.Context, app *model.Application) error
}

// Notifier is told about every stored application. Implementations must
// not block the caller.
type Notifier interface {
	ApplicationSubmitted(app *model.Application)
}

// SubmitApplicationInput is an untrusted submission from the public join form.
// Values are taken as received; Submit trims and validates them.
type SubmitApplicationInput struct {
	Name        string
	Email       string
	Phone       string
	Age         string // textual form of the submitted age
	Governorate string
	Education   string
	Experience  *string
	Motivation  string
}

// ApplicationService implements the intake policy.
type ApplicationService struct {
	store    ApplicationStore
	metrics  metrics.Recorder
	notifier Notifier
	newID    func() string
}

// Option configures an ApplicationService.
type Option func(*ApplicationService)

// WithNotifier announces stored applications to n.
func WithNotifier(n Notifier) Option {
	return func(s *ApplicationService) { s.notifier = n }
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(store ApplicationStore, recorder metrics.Recorder, opts ...Option) *ApplicationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	s := &ApplicationService{
		store:   store,
		metrics: recorder,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and stores a new application.
//
// Errors: *ValidationError for the first failing field, ErrDuplicateApplication
// when the normalized email is already on file, ErrStorage (wrapping the cause)
// when the store fails.
func (s *ApplicationService) Submit(ctx context.Context, input SubmitApplicationInput) (*model.Application, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveSubmissionDuration(time.Since(start))
	}()

	app, err := validate(input)
	if err != nil {
		s.metrics.IncApplicationRejected(metrics.ReasonValidation)
		return nil, err
	}

	exists, err := s.store.ApplicationExistsByEmail(ctx, app.Email)
	if err != nil {
		s.metrics.IncApplicationRejected(metrics.ReasonStorage)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if exists {
		s.metrics.IncApplicationRejected(metrics.ReasonDuplicate)
		return nil, ErrDuplicateApplication
	}

	app.ID = s.newID()

	// The pre-check is only an early exit; the unique index decides races.
	if err := s.store.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncApplicationRejected(metrics.ReasonDuplicate)
			return nil, ErrDuplicateApplication
		}
		s.metrics.IncApplicationRejected(metrics.ReasonStorage)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.metrics.IncApplicationSubmitted()
	if s.notifier != nil {
		s.notifier.ApplicationSubmitted(app)
	}

	return app, nil
}
