// Package events publishes application lifecycle events to a Redis stream.
//
// Events carry identifiers only. Consumers that need applicant details read
// the join_applications row by id.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joinportal/intake/internal/metrics"
	"github.com/joinportal/intake/internal/model"
)

const (
	// StreamKey is the Redis stream for submitted applications.
	StreamKey = "stream:intake:applications"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 10000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 500 * time.Millisecond

	// TypeApplicationSubmitted marks a newly stored application.
	TypeApplicationSubmitted = "application.submitted"
)

// ApplicationEvent is the stream entry payload.
type ApplicationEvent struct {
	Type          string `json:"type"`
	ApplicationID string `json:"application_id"`
	Governorate   string `json:"governorate"`
	HasExperience bool   `json:"has_experience"`
	SubmittedAt   int64  `json:"submitted_at"` // Unix milliseconds
}

// NewApplicationSubmitted builds the event for a stored application.
func NewApplicationSubmitted(app *model.Application) ApplicationEvent {
	submittedAt := app.CreatedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}
	return ApplicationEvent{
		Type:          TypeApplicationSubmitted,
		ApplicationID: app.ID,
		Governorate:   app.Governorate,
		HasExperience: app.HasExperience(),
		SubmittedAt:   submittedAt.UnixMilli(),
	}
}

// Publisher appends application events to the stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
	timeout time.Duration

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewPublisher creates a new application event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
		timeout: PublishTimeout,
	}
}

// Publish adds an event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event ApplicationEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	id, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"type":    event.Type,
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return id, nil
}

// ApplicationSubmitted publishes without blocking the caller.
// Failures are logged and counted; the stored application is unaffected.
// Events arriving after Drain are dropped.
func (p *Publisher) ApplicationSubmitted(app *model.Application) {
	event := NewApplicationSubmitted(app)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("publisher draining, application event dropped",
			"application_id", event.ApplicationID,
		)
		p.metrics.IncEventPublished(metrics.EventDropped)
		return
	}
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish application event",
				"application_id", event.ApplicationID,
				"error", err,
			)
			p.metrics.IncEventPublished(metrics.EventDropped)
			return
		}

		p.logger.Debug("application event published",
			"application_id", event.ApplicationID,
			"stream_id", streamID,
		)
		p.metrics.IncEventPublished(metrics.EventPublished)
	}()
}

// Drain stops accepting events and waits for in-flight publishes to finish.
// It must run before the Redis client is closed.
func (p *Publisher) Drain(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain application events: %w", ctx.Err())
	}
}
