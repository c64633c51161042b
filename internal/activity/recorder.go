// Package activity keeps a bounded in-memory log of engine events and fans
// them out to an optional publisher.
package activity

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"civicsim/internal/domain"
)

const (
	DefaultCapacity  = 256
	defaultListLimit = 20
	publishTimeout   = 30 * time.Second
)

type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

type Recorder struct {
	mu       sync.RWMutex
	events   []domain.Event
	capacity int

	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

type Option func(*Recorder)

func WithPublisher(p Publisher) Option {
	return func(r *Recorder) { r.publisher = p }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

func NewRecorder(capacity int, opts ...Option) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r := &Recorder{
		events:   make([]domain.Event, 0, capacity),
		capacity: capacity,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends an event, dropping the oldest once full, and hands it to
// the publisher in the background.
func (r *Recorder) Record(eventType domain.EventType, accountID string, payload map[string]interface{}) domain.Event {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	event := domain.Event{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: r.now().UTC(),
	}

	r.mu.Lock()
	if len(r.events) == r.capacity {
		copy(r.events, r.events[1:])
		r.events = r.events[:len(r.events)-1]
	}
	r.events = append(r.events, event)
	r.mu.Unlock()

	if r.publisher != nil {
		r.wg.Add(1)
		go r.publish(event)
	}
	return event
}

func (r *Recorder) publish(event domain.Event) {
	defer r.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("publish activity event failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
	}
}

// List returns up to limit events, newest first.
func (r *Recorder) List(limit int) []domain.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(r.events) == 0 {
		return []domain.Event{}
	}
	start := max(len(r.events)-limit, 0)
	out := slices.Clone(r.events[start:])
	slices.Reverse(out)
	return out
}

// Wait blocks until every in-flight publish has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
