package application

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bskcorona-github/studyflow/pkg/domain/events"
)

// InMemoryEventPublisher is a simple in-process event publisher.
type InMemoryEventPublisher struct {
	mu       sync.RWMutex
	handlers []events.Handler
	logger   *zap.Logger
}

var _ events.Publisher = (*InMemoryEventPublisher)(nil)

func NewInMemoryEventPublisher(logger *zap.Logger) *InMemoryEventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventPublisher{logger: logger}
}

// Publish sends an event to all subscribers. A failing handler is logged and
// does not stop delivery to the others.
func (p *InMemoryEventPublisher) Publish(event events.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	p.mu.RLock()
	handlers := make([]events.Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.RUnlock()

	for _, h := range handlers {
		if err := h(event); err != nil {
			p.logger.Warn("event handler failed", zap.String("type", event.Type), zap.Error(err))
		}
	}
	return nil
}

// Subscribe registers a handler for events.
func (p *InMemoryEventPublisher) Subscribe(handler events.Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}

func progressPtr(v float64) *float64 {
	return &v
}
