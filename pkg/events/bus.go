package events

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Type identifies a kind of event.
type Type string

// TeacherBlocked is published after a teacher has been blocked.
const TeacherBlocked Type = "teacher.blocked"

// Event is a broadcast payload.
type Event struct {
	Type    Type
	Payload interface{}
}

// Handler consumes an event. A handler error never affects the publisher.
type Handler func(Event) error

// Bus delivers events to registered handlers. Delivery is synchronous and
// every handler is isolated: an error or panic in one is logged and does not
// stop the others or the publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
	logger   *zap.Logger
}

// NewBus constructs an event bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[Type][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(t Type, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish delivers the event to all handlers registered for its type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type]))
	copy(handlers, b.handlers[event.Type])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.run(event, handler)
	}
}

func (b *Bus) run(event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", string(event.Type)),
				zap.Error(fmt.Errorf("%v", r)),
			)
		}
	}()
	if err := handler(event); err != nil {
		b.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
	}
}
