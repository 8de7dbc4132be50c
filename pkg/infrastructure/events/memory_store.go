package events

import (
	"sync"

	"github.com/kaizen-line/inspector-dispatch/pkg/logging"
)

// defaultMaxRuns bounds how many streams (one per extraction run ID)
// the store keeps before evicting the oldest. A long-lived process
// driving many runs must not grow this map without limit the way a
// one-shot CLI invocation never notices it does.
const defaultMaxRuns = 256

type InMemoryEventStore struct {
	streams     map[string][]Event
	streamOrder []string // run IDs in first-append order, for eviction
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	position    int
	allEvents   []Event
	maxRuns     int
	logger      *logging.Logger
}

// NewInMemoryEventStore builds a store bounded to defaultMaxRuns
// streams, logging handler failures through a silent logger by
// default.
func NewInMemoryEventStore() *InMemoryEventStore {
	return NewInMemoryEventStoreWithLogger(nil)
}

// NewInMemoryEventStoreWithLogger builds a store that reports
// subscriber handler failures through logger instead of discarding
// them; logger nil falls back to logging.NewSilentLogger(), matching
// the orchestrator's own nil-logger convention.
func NewInMemoryEventStoreWithLogger(logger *logging.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = logging.NewSilentLogger()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		maxRuns:     defaultMaxRuns,
		logger:      logger,
	}
}

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.streams[streamID] == nil {
		s.streams[streamID] = make([]Event, 0)
		s.streamOrder = append(s.streamOrder, streamID)
		s.evictOldestRunIfNeeded()
	}

	eventWithVersion := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)
	s.position++

	go s.notifySubscribers(eventWithVersion)

	return nil
}

// evictOldestRunIfNeeded drops the earliest run's stream once the
// store holds more than maxRuns of them. Must be called with mutex
// held. Evicted events stay in allEvents; ReadAllEvents is the
// durable, unbounded record, ReadEvents(streamID, ...) is the bounded
// per-run view.
func (s *InMemoryEventStore) evictOldestRunIfNeeded() {
	if s.maxRuns <= 0 || len(s.streamOrder) <= s.maxRuns {
		return
	}
	oldest := s.streamOrder[0]
	s.streamOrder = s.streamOrder[1:]
	delete(s.streams, oldest)
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return events[fromVersion-1:], nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}

	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return s.allEvents[fromPosition:], nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		if s.subscribers[eventType] == nil {
			s.subscribers[eventType] = make([]EventHandler, 0)
		}
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		newHandlers := make([]EventHandler, 0)
		for _, h := range handlers {
			if h != handler {
				newHandlers = append(newHandlers, h)
			}
		}
		s.subscribers[eventType] = newHandlers
	}

	return nil
}

func (s *InMemoryEventStore) notifySubscribers(event Event) {
	s.mutex.RLock()
	handlers := s.subscribers[event.Type()]
	s.mutex.RUnlock()

	for _, handler := range handlers {
		if handler.CanHandle(event.Type()) {
			go func(h EventHandler, e Event) {
				if err := h.Handle(e); err != nil {
					s.logger.Error().Err(err).Str("event_type", e.Type()).Str("stream", e.StreamID()).Msg("event handler failed")
				}
			}(handler, event)
		}
	}
}
