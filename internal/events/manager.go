// Package events emits structured domain events through the application logger.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	StockAnalyzed          EventType = "STOCK_ANALYZED"
	SectorRankingCompleted EventType = "SECTOR_RANKING_COMPLETED"
	ChartPublished         EventType = "CHART_PUBLISHED"
	SectorUpdated          EventType = "SECTOR_UPDATED"
	ErrorOccurred          EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// Manager handles event emission and logging
type Manager struct {
	log zerolog.Logger

	mu        sync.RWMutex
	listeners []func(Event)
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log: log.With().Str("service", "events").Logger(),
	}
}

// Subscribe registers fn to be called synchronously for every emitted event.
func (m *Manager) Subscribe(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Emit emits an event and returns it
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) Event {
	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		m.log.Warn().Err(err).Str("event_type", string(eventType)).Msg("Failed to marshal event")
		eventJSON = []byte("{}")
	}
	m.log.Info().
		Str("event_type", string(eventType)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")

	m.mu.RLock()
	listeners := m.listeners
	m.mu.RUnlock()
	for _, fn := range listeners {
		fn(event)
	}

	return event
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) Event {
	data := map[string]interface{}{
		"error":   err.Error(),
		"context": context,
	}
	return m.Emit(ErrorOccurred, module, data)
}
