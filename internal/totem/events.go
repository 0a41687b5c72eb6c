package totem

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
)

var ErrInvalidEvent = errors.New("deviceId and type are required")

type Event struct {
	DeviceID string          `json:"deviceId"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	At       time.Time       `json:"at"`
}

// EventLog keeps the latest events per device, dropping the oldest once
// a device reaches the limit.
type EventLog struct {
	mu      sync.RWMutex
	limit   int
	devices map[string][]Event
}

func NewEventLog(limit int) *EventLog {
	if limit <= 0 || limit > MaxEventLog {
		limit = MaxEventLog
	}
	return &EventLog{
		limit:   limit,
		devices: make(map[string][]Event),
	}
}

func (l *EventLog) Append(e Event) (Event, error) {
	e.DeviceID = strings.TrimSpace(e.DeviceID)
	e.Type = strings.TrimSpace(e.Type)
	if e.DeviceID == "" || e.Type == "" {
		return Event{}, ErrInvalidEvent
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	events := append(l.devices[e.DeviceID], e)
	if len(events) > l.limit {
		events = events[len(events)-l.limit:]
	}
	l.devices[e.DeviceID] = events
	return e, nil
}

// List returns a copy of one device's events, oldest first.
func (l *EventLog) List(deviceID string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Event, len(l.devices[deviceID]))
	copy(out, l.devices[deviceID])
	return out
}

// Devices reports how many events each device has logged.
func (l *EventLog) Devices() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]int, len(l.devices))
	for id, events := range l.devices {
		out[id] = len(events)
	}
	return out
}
