// Package audit keeps a bounded in-memory trail of analysis activity:
// who asked for what, around which entity, and how it went. AML reviews
// need this record even when no API layer sits in front of the engine.
package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind names the analysis operation an event records.
type Kind string

const (
	KindNetworkAnalysis Kind = "network_analysis"
	KindPathSearch      Kind = "path_search"
	KindInvalidation    Kind = "cache_invalidation"
)

// Outcome represents how the operation ended.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeInvalidRequest   Outcome = "invalid_request"
	OutcomeStoreUnavailable Outcome = "store_unavailable"
	OutcomeCacheHit         Outcome = "cache_hit"
)

// Event is a single audit trail entry.
type Event struct {
	ID             string        `json:"id"`
	Timestamp      time.Time     `json:"timestamp"`
	Kind           Kind          `json:"kind"`
	Outcome        Outcome       `json:"outcome"`
	RequestedBy    string        `json:"requested_by,omitempty"`
	CenterEntityID string        `json:"center_entity_id,omitempty"`
	TargetEntityID string        `json:"target_entity_id,omitempty"`
	ParametersHash string        `json:"parameters_hash,omitempty"`
	AnalysisID     string        `json:"analysis_id,omitempty"`
	Duration       time.Duration `json:"duration_ns,omitempty"`
	Entities       int           `json:"entities,omitempty"`
	Relationships  int           `json:"relationships,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty"`
}

// Filter selects events when listing the trail. Zero fields match
// everything.
type Filter struct {
	Kind           Kind
	Outcome        Outcome
	CenterEntityID string
	RequestedBy    string
	StartTime      *time.Time
	EndTime        *time.Time
}

func (f *Filter) matches(e *Event) bool {
	if f == nil {
		return true
	}
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if f.CenterEntityID != "" && e.CenterEntityID != f.CenterEntityID {
		return false
	}
	if f.RequestedBy != "" && e.RequestedBy != f.RequestedBy {
		return false
	}
	if f.StartTime != nil && e.Timestamp.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && e.Timestamp.After(*f.EndTime) {
		return false
	}
	return true
}

// Trail holds audit events in a fixed-size circular buffer. When full,
// the oldest events are overwritten.
type Trail struct {
	events     []*Event
	bufferSize int
	index      int
	count      int
	mu         sync.RWMutex
}

// NewTrail creates an audit trail retaining at most bufferSize events.
func NewTrail(bufferSize int) *Trail {
	return &Trail{
		events:     make([]*Event, bufferSize),
		bufferSize: bufferSize,
	}
}

// Record stores an event, assigning an id and timestamp when unset.
func (t *Trail) Record(event *Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	t.events[t.index] = event
	t.index = (t.index + 1) % t.bufferSize
	if t.count < t.bufferSize {
		t.count++
	}
}

// Events returns retained events oldest first, restricted by filter.
func (t *Trail) Events(filter *Filter) []*Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]*Event, 0, t.count)
	for i := 0; i < t.count; i++ {
		idx := (t.index - t.count + i + t.bufferSize) % t.bufferSize
		e := t.events[idx]
		if e == nil || !filter.matches(e) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// Recent returns the n most recent events, newest first.
func (t *Trail) Recent(n int) []*Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n > t.count {
		n = t.count
	}
	result := make([]*Event, 0, n)
	for i := 0; i < n; i++ {
		idx := (t.index - 1 - i + t.bufferSize) % t.bufferSize
		if t.events[idx] != nil {
			result = append(result, t.events[idx])
		}
	}
	return result
}

// Len returns the number of retained events.
func (t *Trail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Clear removes all events from the trail.
func (t *Trail) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.events = make([]*Event, t.bufferSize)
	t.index = 0
	t.count = 0
}
