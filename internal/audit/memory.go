// Package audit durably records per-event error maps and fatal exceptions
// against event UUIDs for later inspection.
package audit

import (
	"context"
	"sync"
	"time"
)

// Kind distinguishes the two record shapes.
type Kind string

// Record kinds.
const (
	KindErrors    Kind = "errors"
	KindException Kind = "exception"
)

// Record is one persisted audit entry for a plate event.
type Record struct {
	EventUUID  string              `json:"event_uuid"`
	Kind       Kind                `json:"kind"`
	Errors     map[string][]string `json:"errors,omitempty"`
	Exception  string              `json:"exception,omitempty"`
	RecordedAt time.Time           `json:"recorded_at"`
}

// MemoryStore keeps audit records in memory. Used in tests and ephemeral
// deployments.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// RecordErrors persists an aggregated error map against the event UUID.
func (s *MemoryStore) RecordErrors(_ context.Context, eventUUID string, errs map[string][]string) error {
	copied := make(map[string][]string, len(errs))
	for name, list := range errs {
		copied[name] = append([]string(nil), list...)
	}
	s.append(Record{
		EventUUID:  eventUUID,
		Kind:       KindErrors,
		Errors:     copied,
		RecordedAt: time.Now().UTC(),
	})
	return nil
}

// RecordException persists a single fatal exception against the event UUID.
func (s *MemoryStore) RecordException(_ context.Context, eventUUID string, cause error) error {
	s.append(Record{
		EventUUID:  eventUUID,
		Kind:       KindException,
		Exception:  cause.Error(),
		RecordedAt: time.Now().UTC(),
	})
	return nil
}

// ForEvent returns the records stored against an event UUID, oldest first.
func (s *MemoryStore) ForEvent(_ context.Context, eventUUID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, record := range s.records {
		if record.EventUUID == eventUUID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (s *MemoryStore) append(record Record) {
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
}
