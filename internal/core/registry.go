package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"plateops/pkg/domain"
)

// AutomationSystem is the per-vendor registry mapping event-type names to
// pre-wired PlateEvent factories, together with the vendor's event-type and
// failure-reason vocabularies.
type AutomationSystem struct {
	vendor         string
	cfg            Config
	collab         Collaborators
	defs           map[string]EventDefinition
	order          []string
	failureReasons []string
}

// NewAutomationSystem registers the vendor's event definitions and probes
// every one of them so that incomplete or cyclic graph wirings fail at
// startup rather than at request time.
func NewAutomationSystem(vendor string, cfg Config, collab Collaborators, defs []EventDefinition, failureReasons []string) (*AutomationSystem, error) {
	if vendor == "" {
		return nil, fmt.Errorf("vendor name required")
	}
	system := &AutomationSystem{
		vendor:         vendor,
		cfg:            cfg,
		collab:         collab,
		defs:           make(map[string]EventDefinition, len(defs)),
		failureReasons: append([]string(nil), failureReasons...),
	}
	for _, def := range defs {
		if def.EventType == "" {
			return nil, fmt.Errorf("vendor %s: event type name required", vendor)
		}
		if _, dup := system.defs[def.EventType]; dup {
			return nil, fmt.Errorf("vendor %s: event type %s registered twice", vendor, def.EventType)
		}
		if def.Wire == nil {
			return nil, fmt.Errorf("vendor %s: event type %s has no graph wiring", vendor, def.EventType)
		}
		system.defs[def.EventType] = def
		system.order = append(system.order, def.EventType)
	}
	if err := system.selfCheck(); err != nil {
		return nil, err
	}
	return system, nil
}

// selfCheck wires a probe event per registered type with identity-only
// parameters. Graph completeness and acyclicity are verified during
// Initialize; the probe instances are discarded.
func (s *AutomationSystem) selfCheck() error {
	probe := Params{
		ParamEventUUID:  uuid.NewString(),
		ParamOccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, eventType := range s.order {
		ev := newPlateEvent(s.vendor, s.defs[eventType], s.cfg, s.collab)
		if err := ev.Initialize(probe); err != nil {
			return fmt.Errorf("vendor %s: event type %s: %w", s.vendor, eventType, err)
		}
	}
	return nil
}

// Vendor returns the vendor name.
func (s *AutomationSystem) Vendor() string { return s.vendor }

// EventTypes enumerates the registered event-type names in registration
// order.
func (s *AutomationSystem) EventTypes() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// FailureReasons enumerates the vendor's failure-reason vocabulary.
func (s *AutomationSystem) FailureReasons() []string {
	out := make([]string, len(s.failureReasons))
	copy(out, s.failureReasons)
	return out
}

// Lookup returns a fresh, uninitialized PlateEvent for the event type, or an
// UnknownEventTypeError when the name is not registered for this vendor.
func (s *AutomationSystem) Lookup(eventType string) (*PlateEvent, error) {
	def, ok := s.defs[eventType]
	if !ok {
		return nil, domain.UnknownEventTypeError{Vendor: s.vendor, EventType: eventType}
	}
	return newPlateEvent(s.vendor, def, s.cfg, s.collab), nil
}
