package core

import (
	"context"
	"fmt"
	"time"

	"plateops/pkg/domain"
)

// Service is the engine's boundary with the surrounding transport layer: it
// resolves vendors and event types to initialized events and drives their
// processing with metrics and tracing around each operation.
type Service struct {
	systems map[string]*AutomationSystem
	order   []string
	metrics MetricsRecorder
	tracer  Tracer
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithMetrics attaches a metrics recorder.
func WithMetrics(rec MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer attaches a tracer.
func WithTracer(tr Tracer) ServiceOption {
	return func(s *Service) { s.tracer = tr }
}

// NewService constructs a service over the supplied vendor registries.
func NewService(systems []*AutomationSystem, opts ...ServiceOption) (*Service, error) {
	s := &Service{systems: make(map[string]*AutomationSystem, len(systems))}
	for _, system := range systems {
		if _, dup := s.systems[system.Vendor()]; dup {
			return nil, fmt.Errorf("vendor %s registered twice", system.Vendor())
		}
		s.systems[system.Vendor()] = system
		s.order = append(s.order, system.Vendor())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Vendors enumerates the registered vendor names in registration order.
func (s *Service) Vendors() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// System returns the registry for a vendor.
func (s *Service) System(vendor string) (*AutomationSystem, bool) {
	system, ok := s.systems[vendor]
	return system, ok
}

// ResolveAndBuild resolves the vendor and event type and returns an
// initialized PlateEvent ready for IsValid / Process.
func (s *Service) ResolveAndBuild(vendor, eventType string, params Params) (*PlateEvent, error) {
	system, ok := s.systems[vendor]
	if !ok {
		return nil, domain.UnknownEventTypeError{Vendor: vendor, EventType: eventType}
	}
	ev, err := system.Lookup(eventType)
	if err != nil {
		return nil, err
	}
	if err := ev.Initialize(params); err != nil {
		return nil, err
	}
	return ev, nil
}

// Process drives one event through processing, observing the outcome. The
// returned error carries lifecycle misuse or audit-storage failure only;
// event-processing failures are read from the event's error map.
func (s *Service) Process(ctx context.Context, ev *PlateEvent) error {
	operation := ev.EventType()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	started := time.Now()
	err := ev.Process(ctx)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil && ev.Processed(), time.Since(started))
	}
	return err
}
