package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"plateops/pkg/domain"
)

// PlateRole distinguishes the origin labware from the target labware of a
// cherry-picking run.
type PlateRole string

// Plate roles.
const (
	RoleSource      PlateRole = "source"
	RoleDestination PlateRole = "destination"
)

// Params are the raw request parameters an event is initialized from.
type Params map[string]string

// Reserved parameter keys carrying event identity.
const (
	ParamEventUUID  = "event_uuid"
	ParamOccurredAt = "occurred_at"
)

// BaseErrorKey is the error-map key for failures not attributable to a
// single property.
const BaseErrorKey = "base"

// Step is one dispatch action run after the warehouse message is built.
// Mutating steps change external state; once one has succeeded, a later
// failure is reported as a partial mutation needing manual intervention.
type Step struct {
	Name     string
	Mutating bool
	Run      func(ctx context.Context, ev *PlateEvent) error
}

// EventDefinition describes one event type: its plate role, how its property
// graph is wired from request parameters, and the dispatch steps that run
// after validation.
type EventDefinition struct {
	EventType string
	Role      PlateRole
	Wire      func(ev *PlateEvent, params Params) error
	Steps     []Step
}

// PlateEvent owns one property graph for one inbound robot report and drives
// it through initialization, validation, message building, and dispatch.
// Instances are single-use: one event per request, discarded afterwards.
type PlateEvent struct {
	vendor string
	def    EventDefinition
	collab Collaborators
	cfg    Config

	graph      *Graph
	uuid       string
	occurredAt time.Time

	initialized bool
	processed   bool
	failed      bool
	baseErrs    *domain.ErrorSet

	message  *domain.WarehouseMessage
	creation *domain.PlateCreationMessage
}

func newPlateEvent(vendor string, def EventDefinition, cfg Config, collab Collaborators) *PlateEvent {
	return &PlateEvent{
		vendor:   vendor,
		def:      def,
		cfg:      cfg,
		collab:   collab,
		baseErrs: domain.NewErrorSet(),
	}
}

// EventType returns the vendor-scoped event type name, as published in
// warehouse payloads.
func (ev *PlateEvent) EventType() string {
	return fmt.Sprintf("%s_%s", ev.vendor, ev.def.EventType)
}

// Role returns the event's plate role.
func (ev *PlateEvent) Role() PlateRole { return ev.def.Role }

// UUID returns the externally supplied event identity, empty before
// initialization.
func (ev *PlateEvent) UUID() string { return ev.uuid }

// OccurredAt returns the caller-supplied event timestamp.
func (ev *PlateEvent) OccurredAt() time.Time { return ev.occurredAt }

// Graph exposes the wired property graph, nil before initialization.
func (ev *PlateEvent) Graph() *Graph { return ev.graph }

// Processed reports whether dispatch completed successfully.
func (ev *PlateEvent) Processed() bool { return ev.processed }

// Failed reports whether validation or dispatch recorded a failure.
func (ev *PlateEvent) Failed() bool { return ev.failed }

// Initialize records the event identity and wires the property graph from
// request parameters. It requires the event UUID and occurrence timestamp
// metadata, and verifies the wired graph is complete and acyclic before
// accepting the event.
func (ev *PlateEvent) Initialize(params Params) error {
	if ev.initialized {
		return domain.LifecycleError{Op: "initialize", Reason: "event already initialized"}
	}
	rawUUID, ok := params[ParamEventUUID]
	if !ok || rawUUID == "" {
		return domain.LifecycleError{Op: "initialize", Reason: fmt.Sprintf("'%s' is missing", ParamEventUUID)}
	}
	parsed, err := uuid.Parse(rawUUID)
	if err != nil {
		return domain.LifecycleError{Op: "initialize", Reason: fmt.Sprintf("'%s' is not a valid UUID", ParamEventUUID)}
	}
	rawAt, ok := params[ParamOccurredAt]
	if !ok || rawAt == "" {
		return domain.LifecycleError{Op: "initialize", Reason: fmt.Sprintf("'%s' is missing", ParamOccurredAt)}
	}
	occurredAt, err := time.Parse(time.RFC3339, rawAt)
	if err != nil {
		return domain.LifecycleError{Op: "initialize", Reason: fmt.Sprintf("'%s' is not an RFC3339 timestamp", ParamOccurredAt)}
	}

	ev.graph = NewGraph()
	if err := ev.def.Wire(ev, params); err != nil {
		return fmt.Errorf("wire %s: %w", ev.EventType(), err)
	}
	if err := ev.graph.Check(); err != nil {
		return fmt.Errorf("wire %s: %w", ev.EventType(), err)
	}
	ev.uuid = parsed.String()
	ev.occurredAt = occurredAt.UTC()
	ev.initialized = true
	return nil
}

// IsValid walks every property in the graph without short-circuiting, so one
// pass yields the complete error set. It is side-effect free beyond error
// recording and can be re-asked at any time after initialization. Validity
// tracks the error map: any recorded error, including a retrieval failure
// cached during processing, makes the event invalid.
func (ev *PlateEvent) IsValid() bool {
	if !ev.initialized {
		return false
	}
	valid := ev.baseErrs.Empty()
	for _, name := range ev.graph.Order() {
		if len(ev.graph.Node(name).Errors()) > 0 {
			valid = false
		}
	}
	return valid
}

// Errors returns the aggregated error map keyed by property name, with
// failures not attributable to one property under the "base" key.
func (ev *PlateEvent) Errors() map[string][]string {
	out := make(map[string][]string)
	if ev.graph != nil {
		for _, name := range ev.graph.Order() {
			if errs := ev.graph.Node(name).Errors(); len(errs) > 0 {
				out[name] = errs
			}
		}
	}
	if !ev.baseErrs.Empty() {
		out[BaseErrorKey] = ev.baseErrs.List()
	}
	return out
}

// BuildWarehouseMessage assembles the audit envelope from each property's
// contribution in registration order. Contribution failures are attributed
// to the owning property and recorded rather than returned.
func (ev *PlateEvent) BuildWarehouseMessage(ctx context.Context) (*domain.WarehouseMessage, error) {
	if !ev.initialized {
		return nil, domain.LifecycleError{Op: "build_message", Reason: "event not initialized"}
	}
	msg := domain.NewWarehouseMessage(ev.uuid, ev.EventType(), ev.occurredAt)
	for _, name := range ev.graph.Order() {
		contributor, ok := ev.graph.Node(name).(WarehouseContributor)
		if !ok {
			continue
		}
		if err := contributor.ContributeToWarehouseMessage(ctx, msg); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// BuildPlateCreationMessage assembles the plate creation request from each
// property's contribution in registration order.
func (ev *PlateEvent) BuildPlateCreationMessage(ctx context.Context) (*domain.PlateCreationMessage, error) {
	if !ev.initialized {
		return nil, domain.LifecycleError{Op: "build_message", Reason: "event not initialized"}
	}
	msg := domain.NewPlateCreationMessage()
	for _, name := range ev.graph.Order() {
		contributor, ok := ev.graph.Node(name).(CreationContributor)
		if !ok {
			continue
		}
		if err := contributor.ContributeToPlateCreationMessage(ctx, msg); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// Process validates the event, retrieves property values, builds and
// dispatches the outbound messages, and records any failure against the
// event UUID. Failures are folded into the event's error map; the only
// errors returned are lifecycle misuse and audit-storage failures, which are
// distinct from event-processing failure.
func (ev *PlateEvent) Process(ctx context.Context) error {
	if !ev.initialized {
		return domain.LifecycleError{Op: "process", Reason: "event not initialized"}
	}
	if ev.processed || ev.failed {
		return domain.LifecycleError{Op: "process", Reason: "event already processed"}
	}
	if ev.cfg.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ev.cfg.ProcessTimeout)
		defer cancel()
	}

	if !ev.IsValid() {
		ev.failed = true
		return ev.RecordErrors(ctx)
	}

	ev.warmExternalProperties(ctx)

	msg, err := ev.BuildWarehouseMessage(ctx)
	if err != nil {
		ev.failed = true
		ev.noteFailure(ctx, err)
		return ev.RecordErrors(ctx)
	}
	ev.message = msg

	mutated := false
	for _, step := range ev.def.Steps {
		if err := step.Run(ctx, ev); err != nil {
			ev.failed = true
			if mutated {
				ev.baseErrs.Add("external state may already have been partially mutated; manual intervention may be required")
			}
			if ctx.Err() != nil {
				ev.baseErrs.Add("processing interrupted before completion; external state is ambiguous")
			}
			ev.noteStepFailure(step.Name, err)
			return ev.RecordErrors(ctx)
		}
		if step.Mutating {
			mutated = true
		}
	}
	ev.processed = true
	return nil
}

// warmExternalProperties retrieves every collaborator-backed property
// concurrently. Each branch's call is independent, and the per-property
// cache guarantees the retrieval runs once even with dependent properties
// asking again later. Failures stay cached on the owning property and
// surface during message building.
func (ev *PlateEvent) warmExternalProperties(ctx context.Context) {
	var wg sync.WaitGroup
	for _, name := range ev.graph.Order() {
		fetcher, ok := ev.graph.Node(name).(Fetcher)
		if !ok || !fetcher.External() {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = fetcher.Fetch(ctx)
		}()
	}
	wg.Wait()
}

// noteFailure records an error under the base key unless it is already
// recorded on its owning property.
func (ev *PlateEvent) noteFailure(ctx context.Context, err error) {
	var validation domain.ValidationError
	var retrieval domain.RetrievalError
	if !errors.As(err, &validation) && !errors.As(err, &retrieval) {
		ev.baseErrs.Add(err.Error())
	}
	if ctx.Err() != nil {
		ev.baseErrs.Add("processing interrupted before completion; external state is ambiguous")
	}
}

func (ev *PlateEvent) noteStepFailure(name string, err error) {
	ev.baseErrs.Add(fmt.Sprintf("%s: %v", name, err))
}

// RecordErrors persists the aggregated error map against the event UUID.
// A storage failure is returned to the caller; it is distinct from the
// event-processing failure already captured in the error map. Recording
// survives expiry of the processing context, since a timed-out event is
// exactly the one whose error map must reach the audit store.
func (ev *PlateEvent) RecordErrors(ctx context.Context) error {
	if ev.collab.Audit == nil {
		return nil
	}
	if err := ev.collab.Audit.RecordErrors(context.WithoutCancel(ctx), ev.uuid, ev.Errors()); err != nil {
		return fmt.Errorf("record errors for event %s: %w", ev.uuid, err)
	}
	return nil
}

// RecordException persists a single fatal exception against the event UUID
// and marks the event failed.
func (ev *PlateEvent) RecordException(ctx context.Context, cause error) error {
	ev.failed = true
	ev.baseErrs.Add(cause.Error())
	if ev.collab.Audit == nil {
		return nil
	}
	if err := ev.collab.Audit.RecordException(ctx, ev.uuid, cause); err != nil {
		return fmt.Errorf("record exception for event %s: %w", ev.uuid, err)
	}
	return nil
}
