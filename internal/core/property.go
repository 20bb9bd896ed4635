// Package core implements the plate-event orchestration engine: lazily
// evaluated property graphs, the PlateEvent state machine, and the per-vendor
// automation system registries that wire them together.
package core

import (
	"context"
	"sync"

	"plateops/pkg/domain"
)

// PropertyState describes where a property sits in its evaluation lifecycle.
type PropertyState string

// Property lifecycle states.
const (
	StateUnevaluated     PropertyState = "unevaluated"
	StateValid           PropertyState = "valid"
	StateInvalid         PropertyState = "invalid"
	StateRetrieved       PropertyState = "retrieved"
	StateRetrievalFailed PropertyState = "retrieval_failed"
)

// Node is one entry in a property graph: a named value with independent
// validation and an aggregated error view.
type Node interface {
	Name() string
	Inputs() []Node
	Validate() bool
	Errors() []string
}

// WarehouseContributor is implemented by nodes that append subjects or
// metadata to the warehouse message.
type WarehouseContributor interface {
	ContributeToWarehouseMessage(ctx context.Context, msg *domain.WarehouseMessage) error
}

// CreationContributor is implemented by nodes that append well content to the
// plate creation message.
type CreationContributor interface {
	ContributeToPlateCreationMessage(ctx context.Context, msg *domain.PlateCreationMessage) error
}

// Fetcher is implemented by nodes whose retrieval calls a collaborator.
// Events use it to warm independent branches concurrently before building
// messages.
type Fetcher interface {
	Fetch(ctx context.Context) error
	External() bool
}

// Spec configures a Property. Check runs during validation against locally
// available inputs only; Fetch performs the (at most once) retrieval and may
// call a collaborator or read input property values.
type Spec[T any] struct {
	// Inputs are the properties this one depends on. Their validation errors
	// are merged into this property's error set.
	Inputs []Node
	// Check returns structural problems with locally available inputs. Nil
	// means no local checks beyond the inputs'.
	Check func() []string
	// Fetch computes the value. It only runs after validation succeeds.
	Fetch func(ctx context.Context) (T, error)
	// CallsCollaborator marks the fetch as blocking external I/O.
	CallsCollaborator bool
	// Warehouse, when set, contributes the retrieved value to the warehouse
	// message.
	Warehouse func(value T, msg *domain.WarehouseMessage)
	// Creation, when set, contributes the retrieved value to the plate
	// creation message.
	Creation func(value T, msg *domain.PlateCreationMessage) error
}

// Property is a named, typed, lazily computed value. Validation and
// retrieval outcomes are both cached, so repeated calls never re-trigger
// checks or collaborator calls, and concurrent callers observe one shared
// outcome.
type Property[T any] struct {
	name string
	spec Spec[T]

	mu        sync.Mutex
	validated bool
	valid     bool
	errs      *domain.ErrorSet
	evaluated bool
	value     T
	evalErr   error
}

// NewProperty constructs a property from its spec.
func NewProperty[T any](name string, spec Spec[T]) *Property[T] {
	return &Property[T]{name: name, spec: spec, errs: domain.NewErrorSet()}
}

// Name returns the property's graph-unique identifier.
func (p *Property[T]) Name() string { return p.name }

// Inputs returns the properties this one depends on.
func (p *Property[T]) Inputs() []Node { return p.spec.Inputs }

// Validate checks locally available inputs and, transitively, every input
// property, merging their errors. It never calls a collaborator and is
// idempotent: the first outcome is cached.
func (p *Property[T]) Validate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.validateLocked()
}

func (p *Property[T]) validateLocked() bool {
	if p.validated {
		return p.valid
	}
	valid := true
	for _, input := range p.spec.Inputs {
		if !input.Validate() {
			valid = false
			p.errs.Add(input.Errors()...)
		}
	}
	if p.spec.Check != nil {
		if reasons := p.spec.Check(); len(reasons) > 0 {
			valid = false
			p.errs.Add(reasons...)
		}
	}
	p.validated = true
	p.valid = valid
	return valid
}

// Errors forces validation and returns the deduplicated union of this
// property's own errors and all input properties' errors.
func (p *Property[T]) Errors() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.validateLocked()
	return p.errs.List()
}

// Value returns the memoized result, computing it on first use. Invalid
// properties fail with a ValidationError without attempting retrieval; a
// failed retrieval is cached and re-returned without re-calling the
// collaborator.
func (p *Property[T]) Value(ctx context.Context) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.evaluated {
		return p.value, p.evalErr
	}
	var zero T
	if !p.validateLocked() {
		p.evaluated = true
		p.evalErr = domain.ValidationError{Property: p.name, Reasons: p.errs.List()}
		return zero, p.evalErr
	}
	p.evaluated = true
	if p.spec.Fetch == nil {
		return p.value, nil
	}
	value, err := p.spec.Fetch(ctx)
	if err != nil {
		retrieval := domain.RetrievalError{Property: p.name, Err: err}
		p.evalErr = retrieval
		p.errs.Add(retrieval.Error())
		return zero, retrieval
	}
	p.value = value
	return value, nil
}

// Fetch warms the memoized value. Part of the Fetcher interface.
func (p *Property[T]) Fetch(ctx context.Context) error {
	_, err := p.Value(ctx)
	return err
}

// External reports whether retrieval performs blocking collaborator I/O.
func (p *Property[T]) External() bool { return p.spec.CallsCollaborator }

// State reports the property's current lifecycle state.
func (p *Property[T]) State() PropertyState {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.evaluated && p.evalErr == nil && p.valid:
		return StateRetrieved
	case p.evaluated && p.evalErr != nil && p.valid:
		return StateRetrievalFailed
	case p.validated && p.valid:
		return StateValid
	case p.validated:
		return StateInvalid
	default:
		return StateUnevaluated
	}
}

// ContributeToWarehouseMessage appends this property's warehouse
// contribution, retrieving the value first. Properties without a warehouse
// contribution are a no-op.
func (p *Property[T]) ContributeToWarehouseMessage(ctx context.Context, msg *domain.WarehouseMessage) error {
	if p.spec.Warehouse == nil {
		return nil
	}
	value, err := p.Value(ctx)
	if err != nil {
		return err
	}
	p.spec.Warehouse(value, msg)
	return nil
}

// ContributeToPlateCreationMessage appends this property's plate creation
// contribution, retrieving the value first.
func (p *Property[T]) ContributeToPlateCreationMessage(ctx context.Context, msg *domain.PlateCreationMessage) error {
	if p.spec.Creation == nil {
		return nil
	}
	value, err := p.Value(ctx)
	if err != nil {
		return err
	}
	return p.spec.Creation(value, msg)
}
