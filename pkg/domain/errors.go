// Package domain defines the message envelopes, collaborator record shapes,
// and error primitives shared by the plateops event engine.
package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports that a property's inputs are structurally wrong:
// missing, empty, or malformed. It is always discoverable without calling a
// collaborator.
type ValidationError struct {
	Property string
	Reasons  []string
}

func (e ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return fmt.Sprintf("property %s is invalid", e.Property)
	}
	return fmt.Sprintf("property %s is invalid: %s", e.Property, strings.Join(e.Reasons, "; "))
}

// RetrievalError reports that an external call failed, returned an unexpected
// shape, or violated a structural invariant that is only checkable after the
// call (for example duplicate destination coordinates).
type RetrievalError struct {
	Property string
	Err      error
}

func (e RetrievalError) Error() string {
	return fmt.Sprintf("property %s retrieval failed: %v", e.Property, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e RetrievalError) Unwrap() error { return e.Err }

// LifecycleError reports that an event or property was used out of its
// required order. It indicates an integration bug, not a data problem.
type LifecycleError struct {
	Op     string
	Reason string
}

func (e LifecycleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// UnknownEventTypeError is returned by a registry lookup miss, before any
// property graph is constructed.
type UnknownEventTypeError struct {
	Vendor    string
	EventType string
}

func (e UnknownEventTypeError) Error() string {
	return fmt.Sprintf("event type %s is not registered for vendor %s", e.EventType, e.Vendor)
}
