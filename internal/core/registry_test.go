package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"plateops/pkg/domain"
)

func TestNewAutomationSystemRejectsDefects(t *testing.T) {
	wire := func(ev *PlateEvent, params Params) error {
		return ev.Graph().Add(newUserIDProperty(params))
	}
	cases := []struct {
		name string
		defs []EventDefinition
		want string
	}{
		{
			"duplicate event type",
			[]EventDefinition{
				{EventType: "source_completed", Role: RoleSource, Wire: wire},
				{EventType: "source_completed", Role: RoleSource, Wire: wire},
			},
			"registered twice",
		},
		{
			"empty event type",
			[]EventDefinition{{EventType: "", Role: RoleSource, Wire: wire}},
			"event type name required",
		},
		{
			"missing wiring",
			[]EventDefinition{{EventType: "source_completed", Role: RoleSource}},
			"no graph wiring",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAutomationSystem("beckman", testConfig(), Collaborators{}, tc.defs, nil)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("NewAutomationSystem returned %v, want %q", err, tc.want)
			}
		})
	}
}

func TestNewAutomationSystemProbesWiring(t *testing.T) {
	// A graph referencing an unregistered input must fail at construction.
	defs := []EventDefinition{{
		EventType: "broken",
		Role:      RoleSource,
		Wire: func(ev *PlateEvent, params Params) error {
			serial := newRobotSerialProperty(params)
			robot := newRobotProperty(serial, nil)
			return ev.Graph().Add(robot)
		},
	}}
	_, err := NewAutomationSystem("beckman", testConfig(), Collaborators{}, defs, nil)
	if err == nil || !strings.Contains(err.Error(), "unregistered property robot_serial_number") {
		t.Fatalf("NewAutomationSystem returned %v", err)
	}
}

func TestBeckmanSystemVocabulary(t *testing.T) {
	system, err := NewBeckmanSystem(testConfig(), Collaborators{})
	if err != nil {
		t.Fatalf("NewBeckmanSystem returned %v", err)
	}
	if system.Vendor() != VendorBeckman {
		t.Fatalf("vendor %q", system.Vendor())
	}
	want := []string{
		EventSourceCompleted,
		EventSourceUnrecognised,
		EventSourceAllNegatives,
		EventSourceNoPlateMapData,
		EventDestinationCreated,
		EventDestinationFailed,
	}
	if got := system.EventTypes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("EventTypes() = %v, want %v", got, want)
	}
	if got := system.FailureReasons(); !reflect.DeepEqual(got, BeckmanFailureReasons) {
		t.Fatalf("FailureReasons() = %v", got)
	}
}

func TestBioseroSystemVocabulary(t *testing.T) {
	system, err := NewBioseroSystem(testConfig(), Collaborators{})
	if err != nil {
		t.Fatalf("NewBioseroSystem returned %v", err)
	}
	want := []string{EventDestinationCreated, EventDestinationFailed, EventErrorRecovered}
	if got := system.EventTypes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("EventTypes() = %v, want %v", got, want)
	}
}

func TestLookupUnknownEventType(t *testing.T) {
	system, err := NewBeckmanSystem(testConfig(), Collaborators{})
	if err != nil {
		t.Fatalf("NewBeckmanSystem returned %v", err)
	}
	_, err = system.Lookup("mystery_event")
	var unknown domain.UnknownEventTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("Lookup returned %v, want UnknownEventTypeError", err)
	}
	if unknown.Vendor != VendorBeckman || unknown.EventType != "mystery_event" {
		t.Fatalf("unknown = %+v", unknown)
	}
}

func TestLookupReturnsFreshEvents(t *testing.T) {
	system, err := NewBeckmanSystem(testConfig(), Collaborators{})
	if err != nil {
		t.Fatalf("NewBeckmanSystem returned %v", err)
	}
	first, err := system.Lookup(EventSourceCompleted)
	if err != nil {
		t.Fatalf("Lookup returned %v", err)
	}
	second, err := system.Lookup(EventSourceCompleted)
	if err != nil {
		t.Fatalf("Lookup returned %v", err)
	}
	if first == second {
		t.Fatal("Lookup must return a fresh event per call")
	}
	if err := first.Initialize(identityParams(Params{
		"user_id":             "jdoe",
		"plate_barcode":       "DS000050001",
		"robot_serial_number": "BKRB0001",
	})); err != nil {
		t.Fatalf("Initialize returned %v", err)
	}
	if second.UUID() != "" {
		t.Fatal("initializing one event must not touch another")
	}
	if first.EventType() != "beckman_source_completed" {
		t.Fatalf("EventType() = %q", first.EventType())
	}
	if first.Role() != RoleSource {
		t.Fatalf("Role() = %q", first.Role())
	}
}
