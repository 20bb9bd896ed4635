package domain

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestWarehouseMessageRenderRequiresUser(t *testing.T) {
	msg := NewWarehouseMessage("7fc2a282-9f66-4a52-9421-3a62527b0940", "beckman_source_completed", time.Now().UTC())
	if _, err := msg.Render(); err == nil {
		t.Fatal("Render() without a user identifier should fail")
	} else if !strings.Contains(err.Error(), "user identifier not set") {
		t.Fatalf("unexpected error %v", err)
	}

	msg.SetUserIdentifier("jdoe")
	payload, err := msg.Render()
	if err != nil {
		t.Fatalf("Render() returned %v", err)
	}
	if payload.UserIdentifier != "jdoe" {
		t.Fatalf("user identifier %q, want jdoe", payload.UserIdentifier)
	}
	if payload.EventType != "beckman_source_completed" {
		t.Fatalf("event type %q", payload.EventType)
	}
}

func TestWarehouseMessageSubjectsKeepContributionOrder(t *testing.T) {
	occurred := time.Date(2021, 3, 4, 10, 0, 0, 0, time.UTC)
	msg := NewWarehouseMessage("c5a0e9d4-2b2f-4f9d-8f52-6f9b2f0a31f7", "biosero_destination_created", occurred)
	msg.SetUserIdentifier("robot-1")
	msg.AddSubject(Subject{RoleType: RoleSample, SubjectType: SubjectSample, FriendlyName: "s1", UUID: "u1"})
	msg.AddSubject(Subject{RoleType: RoleRobot, SubjectType: SubjectRobot, FriendlyName: "BKRB0001", UUID: "u2"})
	msg.AddSubject(Subject{RoleType: RoleRun, SubjectType: SubjectRun, FriendlyName: "run 3", UUID: "u3"})

	payload, err := msg.Render()
	if err != nil {
		t.Fatalf("Render() returned %v", err)
	}
	roles := make([]string, 0, len(payload.Subjects))
	for _, s := range payload.Subjects {
		roles = append(roles, s.RoleType)
	}
	want := []string{RoleSample, RoleRobot, RoleRun}
	if !reflect.DeepEqual(roles, want) {
		t.Fatalf("subject roles %v, want %v", roles, want)
	}
	if !payload.OccurredAt.Equal(occurred) {
		t.Fatalf("occurred at %v, want %v", payload.OccurredAt, occurred)
	}
}

func TestWarehouseMessageMetadataOverwrites(t *testing.T) {
	msg := NewWarehouseMessage("id", "type", time.Now())
	msg.SetUserIdentifier("u")
	msg.AddMetadata("run_id", "1")
	msg.AddMetadata("run_id", "2")
	payload, err := msg.Render()
	if err != nil {
		t.Fatalf("Render() returned %v", err)
	}
	if payload.Metadata["run_id"] != "2" {
		t.Fatalf("metadata run_id = %q, want 2", payload.Metadata["run_id"])
	}
}

func TestPlateCreationMessageRejectsDuplicateWell(t *testing.T) {
	msg := NewPlateCreationMessage()
	if err := msg.SetWell("A1", WellContent{SampleUUID: "u1"}); err != nil {
		t.Fatalf("first SetWell returned %v", err)
	}
	err := msg.SetWell("A1", WellContent{SampleUUID: "u2"})
	if err == nil {
		t.Fatal("second claim on A1 should fail")
	}
	if !strings.Contains(err.Error(), "A1 already claimed") {
		t.Fatalf("unexpected error %v", err)
	}
	if err := msg.SetWell("", WellContent{}); err == nil {
		t.Fatal("empty coordinate should fail")
	}
}

func TestPlateCreationMessageRenderRequiresBarcode(t *testing.T) {
	msg := NewPlateCreationMessage()
	msg.SetPurposeUUID("purpose")
	if _, err := msg.Render(); err == nil {
		t.Fatal("Render() without a barcode should fail")
	}
	msg.SetBarcode("HT-1001")
	msg.SetStudyUUID("study")
	if err := msg.SetWell("B2", WellContent{IsControl: true, ControlType: "positive"}); err != nil {
		t.Fatalf("SetWell returned %v", err)
	}
	msg.EmbedEvent(WarehousePayload{UUID: "ev", EventType: "biosero_destination_created"})
	payload, err := msg.Render()
	if err != nil {
		t.Fatalf("Render() returned %v", err)
	}
	if payload.Barcode != "HT-1001" || payload.PurposeUUID != "purpose" || payload.StudyUUID != "study" {
		t.Fatalf("payload identity fields wrong: %+v", payload)
	}
	if !payload.Wells["B2"].IsControl {
		t.Fatalf("well B2 should be a control, got %+v", payload.Wells["B2"])
	}
	if len(payload.Events) != 1 || payload.Events[0].UUID != "ev" {
		t.Fatalf("embedded events wrong: %+v", payload.Events)
	}
}

func TestSampleRecordFriendlyNameFallsBackToUUID(t *testing.T) {
	named := SampleRecord{UUID: "u1", Name: "sample one"}
	if got := named.FriendlyName(); got != "sample one" {
		t.Fatalf("FriendlyName() = %q", got)
	}
	anon := SampleRecord{UUID: "u2"}
	if got := anon.FriendlyName(); got != "u2" {
		t.Fatalf("FriendlyName() = %q", got)
	}
	subject := anon.Subject()
	if subject.RoleType != RoleSample || subject.SubjectType != SubjectSample || subject.UUID != "u2" {
		t.Fatalf("Subject() = %+v", subject)
	}
}

func TestRunInfoSubject(t *testing.T) {
	info := RunInfo{RunID: 7, UserID: "jdoe", RobotSerialNumber: "BKRB0001"}
	subject := info.Subject("run-uuid")
	if subject.RoleType != RoleRun || subject.SubjectType != SubjectRun {
		t.Fatalf("Subject() = %+v", subject)
	}
	if subject.FriendlyName != "run 7" {
		t.Fatalf("friendly name %q", subject.FriendlyName)
	}
	if subject.UUID != "run-uuid" {
		t.Fatalf("uuid %q", subject.UUID)
	}
}
