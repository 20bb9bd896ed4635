package domain

import (
	"fmt"
	"time"
)

// Subject role types referenced by warehouse messages.
const (
	RoleSample                   = "sample"
	RoleRobot                    = "robot"
	RoleRun                      = "run"
	RoleCherrypickingSource      = "cherrypicking_source_labware"
	RoleCherrypickingDestination = "cherrypicking_destination_labware"
)

// Subject types referenced by warehouse messages.
const (
	SubjectSample = "sample"
	SubjectRobot  = "robot"
	SubjectRun    = "run"
	SubjectPlate  = "plate"
)

// Subject is one named, typed, UUID-identified entity referenced by a
// warehouse message.
type Subject struct {
	RoleType     string `json:"role_type"`
	SubjectType  string `json:"subject_type"`
	FriendlyName string `json:"friendly_name"`
	UUID         string `json:"uuid"`
}

// WarehouseMessage accumulates the audit envelope for one plate event.
// Properties contribute subjects and metadata incrementally; Render produces
// the outbound payload once a user identifier has been set.
type WarehouseMessage struct {
	uuid       string
	eventType  string
	occurredAt time.Time
	userID     string
	subjects   []Subject
	metadata   map[string]string
}

// WarehousePayload is the rendered wire shape of a warehouse message.
type WarehousePayload struct {
	UUID           string            `json:"uuid"`
	EventType      string            `json:"event_type"`
	OccurredAt     time.Time         `json:"occurred_at"`
	UserIdentifier string            `json:"user_identifier"`
	Subjects       []Subject         `json:"subjects"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// NewWarehouseMessage constructs an empty envelope for the given event
// identity.
func NewWarehouseMessage(uuid, eventType string, occurredAt time.Time) *WarehouseMessage {
	return &WarehouseMessage{
		uuid:       uuid,
		eventType:  eventType,
		occurredAt: occurredAt,
		metadata:   make(map[string]string),
	}
}

// SetUserIdentifier records the operator (or robot) the event is attributed
// to. Rendering fails until this has been called with a non-empty value.
func (m *WarehouseMessage) SetUserIdentifier(id string) { m.userID = id }

// AddSubject appends a subject in contribution order.
func (m *WarehouseMessage) AddSubject(s Subject) { m.subjects = append(m.subjects, s) }

// AddMetadata records a metadata key/value pair, overwriting any previous
// value for the key.
func (m *WarehouseMessage) AddMetadata(key, value string) {
	if m.metadata == nil {
		m.metadata = make(map[string]string)
	}
	m.metadata[key] = value
}

// Subjects returns the accumulated subjects in contribution order.
func (m *WarehouseMessage) Subjects() []Subject {
	out := make([]Subject, len(m.subjects))
	copy(out, m.subjects)
	return out
}

// Render materialises the outbound payload. It fails if no user identifier
// has been set.
func (m *WarehouseMessage) Render() (WarehousePayload, error) {
	if m.userID == "" {
		return WarehousePayload{}, fmt.Errorf("warehouse message %s: user identifier not set", m.uuid)
	}
	payload := WarehousePayload{
		UUID:           m.uuid,
		EventType:      m.eventType,
		OccurredAt:     m.occurredAt,
		UserIdentifier: m.userID,
		Subjects:       m.Subjects(),
	}
	if len(m.metadata) > 0 {
		payload.Metadata = make(map[string]string, len(m.metadata))
		for k, v := range m.metadata {
			payload.Metadata[k] = v
		}
	}
	return payload, nil
}

// WellContent is the payload for a single well of a plate creation request:
// either a sample or a control.
type WellContent struct {
	Name              string `json:"name,omitempty"`
	SampleDescription string `json:"sample_description,omitempty"`
	SupplierName      string `json:"supplier_name,omitempty"`
	Phenotype         string `json:"phenotype,omitempty"`
	SampleUUID        string `json:"sample_uuid,omitempty"`
	IsControl         bool   `json:"is_control,omitempty"`
	ControlType       string `json:"control_type,omitempty"`
}

// PlateCreationMessage accumulates the request sent to the plate-creation
// service for event types that create a destination plate.
type PlateCreationMessage struct {
	barcode     string
	purposeUUID string
	studyUUID   string
	wells       map[string]WellContent
	events      []WarehousePayload
}

// PlateCreationPayload is the rendered wire shape of a plate creation
// request.
type PlateCreationPayload struct {
	Barcode     string                 `json:"barcode"`
	PurposeUUID string                 `json:"purpose_uuid,omitempty"`
	StudyUUID   string                 `json:"study_uuid,omitempty"`
	Wells       map[string]WellContent `json:"wells"`
	Events      []WarehousePayload     `json:"events,omitempty"`
}

// NewPlateCreationMessage constructs an empty plate creation request.
func NewPlateCreationMessage() *PlateCreationMessage {
	return &PlateCreationMessage{wells: make(map[string]WellContent)}
}

// SetBarcode records the destination plate barcode. Rendering fails until a
// barcode has been set.
func (m *PlateCreationMessage) SetBarcode(barcode string) { m.barcode = barcode }

// SetPurposeUUID records the plate purpose the created plate is filed under.
func (m *PlateCreationMessage) SetPurposeUUID(uuid string) { m.purposeUUID = uuid }

// SetStudyUUID records the study the created plate belongs to.
func (m *PlateCreationMessage) SetStudyUUID(uuid string) { m.studyUUID = uuid }

// SetWell records content for a destination coordinate. A second claim on the
// same coordinate is rejected.
func (m *PlateCreationMessage) SetWell(coordinate string, content WellContent) error {
	if coordinate == "" {
		return fmt.Errorf("well coordinate required")
	}
	if m.wells == nil {
		m.wells = make(map[string]WellContent)
	}
	if _, taken := m.wells[coordinate]; taken {
		return fmt.Errorf("well %s already claimed", coordinate)
	}
	m.wells[coordinate] = content
	return nil
}

// EmbedEvent attaches a rendered warehouse payload so the plate-creation
// service can register the event alongside the plate.
func (m *PlateCreationMessage) EmbedEvent(payload WarehousePayload) {
	m.events = append(m.events, payload)
}

// Render materialises the outbound payload. It fails if no destination
// barcode has been set.
func (m *PlateCreationMessage) Render() (PlateCreationPayload, error) {
	if m.barcode == "" {
		return PlateCreationPayload{}, fmt.Errorf("plate creation message: barcode not set")
	}
	payload := PlateCreationPayload{
		Barcode:     m.barcode,
		PurposeUUID: m.purposeUUID,
		StudyUUID:   m.studyUUID,
		Wells:       make(map[string]WellContent, len(m.wells)),
	}
	for coord, content := range m.wells {
		payload.Wells[coord] = content
	}
	if len(m.events) > 0 {
		payload.Events = append([]WarehousePayload(nil), m.events...)
	}
	return payload, nil
}
