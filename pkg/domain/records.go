package domain

import "fmt"

// SampleRecord is a resolved sample from the sample store, annotated in place
// with an issued barcode when an event requires one.
type SampleRecord struct {
	UUID              string `json:"uuid"`
	Name              string `json:"name"`
	SampleDescription string `json:"sample_description,omitempty"`
	SupplierName      string `json:"supplier_name,omitempty"`
	Phenotype         string `json:"phenotype,omitempty"`
	CentrePrefix      string `json:"centre_prefix,omitempty"`
	Coordinate        string `json:"coordinate,omitempty"`
	Result            string `json:"result,omitempty"`
	Barcode           string `json:"barcode,omitempty"`
}

// FriendlyName is the human-facing identifier published in warehouse
// subjects. Falls back to the UUID when no name is recorded.
func (s SampleRecord) FriendlyName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.UUID
}

// Subject converts the sample into its warehouse subject representation.
func (s SampleRecord) Subject() Subject {
	return Subject{
		RoleType:     RoleSample,
		SubjectType:  SubjectSample,
		FriendlyName: s.FriendlyName(),
		UUID:         s.UUID,
	}
}

// LookupRecord is a raw sample/well record returned by the source or
// destination plate lookup service.
type LookupRecord struct {
	SampleUUID            string `json:"sample_uuid,omitempty"`
	SourceBarcode         string `json:"source_barcode,omitempty"`
	SourceCoordinate      string `json:"source_coordinate,omitempty"`
	DestinationCoordinate string `json:"destination_coordinate,omitempty"`
	RunID                 int    `json:"run_id,omitempty"`
	Picked                bool   `json:"picked"`
	Control               bool   `json:"control,omitempty"`
	ControlType           string `json:"control_type,omitempty"`
}

// RunInfo describes one automation-system run.
type RunInfo struct {
	RunID             int    `json:"run_id"`
	UserID            string `json:"user_id"`
	RobotSerialNumber string `json:"robot_serial_number"`
}

// Subject converts the run into its warehouse subject representation.
func (r RunInfo) Subject(uuid string) Subject {
	return Subject{
		RoleType:     RoleRun,
		SubjectType:  SubjectRun,
		FriendlyName: fmt.Sprintf("run %d", r.RunID),
		UUID:         uuid,
	}
}

// RunRow is one row of the SQL run table for a destination barcode.
type RunRow struct {
	ID                    int64
	RunID                 int64
	DestinationBarcode    string
	SourceBarcode         string
	SourceCoordinate      string
	DestinationCoordinate string
	SampleUUID            string
	Control               bool
	ControlType           string
	Completed             bool
}

// CreatedPlate is the metadata returned by the plate-creation service.
type CreatedPlate struct {
	Barcode string `json:"barcode"`
	UUID    string `json:"uuid"`
	Wells   int    `json:"wells"`
}
