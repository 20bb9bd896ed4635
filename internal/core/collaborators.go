package core

import (
	"context"

	"plateops/pkg/domain"
)

// SampleStore fetches and annotates sample records in the sample-tracking
// system.
type SampleStore interface {
	// SamplesByUUID resolves full sample records for the given UUIDs.
	SamplesByUUID(ctx context.Context, uuids []string) ([]domain.SampleRecord, error)
	// PositiveSamplesForPlate returns positive samples for a source plate UUID.
	PositiveSamplesForPlate(ctx context.Context, plateUUID string) ([]domain.SampleRecord, error)
	// PlateUUIDForBarcode resolves a source plate UUID from its barcode.
	PlateUUIDForBarcode(ctx context.Context, barcode string) (string, error)
	// UpdateSampleBarcodes writes issued barcodes back onto sample records.
	UpdateSampleBarcodes(ctx context.Context, samples []domain.SampleRecord) error
}

// RunInfoService fetches run metadata from the automation-run-info service.
// Implementations fail loudly when the run id is unknown.
type RunInfoService interface {
	RunInfo(ctx context.Context, runID int) (domain.RunInfo, error)
}

// PlateLookupService fetches raw sample/well records for source and
// destination plates.
type PlateLookupService interface {
	SourcePlateRecords(ctx context.Context, barcode string) ([]domain.LookupRecord, error)
	DestinationPlateWells(ctx context.Context, barcode string) ([]domain.LookupRecord, error)
}

// PlateCreator sends a plate creation request to the sample-tracking system.
type PlateCreator interface {
	CreatePlate(ctx context.Context, payload domain.PlateCreationPayload) (domain.CreatedPlate, error)
}

// BarcodeIssuer returns newly issued barcodes for a centre prefix.
type BarcodeIssuer interface {
	IssueBarcodes(ctx context.Context, centrePrefix string, count int) ([]string, error)
}

// LocationTracker records a labware transfer attributed to a robot.
type LocationTracker interface {
	RecordTransfer(ctx context.Context, labwareBarcodes []string, location, robotSerial string) error
}

// WarehousePublisher publishes a rendered warehouse payload to the event
// warehouse transport.
type WarehousePublisher interface {
	Publish(ctx context.Context, payload domain.WarehousePayload) error
}

// RunTableReader reads run-table rows for a destination barcode, filtered to
// the most recent run with incomplete non-control rows excluded.
type RunTableReader interface {
	RowsForDestination(ctx context.Context, barcode string) ([]domain.RunRow, error)
}

// AuditStore durably records per-event error maps and fatal exceptions
// against the event's UUID.
type AuditStore interface {
	RecordErrors(ctx context.Context, eventUUID string, errs map[string][]string) error
	RecordException(ctx context.Context, eventUUID string, err error) error
}

// PayloadArchive stores rendered warehouse payloads as immutable objects for
// later audit.
type PayloadArchive interface {
	ArchivePayload(ctx context.Context, eventUUID string, payload []byte) error
}

// Collaborators bundles every external system the engine may call. Events
// only touch the collaborators their graph wires in; unused entries may be
// nil.
type Collaborators struct {
	Samples   SampleStore
	RunInfo   RunInfoService
	Lookup    PlateLookupService
	Creator   PlateCreator
	Barcodes  BarcodeIssuer
	Locations LocationTracker
	Publisher WarehousePublisher
	RunTable  RunTableReader
	Audit     AuditStore
	Archive   PayloadArchive
}
