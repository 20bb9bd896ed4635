package core

import (
	"context"
	"fmt"
	"sync"

	"plateops/pkg/domain"
)

// In-memory collaborator doubles shared by the engine tests. Each records
// the calls it receives and fails with its configured error when set.

type fakeSampleStore struct {
	mu              sync.Mutex
	samplesByUUID   map[string]domain.SampleRecord
	positiveByPlate map[string][]domain.SampleRecord
	plateUUIDs      map[string]string
	err             error
	barcodeUpdates  [][]domain.SampleRecord
}

func (f *fakeSampleStore) SamplesByUUID(_ context.Context, uuids []string) ([]domain.SampleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.SampleRecord, 0, len(uuids))
	for _, id := range uuids {
		record, ok := f.samplesByUUID[id]
		if !ok {
			return nil, fmt.Errorf("sample %s not found", id)
		}
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeSampleStore) PositiveSamplesForPlate(_ context.Context, plateUUID string) ([]domain.SampleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.positiveByPlate[plateUUID], nil
}

func (f *fakeSampleStore) PlateUUIDForBarcode(_ context.Context, barcode string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	id, ok := f.plateUUIDs[barcode]
	if !ok {
		return "", fmt.Errorf("plate with barcode %s not found", barcode)
	}
	return id, nil
}

func (f *fakeSampleStore) UpdateSampleBarcodes(_ context.Context, samples []domain.SampleRecord) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.barcodeUpdates = append(f.barcodeUpdates, append([]domain.SampleRecord(nil), samples...))
	f.mu.Unlock()
	return nil
}

type fakeRunInfoService struct {
	runs map[int]domain.RunInfo
	err  error
}

func (f *fakeRunInfoService) RunInfo(_ context.Context, runID int) (domain.RunInfo, error) {
	if f.err != nil {
		return domain.RunInfo{}, f.err
	}
	info, ok := f.runs[runID]
	if !ok {
		return domain.RunInfo{}, fmt.Errorf("run %d not found", runID)
	}
	return info, nil
}

type fakeLookupService struct {
	sourceRecords map[string][]domain.LookupRecord
	destWells     map[string][]domain.LookupRecord
	err           error
}

func (f *fakeLookupService) SourcePlateRecords(_ context.Context, barcode string) ([]domain.LookupRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sourceRecords[barcode], nil
}

func (f *fakeLookupService) DestinationPlateWells(_ context.Context, barcode string) ([]domain.LookupRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.destWells[barcode], nil
}

type fakePlateCreator struct {
	mu       sync.Mutex
	payloads []domain.PlateCreationPayload
	err      error
}

func (f *fakePlateCreator) CreatePlate(_ context.Context, payload domain.PlateCreationPayload) (domain.CreatedPlate, error) {
	if f.err != nil {
		return domain.CreatedPlate{}, f.err
	}
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()
	return domain.CreatedPlate{Barcode: payload.Barcode, UUID: "created-plate-uuid", Wells: len(payload.Wells)}, nil
}

type fakeBarcodeIssuer struct {
	mu     sync.Mutex
	issued map[string]int
	err    error
	short  bool
}

func (f *fakeBarcodeIssuer) IssueBarcodes(_ context.Context, centrePrefix string, count int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	if f.issued == nil {
		f.issued = make(map[string]int)
	}
	f.issued[centrePrefix] += count
	f.mu.Unlock()
	if f.short {
		count--
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, fmt.Sprintf("%s-%d", centrePrefix, i+1))
	}
	return out, nil
}

type locationCall struct {
	barcodes []string
	location string
	serial   string
}

type fakeLocationTracker struct {
	mu    sync.Mutex
	calls []locationCall
	err   error
}

func (f *fakeLocationTracker) RecordTransfer(_ context.Context, labwareBarcodes []string, location, robotSerial string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.calls = append(f.calls, locationCall{
		barcodes: append([]string(nil), labwareBarcodes...),
		location: location,
		serial:   robotSerial,
	})
	f.mu.Unlock()
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads []domain.WarehousePayload
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, payload domain.WarehousePayload) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.payloads = append(f.payloads, payload)
	f.mu.Unlock()
	return nil
}

// stalledPublisher blocks until the context expires, standing in for an
// unresponsive transport.
type stalledPublisher struct{}

func (stalledPublisher) Publish(ctx context.Context, _ domain.WarehousePayload) error {
	<-ctx.Done()
	return ctx.Err()
}

type fakeRunTable struct {
	rows map[string][]domain.RunRow
	err  error
}

func (f *fakeRunTable) RowsForDestination(_ context.Context, barcode string) ([]domain.RunRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[barcode], nil
}

type fakeAudit struct {
	mu         sync.Mutex
	errorMaps  map[string]map[string][]string
	exceptions map[string][]string
	err        error
}

func (f *fakeAudit) RecordErrors(_ context.Context, eventUUID string, errs map[string][]string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	if f.errorMaps == nil {
		f.errorMaps = make(map[string]map[string][]string)
	}
	f.errorMaps[eventUUID] = errs
	f.mu.Unlock()
	return nil
}

func (f *fakeAudit) RecordException(_ context.Context, eventUUID string, cause error) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	if f.exceptions == nil {
		f.exceptions = make(map[string][]string)
	}
	f.exceptions[eventUUID] = append(f.exceptions[eventUUID], cause.Error())
	f.mu.Unlock()
	return nil
}

type fakeArchive struct {
	mu       sync.Mutex
	payloads map[string][]byte
	err      error
}

func (f *fakeArchive) ArchivePayload(_ context.Context, eventUUID string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	if f.payloads == nil {
		f.payloads = make(map[string][]byte)
	}
	f.payloads[eventUUID] = append([]byte(nil), payload...)
	f.mu.Unlock()
	return nil
}
