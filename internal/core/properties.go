package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"plateops/pkg/domain"
)

// Canonical property names. Unique within every graph that wires them.
const (
	PropUserID            = "user_id"
	PropPlateBarcode      = "plate_barcode"
	PropRobotSerialNumber = "robot_serial_number"
	PropRunID             = "run_id"
	PropFailureReason     = "failure_reason"
	PropRobot             = "robot"
	PropSourcePlate       = "source_plate"
	PropRunInfo           = "run_info"
	PropSamplesFromSource = "samples_from_source"
	PropPickedSamples     = "picked_samples_from_source"
	PropWellsFromDest     = "wells_from_destination"
	PropRunRows           = "run_rows"
	PropSamplesFromRows   = "samples_from_rows"
	PropBarcodedSamples   = "samples_with_barcodes"
)

func paramCheck(key, value string, present bool) []string {
	if !present {
		return []string{fmt.Sprintf("'%s' is missing", key)}
	}
	if strings.TrimSpace(value) == "" {
		return []string{fmt.Sprintf("'%s' is empty", key)}
	}
	if strings.ContainsAny(strings.TrimSpace(value), " \t\n") {
		return []string{fmt.Sprintf("'%s' contains whitespace", key)}
	}
	return nil
}

// newUserIDProperty reads the reporting operator identifier and attributes
// the warehouse message to it.
func newUserIDProperty(params Params) *Property[string] {
	value, ok := params[PropUserID]
	return NewProperty(PropUserID, Spec[string]{
		Check: func() []string { return paramCheck(PropUserID, value, ok) },
		Fetch: func(context.Context) (string, error) { return strings.TrimSpace(value), nil },
		Warehouse: func(v string, msg *domain.WarehouseMessage) {
			msg.SetUserIdentifier(v)
		},
	})
}

// newPlateBarcodeProperty reads the plate barcode, records it as warehouse
// metadata, and names the destination plate on creation requests.
func newPlateBarcodeProperty(params Params) *Property[string] {
	value, ok := params[PropPlateBarcode]
	return NewProperty(PropPlateBarcode, Spec[string]{
		Check: func() []string { return paramCheck(PropPlateBarcode, value, ok) },
		Fetch: func(context.Context) (string, error) { return strings.TrimSpace(value), nil },
		Warehouse: func(v string, msg *domain.WarehouseMessage) {
			msg.AddMetadata(PropPlateBarcode, v)
		},
		Creation: func(v string, msg *domain.PlateCreationMessage) error {
			msg.SetBarcode(v)
			return nil
		},
	})
}

func newRobotSerialProperty(params Params) *Property[string] {
	value, ok := params[PropRobotSerialNumber]
	return NewProperty(PropRobotSerialNumber, Spec[string]{
		Check: func() []string { return paramCheck(PropRobotSerialNumber, value, ok) },
		Fetch: func(context.Context) (string, error) { return strings.TrimSpace(value), nil },
	})
}

func newRunIDProperty(params Params) *Property[int] {
	value, ok := params[PropRunID]
	return NewProperty(PropRunID, Spec[int]{
		Check: func() []string {
			if reasons := paramCheck(PropRunID, value, ok); len(reasons) > 0 {
				return reasons
			}
			if _, err := strconv.Atoi(strings.TrimSpace(value)); err != nil {
				return []string{fmt.Sprintf("'%s' is not an integer", PropRunID)}
			}
			return nil
		},
		Fetch: func(context.Context) (int, error) {
			return strconv.Atoi(strings.TrimSpace(value))
		},
		Warehouse: func(v int, msg *domain.WarehouseMessage) {
			msg.AddMetadata(PropRunID, strconv.Itoa(v))
		},
	})
}

// newFailureReasonProperty reads the failure reason code and validates it
// against the vendor's declared vocabulary.
func newFailureReasonProperty(params Params, known []string) *Property[string] {
	value, ok := params[PropFailureReason]
	return NewProperty(PropFailureReason, Spec[string]{
		Check: func() []string {
			if reasons := paramCheck(PropFailureReason, value, ok); len(reasons) > 0 {
				return reasons
			}
			trimmed := strings.TrimSpace(value)
			for _, reason := range known {
				if trimmed == reason {
					return nil
				}
			}
			return []string{fmt.Sprintf("'%s' is not a known failure reason", trimmed)}
		},
		Fetch: func(context.Context) (string, error) { return strings.TrimSpace(value), nil },
		Warehouse: func(v string, msg *domain.WarehouseMessage) {
			msg.AddMetadata(PropFailureReason, v)
		},
	})
}

// Robot pairs a serial number with its registered UUID.
type Robot struct {
	Serial string
	UUID   string
}

// newRobotProperty resolves the robot UUID from its serial number via the
// configured robot registry and contributes the robot subject.
func newRobotProperty(serial *Property[string], robots map[string]string) *Property[Robot] {
	return NewProperty(PropRobot, Spec[Robot]{
		Inputs: []Node{serial},
		Fetch: func(ctx context.Context) (Robot, error) {
			s, err := serial.Value(ctx)
			if err != nil {
				return Robot{}, err
			}
			id, ok := robots[s]
			if !ok {
				return Robot{}, fmt.Errorf("robot with serial number %s is not registered", s)
			}
			return Robot{Serial: s, UUID: id}, nil
		},
		Warehouse: func(r Robot, msg *domain.WarehouseMessage) {
			msg.AddSubject(domain.Subject{
				RoleType:     domain.RoleRobot,
				SubjectType:  domain.SubjectRobot,
				FriendlyName: r.Serial,
				UUID:         r.UUID,
			})
		},
	})
}

// SourcePlate pairs a source plate barcode with its sample-store UUID.
type SourcePlate struct {
	Barcode string
	UUID    string
}

// newSourcePlateProperty resolves the source plate UUID from its barcode via
// the sample store and contributes the source labware subject.
func newSourcePlateProperty(barcode *Property[string], store SampleStore) *Property[SourcePlate] {
	return NewProperty(PropSourcePlate, Spec[SourcePlate]{
		Inputs:            []Node{barcode},
		CallsCollaborator: true,
		Fetch: func(ctx context.Context) (SourcePlate, error) {
			bc, err := barcode.Value(ctx)
			if err != nil {
				return SourcePlate{}, err
			}
			id, err := store.PlateUUIDForBarcode(ctx, bc)
			if err != nil {
				return SourcePlate{}, err
			}
			return SourcePlate{Barcode: bc, UUID: id}, nil
		},
		Warehouse: func(p SourcePlate, msg *domain.WarehouseMessage) {
			msg.AddSubject(domain.Subject{
				RoleType:     domain.RoleCherrypickingSource,
				SubjectType:  domain.SubjectPlate,
				FriendlyName: p.Barcode,
				UUID:         p.UUID,
			})
		},
	})
}

// newRunInfoProperty fetches run metadata from the automation-run-info
// service and contributes the run subject. The run subject UUID is derived
// deterministically from the run id so repeated reports reference the same
// entity.
func newRunInfoProperty(runID *Property[int], svc RunInfoService) *Property[domain.RunInfo] {
	return NewProperty(PropRunInfo, Spec[domain.RunInfo]{
		Inputs:            []Node{runID},
		CallsCollaborator: true,
		Fetch: func(ctx context.Context) (domain.RunInfo, error) {
			id, err := runID.Value(ctx)
			if err != nil {
				return domain.RunInfo{}, err
			}
			return svc.RunInfo(ctx, id)
		},
		Warehouse: func(info domain.RunInfo, msg *domain.WarehouseMessage) {
			msg.AddSubject(info.Subject(runSubjectUUID(info.RunID)))
		},
	})
}

func runSubjectUUID(runID int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("plateops:run:%d", runID))).String()
}

// newSamplesFromSourceProperty fetches the positive samples on a source
// plate and contributes one subject per sample.
func newSamplesFromSourceProperty(plate *Property[SourcePlate], store SampleStore) *Property[[]domain.SampleRecord] {
	return NewProperty(PropSamplesFromSource, Spec[[]domain.SampleRecord]{
		Inputs:            []Node{plate},
		CallsCollaborator: true,
		Fetch: func(ctx context.Context) ([]domain.SampleRecord, error) {
			p, err := plate.Value(ctx)
			if err != nil {
				return nil, err
			}
			return store.PositiveSamplesForPlate(ctx, p.UUID)
		},
		Warehouse: contributeSampleSubjects,
	})
}

// newPickedSamplesProperty fetches the source plate records, keeps the
// picked ones for the reported run, and resolves them to full sample records
// via the sample store. Contributes one subject per picked sample.
func newPickedSamplesProperty(barcode *Property[string], runID *Property[int], lookup PlateLookupService, store SampleStore) *Property[[]domain.SampleRecord] {
	return NewProperty(PropPickedSamples, Spec[[]domain.SampleRecord]{
		Inputs:            []Node{barcode, runID},
		CallsCollaborator: true,
		Fetch: func(ctx context.Context) ([]domain.SampleRecord, error) {
			bc, err := barcode.Value(ctx)
			if err != nil {
				return nil, err
			}
			run, err := runID.Value(ctx)
			if err != nil {
				return nil, err
			}
			records, err := lookup.SourcePlateRecords(ctx, bc)
			if err != nil {
				return nil, err
			}
			coordinates := make(map[string]string)
			uuids := make([]string, 0, len(records))
			for _, record := range records {
				if !record.Picked || record.RunID != run {
					continue
				}
				uuids = append(uuids, record.SampleUUID)
				coordinates[record.SampleUUID] = record.DestinationCoordinate
			}
			if len(uuids) == 0 {
				return nil, nil
			}
			samples, err := store.SamplesByUUID(ctx, uuids)
			if err != nil {
				return nil, err
			}
			for i := range samples {
				if coord, ok := coordinates[samples[i].UUID]; ok && samples[i].Coordinate == "" {
					samples[i].Coordinate = coord
				}
			}
			return samples, nil
		},
		Warehouse: contributeSampleSubjects,
	})
}

// newWellsFromDestinationProperty fetches the destination plate's well
// records and asserts no two wells claim the same destination coordinate.
// The clash is only detectable after the collaborator call, so it surfaces
// as a retrieval failure. Contributes the well contents to the plate
// creation request.
func newWellsFromDestinationProperty(barcode *Property[string], lookup PlateLookupService) *Property[[]domain.LookupRecord] {
	return NewProperty(PropWellsFromDest, Spec[[]domain.LookupRecord]{
		Inputs:            []Node{barcode},
		CallsCollaborator: true,
		Fetch: func(ctx context.Context) ([]domain.LookupRecord, error) {
			bc, err := barcode.Value(ctx)
			if err != nil {
				return nil, err
			}
			wells, err := lookup.DestinationPlateWells(ctx, bc)
			if err != nil {
				return nil, err
			}
			if clashes := duplicateCoordinates(wells); len(clashes) > 0 {
				return nil, fmt.Errorf("duplicate destination coordinate(s): %s", strings.Join(clashes, ", "))
			}
			return wells, nil
		},
		Creation: func(wells []domain.LookupRecord, msg *domain.PlateCreationMessage) error {
			for _, well := range wells {
				content := domain.WellContent{SampleUUID: well.SampleUUID}
				if well.Control {
					content = domain.WellContent{IsControl: true, ControlType: well.ControlType}
				}
				if err := msg.SetWell(well.DestinationCoordinate, content); err != nil {
					return err
				}
			}
			return nil
		},
	})
}

func duplicateCoordinates(wells []domain.LookupRecord) []string {
	counts := make(map[string]int, len(wells))
	for _, well := range wells {
		counts[well.DestinationCoordinate]++
	}
	var clashes []string
	for coord, n := range counts {
		if n > 1 {
			clashes = append(clashes, coord)
		}
	}
	sort.Strings(clashes)
	return clashes
}

// newRunRowsProperty reads the run-table rows for the destination barcode
// and contributes the control wells to the plate creation request.
func newRunRowsProperty(barcode *Property[string], reader RunTableReader) *Property[[]domain.RunRow] {
	return NewProperty(PropRunRows, Spec[[]domain.RunRow]{
		Inputs:            []Node{barcode},
		CallsCollaborator: true,
		Fetch: func(ctx context.Context) ([]domain.RunRow, error) {
			bc, err := barcode.Value(ctx)
			if err != nil {
				return nil, err
			}
			return reader.RowsForDestination(ctx, bc)
		},
		Creation: func(rows []domain.RunRow, msg *domain.PlateCreationMessage) error {
			for _, row := range rows {
				if !row.Control {
					continue
				}
				err := msg.SetWell(row.DestinationCoordinate, domain.WellContent{
					SupplierName: row.SourceBarcode,
					IsControl:    true,
					ControlType:  row.ControlType,
				})
				if err != nil {
					return err
				}
			}
			return nil
		},
	})
}

// newSamplesFromRowsProperty resolves full sample records for the
// non-control run-table rows, keeping the destination coordinate from each
// row. Contributes one subject per sample.
func newSamplesFromRowsProperty(rows *Property[[]domain.RunRow], store SampleStore) *Property[[]domain.SampleRecord] {
	return NewProperty(PropSamplesFromRows, Spec[[]domain.SampleRecord]{
		Inputs:            []Node{rows},
		CallsCollaborator: true,
		Fetch: func(ctx context.Context) ([]domain.SampleRecord, error) {
			rr, err := rows.Value(ctx)
			if err != nil {
				return nil, err
			}
			coordinates := make(map[string]string)
			uuids := make([]string, 0, len(rr))
			for _, row := range rr {
				if row.Control {
					continue
				}
				uuids = append(uuids, row.SampleUUID)
				coordinates[row.SampleUUID] = row.DestinationCoordinate
			}
			if len(uuids) == 0 {
				return nil, nil
			}
			samples, err := store.SamplesByUUID(ctx, uuids)
			if err != nil {
				return nil, err
			}
			for i := range samples {
				samples[i].Coordinate = coordinates[samples[i].UUID]
			}
			return samples, nil
		},
		Warehouse: contributeSampleSubjects,
	})
}

// newBarcodedSamplesProperty groups samples by originating centre, asks the
// barcode-issuing service for one batch per centre, and writes the issued
// barcodes back onto the records in place. Contributes the sample wells to
// the plate creation request.
func newBarcodedSamplesProperty(samples *Property[[]domain.SampleRecord], issuer BarcodeIssuer) *Property[[]domain.SampleRecord] {
	return NewProperty(PropBarcodedSamples, Spec[[]domain.SampleRecord]{
		Inputs:            []Node{samples},
		CallsCollaborator: true,
		Fetch: func(ctx context.Context) ([]domain.SampleRecord, error) {
			records, err := samples.Value(ctx)
			if err != nil {
				return nil, err
			}
			byCentre := make(map[string][]int)
			for i, record := range records {
				byCentre[record.CentrePrefix] = append(byCentre[record.CentrePrefix], i)
			}
			centres := make([]string, 0, len(byCentre))
			for centre := range byCentre {
				centres = append(centres, centre)
			}
			sort.Strings(centres)
			for _, centre := range centres {
				indexes := byCentre[centre]
				barcodes, err := issuer.IssueBarcodes(ctx, centre, len(indexes))
				if err != nil {
					return nil, err
				}
				if len(barcodes) != len(indexes) {
					return nil, fmt.Errorf("centre %s: requested %d barcodes, got %d", centre, len(indexes), len(barcodes))
				}
				for n, i := range indexes {
					records[i].Barcode = barcodes[n]
				}
			}
			return records, nil
		},
		Creation: func(records []domain.SampleRecord, msg *domain.PlateCreationMessage) error {
			for _, sample := range records {
				err := msg.SetWell(sample.Coordinate, domain.WellContent{
					Name:              sample.Name,
					SampleDescription: sample.SampleDescription,
					SupplierName:      sample.SupplierName,
					Phenotype:         sample.Phenotype,
					SampleUUID:        sample.UUID,
				})
				if err != nil {
					return err
				}
			}
			return nil
		},
	})
}

func contributeSampleSubjects(samples []domain.SampleRecord, msg *domain.WarehouseMessage) {
	for _, sample := range samples {
		msg.AddSubject(sample.Subject())
	}
}
