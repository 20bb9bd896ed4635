package core

// Biosero event-type names beyond the shared destination ones.
const (
	EventErrorRecovered = "error_recovered"
)

// BioseroFailureReasons is the failure-reason vocabulary reported by Biosero
// automation systems.
var BioseroFailureReasons = []string{
	"gripper_error",
	"liquid_error",
	"other",
}

// NewBioseroSystem wires the Biosero cherry-picking event registry. Biosero
// destination plates are reconstructed from the run table rather than from
// the plate lookup service, and their samples receive freshly issued
// barcodes before the plate is created.
func NewBioseroSystem(cfg Config, collab Collaborators) (*AutomationSystem, error) {
	defs := []EventDefinition{
		{
			EventType: EventDestinationCreated,
			Role:      RoleDestination,
			Wire: func(ev *PlateEvent, params Params) error {
				user := newUserIDProperty(params)
				barcode := newPlateBarcodeProperty(params)
				serial := newRobotSerialProperty(params)
				robot := newRobotProperty(serial, cfg.Robots)
				runID := newRunIDProperty(params)
				runInfo := newRunInfoProperty(runID, collab.RunInfo)
				rows := newRunRowsProperty(barcode, collab.RunTable)
				samples := newSamplesFromRowsProperty(rows, collab.Samples)
				barcoded := newBarcodedSamplesProperty(samples, collab.Barcodes)
				return addAll(ev.Graph(), user, barcode, serial, robot, runID, runInfo, rows, samples, barcoded)
			},
			Steps: []Step{createPlateStep(), barcodeWritebackStep(), publishStep(), archiveStep()},
		},
		{
			EventType: EventDestinationFailed,
			Role:      RoleDestination,
			Wire: func(ev *PlateEvent, params Params) error {
				user := newUserIDProperty(params)
				barcode := newPlateBarcodeProperty(params)
				serial := newRobotSerialProperty(params)
				robot := newRobotProperty(serial, cfg.Robots)
				reason := newFailureReasonProperty(params, BioseroFailureReasons)
				return addAll(ev.Graph(), user, barcode, serial, robot, reason)
			},
			Steps: []Step{publishStep(), archiveStep()},
		},
		{
			EventType: EventErrorRecovered,
			Role:      RoleDestination,
			Wire: func(ev *PlateEvent, params Params) error {
				user := newUserIDProperty(params)
				barcode := newPlateBarcodeProperty(params)
				serial := newRobotSerialProperty(params)
				robot := newRobotProperty(serial, cfg.Robots)
				reason := newFailureReasonProperty(params, BioseroFailureReasons)
				return addAll(ev.Graph(), user, barcode, serial, robot, reason)
			},
			Steps: []Step{publishStep(), archiveStep()},
		},
	}
	return NewAutomationSystem(VendorBiosero, cfg, collab, defs, BioseroFailureReasons)
}
