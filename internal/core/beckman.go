package core

// Vendor names for the shipped automation systems.
const (
	VendorBeckman = "beckman"
	VendorBiosero = "biosero"
)

// Beckman event-type names.
const (
	EventSourceCompleted      = "source_completed"
	EventSourceUnrecognised   = "source_unrecognised"
	EventSourceAllNegatives   = "source_all_negatives"
	EventSourceNoPlateMapData = "source_no_plate_map_data"
	EventDestinationCreated   = "destination_created"
	EventDestinationFailed    = "destination_failed"
)

// BeckmanFailureReasons is the failure-reason vocabulary reported by Beckman
// liquid handlers.
var BeckmanFailureReasons = []string{
	"robot_crashed",
	"sample_contamination",
	"power_failure",
	"other",
}

// NewBeckmanSystem wires the Beckman cherry-picking event registry.
func NewBeckmanSystem(cfg Config, collab Collaborators) (*AutomationSystem, error) {
	defs := []EventDefinition{
		{
			EventType: EventSourceCompleted,
			Role:      RoleSource,
			Wire: func(ev *PlateEvent, params Params) error {
				user := newUserIDProperty(params)
				barcode := newPlateBarcodeProperty(params)
				serial := newRobotSerialProperty(params)
				robot := newRobotProperty(serial, cfg.Robots)
				plate := newSourcePlateProperty(barcode, collab.Samples)
				samples := newSamplesFromSourceProperty(plate, collab.Samples)
				return addAll(ev.Graph(), user, barcode, serial, robot, plate, samples)
			},
			Steps: []Step{publishStep(), archiveStep(), locationTransferStep()},
		},
		{
			EventType: EventSourceUnrecognised,
			Role:      RoleSource,
			Wire: func(ev *PlateEvent, params Params) error {
				user := newUserIDProperty(params)
				barcode := newPlateBarcodeProperty(params)
				serial := newRobotSerialProperty(params)
				robot := newRobotProperty(serial, cfg.Robots)
				return addAll(ev.Graph(), user, barcode, serial, robot)
			},
			Steps: []Step{publishStep(), archiveStep()},
		},
		{
			EventType: EventSourceAllNegatives,
			Role:      RoleSource,
			Wire: func(ev *PlateEvent, params Params) error {
				user := newUserIDProperty(params)
				barcode := newPlateBarcodeProperty(params)
				serial := newRobotSerialProperty(params)
				robot := newRobotProperty(serial, cfg.Robots)
				plate := newSourcePlateProperty(barcode, collab.Samples)
				return addAll(ev.Graph(), user, barcode, serial, robot, plate)
			},
			Steps: []Step{publishStep(), archiveStep(), locationTransferStep()},
		},
		{
			EventType: EventSourceNoPlateMapData,
			Role:      RoleSource,
			Wire: func(ev *PlateEvent, params Params) error {
				user := newUserIDProperty(params)
				barcode := newPlateBarcodeProperty(params)
				serial := newRobotSerialProperty(params)
				robot := newRobotProperty(serial, cfg.Robots)
				return addAll(ev.Graph(), user, barcode, serial, robot)
			},
			Steps: []Step{publishStep(), archiveStep()},
		},
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
				wells := newWellsFromDestinationProperty(barcode, collab.Lookup)
				picked := newPickedSamplesProperty(barcode, runID, collab.Lookup, collab.Samples)
				return addAll(ev.Graph(), user, barcode, serial, robot, runID, runInfo, wells, picked)
			},
			Steps: []Step{createPlateStep(), publishStep(), archiveStep()},
		},
		{
			EventType: EventDestinationFailed,
			Role:      RoleDestination,
			Wire: func(ev *PlateEvent, params Params) error {
				user := newUserIDProperty(params)
				barcode := newPlateBarcodeProperty(params)
				serial := newRobotSerialProperty(params)
				robot := newRobotProperty(serial, cfg.Robots)
				reason := newFailureReasonProperty(params, BeckmanFailureReasons)
				return addAll(ev.Graph(), user, barcode, serial, robot, reason)
			},
			Steps: []Step{publishStep(), archiveStep()},
		},
	}
	return NewAutomationSystem(VendorBeckman, cfg, collab, defs, BeckmanFailureReasons)
}

func addAll(g *Graph, nodes ...Node) error {
	for _, node := range nodes {
		if err := g.Add(node); err != nil {
			return err
		}
	}
	return nil
}
