package core

import (
	"context"
	"encoding/json"
	"fmt"

	"plateops/pkg/domain"
)

// Step names, used when attributing dispatch failures.
const (
	StepPublish          = "publish_warehouse_message"
	StepArchive          = "archive_warehouse_payload"
	StepCreatePlate      = "create_destination_plate"
	StepBarcodeWriteback = "write_back_issued_barcodes"
	StepLocationTransfer = "record_location_transfer"
)

// publishStep renders the warehouse message and publishes it to the event
// warehouse transport.
func publishStep() Step {
	return Step{
		Name: StepPublish,
		Run: func(ctx context.Context, ev *PlateEvent) error {
			payload, err := ev.message.Render()
			if err != nil {
				return err
			}
			return ev.collab.Publisher.Publish(ctx, payload)
		},
	}
}

// archiveStep stores the rendered warehouse payload as an immutable object
// keyed by the event UUID. Skipped when no archive is configured.
func archiveStep() Step {
	return Step{
		Name: StepArchive,
		Run: func(ctx context.Context, ev *PlateEvent) error {
			if ev.collab.Archive == nil {
				return nil
			}
			payload, err := ev.message.Render()
			if err != nil {
				return err
			}
			raw, err := json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("encode warehouse payload: %w", err)
			}
			return ev.collab.Archive.ArchivePayload(ctx, ev.uuid, raw)
		},
	}
}

// createPlateStep builds the plate creation request, embeds the rendered
// warehouse payload, and sends it to the plate-creation service. This
// mutates external state: a later step failing leaves a created plate
// behind.
func createPlateStep() Step {
	return Step{
		Name:     StepCreatePlate,
		Mutating: true,
		Run: func(ctx context.Context, ev *PlateEvent) error {
			msg, err := ev.BuildPlateCreationMessage(ctx)
			if err != nil {
				return err
			}
			msg.SetPurposeUUID(ev.cfg.PlatePurposeUUID)
			msg.SetStudyUUID(ev.cfg.StudyUUID)
			rendered, err := ev.message.Render()
			if err != nil {
				return err
			}
			msg.EmbedEvent(rendered)
			payload, err := msg.Render()
			if err != nil {
				return err
			}
			ev.creation = msg
			_, err = ev.collab.Creator.CreatePlate(ctx, payload)
			return err
		},
	}
}

// barcodeWritebackStep updates the sample store with the barcodes issued
// while building the plate.
func barcodeWritebackStep() Step {
	return Step{
		Name:     StepBarcodeWriteback,
		Mutating: true,
		Run: func(ctx context.Context, ev *PlateEvent) error {
			node, ok := ev.graph.Node(PropBarcodedSamples).(*Property[[]domain.SampleRecord])
			if !ok {
				return fmt.Errorf("property %s not wired", PropBarcodedSamples)
			}
			samples, err := node.Value(ctx)
			if err != nil {
				return err
			}
			if len(samples) == 0 {
				return nil
			}
			return ev.collab.Samples.UpdateSampleBarcodes(ctx, samples)
		},
	}
}

// locationTransferStep records the plate's move to the configured picked
// location, attributed to the robot rather than the operator.
func locationTransferStep() Step {
	return Step{
		Name: StepLocationTransfer,
		Run: func(ctx context.Context, ev *PlateEvent) error {
			barcode, ok := ev.graph.Node(PropPlateBarcode).(*Property[string])
			if !ok {
				return fmt.Errorf("property %s not wired", PropPlateBarcode)
			}
			serial, ok := ev.graph.Node(PropRobotSerialNumber).(*Property[string])
			if !ok {
				return fmt.Errorf("property %s not wired", PropRobotSerialNumber)
			}
			bc, err := barcode.Value(ctx)
			if err != nil {
				return err
			}
			sn, err := serial.Value(ctx)
			if err != nil {
				return err
			}
			return ev.collab.Locations.RecordTransfer(ctx, []string{bc}, ev.cfg.PickedLocation, sn)
		},
	}
}
