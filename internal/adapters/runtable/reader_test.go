package runtable

import (
	"testing"

	"plateops/pkg/domain"
)

func TestLatestRunRowsKeepsHighestRun(t *testing.T) {
	rows := []domain.RunRow{
		{ID: 1, RunID: 2, SampleUUID: "old-1", Completed: true},
		{ID: 2, RunID: 3, SampleUUID: "s1", Completed: true},
		{ID: 3, RunID: 3, SampleUUID: "s2", Completed: true},
		{ID: 4, RunID: 1, SampleUUID: "ancient", Completed: true},
	}
	kept := LatestRunRows(rows)
	if len(kept) != 2 {
		t.Fatalf("kept %d rows, want 2: %+v", len(kept), kept)
	}
	for _, row := range kept {
		if row.RunID != 3 {
			t.Fatalf("row from run %d survived: %+v", row.RunID, row)
		}
	}
}

func TestLatestRunRowsDropsIncompleteNonControls(t *testing.T) {
	rows := []domain.RunRow{
		{ID: 1, RunID: 5, SampleUUID: "s1", Completed: true},
		{ID: 2, RunID: 5, SampleUUID: "s2", Completed: false},
		{ID: 3, RunID: 5, Control: true, ControlType: "positive", Completed: false},
	}
	kept := LatestRunRows(rows)
	if len(kept) != 2 {
		t.Fatalf("kept %d rows, want 2: %+v", len(kept), kept)
	}
	if kept[0].SampleUUID != "s1" {
		t.Fatalf("first kept row %+v", kept[0])
	}
	if !kept[1].Control {
		t.Fatalf("incomplete control row should survive: %+v", kept[1])
	}
}

func TestLatestRunRowsEmpty(t *testing.T) {
	if got := LatestRunRows(nil); got != nil {
		t.Fatalf("LatestRunRows(nil) = %v", got)
	}
}
