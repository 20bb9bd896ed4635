package core

import (
	"os"
	"strings"
	"time"
)

// Config carries the engine's startup configuration: robot registries, plate
// filing targets, and processing limits. It is passed explicitly into system
// constructors; nothing reads process-wide state after startup.
type Config struct {
	// Robots maps robot serial numbers to their registered UUIDs.
	Robots map[string]string
	// PlatePurposeUUID is the purpose created destination plates are filed
	// under.
	PlatePurposeUUID string
	// StudyUUID is the study created destination plates belong to.
	StudyUUID string
	// PickedLocation is the named location completed source plates are
	// transferred to.
	PickedLocation string
	// ProcessTimeout bounds one Process call end to end. Zero disables the
	// bound.
	ProcessTimeout time.Duration
}

// ConfigFromEnv builds a Config from process environment.
//
//	PLATEOPS_ROBOTS: comma-separated serial=uuid pairs
//	PLATEOPS_PLATE_PURPOSE_UUID, PLATEOPS_STUDY_UUID
//	PLATEOPS_PICKED_LOCATION (default "heron_picked")
//	PLATEOPS_PROCESS_TIMEOUT: Go duration (default 30s)
func ConfigFromEnv() Config {
	cfg := Config{
		Robots:           parseRobots(os.Getenv("PLATEOPS_ROBOTS")),
		PlatePurposeUUID: os.Getenv("PLATEOPS_PLATE_PURPOSE_UUID"),
		StudyUUID:        os.Getenv("PLATEOPS_STUDY_UUID"),
		PickedLocation:   os.Getenv("PLATEOPS_PICKED_LOCATION"),
		ProcessTimeout:   30 * time.Second,
	}
	if cfg.PickedLocation == "" {
		cfg.PickedLocation = "heron_picked"
	}
	if raw := os.Getenv("PLATEOPS_PROCESS_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.ProcessTimeout = d
		}
	}
	return cfg
}

func parseRobots(raw string) map[string]string {
	robots := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		serial, uuid, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || serial == "" || uuid == "" {
			continue
		}
		robots[serial] = uuid
	}
	return robots
}
