// Command registry-check constructs every automation system registry with
// inert collaborators and reports wiring failures. Run it in CI to catch
// missing graph inputs, duplicate event types, and cycles before deploy.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"plateops/internal/core"
)

var exitFunc = os.Exit

// main runs the command-line interface using the program arguments and exits
// the process with the status code returned by cli.
func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("registry-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "list event types per vendor")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	systems, err := buildSystems(core.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(stderr, "Registry check failed: %v\n", err)
		return 1
	}

	if *verbose {
		for _, system := range systems {
			types := system.EventTypes()
			sort.Strings(types)
			fmt.Fprintf(stdout, "%s:\n", system.Vendor())
			for _, eventType := range types {
				fmt.Fprintf(stdout, "  %s\n", eventType)
			}
		}
	}
	fmt.Fprintln(stdout, "Registry check passed.")
	return 0
}

// buildSystems constructs every known vendor registry. Collaborators are left
// zero-valued; construction only exercises wiring, never external calls.
func buildSystems(cfg core.Config) ([]*core.AutomationSystem, error) {
	var collab core.Collaborators
	beckman, err := core.NewBeckmanSystem(cfg, collab)
	if err != nil {
		return nil, fmt.Errorf("beckman: %w", err)
	}
	biosero, err := core.NewBioseroSystem(cfg, collab)
	if err != nil {
		return nil, fmt.Errorf("biosero: %w", err)
	}
	return []*core.AutomationSystem{beckman, biosero}, nil
}
