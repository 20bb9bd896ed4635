package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestCLIPasses(t *testing.T) {
	t.Setenv("PLATEOPS_ROBOTS", "BKRB0001=uuid-1")
	var stdout, stderr bytes.Buffer
	if code := cli(nil, &stdout, &stderr); code != 0 {
		t.Fatalf("cli returned %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Registry check passed.") {
		t.Fatalf("stdout = %q", stdout.String())
	}
}

func TestCLIVerboseListsEventTypes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-v"}, &stdout, &stderr); code != 0 {
		t.Fatalf("cli returned %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"beckman:", "biosero:", "source_completed", "destination_created"} {
		if !strings.Contains(out, want) {
			t.Fatalf("stdout missing %q: %s", want, out)
		}
	}
}

func TestCLIRejectsBadFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-nope"}, &stdout, &stderr); code != 2 {
		t.Fatalf("cli returned %d, want 2", code)
	}
}
