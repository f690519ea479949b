package main

import (
	"strings"
	"testing"

	"github.com/hempun10/devdaily-sub001/internal"
)

func TestProjectsCmd(t *testing.T) {
	uc, st := newJournalApp(t)
	seedRecord(t, st, internal.NewWorkSnapshot("2026-02-09", "acme-api"))
	seedRecord(t, st, internal.NewWorkSnapshot("2026-02-10", "acme-api"))
	seedRecord(t, st, internal.NewWorkSnapshot("2026-02-10", "side-project"))

	out, err := runCmd(t, uc, "projects")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "acme-api") || !strings.Contains(out, "side-project") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "2 snapshots") {
		t.Errorf("output missing count: %q", out)
	}
}

func TestProjectsCmdEmpty(t *testing.T) {
	uc, _ := newJournalApp(t)

	out, err := runCmd(t, uc, "projects")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Errorf("expected no output, got %q", out)
	}
}
