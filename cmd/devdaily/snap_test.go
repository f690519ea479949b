package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hempun10/devdaily-sub001/internal"
)

func TestSnapCmd(t *testing.T) {
	uc, st := newJournalApp(t)
	chdir(t, initWorkRepo(t))

	out, err := runCmd(t, uc, "snap", "-m", "wip on sessions", "-t", "Deep-Work")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Captured") {
		t.Errorf("output = %q", out)
	}

	stored, err := st.Get(context.Background(), internal.DateKeyOf(time.Now()), "acme-api")
	if err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if stored.Notes != "wip on sessions" {
		t.Errorf("notes = %q", stored.Notes)
	}
	if !hasTag(stored.Tags, "deep-work") {
		t.Errorf("tags = %v, want deep-work", stored.Tags)
	}
	if len(stored.TodayCommits) != 1 {
		t.Errorf("commits = %+v", stored.TodayCommits)
	}
}

func TestSnapCmdLight(t *testing.T) {
	uc, st := newJournalApp(t)
	chdir(t, initWorkRepo(t))

	if _, err := runCmd(t, uc, "snap", "--light"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	stored, err := st.Get(context.Background(), internal.DateKeyOf(time.Now()), "acme-api")
	if err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if stored.DiffStats != nil {
		t.Error("light snap should not collect diff stats")
	}
}

func TestSnapCmdExplicitDate(t *testing.T) {
	uc, st := newJournalApp(t)
	chdir(t, initWorkRepo(t))

	if _, err := runCmd(t, uc, "snap", "--date", "2026-02-10"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := st.Get(context.Background(), "2026-02-10", "acme-api"); err != nil {
		t.Errorf("record under explicit date: %v", err)
	}

	if _, err := runCmd(t, uc, "snap", "--date", "02/10/2026"); err == nil {
		t.Error("expected error for a malformed date")
	}
}

func TestSnapCmdJSON(t *testing.T) {
	uc, _ := newJournalApp(t)
	chdir(t, initWorkRepo(t))

	out, err := runCmd(t, uc, "snap", "--json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, `"projectId": "acme-api"`) {
		t.Errorf("output missing projectId: %q", out)
	}
	if !strings.Contains(out, `"merged": false`) {
		t.Errorf("output missing merged flag: %q", out)
	}
}

func TestSnapCmdOutsideRepo(t *testing.T) {
	uc, _ := newJournalApp(t)
	chdir(t, t.TempDir())

	if _, err := runCmd(t, uc, "snap"); err == nil {
		t.Fatal("expected error outside a repository")
	}
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
