package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindExternal(t *testing.T) {
	tmp := t.TempDir()
	script := filepath.Join(tmp, "devdaily-test")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho ok"), 0755); err != nil {
		t.Fatal(err)
	}

	orig := os.Getenv("PATH")
	t.Setenv("PATH", tmp+":"+orig)

	path, err := findExternal("test")
	if err != nil {
		t.Fatalf("expected to find devdaily-test, got error: %v", err)
	}
	if path != script {
		t.Errorf("expected %s, got %s", script, path)
	}
}

func TestFindExternalNotFound(t *testing.T) {
	_, err := findExternal("nonexistent-command-12345")
	if err == nil {
		t.Fatal("expected error for nonexistent command")
	}
}

func TestListExternalCommands(t *testing.T) {
	tmp := t.TempDir()

	for _, s := range []string{"devdaily-foo", "devdaily-bar"} {
		if err := os.WriteFile(filepath.Join(tmp, s), []byte("#!/bin/sh"), 0755); err != nil {
			t.Fatal(err)
		}
	}
	// non-devdaily script is ignored
	if err := os.WriteFile(filepath.Join(tmp, "other-script"), []byte("#!/bin/sh"), 0755); err != nil {
		t.Fatal(err)
	}

	orig := os.Getenv("PATH")
	t.Setenv("PATH", tmp+":"+orig)

	found := make(map[string]bool)
	for _, c := range listExternalCommands() {
		found[c] = true
	}

	for _, expected := range []string{"foo", "bar"} {
		if !found[expected] {
			t.Errorf("expected to find %q in external commands", expected)
		}
	}
	if found["other-script"] {
		t.Error("non-devdaily script should not be listed")
	}
}

func TestExtractExternalNameNotExecutable(t *testing.T) {
	tmp := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmp, "devdaily-noexec"), []byte("#!/bin/sh"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, _ := os.ReadDir(tmp)
	for _, e := range entries {
		if e.Name() == "devdaily-noexec" {
			if name := extractExternalName(tmp, e); name != "" {
				t.Errorf("expected empty string for non-executable, got %q", name)
			}
			return
		}
	}
	t.Fatal("devdaily-noexec not found in dir entries")
}

func TestBuildExternalEnv(t *testing.T) {
	env := buildExternalEnv("1.0.0")

	var hasVersion, hasBin, hasRoot bool
	for _, e := range env {
		switch {
		case strings.HasPrefix(e, "DEVDAILY_VERSION="):
			hasVersion = true
			if e != "DEVDAILY_VERSION=1.0.0" {
				t.Errorf("unexpected %s", e)
			}
		case strings.HasPrefix(e, "DEVDAILY_BIN="):
			hasBin = true
		case strings.HasPrefix(e, "DEVDAILY_ROOT="):
			hasRoot = true
		}
	}

	if !hasVersion || !hasBin || !hasRoot {
		t.Errorf("env missing entries: version=%v bin=%v root=%v", hasVersion, hasBin, hasRoot)
	}
}
