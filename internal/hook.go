package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	HookMarker     = "# devdaily: managed hook"
	PostCommitHook = "post-commit"
)

// HookScript returns the shell shim content for a given hook type. The shim
// hands off to the hidden hook command, which captures a light snapshot and
// never fails the invoking git command.
func HookScript(hookType string) string {
	return fmt.Sprintf("#!/bin/sh\n%s\nexec devdaily hook run %s \"$@\"\n", HookMarker, hookType)
}

// IsManagedHook checks if the given script content was written by devdaily.
func IsManagedHook(content string) bool {
	return strings.Contains(content, HookMarker)
}

func hookPath(gitDir, hookType string) string {
	return filepath.Join(gitDir, "hooks", hookType)
}

// InstallHook writes the managed shim. A hook some other tool owns is left
// untouched and reported instead of overwritten; reinstalling over our own
// shim is fine.
func InstallHook(gitDir, hookType string) error {
	path := hookPath(gitDir, hookType)

	if data, err := os.ReadFile(path); err == nil && !IsManagedHook(string(data)) {
		return fmt.Errorf("existing %s hook was not installed by devdaily, refusing to overwrite %s", hookType, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create hooks dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(HookScript(hookType)), 0755); err != nil {
		return fmt.Errorf("write hook: %w", err)
	}
	return nil
}

// UninstallHook removes the managed shim. It reports whether anything was
// removed; a missing hook is not an error, a foreign one is.
func UninstallHook(gitDir, hookType string) (bool, error) {
	path := hookPath(gitDir, hookType)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read hook: %w", err)
	}
	if !IsManagedHook(string(data)) {
		return false, fmt.Errorf("%s hook at %s is not managed by devdaily", hookType, path)
	}

	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("remove hook: %w", err)
	}
	return true, nil
}
