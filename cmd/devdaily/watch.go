package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewWatchCmd(snapUC *internal.SnapUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the repository and capture on every commit",
		Long:  `Watch the current repository's .git directory and capture a light snapshot whenever a commit lands. An alternative to installing the hook.`,
		Args:  cobra.NoArgs,
		RunE:  makeWatchRunner(snapUC),
	}

	cmd.Flags().Duration("debounce", 2*time.Second, "Debounce window for batching git activity")
	return cmd
}

func makeWatchRunner(snapUC *internal.SnapUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")

		root, gitDir, err := internal.FindGitDir(".")
		if err != nil {
			return fmt.Errorf("watch needs a repository: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := addGitWatchPaths(watcher, gitDir); err != nil {
			return fmt.Errorf("add watch dirs: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for commits...\n", root)

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		pending := false

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if shouldIgnoreGitEvent(event) {
					continue
				}
				if !pending {
					timer.Reset(debounce)
					pending = true
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
			case <-timer.C:
				pending = false
				out, snapErr := snapUC.Execute(cmd.Context(), internal.SnapInput{
					Dir: root, Light: true,
				})
				if snapErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "capture failed: %v\n", snapErr)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %d commits today\n",
					out.Snapshot.Date, out.Snapshot.ProjectID, len(out.Snapshot.TodayCommits))
			}
		}
	}
}

// addGitWatchPaths watches the places a commit touches. fsnotify is not
// recursive, so the refs directory is added on its own.
func addGitWatchPaths(watcher *fsnotify.Watcher, gitDir string) error {
	if err := watcher.Add(gitDir); err != nil {
		return err
	}

	// refs/heads may not exist yet in a fresh repository
	_ = watcher.Add(filepath.Join(gitDir, "refs", "heads"))
	return nil
}

func shouldIgnoreGitEvent(event fsnotify.Event) bool {
	// git writes refs through .lock files and renames them into place
	if strings.HasSuffix(event.Name, ".lock") {
		return true
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return true
	}

	return false
}
