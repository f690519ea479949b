package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const (
	snapshotExt    = ".json"
	lockSuffix     = ".lock"
	tmpSuffix      = ".tmp"
	lockAttempts   = 5
	lockRetryWait  = 50 * time.Millisecond
	lockStaleAfter = 10 * time.Second
)

// Store persists one JSON file per record under the journal root, laid out
// as <projectId>/<YYYY-MM-DD>.json. Point lookup is a direct path, a range
// scan filters lexicographically ordered date filenames, and project
// enumeration lists subdirectories.
//
// Writes for the same key are serialized across processes with a .lock file
// created O_EXCL next to the record, the way git guards its index.
type Store struct {
	fs  billy.Filesystem
	now func() time.Time
}

func NewStore(fs billy.Filesystem) *Store {
	return &Store{fs: fs, now: time.Now}
}

func (s *Store) recordPath(date DateKey, projectID string) string {
	return s.fs.Join(projectID, string(date)+snapshotExt)
}

// Save merges snap into any existing record for (date, projectId) and writes
// the result. Derived tags are applied here so that every saved record
// carries them regardless of which path produced it. The returned bool
// reports whether an existing record was merged into.
func (s *Store) Save(ctx context.Context, snap *WorkSnapshot) (bool, error) {
	if err := snap.Validate(); err != nil {
		return false, err
	}

	tagged := *snap
	tagged.Tags = NormalizeTags(append(append([]string{}, snap.Tags...), AutoTag(snap)...))
	snap = &tagged

	if err := s.fs.MkdirAll(snap.ProjectID, 0755); err != nil {
		return false, fmt.Errorf("create project dir: %w", err)
	}

	path := s.recordPath(snap.Date, snap.ProjectID)
	unlock, err := s.acquireLock(ctx, path)
	if err != nil {
		return false, err
	}
	defer unlock()

	merged := false
	existing, err := s.read(path)
	switch {
	case err == nil:
		snap = MergeSnapshots(existing, snap)
		merged = true
	case errors.Is(err, ErrSnapshotNotFound):
		// fresh key
	default:
		// unreadable record: the incoming snapshot replaces it
	}

	if err := s.write(path, snap); err != nil {
		return false, err
	}
	return merged, nil
}

func (s *Store) Get(ctx context.Context, date DateKey, projectID string) (*WorkSnapshot, error) {
	if _, err := NewDateKey(string(date)); err != nil {
		return nil, err
	}
	if err := ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	return s.read(s.recordPath(date, projectID))
}

// GetRange returns every snapshot with from <= date <= to, ordered by date
// then project. projectID "" means all projects. A record that fails to
// decode is skipped with a warning rather than failing the scan.
func (s *Store) GetRange(ctx context.Context, projectID string, from, to DateKey) (*RangeResult, error) {
	if _, err := NewDateKey(string(from)); err != nil {
		return nil, err
	}
	if _, err := NewDateKey(string(to)); err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: range start %s after end %s", ErrInvalidDate, from, to)
	}
	if projectID != "" {
		if err := ValidateProjectID(projectID); err != nil {
			return nil, err
		}
	}

	projects, err := s.projectDirs(projectID)
	if err != nil {
		return nil, err
	}

	result := &RangeResult{}
	for _, proj := range projects {
		entries, err := s.fs.ReadDir(proj)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("scan project %s: %w", proj, err)
		}
		for _, entry := range entries {
			date, ok := recordDate(entry.Name())
			if !ok || date.Before(from) || date.After(to) {
				continue
			}
			snap, err := s.read(s.fs.Join(proj, entry.Name()))
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("skipping %s/%s: %v", proj, entry.Name(), err))
				continue
			}
			result.Snapshots = append(result.Snapshots, snap)
		}
	}

	sort.Slice(result.Snapshots, func(i, j int) bool {
		a, b := result.Snapshots[i], result.Snapshots[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.ProjectID < b.ProjectID
	})
	return result, nil
}

// GetRecent is GetRange anchored at today: days=1 means today only.
func (s *Store) GetRecent(ctx context.Context, days int) (*RangeResult, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAge, days)
	}
	today := s.now()
	from := DateKeyOf(today.AddDate(0, 0, -(days - 1)))
	return s.GetRange(ctx, "", from, DateKeyOf(today))
}

func (s *Store) ListProjects(ctx context.Context) ([]ProjectSummary, error) {
	projects, err := s.projectDirs("")
	if err != nil {
		return nil, err
	}

	summaries := make([]ProjectSummary, 0, len(projects))
	for _, proj := range projects {
		entries, err := s.fs.ReadDir(proj)
		if err != nil {
			continue
		}
		sum := ProjectSummary{ProjectID: proj}
		for _, entry := range entries {
			date, ok := recordDate(entry.Name())
			if !ok {
				continue
			}
			sum.SnapshotCount++
			if date.After(sum.LastSnapshotDate) {
				sum.LastSnapshotDate = date
			}
		}
		if sum.SnapshotCount == 0 {
			continue
		}
		if snap, err := s.read(s.recordPath(sum.LastSnapshotDate, proj)); err == nil {
			sum.RepoPath = snap.RepoPath
		}
		summaries = append(summaries, sum)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.LastSnapshotDate != b.LastSnapshotDate {
			return a.LastSnapshotDate.After(b.LastSnapshotDate)
		}
		return a.ProjectID < b.ProjectID
	})
	return summaries, nil
}

func (s *Store) Stats(ctx context.Context) (*JournalStats, error) {
	projects, err := s.projectDirs("")
	if err != nil {
		return nil, err
	}

	stats := &JournalStats{}
	dates := make(map[DateKey]bool)
	for _, proj := range projects {
		entries, err := s.fs.ReadDir(proj)
		if err != nil {
			continue
		}
		seen := false
		for _, entry := range entries {
			date, ok := recordDate(entry.Name())
			if !ok {
				continue
			}
			seen = true
			stats.TotalSnapshots++
			stats.TotalSizeBytes += entry.Size()
			dates[date] = true
			if stats.OldestDate == "" || date.Before(stats.OldestDate) {
				stats.OldestDate = date
			}
			if date.After(stats.NewestDate) {
				stats.NewestDate = date
			}
		}
		if seen {
			stats.DistinctProjects++
		}
	}
	stats.DistinctDates = len(dates)
	return stats, nil
}

// Prune removes every record dated strictly before today minus maxAgeDays.
// A record dated exactly on the boundary survives. Irreversible.
func (s *Store) Prune(ctx context.Context, maxAgeDays int) (*PruneResult, error) {
	if maxAgeDays < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAge, maxAgeDays)
	}
	cutoff := DateKeyOf(s.now().AddDate(0, 0, -maxAgeDays))

	projects, err := s.projectDirs("")
	if err != nil {
		return nil, err
	}

	result := &PruneResult{MaxAgeDays: maxAgeDays}
	removedDates := make(map[DateKey]bool)
	for _, proj := range projects {
		entries, err := s.fs.ReadDir(proj)
		if err != nil {
			continue
		}
		remaining := 0
		for _, entry := range entries {
			date, ok := recordDate(entry.Name())
			if !ok {
				continue
			}
			if !date.Before(cutoff) {
				remaining++
				continue
			}
			if err := s.fs.Remove(s.fs.Join(proj, entry.Name())); err != nil {
				return result, fmt.Errorf("remove %s/%s: %w", proj, entry.Name(), err)
			}
			result.Removed++
			removedDates[date] = true
		}
		if remaining == 0 {
			_ = s.fs.Remove(proj)
		}
	}

	for date := range removedDates {
		result.Dates = append(result.Dates, date)
	}
	sort.Slice(result.Dates, func(i, j int) bool { return result.Dates[i].Before(result.Dates[j]) })
	return result, nil
}

func (s *Store) projectDirs(only string) ([]string, error) {
	if only != "" {
		return []string{only}, nil
	}
	entries, err := s.fs.ReadDir(".")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan journal dir: %w", err)
	}
	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

func recordDate(filename string) (DateKey, bool) {
	if !strings.HasSuffix(filename, snapshotExt) {
		return "", false
	}
	date, err := NewDateKey(strings.TrimSuffix(filename, snapshotExt))
	if err != nil {
		return "", false
	}
	return date, true
}

func (s *Store) read(path string) (*WorkSnapshot, error) {
	data, err := util.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap WorkSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// write lands the record through a rename so a crash never leaves a
// half-written file behind.
func (s *Store) write(path string, snap *WorkSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')

	tmp := path + tmpSuffix
	if err := util.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize snapshot: %w", err)
	}
	return nil
}

// acquireLock serializes same-key writes across processes: create the lock
// file O_EXCL, retry with growing backoff while another holder exists, break
// locks left behind by crashed processes, and give up with ErrLockHeld once
// attempts are exhausted. The lock body carries its acquisition time so
// staleness survives filesystems without reliable mtimes.
func (s *Store) acquireLock(ctx context.Context, recordPath string) (func(), error) {
	lockPath := recordPath + lockSuffix
	for attempt := 0; attempt < lockAttempts; attempt++ {
		if attempt > 0 {
			wait := lockRetryWait << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		f, err := s.fs.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			_, werr := f.Write([]byte(s.now().UTC().Format(time.RFC3339Nano)))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = s.fs.Remove(lockPath)
				return nil, fmt.Errorf("write lock: %w", errors.Join(werr, cerr))
			}
			return func() { _ = s.fs.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock: %w", err)
		}

		if s.lockIsStale(lockPath) {
			_ = s.fs.Remove(lockPath)
		}
	}
	return nil, fmt.Errorf("%s: %w", recordPath, ErrLockHeld)
}

func (s *Store) lockIsStale(lockPath string) bool {
	data, err := util.ReadFile(s.fs, lockPath)
	if err != nil {
		return false
	}
	acquired, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(data)))
	if err != nil {
		return true
	}
	return s.now().Sub(acquired) > lockStaleAfter
}
