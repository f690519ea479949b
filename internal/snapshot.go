package internal

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrInvalidDate      = errors.New("invalid date, want YYYY-MM-DD")
	ErrInvalidProject   = errors.New("invalid project id")
	ErrInvalidAge       = errors.New("age must be at least 1 day")
	ErrLockHeld         = errors.New("record is locked by another process")
	ErrNotRepository    = errors.New("not a git repository")
)

const DateLayout = "2006-01-02"

var projectPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// DateKey is one calendar day in YYYY-MM-DD form. Together with a project id
// it identifies exactly one WorkSnapshot.
type DateKey string

func NewDateKey(s string) (DateKey, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateKey(t.Format(DateLayout)), nil
}

func DateKeyOf(t time.Time) DateKey {
	return DateKey(t.Format(DateLayout))
}

func (d DateKey) String() string {
	return string(d)
}

func (d DateKey) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

// Lexicographic order on YYYY-MM-DD is chronological order.
func (d DateKey) Before(other DateKey) bool { return string(d) < string(other) }
func (d DateKey) After(other DateKey) bool  { return string(d) > string(other) }

func ValidateProjectID(id string) error {
	if id == "" || !projectPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidProject, id)
	}
	return nil
}

type BranchStatus struct {
	Name              string    `json:"name"`
	LastCommitHash    string    `json:"lastCommitHash,omitempty"`
	LastCommitMessage string    `json:"lastCommitMessage,omitempty"`
	LastCommitDate    time.Time `json:"lastCommitDate,omitempty"`
	IsAhead           bool      `json:"isAhead,omitempty"`
	HasChanges        bool      `json:"hasChanges,omitempty"`
	UncommittedFiles  []string  `json:"uncommittedFiles,omitempty"`
}

type JournalCommit struct {
	Hash      string    `json:"hash"`
	ShortHash string    `json:"shortHash"`
	Message   string    `json:"message"`
	Author    string    `json:"author,omitempty"`
	Date      time.Time `json:"date"`
	Files     []string  `json:"files,omitempty"`
}

type PRState string

const (
	PROpen   PRState = "open"
	PRClosed PRState = "closed"
	PRMerged PRState = "merged"
)

type PRSnapshot struct {
	Number     int      `json:"number"`
	Title      string   `json:"title"`
	State      PRState  `json:"state"`
	URL        string   `json:"url,omitempty"`
	BaseBranch string   `json:"baseBranch,omitempty"`
	HeadBranch string   `json:"headBranch,omitempty"`
	Labels     []string `json:"labels,omitempty"`
}

type TicketSnapshot struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
	Type   string `json:"type,omitempty"`
}

type Category struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
}

type FileChange struct {
	Path      string `json:"path"`
	Frequency int    `json:"frequency"`
}

type DiffStats struct {
	FilesChanged int `json:"filesChanged"`
	Insertions   int `json:"insertions"`
	Deletions    int `json:"deletions"`
}

const (
	MaxActiveBranches = 30
	MaxTopFiles       = 20
)

// WorkSnapshot is the unit of persistence: one record per (date, projectId).
// Writes to an existing key merge rather than overwrite, so repeated light
// captures through a day accumulate instead of clobbering each other.
type WorkSnapshot struct {
	Date            DateKey          `json:"date"`
	TakenAt         time.Time        `json:"takenAt"`
	ProjectID       string           `json:"projectId"`
	RepoPath        string           `json:"repoPath,omitempty"`
	RemoteURL       string           `json:"remoteUrl,omitempty"`
	CurrentBranch   string           `json:"currentBranch,omitempty"`
	ActiveBranches  []BranchStatus   `json:"activeBranches,omitempty"`
	TodayCommits    []JournalCommit  `json:"todayCommits,omitempty"`
	RecentCommits   []JournalCommit  `json:"recentCommits,omitempty"`
	PullRequests    []PRSnapshot     `json:"pullRequests,omitempty"`
	Tickets         []TicketSnapshot `json:"tickets,omitempty"`
	Categories      []Category       `json:"categories,omitempty"`
	TopChangedFiles []FileChange     `json:"topChangedFiles,omitempty"`
	DiffStats       *DiffStats       `json:"diffStats,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
}

func NewWorkSnapshot(date DateKey, projectID string) *WorkSnapshot {
	return &WorkSnapshot{
		Date:      date,
		TakenAt:   time.Now().UTC(),
		ProjectID: projectID,
	}
}

func (s *WorkSnapshot) Validate() error {
	if _, err := NewDateKey(string(s.Date)); err != nil {
		return err
	}
	return ValidateProjectID(s.ProjectID)
}

// NormalizeTags lowercases, trims, dedupes and sorts so that Tags behaves as
// a set with stable output.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// ProjectSummary is derived on demand, never stored.
type ProjectSummary struct {
	ProjectID        string  `json:"projectId"`
	RepoPath         string  `json:"repoPath,omitempty"`
	LastSnapshotDate DateKey `json:"lastSnapshotDate"`
	SnapshotCount    int     `json:"snapshotCount"`
}

type JournalStats struct {
	TotalSnapshots   int     `json:"totalSnapshots"`
	DistinctDates    int     `json:"distinctDates"`
	DistinctProjects int     `json:"distinctProjects"`
	OldestDate       DateKey `json:"oldestDate,omitempty"`
	NewestDate       DateKey `json:"newestDate,omitempty"`
	TotalSizeBytes   int64   `json:"totalSizeBytes"`
}

type PruneResult struct {
	Removed    int       `json:"removed"`
	Dates      []DateKey `json:"dates,omitempty"`
	MaxAgeDays int       `json:"maxAgeDays"`
}

// RangeResult carries the snapshots of a scan plus warnings for records that
// could not be decoded. A corrupt file never fails the whole range.
type RangeResult struct {
	Snapshots []*WorkSnapshot `json:"snapshots"`
	Warnings  []string        `json:"warnings,omitempty"`
}

type SnapshotRepository interface {
	Save(ctx context.Context, snap *WorkSnapshot) (merged bool, err error)
	Get(ctx context.Context, date DateKey, projectID string) (*WorkSnapshot, error)
	GetRange(ctx context.Context, projectID string, from, to DateKey) (*RangeResult, error)
	GetRecent(ctx context.Context, days int) (*RangeResult, error)
	ListProjects(ctx context.Context) ([]ProjectSummary, error)
	Stats(ctx context.Context) (*JournalStats, error)
	Prune(ctx context.Context, maxAgeDays int) (*PruneResult, error)
}
