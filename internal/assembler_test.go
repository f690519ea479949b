package internal

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"
)

type fakeFacts struct {
	root        string
	remote      string
	branch      string
	today       []JournalCommit
	recent      []JournalCommit
	branches    []BranchStatus
	uncommitted []string
	stats       *DiffStats

	commitsErr  error
	branchesErr error
	statsErr    error

	branchListCalls int
}

func (f *fakeFacts) RootDir() string { return f.root }

func (f *fakeFacts) RemoteURL() (string, error) {
	if f.remote == "" {
		return "", errors.New("no remote")
	}
	return f.remote, nil
}

func (f *fakeFacts) CurrentBranch(ctx context.Context) (string, error) {
	return f.branch, nil
}

func (f *fakeFacts) CommitsInRange(ctx context.Context, since, until time.Time) ([]JournalCommit, error) {
	if f.commitsErr != nil {
		return nil, f.commitsErr
	}
	// the day window is 24h; anything wider is the lookback query
	if until.Sub(since) > 24*time.Hour {
		return f.recent, nil
	}
	return f.today, nil
}

func (f *fakeFacts) ChangedFiles(ctx context.Context, base, head string) ([]string, error) {
	return nil, nil
}

func (f *fakeFacts) DiffStats(ctx context.Context, base, head string) (*DiffStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeFacts) BranchList(ctx context.Context) ([]BranchStatus, error) {
	f.branchListCalls++
	if f.branchesErr != nil {
		return nil, f.branchesErr
	}
	return f.branches, nil
}

func (f *fakeFacts) UncommittedFiles(ctx context.Context) ([]string, error) {
	return f.uncommitted, nil
}

type fakePRs struct {
	open   []PRSnapshot
	merged []PRSnapshot
	err    error
	calls  int
}

func (f *fakePRs) ListMyOpenPRs(ctx context.Context, owner, repo string) ([]PRSnapshot, error) {
	f.calls++
	return f.open, f.err
}

func (f *fakePRs) ListMyMergedPRsSince(ctx context.Context, owner, repo string, since time.Time) ([]PRSnapshot, error) {
	f.calls++
	return f.merged, f.err
}

type fakeTickets struct {
	known map[string]TicketSnapshot
	err   error
	calls int
}

func (f *fakeTickets) LookupTickets(ctx context.Context, ids []string) ([]TicketSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]TicketSnapshot, 0, len(ids))
	for _, id := range ids {
		if ticket, ok := f.known[id]; ok {
			out = append(out, ticket)
		} else {
			out = append(out, TicketSnapshot{ID: id})
		}
	}
	return out, nil
}

func workdayFacts() *fakeFacts {
	at := time.Date(2026, 2, 10, 10, 30, 0, 0, time.Local)
	return &fakeFacts{
		root:   "/home/dev/api",
		remote: "git@github.com:acme/api.git",
		branch: "feature/ENG-123-login",
		today: []JournalCommit{
			{Hash: "aaa111", ShortHash: "aaa111", Message: "ENG-123 fix login redirect", Date: at, Files: []string{"src/auth.ts", "src/auth_test.ts"}},
			{Hash: "bbb222", ShortHash: "bbb222", Message: "tidy session store", Date: at.Add(2 * time.Hour), Files: []string{"src/auth.ts"}},
		},
		recent: []JournalCommit{
			{Hash: "999fff", ShortHash: "999fff", Message: "yesterday work", Date: at.AddDate(0, 0, -1)},
		},
		branches: []BranchStatus{
			{Name: "feature/ENG-123-login", LastCommitDate: at},
			{Name: "main", LastCommitDate: at.AddDate(0, 0, -2)},
		},
		uncommitted: []string{"src/wip.ts"},
		stats:       &DiffStats{FilesChanged: 3, Insertions: 140, Deletions: 30},
	}
}

func TestAssembleFullSnapshot(t *testing.T) {
	facts := workdayFacts()
	prs := &fakePRs{
		open:   []PRSnapshot{{Number: 42, Title: "Fix login", State: PROpen}},
		merged: []PRSnapshot{{Number: 40, Title: "Session cleanup", State: PRMerged}},
	}
	tickets := &fakeTickets{known: map[string]TicketSnapshot{
		"ENG-123": {ID: "ENG-123", Title: "Login bug", Status: "In Progress", Type: "started"},
	}}

	asm := NewAssembler(facts, prs, tickets, DefaultConfig())
	out, err := asm.Assemble(context.Background(), AssembleOptions{Date: "2026-02-10", Notes: "good day"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", out.Warnings)
	}

	snap := out.Snapshot
	if snap.Date != "2026-02-10" {
		t.Errorf("date = %s", snap.Date)
	}
	if snap.ProjectID != "acme-api" {
		t.Errorf("project = %q, want acme-api", snap.ProjectID)
	}
	if snap.CurrentBranch != "feature/ENG-123-login" {
		t.Errorf("branch = %q", snap.CurrentBranch)
	}
	if len(snap.TodayCommits) != 2 || len(snap.RecentCommits) != 1 {
		t.Errorf("commits = %d today / %d recent", len(snap.TodayCommits), len(snap.RecentCommits))
	}
	if snap.Notes != "good day" {
		t.Errorf("notes = %q", snap.Notes)
	}

	// current branch marked with worktree state
	if len(snap.ActiveBranches) != 2 {
		t.Fatalf("branches = %d", len(snap.ActiveBranches))
	}
	for _, b := range snap.ActiveBranches {
		if b.Name == "feature/ENG-123-login" && !b.HasChanges {
			t.Error("current branch not marked as having changes")
		}
		if b.Name == "main" && b.HasChanges {
			t.Error("other branch wrongly marked as having changes")
		}
	}

	// most frequently touched file first
	if len(snap.TopChangedFiles) == 0 || snap.TopChangedFiles[0].Path != "src/auth.ts" {
		t.Errorf("top files = %+v", snap.TopChangedFiles)
	}
	if snap.TopChangedFiles[0].Frequency != 2 {
		t.Errorf("auth.ts frequency = %d, want 2", snap.TopChangedFiles[0].Frequency)
	}
	if len(snap.Categories) == 0 {
		t.Error("expected categories")
	}
	if snap.DiffStats == nil || snap.DiffStats.Insertions != 140 {
		t.Errorf("diff stats = %+v", snap.DiffStats)
	}

	// open and merged PRs combined, ordered by number
	if len(snap.PullRequests) != 2 {
		t.Fatalf("prs = %+v", snap.PullRequests)
	}
	if snap.PullRequests[0].Number != 40 || snap.PullRequests[1].Number != 42 {
		t.Errorf("pr order = %d, %d", snap.PullRequests[0].Number, snap.PullRequests[1].Number)
	}

	// branch and commit ids enriched through the tracker
	if len(snap.Tickets) != 1 {
		t.Fatalf("tickets = %+v", snap.Tickets)
	}
	if snap.Tickets[0].Title != "Login bug" {
		t.Errorf("ticket not enriched: %+v", snap.Tickets[0])
	}
}

func TestAssembleLightSkipsExpensiveSources(t *testing.T) {
	facts := workdayFacts()
	prs := &fakePRs{open: []PRSnapshot{{Number: 42, State: PROpen}}}
	tickets := &fakeTickets{known: map[string]TicketSnapshot{"ENG-123": {ID: "ENG-123", Title: "Login bug"}}}

	asm := NewAssembler(facts, prs, tickets, DefaultConfig())
	out, err := asm.Assemble(context.Background(), AssembleOptions{Date: "2026-02-10", Light: true})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if facts.branchListCalls != 0 {
		t.Errorf("light mode enumerated branches %d times", facts.branchListCalls)
	}
	if prs.calls != 0 {
		t.Errorf("light mode fetched PRs %d times", prs.calls)
	}
	if tickets.calls != 0 {
		t.Errorf("light mode hit the tracker %d times", tickets.calls)
	}

	snap := out.Snapshot
	// only the current branch, with worktree state
	if len(snap.ActiveBranches) != 1 || snap.ActiveBranches[0].Name != "feature/ENG-123-login" {
		t.Errorf("branches = %+v", snap.ActiveBranches)
	}
	if !snap.ActiveBranches[0].HasChanges {
		t.Error("light branch not marked dirty")
	}
	if snap.DiffStats != nil {
		t.Error("light mode computed diff stats")
	}

	// ticket ids still extracted, just not enriched
	if len(snap.Tickets) != 1 || snap.Tickets[0].ID != "ENG-123" || snap.Tickets[0].Title != "" {
		t.Errorf("tickets = %+v", snap.Tickets)
	}
}

func TestAssemblePartialFailure(t *testing.T) {
	facts := workdayFacts()
	facts.commitsErr = errors.New("object store hosed")
	facts.statsErr = errors.New("bad revision")

	asm := NewAssembler(facts, nil, nil, DefaultConfig())
	out, err := asm.Assemble(context.Background(), AssembleOptions{Date: "2026-02-10"})
	if err != nil {
		t.Fatalf("partial failure became fatal: %v", err)
	}

	if len(out.Warnings) == 0 {
		t.Fatal("expected warnings")
	}
	joined := strings.Join(out.Warnings, "; ")
	if !strings.Contains(joined, "today commits") {
		t.Errorf("warnings = %v, missing commit source", out.Warnings)
	}

	// the rest of the snapshot still came through
	if out.Snapshot.CurrentBranch != "feature/ENG-123-login" {
		t.Errorf("branch = %q", out.Snapshot.CurrentBranch)
	}
	if len(out.Snapshot.ActiveBranches) != 2 {
		t.Errorf("branches = %d", len(out.Snapshot.ActiveBranches))
	}
}

func TestAssembleNoRemote(t *testing.T) {
	facts := workdayFacts()
	facts.remote = ""
	facts.root = "/home/dev/Scratch Pad"

	asm := NewAssembler(facts, nil, nil, DefaultConfig())
	out, err := asm.Assemble(context.Background(), AssembleOptions{Date: "2026-02-10"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if out.Snapshot.ProjectID != "scratch-pad" {
		t.Errorf("project = %q, want directory-derived scratch-pad", out.Snapshot.ProjectID)
	}
	if out.Snapshot.RemoteURL != "" {
		t.Errorf("remote = %q", out.Snapshot.RemoteURL)
	}
}

func TestAssembleProjectOverride(t *testing.T) {
	asm := NewAssembler(workdayFacts(), nil, nil, DefaultConfig())
	out, err := asm.Assemble(context.Background(), AssembleOptions{Date: "2026-02-10", ProjectID: "My Fork"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if out.Snapshot.ProjectID != "my-fork" {
		t.Errorf("project = %q", out.Snapshot.ProjectID)
	}
}

func TestAssembleBadDate(t *testing.T) {
	asm := NewAssembler(workdayFacts(), nil, nil, DefaultConfig())
	if _, err := asm.Assemble(context.Background(), AssembleOptions{Date: "next tuesday"}); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestAssembleSkipFlags(t *testing.T) {
	prs := &fakePRs{open: []PRSnapshot{{Number: 1, State: PROpen}}}
	tickets := &fakeTickets{known: map[string]TicketSnapshot{}}

	asm := NewAssembler(workdayFacts(), prs, tickets, DefaultConfig())
	out, err := asm.Assemble(context.Background(), AssembleOptions{Date: "2026-02-10", SkipPRs: true, SkipTickets: true})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if prs.calls != 0 {
		t.Errorf("SkipPRs still called the provider %d times", prs.calls)
	}
	if tickets.calls != 0 {
		t.Errorf("SkipTickets still called the tracker %d times", tickets.calls)
	}
	// ids are local string work, they stay
	if len(out.Snapshot.Tickets) != 1 || out.Snapshot.Tickets[0].ID != "ENG-123" {
		t.Errorf("tickets = %+v", out.Snapshot.Tickets)
	}
}

func TestAssembleTrackerFallback(t *testing.T) {
	tickets := &fakeTickets{err: errors.New("tracker down")}

	asm := NewAssembler(workdayFacts(), nil, tickets, DefaultConfig())
	out, err := asm.Assemble(context.Background(), AssembleOptions{Date: "2026-02-10"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	// extraction survives the dead tracker
	if len(out.Snapshot.Tickets) != 1 || out.Snapshot.Tickets[0].ID != "ENG-123" {
		t.Errorf("tickets = %+v", out.Snapshot.Tickets)
	}
	if !strings.Contains(strings.Join(out.Warnings, ";"), "tickets") {
		t.Errorf("warnings = %v, missing tickets source", out.Warnings)
	}
}

func TestTopChangedFiles(t *testing.T) {
	commits := []JournalCommit{
		{Hash: "a", Files: []string{"x.go", "y.go"}},
		{Hash: "b", Files: []string{"x.go"}},
		{Hash: "c", Files: []string{"x.go", "z.go"}},
	}
	got := topChangedFiles(commits)
	if len(got) != 3 {
		t.Fatalf("expected 3 files, got %d", len(got))
	}
	if got[0].Path != "x.go" || got[0].Frequency != 3 {
		t.Errorf("top = %+v", got[0])
	}
	// ties break alphabetically
	if got[1].Path != "y.go" || got[2].Path != "z.go" {
		t.Errorf("tie order = %s, %s", got[1].Path, got[2].Path)
	}

	if topChangedFiles(nil) != nil {
		t.Error("no commits should yield nil")
	}
}

func TestCategorize(t *testing.T) {
	commits := []JournalCommit{
		{Hash: "a", Files: []string{"internal/auth.go", "internal/auth_test.go", "docs/auth.md", "web/login.tsx"}},
	}
	got := categorize(commits)
	if len(got) != 4 {
		t.Fatalf("categories = %+v", got)
	}

	byName := map[string]int{}
	total := 0
	for _, c := range got {
		byName[c.Name] = c.Percentage
		total += c.Percentage
	}
	want := map[string]int{"backend": 25, "tests": 25, "docs": 25, "frontend": 25}
	if !reflect.DeepEqual(byName, want) {
		t.Errorf("categories = %v, want %v", byName, want)
	}
	if total > 100 {
		t.Errorf("percentages sum to %d", total)
	}
}

func TestClassifyFile(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"internal/store_test.go", "tests"},
		{"src/__tests__/auth.spec.ts", "tests"},
		{"docs/setup.md", "docs"},
		{"Dockerfile", "infra"},
		{".github/workflows/ci.yaml", "infra"},
		{"web/src/App.tsx", "frontend"},
		{"styles/main.css", "frontend"},
		{"internal/store.go", "backend"},
		{"lib/payments.rb", "backend"},
		{"config.toml", "config"},
		{"go.mod", "config"},
		{"LICENSE", "other"},
	}
	for _, tt := range tests {
		if got := classifyFile(tt.path); got != tt.want {
			t.Errorf("classifyFile(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDayWindow(t *testing.T) {
	start, end := dayWindow("2026-02-10")
	if start.Hour() != 0 || start.Minute() != 0 {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(start.AddDate(0, 0, 1)) {
		t.Errorf("end = %v, want start+24h", end)
	}
	commitAt := time.Date(2026, 2, 10, 23, 30, 0, 0, time.Local)
	if commitAt.Before(start) || !commitAt.Before(end) {
		t.Error("late-evening commit fell outside the day window")
	}

	sortable := []time.Time{end, start}
	sort.Slice(sortable, func(i, j int) bool { return sortable[i].Before(sortable[j]) })
	if !sortable[0].Equal(start) {
		t.Error("window inverted")
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("subject\n\nbody text"); got != "subject" {
		t.Errorf("firstLine = %q", got)
	}
	if got := firstLine("  padded  "); got != "padded" {
		t.Errorf("firstLine = %q", got)
	}
}
