package internal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

type AssembleOptions struct {
	Date        string // YYYY-MM-DD, empty means today
	ProjectID   string // explicit override for the derived id
	Light       bool
	SkipPRs     bool
	SkipTickets bool
	Notes       string
	Tags        []string
}

type SnapshotResult struct {
	Snapshot   *WorkSnapshot `json:"snapshot"`
	Merged     bool          `json:"merged"`
	Warnings   []string      `json:"warnings,omitempty"`
	DurationMs int64         `json:"durationMs"`
}

// Assembler produces one WorkSnapshot from live repository state plus,
// optionally, remote PR and ticket state. Every source is gathered
// independently: a failing source contributes a warning and an empty field,
// never an aborted assembly. Only an unreachable repository is fatal.
type Assembler struct {
	facts   RepoFacts
	prs     PRProvider     // nil when unconfigured
	tickets TicketProvider // nil when unconfigured
	cfg     *Config
	now     func() time.Time
}

func NewAssembler(facts RepoFacts, prs PRProvider, tickets TicketProvider, cfg *Config) *Assembler {
	return &Assembler{
		facts:   facts,
		prs:     prs,
		tickets: tickets,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (a *Assembler) Assemble(ctx context.Context, opts AssembleOptions) (*SnapshotResult, error) {
	start := a.now()

	date := DateKeyOf(start)
	if opts.Date != "" {
		var err error
		if date, err = NewDateKey(opts.Date); err != nil {
			return nil, err
		}
	}

	remoteURL, _ := a.facts.RemoteURL() // a repo without a remote is fine
	projectID := ResolveProjectID(opts.ProjectID, remoteURL, a.facts.RootDir())
	if err := ValidateProjectID(projectID); err != nil {
		return nil, err
	}

	snap := NewWorkSnapshot(date, projectID)
	snap.RepoPath = a.facts.RootDir()
	snap.RemoteURL = remoteURL
	snap.Notes = opts.Notes
	snap.Tags = NormalizeTags(opts.Tags)

	var warnings []string
	warn := func(source string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s: %v", source, err))
	}

	dayStart, dayEnd := dayWindow(date)

	if branch, err := a.facts.CurrentBranch(ctx); err != nil {
		warn("current branch", err)
	} else {
		snap.CurrentBranch = branch
	}

	sctx, cancel := context.WithTimeout(ctx, a.cfg.SourceTimeout)
	today, err := a.facts.CommitsInRange(sctx, dayStart, dayEnd)
	cancel()
	if err != nil {
		warn("today commits", err)
	} else {
		snap.TodayCommits = today
	}

	sctx, cancel = context.WithTimeout(ctx, a.cfg.SourceTimeout)
	recent, err := a.facts.CommitsInRange(sctx, dayStart.AddDate(0, 0, -a.cfg.LookbackDays), dayStart)
	cancel()
	if err != nil {
		warn("recent commits", err)
	} else {
		snap.RecentCommits = recent
	}

	uncommitted, err := a.facts.UncommittedFiles(ctx)
	if err != nil {
		warn("worktree status", err)
	}

	if opts.Light {
		if snap.CurrentBranch != "" {
			snap.ActiveBranches = []BranchStatus{currentOnly(snap.CurrentBranch, snap.TodayCommits, uncommitted)}
		}
	} else {
		sctx, cancel = context.WithTimeout(ctx, a.cfg.SourceTimeout)
		branches, err := a.facts.BranchList(sctx)
		cancel()
		if err != nil {
			warn("branch list", err)
		} else {
			markWorktreeState(branches, snap.CurrentBranch, uncommitted)
			snap.ActiveBranches = branches
		}
	}

	snap.TopChangedFiles = topChangedFiles(snap.TodayCommits)
	snap.Categories = categorize(snap.TodayCommits)

	if !opts.Light && len(snap.TodayCommits) > 0 {
		first := snap.TodayCommits[0].Hash
		last := snap.TodayCommits[len(snap.TodayCommits)-1].Hash
		stats, err := a.facts.DiffStats(ctx, first+"^", last)
		if err != nil {
			warn("diff stats", err)
		} else {
			snap.DiffStats = stats
		}
	}

	if !opts.Light && !opts.SkipPRs && a.prs != nil {
		if prs, err := a.fetchPRs(ctx, remoteURL, dayStart); err != nil {
			warn("pull requests", err)
		} else {
			snap.PullRequests = prs
		}
	}

	ids := ExtractTicketIDs(snap.CurrentBranch, append(append([]JournalCommit{}, snap.TodayCommits...), snap.RecentCommits...))
	snap.Tickets = a.resolveTickets(ctx, ids, opts, warn)

	return &SnapshotResult{
		Snapshot:   snap,
		Warnings:   warnings,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

func (a *Assembler) fetchPRs(ctx context.Context, remoteURL string, since time.Time) ([]PRSnapshot, error) {
	owner, repo, ok := ParseRemote(remoteURL)
	if !ok {
		return nil, fmt.Errorf("no parseable remote URL")
	}

	sctx, cancel := context.WithTimeout(ctx, a.cfg.SourceTimeout)
	defer cancel()

	open, err := a.prs.ListMyOpenPRs(sctx, owner, repo)
	if err != nil {
		return nil, err
	}
	merged, err := a.prs.ListMyMergedPRsSince(sctx, owner, repo, since.AddDate(0, 0, -a.cfg.LookbackDays))
	if err != nil {
		return nil, err
	}
	return mergePRs(open, merged), nil
}

// resolveTickets keeps locally extracted ids even when the tracker lookup
// fails; enrichment is best effort.
func (a *Assembler) resolveTickets(ctx context.Context, ids []string, opts AssembleOptions, warn func(string, error)) []TicketSnapshot {
	if len(ids) == 0 {
		return nil
	}
	if !opts.Light && !opts.SkipTickets && a.tickets != nil {
		sctx, cancel := context.WithTimeout(ctx, a.cfg.SourceTimeout)
		defer cancel()
		tickets, err := a.tickets.LookupTickets(sctx, ids)
		if err == nil {
			return tickets
		}
		warn("tickets", err)
	}

	tickets := make([]TicketSnapshot, len(ids))
	for i, id := range ids {
		tickets[i] = TicketSnapshot{ID: id}
	}
	return tickets
}

func dayWindow(date DateKey) (time.Time, time.Time) {
	t := date.Time()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 0, 1)
}

func currentOnly(branch string, today []JournalCommit, uncommitted []string) BranchStatus {
	b := BranchStatus{
		Name:             branch,
		HasChanges:       len(uncommitted) > 0,
		UncommittedFiles: uncommitted,
	}
	if n := len(today); n > 0 {
		last := today[n-1]
		b.LastCommitHash = last.Hash
		b.LastCommitMessage = firstLine(last.Message)
		b.LastCommitDate = last.Date
	}
	return b
}

func markWorktreeState(branches []BranchStatus, current string, uncommitted []string) {
	for i := range branches {
		if branches[i].Name == current {
			branches[i].HasChanges = len(uncommitted) > 0
			branches[i].UncommittedFiles = uncommitted
			return
		}
	}
}

func topChangedFiles(commits []JournalCommit) []FileChange {
	counts := make(map[string]int)
	for _, c := range commits {
		for _, f := range c.Files {
			counts[f]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	out := make([]FileChange, 0, len(counts))
	for path, n := range counts {
		out = append(out, FileChange{Path: path, Frequency: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Path < out[j].Path
	})
	if len(out) > MaxTopFiles {
		out = out[:MaxTopFiles]
	}
	return out
}

// categorize buckets the day's changed files into work areas by path shape.
// Percentages round down, so they can sum to slightly under 100.
func categorize(commits []JournalCommit) []Category {
	counts := make(map[string]int)
	total := 0
	for _, c := range commits {
		for _, f := range c.Files {
			counts[classifyFile(f)]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	out := make([]Category, 0, len(counts))
	for name, n := range counts {
		pct := n * 100 / total
		if pct == 0 {
			pct = 1
		}
		out = append(out, Category{Name: name, Percentage: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func classifyFile(path string) string {
	p := strings.ToLower(path)
	base := p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		base = p[i+1:]
	}

	switch {
	case strings.HasSuffix(base, "_test.go"),
		strings.Contains(base, ".test."), strings.Contains(base, ".spec."),
		hasDir(p, "test", "tests", "__tests__", "testdata"):
		return "tests"
	case strings.HasSuffix(p, ".md"), strings.HasSuffix(p, ".rst"),
		strings.HasSuffix(p, ".adoc"), hasDir(p, "docs", "doc"):
		return "docs"
	case base == "dockerfile", strings.HasSuffix(p, ".tf"),
		strings.Contains(p, ".github/workflows"),
		hasDir(p, "infra", "deploy", "deployment", "k8s", "terraform", "ansible"):
		return "infra"
	case strings.HasSuffix(p, ".tsx"), strings.HasSuffix(p, ".jsx"),
		strings.HasSuffix(p, ".vue"), strings.HasSuffix(p, ".svelte"),
		strings.HasSuffix(p, ".css"), strings.HasSuffix(p, ".scss"),
		strings.HasSuffix(p, ".html"),
		hasDir(p, "frontend", "web", "ui", "client"):
		return "frontend"
	case strings.HasSuffix(p, ".go"), strings.HasSuffix(p, ".py"),
		strings.HasSuffix(p, ".rb"), strings.HasSuffix(p, ".rs"),
		strings.HasSuffix(p, ".java"), strings.HasSuffix(p, ".kt"),
		strings.HasSuffix(p, ".ts"), strings.HasSuffix(p, ".js"),
		hasDir(p, "server", "backend", "api", "cmd", "internal", "pkg"):
		return "backend"
	case base == "makefile", base == "go.mod", base == "go.sum",
		base == "package.json", strings.HasSuffix(p, ".yaml"),
		strings.HasSuffix(p, ".yml"), strings.HasSuffix(p, ".toml"),
		strings.HasSuffix(p, ".json"), strings.HasSuffix(p, ".ini"):
		return "config"
	default:
		return "other"
	}
}

func hasDir(path string, names ...string) bool {
	for _, part := range strings.Split(path, "/") {
		for _, name := range names {
			if part == name {
				return true
			}
		}
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
