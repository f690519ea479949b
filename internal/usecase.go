package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog"
)

// Use case input/output DTOs

type SnapInput struct {
	Dir         string // repository to capture, empty means the working dir
	Date        string
	Project     string
	Light       bool
	SkipPRs     bool
	SkipTickets bool
	Notes       string
	Tags        []string
}

type ShowInput struct {
	Dir     string
	Date    string
	Project string
}

type ListInput struct {
	Project string
	From    string
	To      string
	Days    int
}

type RecallInput struct {
	Query   string
	Project string
	From    string
	To      string
	Tags    []string
	Days    int
	Limit   int
}

type RecallHelp struct {
	Usage string        `json:"usage"`
	Stats *JournalStats `json:"stats,omitempty"`
}

type RecallOutput struct {
	Results  []RankedSnapshot `json:"results,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
	Help     *RecallHelp      `json:"help,omitempty"`
}

type FileHistoryInput struct {
	File    string
	Project string
	Days    int
}

type PruneInput struct {
	MaxAgeDays int
}

type StandupInput struct {
	Post bool
}

type StandupOutput struct {
	Digest *StandupDigest `json:"digest"`
	Posted bool           `json:"posted"`
}

type HookInput struct {
	Dir      string
	HookType string
}

type InstallHookInput struct {
	Dir string
}

type InstallHookOutput struct {
	Path string `json:"path"`
}

type UninstallHookOutput struct {
	Path    string `json:"path"`
	Removed bool   `json:"removed"`
}

// Use cases

type SnapUseCase struct {
	store    SnapshotRepository
	cfg      *Config
	factsFor func(dir string) (RepoFacts, error)
	prs      PRProvider
	tickets  TicketProvider
}

func NewSnapUseCase(
	store SnapshotRepository,
	cfg *Config,
	factsFor func(dir string) (RepoFacts, error),
	prs PRProvider,
	tickets TicketProvider,
) *SnapUseCase {
	return &SnapUseCase{
		store:    store,
		cfg:      cfg,
		factsFor: factsFor,
		prs:      prs,
		tickets:  tickets,
	}
}

func (uc *SnapUseCase) Execute(ctx context.Context, input SnapInput) (*SnapshotResult, error) {
	facts, err := uc.factsFor(input.Dir)
	if err != nil {
		return nil, err
	}

	asm := NewAssembler(facts, uc.prs, uc.tickets, uc.cfg)
	result, err := asm.Assemble(ctx, AssembleOptions{
		Date:        input.Date,
		ProjectID:   input.Project,
		Light:       input.Light,
		SkipPRs:     input.SkipPRs,
		SkipTickets: input.SkipTickets,
		Notes:       input.Notes,
		Tags:        input.Tags,
	})
	if err != nil {
		return nil, err
	}

	merged, err := uc.store.Save(ctx, result.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	result.Merged = merged

	// The command shows the cumulative record for the day, not just this
	// capture, so reflect the stored state after the merge.
	if stored, err := uc.store.Get(ctx, result.Snapshot.Date, result.Snapshot.ProjectID); err == nil {
		result.Snapshot = stored
	}

	return result, nil
}

type ShowUseCase struct {
	store    SnapshotRepository
	factsFor func(dir string) (RepoFacts, error)
	now      func() time.Time
}

func NewShowUseCase(store SnapshotRepository, factsFor func(dir string) (RepoFacts, error)) *ShowUseCase {
	return &ShowUseCase{store: store, factsFor: factsFor, now: time.Now}
}

func (uc *ShowUseCase) Execute(ctx context.Context, input ShowInput) (*WorkSnapshot, error) {
	date := DateKeyOf(uc.now())
	if input.Date != "" {
		var err error
		if date, err = NewDateKey(input.Date); err != nil {
			return nil, err
		}
	}

	project, err := resolveProject(input.Project, input.Dir, uc.factsFor)
	if err != nil {
		return nil, err
	}

	return uc.store.Get(ctx, date, project)
}

type ListUseCase struct {
	store SnapshotRepository
	now   func() time.Time
}

func NewListUseCase(store SnapshotRepository) *ListUseCase {
	return &ListUseCase{store: store, now: time.Now}
}

func (uc *ListUseCase) Execute(ctx context.Context, input ListInput) (*RangeResult, error) {
	days := input.Days
	if days <= 0 {
		days = 7
	}

	from := DateKeyOf(uc.now().AddDate(0, 0, -(days - 1)))
	to := DateKeyOf(uc.now())

	var err error
	if input.From != "" {
		if from, err = NewDateKey(input.From); err != nil {
			return nil, err
		}
	}
	if input.To != "" {
		if to, err = NewDateKey(input.To); err != nil {
			return nil, err
		}
	}

	return uc.store.GetRange(ctx, input.Project, from, to)
}

const recallUsage = `recall searches the journal by text, tag, or file.

Examples:
  devdaily recall auth redirect
  devdaily recall --tag has-wip
  devdaily recall --file auth.ts --days 90
  devdaily recall payments --days 30 --limit 5`

type RecallUseCase struct {
	recall *Recall
	store  SnapshotRepository
	cfg    *Config
	now    func() time.Time
}

func NewRecallUseCase(recall *Recall, store SnapshotRepository, cfg *Config) *RecallUseCase {
	return &RecallUseCase{recall: recall, store: store, cfg: cfg, now: time.Now}
}

func (uc *RecallUseCase) Execute(ctx context.Context, input RecallInput) (*RecallOutput, error) {
	criteria := SearchCriteria{
		Query:     input.Query,
		ProjectID: input.Project,
		From:      input.From,
		To:        input.To,
		Tags:      input.Tags,
		Limit:     input.Limit,
	}
	if criteria.Limit <= 0 {
		criteria.Limit = uc.cfg.RecallLimit
	}
	if input.Days > 0 && criteria.From == "" {
		criteria.From = string(DateKeyOf(uc.now().AddDate(0, 0, -input.Days)))
	}

	// No text, no tags: render usage and journal stats instead of an empty
	// result list.
	if criteria.Empty() {
		help := &RecallHelp{Usage: recallUsage}
		if stats, err := uc.store.Stats(ctx); err == nil {
			help.Stats = stats
		}
		return &RecallOutput{Help: help}, nil
	}

	result, err := uc.recall.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return &RecallOutput{Results: result.Results, Warnings: result.Warnings}, nil
}

type FileHistoryUseCase struct {
	recall *Recall
}

func NewFileHistoryUseCase(recall *Recall) *FileHistoryUseCase {
	return &FileHistoryUseCase{recall: recall}
}

func (uc *FileHistoryUseCase) Execute(ctx context.Context, input FileHistoryInput) (*FileHistoryResult, error) {
	return uc.recall.FindFileHistory(ctx, input.File, input.Project, input.Days)
}

type ProjectsUseCase struct {
	store SnapshotRepository
}

func NewProjectsUseCase(store SnapshotRepository) *ProjectsUseCase {
	return &ProjectsUseCase{store: store}
}

func (uc *ProjectsUseCase) Execute(ctx context.Context) ([]ProjectSummary, error) {
	return uc.store.ListProjects(ctx)
}

type StatsUseCase struct {
	store SnapshotRepository
}

func NewStatsUseCase(store SnapshotRepository) *StatsUseCase {
	return &StatsUseCase{store: store}
}

func (uc *StatsUseCase) Execute(ctx context.Context) (*JournalStats, error) {
	return uc.store.Stats(ctx)
}

type PruneUseCase struct {
	store SnapshotRepository
	cfg   *Config
}

func NewPruneUseCase(store SnapshotRepository, cfg *Config) *PruneUseCase {
	return &PruneUseCase{store: store, cfg: cfg}
}

func (uc *PruneUseCase) Execute(ctx context.Context, input PruneInput) (*PruneResult, error) {
	age := input.MaxAgeDays
	if age == 0 {
		age = uc.cfg.RetentionDays
	}
	return uc.store.Prune(ctx, age)
}

type StandupUseCase struct {
	standup  *Standup
	notifier Notifier
}

func NewStandupUseCase(standup *Standup, notifier Notifier) *StandupUseCase {
	return &StandupUseCase{standup: standup, notifier: notifier}
}

func (uc *StandupUseCase) Execute(ctx context.Context, input StandupInput) (*StandupOutput, error) {
	digest, err := uc.standup.Build(ctx)
	if err != nil {
		return nil, err
	}

	out := &StandupOutput{Digest: digest}
	if input.Post {
		if uc.notifier == nil {
			return nil, fmt.Errorf("posting requires a configured slack webhook")
		}
		if err := uc.notifier.PostStandup(ctx, digest); err != nil {
			return nil, fmt.Errorf("post standup: %w", err)
		}
		out.Posted = true
	}
	return out, nil
}

// HookSnapshotUseCase is the fire-and-forget capture path behind git hooks
// and the watcher. Failures are logged quietly and reported to the caller,
// which is expected to discard them.
type HookSnapshotUseCase struct {
	snap *SnapUseCase
	log  zerolog.Logger
}

func NewHookSnapshotUseCase(snap *SnapUseCase, log zerolog.Logger) *HookSnapshotUseCase {
	return &HookSnapshotUseCase{snap: snap, log: log.With().Str("component", "hook").Logger()}
}

func (uc *HookSnapshotUseCase) Execute(ctx context.Context, input HookInput) error {
	result, err := uc.snap.Execute(ctx, SnapInput{Dir: input.Dir, Light: true})
	if err != nil {
		uc.log.Debug().Err(err).Str("hook", input.HookType).Msg("light snapshot failed")
		return err
	}

	uc.log.Debug().
		Str("hook", input.HookType).
		Str("project", result.Snapshot.ProjectID).
		Str("date", string(result.Snapshot.Date)).
		Bool("merged", result.Merged).
		Msg("light snapshot saved")
	return nil
}

type InstallHookUseCase struct{}

func NewInstallHookUseCase() *InstallHookUseCase {
	return &InstallHookUseCase{}
}

func (uc *InstallHookUseCase) Execute(ctx context.Context, input InstallHookInput) (*InstallHookOutput, error) {
	_, gitDir, err := FindGitDir(orCwd(input.Dir))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	if err := InstallHook(gitDir, PostCommitHook); err != nil {
		return nil, err
	}
	return &InstallHookOutput{Path: hookPath(gitDir, PostCommitHook)}, nil
}

type UninstallHookUseCase struct{}

func NewUninstallHookUseCase() *UninstallHookUseCase {
	return &UninstallHookUseCase{}
}

func (uc *UninstallHookUseCase) Execute(ctx context.Context, input InstallHookInput) (*UninstallHookOutput, error) {
	_, gitDir, err := FindGitDir(orCwd(input.Dir))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	removed, err := UninstallHook(gitDir, PostCommitHook)
	if err != nil {
		return nil, err
	}
	return &UninstallHookOutput{Path: hookPath(gitDir, PostCommitHook), Removed: removed}, nil
}

// UseCases bundles every operation the CLI and the public client expose.
type UseCases struct {
	Snap          *SnapUseCase
	Show          *ShowUseCase
	List          *ListUseCase
	Recall        *RecallUseCase
	FileHistory   *FileHistoryUseCase
	Projects      *ProjectsUseCase
	Stats         *StatsUseCase
	Prune         *PruneUseCase
	Standup       *StandupUseCase
	Hook          *HookSnapshotUseCase
	InstallHook   *InstallHookUseCase
	UninstallHook *UninstallHookUseCase
}

// BuildUseCases wires the full graph from a loaded config: journal store on
// the local filesystem, providers only when their credentials are present.
func BuildUseCases(cfg *Config, log zerolog.Logger) *UseCases {
	store := NewStore(osfs.New(cfg.JournalDir))

	var prs PRProvider
	if cfg.GitHubEnabled() {
		prs = NewGitHubPRs(cfg.GitHub)
	}
	var tickets TicketProvider
	if cfg.LinearEnabled() {
		tickets = NewLinearTickets(cfg.Linear)
	}
	var notifier Notifier
	if cfg.SlackEnabled() {
		notifier = NewSlackNotifier(cfg.Slack)
	}

	factsFor := func(dir string) (RepoFacts, error) {
		return OpenGitFacts(orCwd(dir))
	}

	recall := NewRecall(store)
	snap := NewSnapUseCase(store, cfg, factsFor, prs, tickets)

	return &UseCases{
		Snap:          snap,
		Show:          NewShowUseCase(store, factsFor),
		List:          NewListUseCase(store),
		Recall:        NewRecallUseCase(recall, store, cfg),
		FileHistory:   NewFileHistoryUseCase(recall),
		Projects:      NewProjectsUseCase(store),
		Stats:         NewStatsUseCase(store),
		Prune:         NewPruneUseCase(store, cfg),
		Standup:       NewStandupUseCase(NewStandup(store), notifier),
		Hook:          NewHookSnapshotUseCase(snap, log),
		InstallHook:   NewInstallHookUseCase(),
		UninstallHook: NewUninstallHookUseCase(),
	}
}

func resolveProject(explicit, dir string, factsFor func(string) (RepoFacts, error)) (string, error) {
	if explicit != "" {
		id := Slugify(explicit)
		if err := ValidateProjectID(id); err != nil {
			return "", err
		}
		return id, nil
	}

	facts, err := factsFor(dir)
	if err != nil {
		return "", fmt.Errorf("project is required outside a repository: %w", err)
	}
	remote, _ := facts.RemoteURL()
	id := ResolveProjectID("", remote, facts.RootDir())
	if err := ValidateProjectID(id); err != nil {
		return "", err
	}
	return id, nil
}

func orCwd(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
