package v1

import (
	"context"
	"fmt"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/rs/zerolog"
)

// Client provides programmatic access to the work journal.
type Client struct {
	uc      *internal.UseCases
	project string
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	conf, err := internal.LoadConfig(cfg.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.journalDir != "" {
		conf.JournalDir = cfg.journalDir
	}

	return &Client{
		uc:      internal.BuildUseCases(conf, zerolog.Nop()),
		project: cfg.project,
	}, nil
}

// Snap captures the working directory's repository into today's record.
func (c *Client) Snap(ctx context.Context, note string, tags ...string) (*SnapResult, error) {
	out, err := c.uc.Snap.Execute(ctx, internal.SnapInput{
		Project: c.project,
		Notes:   note,
		Tags:    tags,
	})
	if err != nil {
		return nil, fmt.Errorf("snap: %w", err)
	}

	return &SnapResult{
		Snapshot: fromSnapshot(out.Snapshot),
		Merged:   out.Merged,
		Warnings: out.Warnings,
	}, nil
}

// Get retrieves the record for a date (today when empty).
func (c *Client) Get(ctx context.Context, date string) (*Snapshot, error) {
	out, err := c.uc.Show.Execute(ctx, internal.ShowInput{
		Date:    date,
		Project: c.project,
	})
	if err != nil {
		return nil, err
	}
	return fromSnapshot(out), nil
}

// Range returns the records between from and to, oldest first.
func (c *Client) Range(ctx context.Context, from, to string) ([]*Snapshot, error) {
	out, err := c.uc.List.Execute(ctx, internal.ListInput{
		Project: c.project,
		From:    from,
		To:      to,
	})
	if err != nil {
		return nil, fmt.Errorf("range: %w", err)
	}

	snaps := make([]*Snapshot, 0, len(out.Snapshots))
	for _, s := range out.Snapshots {
		snaps = append(snaps, fromSnapshot(s))
	}
	return snaps, nil
}

// Recall searches the journal by text and tags.
func (c *Client) Recall(ctx context.Context, query string, tags ...string) ([]RecallHit, error) {
	out, err := c.uc.Recall.Execute(ctx, internal.RecallInput{
		Query:   query,
		Project: c.project,
		Tags:    tags,
	})
	if err != nil {
		return nil, fmt.Errorf("recall: %w", err)
	}

	hits := make([]RecallHit, 0, len(out.Results))
	for _, r := range out.Results {
		hits = append(hits, RecallHit{
			Snapshot: fromSnapshot(r.Snapshot),
			Score:    r.Score,
			Reasons:  r.MatchReasons,
		})
	}
	return hits, nil
}

// FileHistory returns the days a file was touched, newest first.
func (c *Client) FileHistory(ctx context.Context, file string, days int) ([]FileDay, error) {
	out, err := c.uc.FileHistory.Execute(ctx, internal.FileHistoryInput{
		File:    file,
		Project: c.project,
		Days:    days,
	})
	if err != nil {
		return nil, fmt.Errorf("file history: %w", err)
	}

	entries := make([]FileDay, 0, len(out.Entries))
	for _, e := range out.Entries {
		entries = append(entries, FileDay{
			Date:      string(e.Date),
			ProjectID: e.ProjectID,
			Commits:   fromCommits(e.Commits),
		})
	}
	return entries, nil
}

// Projects lists every journaled project.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	out, err := c.uc.Projects.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("projects: %w", err)
	}

	projects := make([]Project, 0, len(out))
	for _, p := range out {
		projects = append(projects, Project{
			ID:            p.ProjectID,
			RepoPath:      p.RepoPath,
			LastSnapshot:  string(p.LastSnapshotDate),
			SnapshotCount: p.SnapshotCount,
		})
	}
	return projects, nil
}

// Stats describes the journal as a whole.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	out, err := c.uc.Stats.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	return &Stats{
		Snapshots: out.TotalSnapshots,
		Days:      out.DistinctDates,
		Projects:  out.DistinctProjects,
		Oldest:    string(out.OldestDate),
		Newest:    string(out.NewestDate),
		SizeBytes: out.TotalSizeBytes,
	}, nil
}

// Prune deletes records older than maxAgeDays and reports how many went.
func (c *Client) Prune(ctx context.Context, maxAgeDays int) (int, error) {
	out, err := c.uc.Prune.Execute(ctx, internal.PruneInput{MaxAgeDays: maxAgeDays})
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	return out.Removed, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}
