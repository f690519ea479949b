package v1

import (
	"time"

	"github.com/hempun10/devdaily-sub001/internal"
)

// Snapshot is one journal record: what happened in one project on one day.
type Snapshot struct {
	Date          string        `json:"date"`
	TakenAt       time.Time     `json:"taken_at"`
	ProjectID     string        `json:"project_id"`
	RepoPath      string        `json:"repo_path,omitempty"`
	RemoteURL     string        `json:"remote_url,omitempty"`
	Branch        string        `json:"branch,omitempty"`
	Branches      []Branch      `json:"branches,omitempty"`
	Commits       []Commit      `json:"commits,omitempty"`
	RecentCommits []Commit      `json:"recent_commits,omitempty"`
	PullRequests  []PullRequest `json:"pull_requests,omitempty"`
	Tickets       []Ticket      `json:"tickets,omitempty"`
	TopFiles      []FileChange  `json:"top_files,omitempty"`
	DiffStats     *DiffStats    `json:"diff_stats,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
}

// Commit is a commit as recorded in the journal.
type Commit struct {
	Hash      string    `json:"hash"`
	ShortHash string    `json:"short_hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author,omitempty"`
	Date      time.Time `json:"date"`
	Files     []string  `json:"files,omitempty"`
}

// Branch is the state of one local branch at capture time.
type Branch struct {
	Name        string    `json:"name"`
	LastCommit  string    `json:"last_commit,omitempty"`
	LastMessage string    `json:"last_message,omitempty"`
	LastDate    time.Time `json:"last_date,omitempty"`
	IsAhead     bool      `json:"is_ahead,omitempty"`
	HasChanges  bool      `json:"has_changes,omitempty"`
}

// PullRequest is a pull request attributed to the journal's author.
type PullRequest struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	State  string   `json:"state"`
	URL    string   `json:"url,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// Ticket is an issue tracker reference found in branch names or commits.
type Ticket struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

// FileChange counts how often a file appeared in a day's commits.
type FileChange struct {
	Path      string `json:"path"`
	Frequency int    `json:"frequency"`
}

// DiffStats aggregates the day's line churn.
type DiffStats struct {
	FilesChanged int `json:"files_changed"`
	Insertions   int `json:"insertions"`
	Deletions    int `json:"deletions"`
}

// SnapResult is the outcome of a capture.
type SnapResult struct {
	Snapshot *Snapshot `json:"snapshot"`
	Merged   bool      `json:"merged"`
	Warnings []string  `json:"warnings,omitempty"`
}

// RecallHit is one search result with the signals that matched.
type RecallHit struct {
	Snapshot *Snapshot `json:"snapshot"`
	Score    int       `json:"score"`
	Reasons  []string  `json:"reasons"`
}

// FileDay is one day on which a file was touched.
type FileDay struct {
	Date      string   `json:"date"`
	ProjectID string   `json:"project_id"`
	Commits   []Commit `json:"commits"`
}

// Project summarizes one journaled project.
type Project struct {
	ID            string `json:"id"`
	RepoPath      string `json:"repo_path,omitempty"`
	LastSnapshot  string `json:"last_snapshot"`
	SnapshotCount int    `json:"snapshot_count"`
}

// Stats describes the journal as a whole.
type Stats struct {
	Snapshots int    `json:"snapshots"`
	Days      int    `json:"days"`
	Projects  int    `json:"projects"`
	Oldest    string `json:"oldest,omitempty"`
	Newest    string `json:"newest,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
}

func fromSnapshot(s *internal.WorkSnapshot) *Snapshot {
	if s == nil {
		return nil
	}

	out := &Snapshot{
		Date:      string(s.Date),
		TakenAt:   s.TakenAt,
		ProjectID: s.ProjectID,
		RepoPath:  s.RepoPath,
		RemoteURL: s.RemoteURL,
		Branch:    s.CurrentBranch,
		Notes:     s.Notes,
		Tags:      s.Tags,
	}
	for _, b := range s.ActiveBranches {
		out.Branches = append(out.Branches, Branch{
			Name:        b.Name,
			LastCommit:  b.LastCommitHash,
			LastMessage: b.LastCommitMessage,
			LastDate:    b.LastCommitDate,
			IsAhead:     b.IsAhead,
			HasChanges:  b.HasChanges,
		})
	}
	out.Commits = fromCommits(s.TodayCommits)
	out.RecentCommits = fromCommits(s.RecentCommits)
	for _, pr := range s.PullRequests {
		out.PullRequests = append(out.PullRequests, PullRequest{
			Number: pr.Number,
			Title:  pr.Title,
			State:  string(pr.State),
			URL:    pr.URL,
			Labels: pr.Labels,
		})
	}
	for _, tk := range s.Tickets {
		out.Tickets = append(out.Tickets, Ticket{ID: tk.ID, Title: tk.Title, Status: tk.Status})
	}
	for _, f := range s.TopChangedFiles {
		out.TopFiles = append(out.TopFiles, FileChange{Path: f.Path, Frequency: f.Frequency})
	}
	if s.DiffStats != nil {
		out.DiffStats = &DiffStats{
			FilesChanged: s.DiffStats.FilesChanged,
			Insertions:   s.DiffStats.Insertions,
			Deletions:    s.DiffStats.Deletions,
		}
	}
	return out
}

func fromCommits(commits []internal.JournalCommit) []Commit {
	if len(commits) == 0 {
		return nil
	}
	out := make([]Commit, 0, len(commits))
	for _, c := range commits {
		out = append(out, Commit{
			Hash:      c.Hash,
			ShortHash: c.ShortHash,
			Message:   c.Message,
			Author:    c.Author,
			Date:      c.Date,
			Files:     c.Files,
		})
	}
	return out
}
