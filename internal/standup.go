package internal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const maxDigestLines = 8

type ProjectDigest struct {
	ProjectID string   `json:"projectId"`
	Commits   []string `json:"commits,omitempty"`
	PRs       []string `json:"prs,omitempty"`
	Tickets   []string `json:"tickets,omitempty"`
	WIP       []string `json:"wip,omitempty"`
}

type StandupDigest struct {
	Date      DateKey         `json:"date"`
	Previous  DateKey         `json:"previous"`
	Yesterday []ProjectDigest `json:"yesterday,omitempty"`
	Today     []ProjectDigest `json:"today,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// Standup builds a daily digest from journal reads only; it never touches
// git or any remote.
type Standup struct {
	store SnapshotRepository
	now   func() time.Time
}

func NewStandup(store SnapshotRepository) *Standup {
	return &Standup{store: store, now: time.Now}
}

func (s *Standup) Build(ctx context.Context) (*StandupDigest, error) {
	today := DateKeyOf(s.now())
	previous := lastBusinessDay(s.now())

	digest := &StandupDigest{Date: today, Previous: previous}

	prev, err := s.store.GetRange(ctx, "", previous, previous)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", previous, err)
	}
	digest.Warnings = append(digest.Warnings, prev.Warnings...)
	for _, snap := range prev.Snapshots {
		if pd := yesterdayDigest(snap); pd != nil {
			digest.Yesterday = append(digest.Yesterday, *pd)
		}
	}

	cur, err := s.store.GetRange(ctx, "", today, today)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", today, err)
	}
	digest.Warnings = append(digest.Warnings, cur.Warnings...)
	for _, snap := range cur.Snapshots {
		if pd := todayDigest(snap); pd != nil {
			digest.Today = append(digest.Today, *pd)
		}
	}

	return digest, nil
}

// Render produces the plain-terminal form of the digest.
func (s *StandupDigest) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Standup — %s\n", s.Date)

	fmt.Fprintf(&b, "\nYesterday (%s):\n", s.Previous)
	writeProjects(&b, s.Yesterday, "  nothing recorded\n")

	fmt.Fprintf(&b, "\nToday:\n")
	writeProjects(&b, s.Today, "  nothing captured yet\n")

	return b.String()
}

func writeProjects(b *strings.Builder, projects []ProjectDigest, empty string) {
	if len(projects) == 0 {
		b.WriteString(empty)
		return
	}
	for _, p := range projects {
		fmt.Fprintf(b, "  %s:\n", p.ProjectID)
		for _, group := range [][]string{p.Commits, p.PRs, p.Tickets, p.WIP} {
			for _, line := range group {
				fmt.Fprintf(b, "    - %s\n", line)
			}
		}
	}
}

func yesterdayDigest(snap *WorkSnapshot) *ProjectDigest {
	pd := &ProjectDigest{ProjectID: snap.ProjectID}
	for _, c := range snap.TodayCommits {
		if len(pd.Commits) >= maxDigestLines {
			pd.Commits = append(pd.Commits, fmt.Sprintf("...and %d more commits", len(snap.TodayCommits)-maxDigestLines))
			break
		}
		pd.Commits = append(pd.Commits, fmt.Sprintf("%s (%s)", firstLine(c.Message), c.ShortHash))
	}
	for _, pr := range snap.PullRequests {
		if pr.State == PRMerged || pr.State == PRClosed {
			pd.PRs = append(pd.PRs, fmt.Sprintf("#%d %s (%s)", pr.Number, pr.Title, pr.State))
		}
	}
	for _, t := range snap.Tickets {
		if t.Status != "" {
			pd.Tickets = append(pd.Tickets, fmt.Sprintf("%s %s (%s)", t.ID, t.Title, t.Status))
		}
	}
	if len(pd.Commits) == 0 && len(pd.PRs) == 0 && len(pd.Tickets) == 0 {
		return nil
	}
	return pd
}

func todayDigest(snap *WorkSnapshot) *ProjectDigest {
	pd := &ProjectDigest{ProjectID: snap.ProjectID}
	for _, pr := range snap.PullRequests {
		if pr.State == PROpen {
			pd.PRs = append(pd.PRs, fmt.Sprintf("#%d %s (open)", pr.Number, pr.Title))
		}
	}
	for _, t := range snap.Tickets {
		line := t.ID
		if t.Title != "" {
			line += " " + t.Title
		}
		pd.Tickets = append(pd.Tickets, line)
	}
	for _, b := range snap.ActiveBranches {
		if b.HasChanges {
			pd.WIP = append(pd.WIP, fmt.Sprintf("WIP on %s (%d uncommitted files)", b.Name, len(b.UncommittedFiles)))
		}
	}
	if len(pd.PRs) == 0 && len(pd.Tickets) == 0 && len(pd.WIP) == 0 {
		return nil
	}
	return pd
}

// lastBusinessDay maps Monday back to Friday so a Monday standup reports
// Friday's work.
func lastBusinessDay(now time.Time) DateKey {
	d := now.AddDate(0, 0, -1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return DateKeyOf(d)
}
