package internal

import (
	"sort"
	"strings"
)

// MergeSnapshots unions incoming into existing and returns the merged
// record. List entries merge by identity (commit hash, PR number, ticket id,
// branch name, file path) with incoming fields winning for a matched
// identity. Empty incoming scalars keep the stored value, so a light capture
// never erases what a full one recorded earlier in the day.
func MergeSnapshots(existing, incoming *WorkSnapshot) *WorkSnapshot {
	if existing == nil {
		return incoming
	}

	out := *existing
	out.TakenAt = incoming.TakenAt

	if incoming.RepoPath != "" {
		out.RepoPath = incoming.RepoPath
	}
	if incoming.RemoteURL != "" {
		out.RemoteURL = incoming.RemoteURL
	}
	if incoming.CurrentBranch != "" {
		out.CurrentBranch = incoming.CurrentBranch
	}
	if incoming.DiffStats != nil {
		out.DiffStats = incoming.DiffStats
	}
	if len(incoming.Categories) > 0 {
		out.Categories = incoming.Categories
	}

	out.Notes = mergeNotes(existing.Notes, incoming.Notes)
	out.Tags = NormalizeTags(append(append([]string{}, existing.Tags...), incoming.Tags...))

	out.TodayCommits = mergeCommits(existing.TodayCommits, incoming.TodayCommits)
	out.RecentCommits = mergeCommits(existing.RecentCommits, incoming.RecentCommits)
	out.PullRequests = mergePRs(existing.PullRequests, incoming.PullRequests)
	out.Tickets = mergeTickets(existing.Tickets, incoming.Tickets)
	out.ActiveBranches = mergeBranches(existing.ActiveBranches, incoming.ActiveBranches)
	out.TopChangedFiles = mergeFileChanges(existing.TopChangedFiles, incoming.TopChangedFiles)

	return &out
}

// Notes concatenate instead of overwrite, but saving the same note twice
// must stay a no-op.
func mergeNotes(old, new string) string {
	switch {
	case new == "":
		return old
	case old == "" || old == new:
		return new
	case strings.Contains(old, new):
		return old
	default:
		return old + "\n" + new
	}
}

func mergeCommits(old, new []JournalCommit) []JournalCommit {
	byHash := make(map[string]JournalCommit, len(old)+len(new))
	for _, c := range old {
		byHash[c.Hash] = c
	}
	for _, c := range new {
		if prev, ok := byHash[c.Hash]; ok && len(c.Files) == 0 {
			c.Files = prev.Files
		}
		byHash[c.Hash] = c
	}

	out := make([]JournalCommit, 0, len(byHash))
	for _, c := range byHash {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Hash < out[j].Hash
	})
	return out
}

func mergePRs(old, new []PRSnapshot) []PRSnapshot {
	byNum := make(map[int]PRSnapshot, len(old)+len(new))
	for _, pr := range old {
		byNum[pr.Number] = pr
	}
	for _, pr := range new {
		byNum[pr.Number] = pr
	}

	out := make([]PRSnapshot, 0, len(byNum))
	for _, pr := range byNum {
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func mergeTickets(old, new []TicketSnapshot) []TicketSnapshot {
	byID := make(map[string]TicketSnapshot, len(old)+len(new))
	for _, t := range old {
		byID[t.ID] = t
	}
	for _, t := range new {
		if prev, ok := byID[t.ID]; ok {
			// id extraction alone knows less than an enriched record
			if t.Title == "" {
				t.Title = prev.Title
			}
			if t.Status == "" {
				t.Status = prev.Status
			}
			if t.Type == "" {
				t.Type = prev.Type
			}
		}
		byID[t.ID] = t
	}

	out := make([]TicketSnapshot, 0, len(byID))
	for _, t := range byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func mergeBranches(old, new []BranchStatus) []BranchStatus {
	byName := make(map[string]BranchStatus, len(old)+len(new))
	for _, b := range old {
		byName[b.Name] = b
	}
	for _, b := range new {
		byName[b.Name] = b
	}

	out := make([]BranchStatus, 0, len(byName))
	for _, b := range byName {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastCommitDate.Equal(out[j].LastCommitDate) {
			return out[i].LastCommitDate.After(out[j].LastCommitDate)
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > MaxActiveBranches {
		out = out[:MaxActiveBranches]
	}
	return out
}

func mergeFileChanges(old, new []FileChange) []FileChange {
	byPath := make(map[string]int, len(old)+len(new))
	for _, f := range old {
		byPath[f.Path] = f.Frequency
	}
	for _, f := range new {
		byPath[f.Path] = f.Frequency
	}

	out := make([]FileChange, 0, len(byPath))
	for p, n := range byPath {
		out = append(out, FileChange{Path: p, Frequency: n})
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
