package internal

const (
	productiveCommits = 5
	largeChangeLines  = 500
	multiBranchCount  = 3
)

// AutoTag derives descriptive tags from an already-assembled snapshot. It is
// pure: no I/O, no clock, same snapshot in, same tags out, so it can run
// synchronously inside every save. User-supplied tags are unioned in by the
// store, never replaced.
func AutoTag(snap *WorkSnapshot) []string {
	var tags []string

	switch n := len(snap.TodayCommits); {
	case n >= productiveCommits:
		tags = append(tags, "productive")
	case n >= 1 && n <= 2:
		tags = append(tags, "light-day")
	}

	for _, b := range snap.ActiveBranches {
		if b.HasChanges {
			tags = append(tags, "has-wip")
			break
		}
	}

	var open, merged bool
	for _, pr := range snap.PullRequests {
		switch pr.State {
		case PROpen:
			open = true
		case PRMerged:
			merged = true
		}
	}
	if open {
		tags = append(tags, "open-pr")
	}
	if merged {
		tags = append(tags, "merged-pr")
	}

	if len(snap.Tickets) > 0 {
		tags = append(tags, "has-tickets")
	}
	if ds := snap.DiffStats; ds != nil && ds.Insertions+ds.Deletions >= largeChangeLines {
		tags = append(tags, "large-change")
	}
	if len(snap.ActiveBranches) >= multiBranchCount {
		tags = append(tags, "multi-branch")
	}

	return tags
}
