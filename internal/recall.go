package internal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Fixed signal weights. Commit and PR matches outrank note, tag and file
// matches; every signal fires at most once per snapshot.
const (
	weightCommit = 3
	weightPR     = 3
	weightNote   = 2
	weightTag    = 2
	weightFile   = 2
)

const (
	defaultSearchDays  = 90
	defaultSearchLimit = 10
	reasonExcerptLen   = 48
)

type SearchCriteria struct {
	Query     string
	ProjectID string
	From      string // YYYY-MM-DD, optional
	To        string // YYYY-MM-DD, optional
	Tags      []string
	Limit     int
}

// Empty reports whether no searchable signal was given; callers render a
// usage and stats display then, instead of an unhelpful empty list.
func (c SearchCriteria) Empty() bool {
	return strings.TrimSpace(c.Query) == "" && len(c.Tags) == 0
}

type RankedSnapshot struct {
	Snapshot     *WorkSnapshot `json:"snapshot"`
	Score        int           `json:"score"`
	MatchReasons []string      `json:"matchReasons"`
}

type RecallResult struct {
	Results  []RankedSnapshot `json:"results"`
	Warnings []string         `json:"warnings,omitempty"`
}

type FileHistoryEntry struct {
	Date      DateKey         `json:"date"`
	ProjectID string          `json:"projectId"`
	Commits   []JournalCommit `json:"commits"`
}

type FileHistoryResult struct {
	Entries  []FileHistoryEntry `json:"entries"`
	Warnings []string           `json:"warnings,omitempty"`
}

// Recall ranks stored snapshots by relevance for "when did I last work on X"
// retrieval. All matching is case-insensitive substring matching against a
// fixed weight per signal, so scores are stable across runs.
type Recall struct {
	store SnapshotRepository
	now   func() time.Time
}

func NewRecall(store SnapshotRepository) *Recall {
	return &Recall{store: store, now: time.Now}
}

// Search scores every snapshot in the criteria window, ranks by score then
// recency, and truncates to the limit only after ranking, so the limit never
// hides a higher-scoring older result behind a lower-scoring recent one.
func (r *Recall) Search(ctx context.Context, criteria SearchCriteria) (*RecallResult, error) {
	from, to, err := r.window(criteria.From, criteria.To)
	if err != nil {
		return nil, err
	}
	limit := criteria.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	ranged, err := r.store.GetRange(ctx, criteria.ProjectID, from, to)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(criteria.Query))
	tags := NormalizeTags(criteria.Tags)

	var ranked []RankedSnapshot
	for _, snap := range ranged.Snapshots {
		score, reasons := scoreSnapshot(snap, query, tags)
		if score == 0 {
			continue
		}
		ranked = append(ranked, RankedSnapshot{Snapshot: snap, Score: score, MatchReasons: reasons})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Snapshot.Date.After(ranked[j].Snapshot.Date)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return &RecallResult{Results: ranked, Warnings: ranged.Warnings}, nil
}

// FindFileHistory returns, newest date first, the days whose commits touched
// a file whose path contains the query as a case-insensitive substring, so a
// bare basename like "auth.ts" finds "src/auth.ts".
func (r *Recall) FindFileHistory(ctx context.Context, filePath, projectID string, lookbackDays int) (*FileHistoryResult, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("file path must not be empty")
	}
	if lookbackDays <= 0 {
		lookbackDays = defaultSearchDays
	}

	today := DateKeyOf(r.now())
	from := DateKeyOf(r.now().AddDate(0, 0, -lookbackDays))
	ranged, err := r.store.GetRange(ctx, projectID, from, today)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(filePath)
	result := &FileHistoryResult{Warnings: ranged.Warnings}
	for _, snap := range ranged.Snapshots {
		var matched []JournalCommit
		for _, c := range snap.TodayCommits {
			for _, f := range c.Files {
				if strings.Contains(strings.ToLower(f), needle) {
					matched = append(matched, c)
					break
				}
			}
		}
		if len(matched) > 0 {
			result.Entries = append(result.Entries, FileHistoryEntry{
				Date:      snap.Date,
				ProjectID: snap.ProjectID,
				Commits:   matched,
			})
		}
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		if result.Entries[i].Date != result.Entries[j].Date {
			return result.Entries[i].Date.After(result.Entries[j].Date)
		}
		return result.Entries[i].ProjectID < result.Entries[j].ProjectID
	})
	return result, nil
}

func (r *Recall) window(from, to string) (DateKey, DateKey, error) {
	toKey := DateKeyOf(r.now())
	fromKey := DateKeyOf(r.now().AddDate(0, 0, -defaultSearchDays))

	var err error
	if from != "" {
		if fromKey, err = NewDateKey(from); err != nil {
			return "", "", err
		}
	}
	if to != "" {
		if toKey, err = NewDateKey(to); err != nil {
			return "", "", err
		}
	}
	return fromKey, toKey, nil
}

func scoreSnapshot(snap *WorkSnapshot, query string, tags []string) (int, []string) {
	score := 0
	var reasons []string

	if query != "" {
		if msg, ok := matchCommit(snap, query); ok {
			score += weightCommit
			reasons = append(reasons, "commit: "+excerpt(msg))
		}
		if title, ok := matchPR(snap, query); ok {
			score += weightPR
			reasons = append(reasons, "pr: "+excerpt(title))
		}
		if snap.Notes != "" && strings.Contains(strings.ToLower(snap.Notes), query) {
			score += weightNote
			reasons = append(reasons, "note: "+excerpt(snap.Notes))
		}
		if path, ok := matchFile(snap, query); ok {
			score += weightFile
			reasons = append(reasons, "file: "+path)
		}
	}

	if tag, ok := matchTags(snap, query, tags); ok {
		score += weightTag
		reasons = append(reasons, "tag: "+tag)
	}

	return score, reasons
}

func matchCommit(snap *WorkSnapshot, query string) (string, bool) {
	for _, list := range [][]JournalCommit{snap.TodayCommits, snap.RecentCommits} {
		for _, c := range list {
			if strings.Contains(strings.ToLower(c.Message), query) {
				return c.Message, true
			}
		}
	}
	return "", false
}

func matchPR(snap *WorkSnapshot, query string) (string, bool) {
	for _, pr := range snap.PullRequests {
		if strings.Contains(strings.ToLower(pr.Title), query) {
			return pr.Title, true
		}
	}
	return "", false
}

func matchFile(snap *WorkSnapshot, query string) (string, bool) {
	for _, f := range snap.TopChangedFiles {
		if strings.Contains(strings.ToLower(f.Path), query) {
			return f.Path, true
		}
	}
	for _, c := range snap.TodayCommits {
		for _, f := range c.Files {
			if strings.Contains(strings.ToLower(f), query) {
				return f, true
			}
		}
	}
	return "", false
}

// matchTags fires on an explicit tag filter (exact or substring) or on the
// free-text query hitting a tag.
func matchTags(snap *WorkSnapshot, query string, tags []string) (string, bool) {
	for _, want := range tags {
		for _, have := range snap.Tags {
			if have == want || strings.Contains(have, want) {
				return have, true
			}
		}
	}
	if query != "" {
		for _, have := range snap.Tags {
			if strings.Contains(have, query) {
				return have, true
			}
		}
	}
	return "", false
}

func excerpt(s string) string {
	s = firstLine(s)
	if len(s) > reasonExcerptLen {
		s = s[:reasonExcerptLen] + "..."
	}
	return `"` + s + `"`
}
