package internal

import (
	"reflect"
	"sort"
	"testing"
)

func commitsN(n int) []JournalCommit {
	out := make([]JournalCommit, n)
	for i := range out {
		out[i] = JournalCommit{Hash: string(rune('a' + i)), Message: "work"}
	}
	return out
}

func TestAutoTag(t *testing.T) {
	tests := []struct {
		name string
		snap *WorkSnapshot
		want []string
	}{
		{
			name: "empty day",
			snap: &WorkSnapshot{},
			want: nil,
		},
		{
			name: "light day",
			snap: &WorkSnapshot{TodayCommits: commitsN(2)},
			want: []string{"light-day"},
		},
		{
			name: "three commits is neither",
			snap: &WorkSnapshot{TodayCommits: commitsN(3)},
			want: nil,
		},
		{
			name: "productive",
			snap: &WorkSnapshot{TodayCommits: commitsN(5)},
			want: []string{"productive"},
		},
		{
			name: "wip branch",
			snap: &WorkSnapshot{ActiveBranches: []BranchStatus{{Name: "feat", HasChanges: true}}},
			want: []string{"has-wip"},
		},
		{
			name: "open and merged prs",
			snap: &WorkSnapshot{PullRequests: []PRSnapshot{
				{Number: 1, State: PROpen},
				{Number: 2, State: PRMerged},
				{Number: 3, State: PRClosed},
			}},
			want: []string{"merged-pr", "open-pr"},
		},
		{
			name: "tickets",
			snap: &WorkSnapshot{Tickets: []TicketSnapshot{{ID: "ENG-1"}}},
			want: []string{"has-tickets"},
		},
		{
			name: "large change",
			snap: &WorkSnapshot{DiffStats: &DiffStats{Insertions: 400, Deletions: 150}},
			want: []string{"large-change"},
		},
		{
			name: "just under large change",
			snap: &WorkSnapshot{DiffStats: &DiffStats{Insertions: 400, Deletions: 99}},
			want: nil,
		},
		{
			name: "multi branch",
			snap: &WorkSnapshot{ActiveBranches: []BranchStatus{{Name: "a"}, {Name: "b"}, {Name: "c"}}},
			want: []string{"multi-branch"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AutoTag(tt.snap)
			sort.Strings(got)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AutoTag = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAutoTagDeterministic(t *testing.T) {
	snap := &WorkSnapshot{
		TodayCommits:   commitsN(6),
		ActiveBranches: []BranchStatus{{Name: "a", HasChanges: true}, {Name: "b"}, {Name: "c"}},
		Tickets:        []TicketSnapshot{{ID: "ENG-9"}},
		DiffStats:      &DiffStats{Insertions: 600},
	}

	first := AutoTag(snap)
	second := AutoTag(snap)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same snapshot produced different tags: %v vs %v", first, second)
	}

	want := []string{"productive", "has-wip", "has-tickets", "large-change", "multi-branch"}
	if !reflect.DeepEqual(first, want) {
		t.Errorf("tags = %v, want %v", first, want)
	}
}
