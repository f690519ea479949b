package internal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newTestGitHub(t *testing.T, handler http.HandlerFunc) *GitHubPRs {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewGitHubPRs(GitHubConfig{Token: "ghp_test", Username: "dev"})
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse base: %v", err)
	}
	p.client.BaseURL = base
	return p
}

func TestGitHubListMyOpenPRs(t *testing.T) {
	p := newTestGitHub(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "token ghp_test" {
			t.Errorf("auth header = %q", got)
		}
		if r.URL.Path != "/repos/acme/api/pulls" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("state"); got != "open" {
			t.Errorf("state = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"number":42,"title":"Fix login","state":"open","user":{"login":"dev"},
			 "html_url":"https://github.com/acme/api/pull/42",
			 "base":{"ref":"main"},"head":{"ref":"feature/auth"},
			 "labels":[{"name":"bug"}]},
			{"number":43,"title":"Someone else","state":"open","user":{"login":"other"}}
		]`)
	})

	got, err := p.ListMyOpenPRs(context.Background(), "acme", "api")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("prs = %+v, want only mine", got)
	}

	pr := got[0]
	if pr.Number != 42 || pr.Title != "Fix login" || pr.State != PROpen {
		t.Errorf("pr = %+v", pr)
	}
	if pr.BaseBranch != "main" || pr.HeadBranch != "feature/auth" {
		t.Errorf("branches = %q -> %q", pr.HeadBranch, pr.BaseBranch)
	}
	if len(pr.Labels) != 1 || pr.Labels[0] != "bug" {
		t.Errorf("labels = %v", pr.Labels)
	}
}

func TestGitHubListMyMergedPRsSince(t *testing.T) {
	since := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)

	p := newTestGitHub(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("state"); got != "closed" {
			t.Errorf("state = %q", got)
		}
		if got := r.URL.Query().Get("sort"); got != "updated" {
			t.Errorf("sort = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"number":40,"title":"Session cleanup","state":"closed","user":{"login":"dev"},
			 "updated_at":"2026-02-10T12:00:00Z","merged_at":"2026-02-10T11:00:00Z"},
			{"number":39,"title":"Abandoned","state":"closed","user":{"login":"dev"},
			 "updated_at":"2026-02-10T09:00:00Z"},
			{"number":30,"title":"Ancient","state":"closed","user":{"login":"dev"},
			 "updated_at":"2026-01-01T00:00:00Z","merged_at":"2026-01-01T00:00:00Z"}
		]`)
	})

	got, err := p.ListMyMergedPRsSince(context.Background(), "acme", "api", since)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("prs = %+v, want just the recently merged one", got)
	}
	if got[0].Number != 40 || got[0].State != PRMerged {
		t.Errorf("pr = %+v", got[0])
	}
}

func TestGitHubMineWithoutUsername(t *testing.T) {
	p := newTestGitHub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"number":1,"title":"A","state":"open","user":{"login":"alice"}},
			{"number":2,"title":"B","state":"open","user":{"login":"bob"}}
		]`)
	})
	p.username = ""

	got, err := p.ListMyOpenPRs(context.Background(), "acme", "api")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// without a configured username every author counts
	if len(got) != 2 {
		t.Errorf("prs = %d, want 2", len(got))
	}
}
