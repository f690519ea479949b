package internal

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
)

// PRProvider fetches pull request state from the remote host. It is optional
// and skippable; the assembler turns any error into a warning.
type PRProvider interface {
	ListMyOpenPRs(ctx context.Context, owner, repo string) ([]PRSnapshot, error)
	ListMyMergedPRsSince(ctx context.Context, owner, repo string, since time.Time) ([]PRSnapshot, error)
}

type GitHubPRs struct {
	client   *github.Client
	username string
}

func NewGitHubPRs(cfg GitHubConfig) *GitHubPRs {
	httpClient := &http.Client{
		Transport: &tokenTransport{token: cfg.Token, base: http.DefaultTransport},
		Timeout:   30 * time.Second,
	}
	return &GitHubPRs{
		client:   github.NewClient(httpClient),
		username: cfg.Username,
	}
}

type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.Header.Set("Authorization", "token "+t.token)
	return t.base.RoundTrip(req2)
}

func (p *GitHubPRs) ListMyOpenPRs(ctx context.Context, owner, repo string) ([]PRSnapshot, error) {
	prs, _, err := p.client.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 50},
	})
	if err != nil {
		return nil, fmt.Errorf("listing open PRs: %w", err)
	}

	var out []PRSnapshot
	for _, pr := range prs {
		if !p.mine(pr) {
			continue
		}
		out = append(out, toPRSnapshot(pr))
	}
	return out, nil
}

// ListMyMergedPRsSince walks recently updated closed PRs and keeps the ones
// merged at or after since. The listing is update-ordered, so the walk stops
// at the first PR older than the window.
func (p *GitHubPRs) ListMyMergedPRsSince(ctx context.Context, owner, repo string, since time.Time) ([]PRSnapshot, error) {
	prs, _, err := p.client.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 50},
	})
	if err != nil {
		return nil, fmt.Errorf("listing merged PRs: %w", err)
	}

	var out []PRSnapshot
	for _, pr := range prs {
		if pr.GetUpdatedAt().Time.Before(since) {
			break
		}
		if pr.MergedAt == nil || pr.GetMergedAt().Time.Before(since) {
			continue
		}
		if !p.mine(pr) {
			continue
		}
		out = append(out, toPRSnapshot(pr))
	}
	return out, nil
}

func (p *GitHubPRs) mine(pr *github.PullRequest) bool {
	if p.username == "" {
		return true
	}
	return strings.EqualFold(pr.GetUser().GetLogin(), p.username)
}

func toPRSnapshot(pr *github.PullRequest) PRSnapshot {
	state := PRState(pr.GetState())
	if pr.MergedAt != nil {
		state = PRMerged
	}

	var labels []string
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}

	return PRSnapshot{
		Number:     pr.GetNumber(),
		Title:      pr.GetTitle(),
		State:      state,
		URL:        pr.GetHTMLURL(),
		BaseBranch: pr.GetBase().GetRef(),
		HeadBranch: pr.GetHead().GetRef(),
		Labels:     labels,
	}
}
