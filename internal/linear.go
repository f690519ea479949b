package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"time"
)

const linearEndpoint = "https://api.linear.app/graphql"

var ticketIDPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-\d+\b`)

// ExtractTicketIDs pulls issue identifiers like ENG-123 out of the branch
// name and commit messages. Pure string work: ticket references end up in
// the snapshot even when no tracker is configured.
func ExtractTicketIDs(branch string, commits []JournalCommit) []string {
	seen := make(map[string]bool)
	var ids []string
	collect := func(text string) {
		for _, id := range ticketIDPattern.FindAllString(text, -1) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	collect(branch)
	for _, c := range commits {
		collect(c.Message)
	}
	sort.Strings(ids)
	return ids
}

// TicketProvider enriches locally extracted ticket ids with tracker state.
// Optional and failure-tolerant.
type TicketProvider interface {
	LookupTickets(ctx context.Context, ids []string) ([]TicketSnapshot, error)
}

// LinearTickets looks issues up in Linear's GraphQL API.
type LinearTickets struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewLinearTickets(cfg LinearConfig) *LinearTickets {
	return &LinearTickets{
		apiKey:  cfg.APIKey,
		baseURL: linearEndpoint,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

const linearIssueQuery = `query Issue($id: String!) {
  issue(id: $id) {
    identifier
    title
    state { name type }
  }
}`

type linearIssueResponse struct {
	Data struct {
		Issue *struct {
			Identifier string `json:"identifier"`
			Title      string `json:"title"`
			State      struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"state"`
		} `json:"issue"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// LookupTickets resolves each id individually; an id the tracker does not
// know stays in the result as a bare ticket rather than disappearing.
func (l *LinearTickets) LookupTickets(ctx context.Context, ids []string) ([]TicketSnapshot, error) {
	tickets := make([]TicketSnapshot, 0, len(ids))
	for _, id := range ids {
		var resp linearIssueResponse
		if err := l.query(ctx, linearIssueQuery, map[string]any{"id": id}, &resp); err != nil {
			return nil, fmt.Errorf("lookup %s: %w", id, err)
		}
		if len(resp.Errors) > 0 || resp.Data.Issue == nil {
			tickets = append(tickets, TicketSnapshot{ID: id})
			continue
		}
		issue := resp.Data.Issue
		tickets = append(tickets, TicketSnapshot{
			ID:     issue.Identifier,
			Title:  issue.Title,
			Status: issue.State.Name,
			Type:   issue.State.Type,
		})
	}
	return tickets, nil
}

func (l *LinearTickets) query(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("encoding query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("linear API error (status %d): %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
