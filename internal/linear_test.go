package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestExtractTicketIDs(t *testing.T) {
	commits := []JournalCommit{
		{Hash: "a", Message: "ENG-456: retry the webhook"},
		{Hash: "b", Message: "no ticket here"},
		{Hash: "c", Message: "touches ENG-456 again and OPS-12"},
	}

	got := ExtractTicketIDs("feature/ENG-123-login-fix", commits)
	want := []string{"ENG-123", "ENG-456", "OPS-12"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

func TestExtractTicketIDsIgnoresNoise(t *testing.T) {
	commits := []JournalCommit{
		{Hash: "a", Message: "bump to v1-2 and utf-8 fixes"},   // lowercase prefixes
		{Hash: "b", Message: "see RFC -123 and X-1 style ids"}, // single-letter prefix
	}

	got := ExtractTicketIDs("main", commits)
	if len(got) != 0 {
		t.Errorf("expected no ids, got %v", got)
	}
}

func TestLinearLookupTickets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "lin_test" {
			t.Errorf("auth header = %q", got)
		}

		var req struct {
			Variables struct {
				ID string `json:"id"`
			} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		if req.Variables.ID == "ENG-123" {
			fmt.Fprint(w, `{"data":{"issue":{"identifier":"ENG-123","title":"Login bug","state":{"name":"In Progress","type":"started"}}}}`)
			return
		}
		fmt.Fprint(w, `{"data":{"issue":null}}`)
	}))
	defer srv.Close()

	lt := NewLinearTickets(LinearConfig{APIKey: "lin_test"})
	lt.baseURL = srv.URL

	got, err := lt.LookupTickets(context.Background(), []string{"ENG-123", "GHOST-9"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("tickets = %+v", got)
	}

	if got[0].Title != "Login bug" || got[0].Status != "In Progress" || got[0].Type != "started" {
		t.Errorf("enriched ticket = %+v", got[0])
	}
	// an id the tracker does not know survives as a bare reference
	if got[1].ID != "GHOST-9" || got[1].Title != "" {
		t.Errorf("unknown ticket = %+v", got[1])
	}
}

func TestLinearLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	lt := NewLinearTickets(LinearConfig{APIKey: "lin_test"})
	lt.baseURL = srv.URL

	if _, err := lt.LookupTickets(context.Background(), []string{"ENG-123"}); err == nil {
		t.Error("expected error for HTTP failure")
	}
}
