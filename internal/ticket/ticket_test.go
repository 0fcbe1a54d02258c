package ticket_test

import (
	"testing"

	"tickteer/internal/ticket"
)

func TestDecodeDefaultsMissingFields(t *testing.T) {
	tickets, err := ticket.Decode([]byte(`[
		{"id": "bd-1", "title": "Fix login", "priority": 1, "issue_type": "bug", "created_by": "ana"},
		{"id": 42, "priority": "3", "description": null}
	]`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}

	first := tickets[0]
	if first.ID != "bd-1" || first.Title != "Fix login" || first.Priority != 1 || first.IssueType != "bug" {
		t.Fatalf("unexpected first ticket %+v", first)
	}
	if first.Status != "" || first.UpdatedAt != "" {
		t.Fatalf("expected absent fields to be empty, got %+v", first)
	}

	second := tickets[1]
	if second.ID != "42" {
		t.Fatalf("expected numeric id rendered as text, got %q", second.ID)
	}
	if second.Priority != 3 {
		t.Fatalf("expected numeric-string priority, got %d", second.Priority)
	}
	if second.Description != "" {
		t.Fatalf("expected null description to be empty, got %q", second.Description)
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, body := range []string{"", "  \n", "null", "[]"} {
		tickets, err := ticket.Decode([]byte(body))
		if err != nil {
			t.Fatalf("Decode(%q) returned error: %v", body, err)
		}
		if len(tickets) != 0 {
			t.Fatalf("Decode(%q) returned %d tickets", body, len(tickets))
		}
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, body := range []string{
		`{"id": "x"}`,
		`[{"id": "x", "priority": "high"}]`,
		`[{"id": {"nested": true}}]`,
		`not json`,
	} {
		if _, err := ticket.Decode([]byte(body)); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}

func TestPriorityLabel(t *testing.T) {
	cases := map[int]string{
		0:  "CRITICAL",
		1:  "HIGH",
		2:  "MEDIUM",
		3:  "LOW",
		4:  "BACKLOG",
		7:  "Unknown (7)",
		-1: "Unknown (-1)",
	}
	for priority, want := range cases {
		if got := ticket.PriorityLabel(priority); got != want {
			t.Fatalf("PriorityLabel(%d) = %q, want %q", priority, got, want)
		}
	}
}

func TestTypeLabel(t *testing.T) {
	cases := map[string]string{
		"bug":     "Bug",
		"feature": "Feature",
		"task":    "Task",
		"epic":    "EPIC",
		"":        "UNKNOWN",
	}
	for issueType, want := range cases {
		if got := ticket.TypeLabel(issueType); got != want {
			t.Fatalf("TypeLabel(%q) = %q, want %q", issueType, got, want)
		}
	}
}

func TestFields(t *testing.T) {
	tk := ticket.Ticket{ID: "bd-9", Title: "T", Priority: 9, IssueType: "chore"}
	fields := tk.Fields()
	want := map[string]string{
		"id":             "bd-9",
		"title":          "T",
		"description":    "",
		"status":         "",
		"priority":       "9",
		"priority_label": "Unknown (9)",
		"issue_type":     "chore",
		"type_label":     "CHORE",
		"created_by":     "",
		"created_at":     "",
		"updated_at":     "",
	}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(fields))
	}
	for key, value := range want {
		if fields[key] != value {
			t.Fatalf("field %s = %q, want %q", key, fields[key], value)
		}
	}
}

func TestTopPicksLowestPriority(t *testing.T) {
	tickets := []ticket.Ticket{{ID: "A", Priority: 2}, {ID: "B", Priority: 0}}
	top, ok := ticket.Top(tickets)
	if !ok || top.ID != "B" {
		t.Fatalf("expected B, got %+v (ok=%v)", top, ok)
	}
}

func TestTopKeepsSourceOrderOnTies(t *testing.T) {
	tickets := []ticket.Ticket{
		{ID: "low", Priority: 3},
		{ID: "first", Priority: 1},
		{ID: "second", Priority: 1},
	}
	top, _ := ticket.Top(tickets)
	if top.ID != "first" {
		t.Fatalf("expected first of the tied tickets, got %s", top.ID)
	}
}

func TestTopEmpty(t *testing.T) {
	if _, ok := ticket.Top(nil); ok {
		t.Fatal("expected no ticket from empty input")
	}
}

func TestSortByPriorityIsStableCopy(t *testing.T) {
	tickets := []ticket.Ticket{
		{ID: "c", Priority: 2},
		{ID: "a", Priority: 0},
		{ID: "d", Priority: 2},
		{ID: "b", Priority: 1},
	}
	sorted := ticket.SortByPriority(tickets)
	var order string
	for _, tk := range sorted {
		order += tk.ID
	}
	if order != "abcd" {
		t.Fatalf("unexpected order %q", order)
	}
	if tickets[0].ID != "c" {
		t.Fatal("input slice must not be reordered")
	}
}
