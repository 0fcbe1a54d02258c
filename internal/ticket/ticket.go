package ticket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Ticket is one ready item. Absent string fields decode to "".
type Ticket struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    int    `json:"priority"`
	IssueType   string `json:"issue_type"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type wireTicket struct {
	ID          looseString `json:"id"`
	Title       looseString `json:"title"`
	Description looseString `json:"description"`
	Status      looseString `json:"status"`
	Priority    looseInt    `json:"priority"`
	IssueType   looseString `json:"issue_type"`
	CreatedBy   looseString `json:"created_by"`
	CreatedAt   looseString `json:"created_at"`
	UpdatedAt   looseString `json:"updated_at"`
}

// UnmarshalJSON accepts scalar values of any JSON type for the string fields
// and integral numbers (or numeric strings) for priority.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	var w wireTicket
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Ticket{
		ID:          string(w.ID),
		Title:       string(w.Title),
		Description: string(w.Description),
		Status:      string(w.Status),
		Priority:    int(w.Priority),
		IssueType:   string(w.IssueType),
		CreatedBy:   string(w.CreatedBy),
		CreatedAt:   string(w.CreatedAt),
		UpdatedAt:   string(w.UpdatedAt),
	}
	return nil
}

// Decode parses the source's JSON array. An empty body or `null` is an empty list.
func Decode(data []byte) ([]Ticket, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var tickets []Ticket
	if err := json.Unmarshal(trimmed, &tickets); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return tickets, nil
}

// PriorityLabel is the human name of the ticket's priority.
func (t Ticket) PriorityLabel() string {
	return PriorityLabel(t.Priority)
}

// TypeLabel is the human name of the ticket's issue type.
func (t Ticket) TypeLabel() string {
	return TypeLabel(t.IssueType)
}

// Fields returns the template substitution map.
func (t Ticket) Fields() map[string]string {
	return map[string]string{
		"id":             t.ID,
		"title":          t.Title,
		"description":    t.Description,
		"status":         t.Status,
		"priority":       strconv.Itoa(t.Priority),
		"priority_label": t.PriorityLabel(),
		"issue_type":     t.IssueType,
		"type_label":     t.TypeLabel(),
		"created_by":     t.CreatedBy,
		"created_at":     t.CreatedAt,
		"updated_at":     t.UpdatedAt,
	}
}

type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*s = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '['):
		return fmt.Errorf("expected scalar, got %s", kindOf(trimmed))
	default:
		// numbers and booleans keep their literal text
		*s = looseString(trimmed)
	}
	return nil
}

type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*n = 0
		return nil
	}
	raw := string(trimmed)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("priority %s is not an integer", trimmed)
	}
	*n = looseInt(v)
	return nil
}

func kindOf(data []byte) string {
	if data[0] == '{' {
		return "object"
	}
	return "array"
}
