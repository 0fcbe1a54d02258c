package ticket

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var priorityLabels = map[int]string{
	0: "CRITICAL",
	1: "HIGH",
	2: "MEDIUM",
	3: "LOW",
	4: "BACKLOG",
}

var typeLabels = map[string]string{
	"bug":     "Bug",
	"feature": "Feature",
	"task":    "Task",
}

// PriorityLabel maps 0..4 to CRITICAL..BACKLOG and anything else to "Unknown (N)".
func PriorityLabel(priority int) string {
	if label, ok := priorityLabels[priority]; ok {
		return label
	}
	return fmt.Sprintf("Unknown (%d)", priority)
}

// TypeLabel names known issue types, upper-cases unknown ones and reports
// UNKNOWN for an empty type.
func TypeLabel(issueType string) string {
	if label, ok := typeLabels[issueType]; ok {
		return label
	}
	if strings.TrimSpace(issueType) == "" {
		return "UNKNOWN"
	}
	return cases.Upper(language.Und).String(issueType)
}
