package tmpl

import (
	"regexp"
)

var placeholderPattern = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// DefaultTemplate lists every ticket field. Used when no template is configured.
const DefaultTemplate = `=== TICKET DETAILS ===
ID: {{id}}
Title: {{title}}
Description: {{description}}
Priority: {{priority_label}} ({{priority}})
Type: {{type_label}}
Status: {{status}}
Created by: {{created_by}}
Created at: {{created_at}}
Updated at: {{updated_at}}
=== END TICKET ===
`

// Render replaces each {{key}} in template with fields[key].
func Render(template string, fields map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[2 : len(match)-2]
		if value, ok := fields[key]; ok {
			return value
		}
		return match
	})
}

// Placeholders returns the distinct keys referenced by template, in order of
// first appearance.
func Placeholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]struct{}, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		keys = append(keys, m[1])
	}
	return keys
}
