package main

import (
	"encoding/json"
	"io"
)

// writeJSON encodes v as indented JSON. Ticket text is written as-is, without
// HTML escaping of <, > and &.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
