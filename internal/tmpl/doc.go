// Package tmpl renders {{placeholder}} templates against ticket fields.
//
// Placeholders whose key is missing are left verbatim so that a template
// written for a newer field set never stops a running daemon. Substituted
// values are never re-scanned.
package tmpl
