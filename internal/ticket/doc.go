// Package ticket models the ready work items reported by the ticket source.
//
// Tickets are decoded from the source's JSON array, are read-only after
// construction, and expose the flat string map consumed by the template
// engine. Selection picks the numerically smallest priority, keeping the
// source's order among ties.
package ticket
