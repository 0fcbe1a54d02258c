// Package runner executes the per-ticket command with optional stdin and a
// wall-clock bound. Commands run in their own process group so a timeout
// kills everything they spawned.
package runner
