// Package config loads, normalizes, and validates Tickteer configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the TICKTEER_BD_BINARY environment
// override. CLI flags are layered on top by the caller, which then calls
// Normalize and Validate again.
package config
