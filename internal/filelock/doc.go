// Package filelock implements an advisory, non-reentrant, cross-process
// exclusive lock keyed by a filesystem path.
//
// Mutual exclusion comes solely from the filesystem's create-exclusive open:
// whichever caller creates the marker file first holds the lock, and the
// marker's content is the holder's PID as decimal text. There is no lock
// manager, no expiry, no heartbeat and no fencing token. A crashed holder
// leaves its marker behind and the lock stays held until someone removes the
// file (see `tickteer lock clear`). Exclusion between goroutines of one process
// using separate handles is best-effort only.
package filelock
