// Package daemon implements the ticket polling loop.
//
// Each cycle fetches the ready set, picks the lowest-priority-number ticket,
// skips it when it matches the last processed id, and otherwise renders the
// template and runs the configured command. Cycle state is an explicit State
// value threaded through Step; only a source failure ends Run early.
//
// InstanceLock keeps a second daemon on the same state directory from
// starting. It is independent of the optional processing gate, which uses the
// create-exclusive marker in internal/filelock.
package daemon
