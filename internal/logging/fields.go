package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (e.g. cycle_processed).
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldTicketID is the ticket being selected or processed.
	FieldTicketID = "ticket_id"
	// FieldRunID identifies one daemon process run.
	FieldRunID = "run_id"
	// FieldLockPath is the lock marker path.
	FieldLockPath = "lock_path"
	// FieldOutcome is the result of a daemon cycle.
	FieldOutcome = "outcome"
)
