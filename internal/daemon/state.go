package daemon

import (
	"tickteer/internal/runner"
	"tickteer/internal/ticket"
)

// State is the loop state carried from one cycle to the next. It is never
// persisted.
type State struct {
	LastProcessedID string
	ProcessedCount  int
}

// Outcome classifies what a cycle did.
type Outcome int

const (
	// OutcomeIdle means the source returned no ready tickets.
	OutcomeIdle Outcome = iota
	// OutcomeSkipped means the top ticket was the one processed last.
	OutcomeSkipped
	// OutcomeProcessed means the command exited zero.
	OutcomeProcessed
	// OutcomeFailed means the command exited non-zero or timed out.
	OutcomeFailed
	// OutcomeLocked means the processing gate could not be acquired.
	OutcomeLocked
	// OutcomeFatal means the ticket source failed. Run stops on it.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeProcessed:
		return "processed"
	case OutcomeFailed:
		return "failed"
	case OutcomeLocked:
		return "locked"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Fatal reports whether the outcome should stop the loop.
func (o Outcome) Fatal() bool { return o == OutcomeFatal }

// Cycle describes a single iteration.
type Cycle struct {
	Outcome Outcome
	// Ticket is the selected ticket; zero for idle and fatal cycles.
	Ticket ticket.Ticket
	// Result is set when the command ran.
	Result runner.Result
	Err    error
}
