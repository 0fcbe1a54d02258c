package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"tickteer/internal/config"
)

// Requirement defines an external binary tickteer relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries a configuration needs. The shell is only
// required when a daemon command is configured.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{{
		Name:        "Ticket source",
		Command:     cfg.Source.Binary,
		Description: "Lists ready tickets (" + strings.Join(cfg.Source.Args, " ") + ")",
	}}
	reqs = append(reqs, Requirement{
		Name:        "Shell",
		Command:     cfg.Daemon.Shell,
		Description: "Runs the configured daemon command",
		Optional:    strings.TrimSpace(cfg.Daemon.Command) == "",
	})
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Missing returns the required (non-optional) dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
