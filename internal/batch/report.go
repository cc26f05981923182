package batch

import (
	"time"

	"dirsend/internal/mapper"
	"dirsend/internal/process"
)

// Report describes a finished (or aborted) run. Results holds one entry per
// mapping that was actually executed, in execution order.
type Report struct {
	RunID     string
	State     State
	Total     int
	Remaining int
	Results   []process.JobResult
	Failed    *mapper.FileMapping
	StartedAt time.Time
	Duration  time.Duration
}

// Processed returns the number of mappings that reached the runner.
func (r *Report) Processed() int {
	return len(r.Results)
}
