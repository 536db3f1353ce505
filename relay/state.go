package relay

import "fmt"

// Phase is the step the relay is running
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseDiscovering Phase = "discovering"
	PhaseSubmitting  Phase = "submitting"
)

// RelayState is a snapshot of a relay direction
type RelayState struct {
	Direction       string `json:"direction"`
	Phase           Phase  `json:"phase"`
	NextBlockNumber uint64 `json:"nextBlockNumber"`
	BackoffSteps    uint64 `json:"backoffSteps"`
	Synced          bool   `json:"synced"`
	// LastResult is the outcome of the last submission, empty if nothing was submitted yet
	LastResult string `json:"lastResult,omitempty"`
}

func (s RelayState) String() string {
	return fmt.Sprintf("direction=%s phase=%s next=%d backoff=%d synced=%t",
		s.Direction, s.Phase, s.NextBlockNumber, s.BackoffSteps, s.Synced)
}

// stepBack moves the cursor back n blocks, stopping at 0
func (s *RelayState) stepBack(n uint64) {
	if n > s.NextBlockNumber {
		s.NextBlockNumber = 0
		return
	}
	s.NextBlockNumber -= n
}
