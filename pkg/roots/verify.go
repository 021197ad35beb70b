package roots

import (
	"github.com/matzehuels/trigen/pkg/cycles"
	"github.com/matzehuels/trigen/pkg/errors"
	"github.com/matzehuels/trigen/pkg/graph"
	"github.com/matzehuels/trigen/pkg/rules"
)

// Report summarizes one verified candidate.
type Report struct {
	Steps   int // transformations replayed
	Tracked int // cycles carried by the candidate
	Actual  int // elementary cycles found from scratch
}

// Complete reports whether every elementary cycle is tracked.
func (r Report) Complete() bool { return r.Tracked == r.Actual }

// Verify replays c's history from root and checks the result against c.
// It also checks that every tracked cycle is an elementary cycle of the
// graph. A tracked set that misses cycles is reported, not rejected.
func Verify(c *rules.Candidate, root *graph.Graph) (Report, error) {
	h := c.Graph.History()
	replayed, err := graph.Replay(root, h)
	if err != nil {
		return Report{}, err
	}
	if !replayed.Equal(c.Graph) {
		return Report{}, errors.New(errors.ErrCodeInvariantViolation,
			"replaying %d steps from %s does not reproduce the graph", h.Len(), h.Root)
	}
	if err := c.Graph.Validate(); err != nil {
		return Report{}, err
	}

	all := cycles.Find(c.Graph)
	for cyc := range c.Cycles.All() {
		if !all.Contains(cyc) {
			return Report{}, errors.New(errors.ErrCodeInvariantViolation, "tracked cycle %v is not a cycle of the graph", cyc)
		}
	}
	return Report{Steps: h.Len(), Tracked: c.Cycles.Len(), Actual: all.Len()}, nil
}
