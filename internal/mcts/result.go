package mcts

import (
	"math/rand"

	"github.com/hailam/chesszero/internal/action"
)

// Result is the root statistics of a search. The slices are parallel and
// follow the legal-action enumeration order of the root position.
type Result struct {
	Actions []int
	Visits  []int
	Q       []float64
	Priors  []float32
	// Value is the evaluator's estimate of the root for the side to move.
	Value float32
	// Simulations is the number of completed simulations.
	Simulations int
}

func newResult(n *node, value float32, sims int) *Result {
	r := &Result{
		Actions:     append([]int(nil), n.actions...),
		Visits:      append([]int(nil), n.visits...),
		Q:           make([]float64, len(n.actions)),
		Priors:      append([]float32(nil), n.priors...),
		Value:       value,
		Simulations: sims,
	}
	for i := range n.actions {
		r.Q[i] = n.q(i)
	}
	return r
}

// TotalVisits is the sum of root visit counts, equal to Simulations.
func (r *Result) TotalVisits() int {
	total := 0
	for _, v := range r.Visits {
		total += v
	}
	return total
}

// Counts returns visit counts laid out over the whole action space.
func (r *Result) Counts() []int32 {
	out := make([]int32, action.Size)
	for i, a := range r.Actions {
		out[a] = int32(r.Visits[i])
	}
	return out
}

// Policy returns the visit distribution over the legal actions, parallel to
// Actions. With no visits it falls back to the priors.
func (r *Result) Policy() []float32 {
	out := make([]float32, len(r.Actions))
	total := r.TotalVisits()
	if total == 0 {
		copy(out, r.Priors)
		return out
	}
	for i, v := range r.Visits {
		out[i] = float32(v) / float32(total)
	}
	return out
}

// Best returns the most visited action, the earliest one on ties, or -1 when
// there are no actions.
func (r *Result) Best() int {
	best, bestVisits := -1, -1
	for i, v := range r.Visits {
		if v > bestVisits {
			best, bestVisits = r.Actions[i], v
		}
	}
	return best
}

// Sample draws an action with probability proportional to its visit count.
func (r *Result) Sample(rng *rand.Rand) int {
	policy := r.Policy()
	x := rng.Float32()
	var cum float32
	for i, p := range policy {
		cum += p
		if x < cum {
			return r.Actions[i]
		}
	}
	if len(r.Actions) == 0 {
		return -1
	}
	return r.Best()
}
