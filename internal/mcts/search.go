package mcts

import (
	"context"
	"fmt"
	"math"

	"github.com/hailam/chesszero/internal/action"
	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/encoding"
)

// node holds the per-action statistics of one position.
type node struct {
	actions []int
	priors  []float32
	visits  []int
	value   []float64 // accumulated W per action
	total   int

	terminal      bool
	terminalValue float32
}

func (n *node) q(i int) float64 {
	if n.visits[i] == 0 {
		return 0
	}
	return n.value[i] / float64(n.visits[i])
}

// selectAction returns the index into n.actions maximizing
// Q + c*P*sqrt(N+1)/(1+n). Ties go to the earliest action.
func (n *node) selectAction(cpuct float64) int {
	sqrtTotal := math.Sqrt(float64(n.total + 1))
	best, bestScore := 0, math.Inf(-1)
	for i := range n.actions {
		u := n.q(i) + cpuct*float64(n.priors[i])*sqrtTotal/float64(1+n.visits[i])
		if u > bestScore {
			best, bestScore = i, u
		}
	}
	return best
}

type step struct {
	node *node
	idx  int
}

type table map[string]*node

// Search runs Config.Simulations simulations from root and returns the root
// statistics. root is never modified. The context is checked before each
// simulation; on cancellation the statistics gathered so far are returned
// together with ctx.Err().
func (m *MCTS) Search(ctx context.Context, root *board.State) (*Result, error) {
	cfg := m.Config.withDefaults()
	t := make(table)

	rootNode, rootValue, err := m.expand(ctx, t, root)
	if err != nil {
		return nil, err
	}
	if rootNode.terminal {
		return nil, ErrNoLegalActions
	}

	done := 0
	for ; done < cfg.Simulations; done++ {
		if err := ctx.Err(); err != nil {
			return newResult(rootNode, rootValue, done), err
		}
		if err := m.simulate(ctx, t, root.Clone(), cfg); err != nil {
			return newResult(rootNode, rootValue, done), err
		}
	}
	return newResult(rootNode, rootValue, done), nil
}

// simulate descends from s through known positions, evaluates the first new
// or terminal one and backs the value up the path. A position repeated within
// the same descent ends it as a draw, so every edge is counted at most once.
func (m *MCTS) simulate(ctx context.Context, t table, s *board.State, cfg Config) error {
	var path []step
	var value float32
	seen := make(map[string]struct{})

	for {
		key := s.Key()
		if _, dup := seen[key]; dup {
			value = 0
			break
		}
		seen[key] = struct{}{}

		n, ok := t[key]
		if !ok {
			var err error
			_, value, err = m.expand(ctx, t, s)
			if err != nil {
				return err
			}
			break
		}
		if n.terminal {
			value = n.terminalValue
			break
		}
		if len(path) >= cfg.MaxDepth {
			value = 0
			break
		}

		i := n.selectAction(cfg.Cpuct)
		path = append(path, step{node: n, idx: i})
		mv, err := action.Decode(n.actions[i])
		if err != nil {
			return err
		}
		if err := board.MakeMove(s, mv); err != nil {
			return fmt.Errorf("mcts: descend %s: %w", mv, err)
		}
	}

	// value belongs to the mover at the leaf; each edge is scored for the
	// mover at its parent, one ply earlier.
	for i := len(path) - 1; i >= 0; i-- {
		value = -value
		st := path[i]
		st.node.visits[st.idx]++
		st.node.value[st.idx] += float64(value)
		st.node.total++
	}
	return nil
}

// expand adds s to the table and returns its value for the side to move.
// Positions without legal moves are stored as terminal: -1 when the mover is
// in check or has no king, 0 for stalemate.
func (m *MCTS) expand(ctx context.Context, t table, s *board.State) (*node, float32, error) {
	n := &node{actions: action.Legal(s)}
	t[s.Key()] = n

	if len(n.actions) == 0 {
		n.terminal = true
		if inCheck, _ := s.InCheck(s.SideToMove); inCheck {
			n.terminalValue = -1
		}
		return n, n.terminalValue, nil
	}

	obs := encoding.Encode(s)
	priors, value, err := m.Evaluator.Evaluate(ctx, &obs)
	if err != nil {
		delete(t, s.Key())
		return nil, 0, fmt.Errorf("mcts: evaluate: %w", err)
	}

	n.priors = legalPriors(priors, n.actions)
	n.visits = make([]int, len(n.actions))
	n.value = make([]float64, len(n.actions))
	return n, clampValue(value), nil
}

// legalPriors picks the entries of full for the legal actions and normalizes
// them, falling back to uniform when they carry no usable mass.
func legalPriors(full []float32, actions []int) []float32 {
	out := make([]float32, len(actions))
	var sum float64
	for i, a := range actions {
		if a < len(full) {
			p := full[a]
			if p > 0 && !math.IsInf(float64(p), 0) {
				out[i] = p
				sum += float64(p)
			}
		}
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		u := 1 / float32(len(actions))
		for i := range out {
			out[i] = u
		}
		return out
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}

func clampValue(v float32) float32 {
	switch {
	case math.IsNaN(float64(v)):
		return 0
	case v > 1:
		return 1
	case v < -1:
		return -1
	}
	return v
}
