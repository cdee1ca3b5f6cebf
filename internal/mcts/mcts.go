// Package mcts implements PUCT Monte-Carlo tree search over chess positions.
//
// Statistics live in a flat table keyed by board.State.Key rather than in a
// linked tree; positions reached by different move orders share one entry.
// Every value is from the point of view of the side to move at the position
// it belongs to, so Q(s,a) is how good a is for the player choosing it.
package mcts

import (
	"context"
	"errors"

	"github.com/hailam/chesszero/internal/encoding"
)

// ErrNoLegalActions is returned when the root position is already decided.
var ErrNoLegalActions = errors.New("mcts: no legal actions at root")

// Evaluator estimates a position from its observation.
//
// priors covers the action space (action.Size entries, probabilities rather
// than logits); entries for illegal actions are ignored and the rest are
// renormalized. A nil or all-zero priors slice means uniform. value is in
// [-1, 1] from the point of view of the side to move.
type Evaluator interface {
	Evaluate(ctx context.Context, obs *encoding.Observation) (priors []float32, value float32, err error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, obs *encoding.Observation) ([]float32, float32, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, obs *encoding.Observation) ([]float32, float32, error) {
	return f(ctx, obs)
}

// Config holds search parameters.
type Config struct {
	// Cpuct weighs the prior-driven exploration term against Q.
	Cpuct float64
	// Simulations is the number of simulations per Search call.
	Simulations int
	// MaxDepth caps a single descent. A path that hits it scores as a draw,
	// which stops the search from looping through repeated positions.
	MaxDepth int
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{
		Cpuct:       1.0,
		Simulations: 50,
		MaxDepth:    512,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Cpuct <= 0 {
		c.Cpuct = d.Cpuct
	}
	if c.Simulations <= 0 {
		c.Simulations = d.Simulations
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	return c
}

// MCTS runs searches with a fixed configuration and evaluator. Each Search
// call builds its own table, so concurrent calls are safe when the evaluator is.
type MCTS struct {
	Config    Config
	Evaluator Evaluator
}

// New returns an MCTS with cfg, filling unset fields from DefaultConfig. A
// nil eval searches with uniform priors.
func New(cfg Config, eval Evaluator) *MCTS {
	if eval == nil {
		eval = Uniform{}
	}
	return &MCTS{Config: cfg.withDefaults(), Evaluator: eval}
}
