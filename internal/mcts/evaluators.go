package mcts

import (
	"context"
	"math"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/encoding"
)

// Uniform returns flat priors and a zero value for every position.
type Uniform struct{}

func (Uniform) Evaluate(context.Context, *encoding.Observation) ([]float32, float32, error) {
	return nil, 0, nil
}

// Material scores a position by the material balance read from the piece
// planes, squashed into [-1, 1] with tanh. Priors are uniform. It is the
// fallback evaluator when no network is configured.
type Material struct {
	// Scale is the centipawn difference that maps to tanh(1). Zero means 1000.
	Scale float64
}

var planeValues = func() [encoding.Planes - 1]int {
	var v [encoding.Planes - 1]int
	for p := board.WhitePawn; p < board.NoPiece; p++ {
		if p.Type() == board.King {
			continue
		}
		v[encoding.Plane(p)] = p.Value()
	}
	return v
}()

func (m Material) Evaluate(_ context.Context, obs *encoding.Observation) ([]float32, float32, error) {
	scale := m.Scale
	if scale <= 0 {
		scale = 1000
	}
	// Even planes hold white pieces and odd planes black.
	balance := 0
	for plane, value := range planeValues {
		count := 0
		for _, x := range obs[plane*64 : (plane+1)*64] {
			if x > 0.5 {
				count++
			}
		}
		if plane%2 == 0 {
			balance += count * value
		} else {
			balance -= count * value
		}
	}
	if obs[encoding.TurnPlane*64] < 0.5 {
		balance = -balance
	}
	return nil, float32(math.Tanh(float64(balance) / scale)), nil
}
