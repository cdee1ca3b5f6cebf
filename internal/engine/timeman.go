package engine

import (
	"time"

	"github.com/hailam/chesszero/internal/board"
)

// UCILimits carries the parameters of a UCI "go" command.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime
	Inc       [2]time.Duration // winc, binc
	MovesToGo int              // 0 = sudden death
	MoveTime  time.Duration    // fixed time per move, overrides the clock
	Nodes     int              // simulations, the MCTS analogue of a node budget
	Infinite  bool
}

// Budget turns clock information into search limits for the side us at the
// given game ply.
func Budget(limits UCILimits, us board.Color, ply int) SearchLimits {
	out := SearchLimits{Simulations: limits.Nodes, Infinite: limits.Infinite}
	if limits.Infinite {
		return out
	}
	if limits.MoveTime > 0 {
		out.MoveTime = limits.MoveTime
		return out
	}
	timeLeft := limits.Time[us]
	if timeLeft == 0 {
		if out.Simulations == 0 {
			out = DifficultySettings[Medium]
		}
		return out
	}

	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = min(max(50-ply/4, 10), 50)
	}
	budget := timeLeft/time.Duration(mtg) + limits.Inc[us]*9/10
	if ply < 8 {
		budget = budget * 85 / 100
	}
	// Never spend more than 80% of what is left.
	budget = min(budget, timeLeft*8/10)
	out.MoveTime = max(budget, 10*time.Millisecond)
	if out.Simulations == 0 {
		out.Simulations = infiniteSimulations
	}
	return out
}
