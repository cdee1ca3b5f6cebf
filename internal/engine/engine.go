// Package engine wraps the tree search into a move-picking engine with
// difficulty presets, time limits and a stop switch, for the GUI and UCI front ends.
package engine

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/hailam/chesszero/internal/action"
	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/mcts"
)

// SearchInfo reports the outcome of a search.
type SearchInfo struct {
	Simulations int
	// Value is the root estimate for the side to move, in [-1, 1].
	Value float32
	// Q is the mean value of the chosen move for the side to move.
	Q        float64
	Visits   int
	Time     time.Duration
	BestMove board.Move
}

// SearchLimits bounds a search. Zero fields fall back to the engine defaults.
type SearchLimits struct {
	Simulations int
	MoveTime    time.Duration // 0 = no limit
	Infinite    bool          // run until Stop, capped by Simulations when set
}

// Difficulty selects a preset simulation budget.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "Easy"
	case Hard:
		return "Hard"
	default:
		return "Medium"
	}
}

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Simulations: 25, MoveTime: 500 * time.Millisecond},
	Medium: {Simulations: 200, MoveTime: 2 * time.Second},
	Hard:   {Simulations: 800, MoveTime: 5 * time.Second},
}

// infiniteSimulations bounds an "infinite" search so memory stays finite.
const infiniteSimulations = 1 << 20

// Engine picks moves with MCTS. Search and Stop may be called from different
// goroutines; only one search runs at a time.
type Engine struct {
	mu         sync.Mutex
	search     *mcts.MCTS
	difficulty Difficulty
	cancel     context.CancelFunc
	searchID   uint64 // owner of cancel

	// OnInfo, when set, is called once per finished search.
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine around eval. A nil eval uses mcts.Material.
func NewEngine(cfg mcts.Config, eval mcts.Evaluator) *Engine {
	if eval == nil {
		eval = mcts.Material{}
	}
	return &Engine{
		search:     mcts.New(cfg, eval),
		difficulty: Medium,
	}
}

// SetDifficulty sets the preset used by Search.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.mu.Lock()
	e.difficulty = d
	e.mu.Unlock()
}

// SetEvaluator swaps the position evaluator.
func (e *Engine) SetEvaluator(eval mcts.Evaluator) {
	e.mu.Lock()
	e.search.Evaluator = eval
	e.mu.Unlock()
}

// SetCpuct changes the exploration constant.
func (e *Engine) SetCpuct(c float64) {
	if c <= 0 {
		return
	}
	e.mu.Lock()
	e.search.Config.Cpuct = c
	e.mu.Unlock()
}

// Search finds a move for the side to move using the current difficulty.
func (e *Engine) Search(s *board.State) board.Move {
	e.mu.Lock()
	limits := DifficultySettings[e.difficulty]
	e.mu.Unlock()
	return e.SearchWithLimits(context.Background(), s, limits)
}

// SearchWithLimits runs one search and returns the most visited move, or
// NoMove when the position has no legal moves. A search cut short by Stop,
// the move time or ctx still returns the best move found so far.
func (e *Engine) SearchWithLimits(ctx context.Context, s *board.State, limits SearchLimits) board.Move {
	ctx, cancel := context.WithCancel(ctx)
	if limits.MoveTime > 0 && !limits.Infinite {
		ctx, cancel = withTimeout(ctx, cancel, limits.MoveTime)
	}

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = cancel
	e.searchID++
	id := e.searchID
	m := *e.search
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		if e.searchID == id {
			e.cancel = nil
		}
		e.mu.Unlock()
		cancel()
	}()

	switch {
	case limits.Simulations > 0:
		m.Config.Simulations = limits.Simulations
	case limits.Infinite:
		m.Config.Simulations = infiniteSimulations
	}

	start := time.Now()
	res, err := m.Search(ctx, s)
	if res == nil {
		if err != nil && !errors.Is(err, mcts.ErrNoLegalActions) {
			return fallbackMove(s)
		}
		return board.NoMove
	}

	best := res.Best()
	mv, decodeErr := action.Decode(best)
	if decodeErr != nil || res.Simulations == 0 {
		return fallbackMove(s)
	}

	if e.OnInfo != nil {
		info := SearchInfo{
			Simulations: res.Simulations,
			Value:       res.Value,
			Time:        time.Since(start),
			BestMove:    mv,
		}
		for i, a := range res.Actions {
			if a == best {
				info.Q = res.Q[i]
				info.Visits = res.Visits[i]
			}
		}
		e.OnInfo(info)
	}
	return mv
}

func withTimeout(ctx context.Context, outer context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	ctx, inner := context.WithTimeout(ctx, d)
	return ctx, func() {
		inner()
		outer()
	}
}

// fallbackMove returns the first legal move, used when the search could not run.
func fallbackMove(s *board.State) board.Move {
	if moves := board.LegalMoves(s); len(moves) > 0 {
		return moves[0]
	}
	return board.NoMove
}

// Stop cancels the running search, if any.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Perft counts leaf nodes of the legal move tree (for debugging move generation).
func (e *Engine) Perft(s *board.State, depth int) int64 {
	return board.Perft(s, depth)
}

// ValueToString renders a value in [-1, 1] as a win probability for the side to move.
func ValueToString(v float64) string {
	pct := int((v + 1) * 50)
	return strconv.Itoa(pct) + "%"
}

// ValueToCentipawns maps a value in [-1, 1] to a rough centipawn score for UCI output.
func ValueToCentipawns(v float64) int {
	switch {
	case v >= 0.999:
		return 10000
	case v <= -0.999:
		return -10000
	}
	// Inverse of tanh(cp / 1000), the squashing used by the material evaluator.
	return int(1000 * math.Atanh(v))
}
