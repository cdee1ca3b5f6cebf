package selfplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hailam/chesszero/internal/dataset"
	"github.com/hailam/chesszero/internal/encoding"
	"github.com/hailam/chesszero/internal/mcts"
)

// GameUpdate is sent after each finished game.
type GameUpdate struct {
	WorkerID int
	Result   GameResult
	Examples int
}

// Counters are shared by all workers of a Runner.
type Counters struct {
	Games       atomic.Int64
	Moves       atomic.Int64
	Evaluations atomic.Int64
}

// Runner plays games on several workers until its context is cancelled or
// MaxGames games have finished.
type Runner struct {
	Workers  int
	MaxGames int64
	Game     Config
	Eval     mcts.Evaluator
	Logger   *slog.Logger

	// Rows receives the rows of every finished game. It is closed by Run.
	Rows chan<- []dataset.TrainingRow
	// Updates and Steps are optional and never block a worker.
	Updates chan<- GameUpdate
	Steps   chan<- Step

	Counters Counters
}

type countingEvaluator struct {
	mcts.Evaluator
	n *atomic.Int64
}

func (c countingEvaluator) Evaluate(ctx context.Context, obs *encoding.Observation) ([]float32, float32, error) {
	c.n.Add(1)
	return c.Evaluator.Evaluate(ctx, obs)
}

// Run blocks until every worker has stopped, then closes Rows.
func (r *Runner) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	var base mcts.Evaluator = mcts.Uniform{}
	if r.Eval != nil {
		base = r.Eval
	}
	eval := countingEvaluator{Evaluator: base, n: &r.Counters.Evaluations}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			logger.Debug("worker started", "worker", workerID)
			for game := 0; ctx.Err() == nil; game++ {
				cfg := r.Game
				if cfg.Seed != 0 {
					cfg.Seed += int64(workerID)*1000003 + int64(game)
				}
				gameID := fmt.Sprintf("selfplay_%d_%d_%d", time.Now().UnixNano(), workerID, game)

				onStep := func(s Step) {
					r.Counters.Moves.Add(1)
					if r.Steps != nil {
						select {
						case r.Steps <- s:
						default:
						}
					}
				}
				rows, result, err := PlayGame(ctx, gameID, cfg, eval, onStep)
				if err != nil {
					if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
						logger.Error("worker stopped", "worker", workerID, "game", gameID, "err", err)
					}
					return
				}

				total := r.Counters.Games.Add(1)
				logger.Info("game finished", "worker", workerID, "game", gameID, "result", result.Outcome(),
					"plies", result.Plies, "truncated", result.Truncated, "total", total)
				if r.MaxGames > 0 && total >= r.MaxGames {
					cancel()
				}
				if r.MaxGames > 0 && total > r.MaxGames {
					continue
				}

				if r.Rows != nil && len(rows) > 0 {
					r.Rows <- rows
				}
				if r.Updates != nil {
					select {
					case r.Updates <- GameUpdate{WorkerID: workerID, Result: result, Examples: len(rows)}:
					default:
					}
				}
			}
		}(i)
	}
	wg.Wait()
	if r.Rows != nil {
		close(r.Rows)
	}
}
