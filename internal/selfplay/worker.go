// Package selfplay plays engine-vs-engine games with MCTS and turns them into
// training rows.
package selfplay

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/hailam/chesszero/internal/action"
	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/dataset"
	"github.com/hailam/chesszero/internal/encoding"
	"github.com/hailam/chesszero/internal/mcts"
)

// Config controls one self-play game.
type Config struct {
	MCTS mcts.Config
	// SampleMoves is the number of opening plies whose move is sampled from
	// the visit distribution. Later plies play the most visited action.
	SampleMoves int
	// MaxPlies ends the game as a draw once reached.
	MaxPlies int
	// Seed drives move sampling. Zero picks a time-based seed.
	Seed int64
	// Start is the opening position. Nil means the standard initial position.
	Start *board.State
	// Source and ModelPath are copied into every row.
	Source    string
	ModelPath string
}

// DefaultConfig returns the settings used by cmd/selfplay.
func DefaultConfig() Config {
	return Config{
		MCTS:        mcts.DefaultConfig(),
		SampleMoves: 30,
		MaxPlies:    300,
		Source:      "selfplay",
	}
}

// GameResult summarizes a finished game.
type GameResult struct {
	GameID string
	Plies  int
	Status board.Status
	// Winner is only meaningful when Status is Checkmate.
	Winner board.Color
	// Truncated is set when MaxPlies stopped the game.
	Truncated bool
	Duration  time.Duration
}

// Outcome returns the PGN-style result string.
func (r GameResult) Outcome() string {
	if r.Status != board.Checkmate {
		return "1/2-1/2"
	}
	if r.Winner == board.White {
		return "1-0"
	}
	return "0-1"
}

// Step is reported after every ply.
type Step struct {
	GameID string
	Ply    int
	Move   board.Move
	State  *board.State
	// Value is the root estimate for the side that just moved.
	Value float32
}

// PlayGame plays one game from cfg.Start. onStep may be nil.
//
// The value target of each row is filled in once the game ends: 1 for rows
// where the side to move went on to deliver mate, -1 for the mated side, 0 for
// stalemate or a game cut off by MaxPlies. On cancellation the rows played so
// far are dropped and ctx.Err() is returned.
func PlayGame(ctx context.Context, gameID string, cfg Config, eval mcts.Evaluator, onStep func(Step)) ([]dataset.TrainingRow, GameResult, error) {
	start := time.Now()
	seed := cfg.Seed
	if seed == 0 {
		seed = start.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	search := mcts.New(cfg.MCTS, eval)

	state := board.NewState()
	if cfg.Start != nil {
		state = cfg.Start.Clone()
	}
	rows := make([]dataset.TrainingRow, 0, 128)
	result := GameResult{GameID: gameID, Winner: board.NoColor}

	for ply := 0; ; ply++ {
		if err := ctx.Err(); err != nil {
			return nil, result, err
		}
		if st := state.Status(); st.IsTerminal() {
			result.Status = st
			if st == board.Checkmate {
				result.Winner = state.SideToMove.Other()
			}
			break
		}
		if cfg.MaxPlies > 0 && ply >= cfg.MaxPlies {
			result.Truncated = true
			break
		}

		res, err := search.Search(ctx, state)
		if err != nil {
			return nil, result, fmt.Errorf("ply %d: %w", ply, err)
		}

		obs := encoding.Encode(state)
		rows = append(rows, newRow(gameID, ply, state.SideToMove, obs[:], res, cfg))

		var a int
		if ply < cfg.SampleMoves {
			a = res.Sample(rng)
		} else {
			a = res.Best()
		}
		m, err := action.Decode(a)
		if err != nil {
			return nil, result, fmt.Errorf("ply %d: %w", ply, err)
		}
		if err := action.Apply(state, a); err != nil {
			return nil, result, fmt.Errorf("ply %d: %s: %w", ply, m, err)
		}
		result.Plies = ply + 1

		if onStep != nil {
			onStep(Step{GameID: gameID, Ply: ply, Move: m, State: state.Clone(), Value: res.Value})
		}
	}

	assignValues(rows, result)
	result.Duration = time.Since(start)
	return rows, result, nil
}

func newRow(gameID string, ply int, side board.Color, obs []float32, res *mcts.Result, cfg Config) dataset.TrainingRow {
	policy := res.Policy()
	actions := make([]int32, 0, len(res.Actions))
	probs := make([]float32, 0, len(res.Actions))
	for i, a := range res.Actions {
		if policy[i] == 0 {
			continue
		}
		actions = append(actions, int32(a))
		probs = append(probs, policy[i])
	}
	return dataset.TrainingRow{
		GameID:        gameID,
		Ply:           int32(ply),
		SideToMove:    int32(side),
		Observation:   append([]float32(nil), obs...),
		PolicyActions: actions,
		PolicyProbs:   probs,
		Source:        cfg.Source,
		ModelPath:     cfg.ModelPath,
	}
}

func assignValues(rows []dataset.TrainingRow, result GameResult) {
	if result.Status != board.Checkmate {
		for i := range rows {
			rows[i].Value = 0
		}
		return
	}
	for i := range rows {
		if board.Color(rows[i].SideToMove) == result.Winner {
			rows[i].Value = 1
		} else {
			rows[i].Value = -1
		}
	}
}
