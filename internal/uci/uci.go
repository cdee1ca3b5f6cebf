// Package uci implements the Universal Chess Interface front end over the
// MCTS engine. Only "position startpos [moves ...]" is understood; the
// position model has no FEN parser.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/engine"
	"github.com/hailam/chesszero/internal/mcts"
)

// ErrUnsupportedPosition is reported for position commands other than startpos.
var ErrUnsupportedPosition = errors.New("only startpos positions are supported")

// EvaluatorLoader opens a network file for the Model option. The returned
// closer is called when the model is replaced or the session ends.
type EvaluatorLoader func(path string) (mcts.Evaluator, io.Closer, error)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	position *board.State
	ply      int

	out   io.Writer
	outMu sync.Mutex

	simulations int
	loadModel   EvaluatorLoader
	modelCloser io.Closer

	// Search state
	searching    bool
	searchDone   chan struct{}
	searchCancel context.CancelFunc
}

// New creates a UCI handler writing to out. loader may be nil, in which case
// the Model option is rejected.
func New(eng *engine.Engine, out io.Writer, loader EvaluatorLoader) *UCI {
	return &UCI{
		engine:      eng,
		position:    board.NewState(),
		out:         out,
		simulations: engine.DifficultySettings[engine.Medium].Simulations,
		loadModel:   loader,
	}
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

// Run reads commands from in until "quit" or end of input.
func (u *UCI) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	defer u.shutdown()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.printf("readyok\n")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			if err := u.handlePosition(args); err != nil {
				u.printf("info string %v\n", err)
			}
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			return
		case "setoption":
			u.handleSetOption(args)
		// Debug commands
		case "d":
			u.printf("%s", u.position.String())
		case "perft":
			u.handlePerft(args)
		}
	}
}

func (u *UCI) shutdown() {
	u.handleStop()
	if u.modelCloser != nil {
		_ = u.modelCloser.Close()
		u.modelCloser = nil
	}
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.printf("id name ChessZero\n")
	u.printf("id author ChessZero Team\n\n")
	u.printf("option name Simulations type spin default %d min 1 max %d\n", u.simulations, 1<<20)
	u.printf("option name Cpuct type string default %.2f\n", mcts.DefaultConfig().Cpuct)
	u.printf("option name Model type string default <empty>\n")
	u.printf("uciok\n")
}

// handleNewGame resets the position.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.position = board.NewState()
	u.ply = 0
}

// handlePosition sets up a position. Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//
// A bad move leaves the position at the last move that applied.
func (u *UCI) handlePosition(args []string) error {
	if len(args) == 0 {
		return nil
	}
	if args[0] != "startpos" {
		return fmt.Errorf("position %s: %w", args[0], ErrUnsupportedPosition)
	}

	u.position = board.NewState()
	u.ply = 0
	if len(args) < 2 || args[1] != "moves" {
		return nil
	}
	for _, moveStr := range args[2:] {
		m, err := board.ParseMove(moveStr)
		if err != nil {
			return fmt.Errorf("invalid move %s: %w", moveStr, err)
		}
		if err := board.MakeMove(u.position, m); err != nil {
			return fmt.Errorf("invalid move %s: %w", moveStr, err)
		}
		u.ply++
	}
	return nil
}

// parseGoOptions parses "go" command arguments.
func parseGoOptions(args []string) engine.UCILimits {
	var opts engine.UCILimits
	ms := func(i int) time.Duration {
		n, _ := strconv.Atoi(args[i])
		return time.Duration(n) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		hasValue := i+1 < len(args)
		switch args[i] {
		case "infinite":
			opts.Infinite = true
		case "nodes":
			if hasValue {
				opts.Nodes, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if hasValue {
				opts.MoveTime = ms(i + 1)
				i++
			}
		case "wtime":
			if hasValue {
				opts.Time[board.White] = ms(i + 1)
				i++
			}
		case "btime":
			if hasValue {
				opts.Time[board.Black] = ms(i + 1)
				i++
			}
		case "winc":
			if hasValue {
				opts.Inc[board.White] = ms(i + 1)
				i++
			}
		case "binc":
			if hasValue {
				opts.Inc[board.Black] = ms(i + 1)
				i++
			}
		case "movestogo":
			if hasValue {
				opts.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}
	return opts
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.handleStop()

	opts := parseGoOptions(args)
	us := u.position.SideToMove
	if opts.Nodes == 0 && !opts.Infinite && opts.MoveTime == 0 && opts.Time[us] == 0 {
		opts.Nodes = u.simulations
	}
	limits := engine.Budget(opts, us, u.ply)

	u.engine.OnInfo = u.sendInfo

	ctx, cancel := context.WithCancel(context.Background())
	u.searching = true
	u.searchDone = make(chan struct{})
	u.searchCancel = cancel
	pos := u.position.Clone()
	done := u.searchDone

	go func() {
		defer close(done)
		best := u.engine.SearchWithLimits(ctx, pos, limits)
		if best == board.NoMove {
			u.printf("bestmove 0000\n")
			return
		}
		u.printf("bestmove %s\n", best)
	}()
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	parts := []string{
		"depth 1",
		fmt.Sprintf("score cp %d", engine.ValueToCentipawns(info.Q)),
		fmt.Sprintf("nodes %d", info.Simulations),
		fmt.Sprintf("time %d", info.Time.Milliseconds()),
	}
	if info.Time > 0 {
		nps := uint64(float64(info.Simulations) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	parts = append(parts, "pv "+info.BestMove.String())
	u.printf("info %s\n", strings.Join(parts, " "))
	u.printf("info string value %s visits %d\n", engine.ValueToString(float64(info.Value)), info.Visits)
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.searching {
		// The context covers a search goroutine that has not reached the engine yet.
		u.searchCancel()
		u.engine.Stop()
		<-u.searchDone
		u.searching = false
	}
}

// handleSetOption processes "setoption name <name> value <value>".
func (u *UCI) handleSetOption(args []string) {
	u.SetOption(parseOption(args))
}

// SetOption applies one engine option, as "setoption" does.
func (u *UCI) SetOption(name, value string) {
	switch strings.ToLower(name) {
	case "simulations":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			u.printf("info string invalid Simulations %q\n", value)
			return
		}
		u.simulations = n
	case "cpuct":
		c, err := strconv.ParseFloat(value, 64)
		if err != nil || c <= 0 {
			u.printf("info string invalid Cpuct %q\n", value)
			return
		}
		u.engine.SetCpuct(c)
	case "model":
		u.setModel(value)
	default:
		u.printf("info string unknown option %q\n", name)
	}
}

func parseOption(args []string) (name, value string) {
	var nameParts, valueParts []string
	var target *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			target = &nameParts
		case "value":
			target = &valueParts
		default:
			if target != nil {
				*target = append(*target, arg)
			}
		}
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " ")
}

func (u *UCI) setModel(path string) {
	if path == "" || path == "<empty>" {
		u.handleStop()
		u.engine.SetEvaluator(mcts.Material{})
		u.closeModel()
		u.printf("info string using material evaluator\n")
		return
	}
	if u.loadModel == nil {
		u.printf("info string model loading is not available\n")
		return
	}
	eval, closer, err := u.loadModel(path)
	if err != nil {
		u.printf("info string failed to load model: %v\n", err)
		return
	}
	u.handleStop()
	u.engine.SetEvaluator(eval)
	u.closeModel()
	u.modelCloser = closer
	u.printf("info string model loaded from %s\n", path)
}

func (u *UCI) closeModel() {
	if u.modelCloser != nil {
		_ = u.modelCloser.Close()
		u.modelCloser = nil
	}
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	divide := board.PerftDivide(u.position, depth)
	elapsed := time.Since(start)

	var nodes int64
	for _, m := range board.LegalMoves(u.position) {
		n := divide[m.String()]
		u.printf("%s: %d\n", m, n)
		nodes += n
	}
	u.printf("\nNodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		u.printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}
