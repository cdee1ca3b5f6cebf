package uci

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/encoding"
	"github.com/hailam/chesszero/internal/engine"
	"github.com/hailam/chesszero/internal/mcts"
)

// syncBuffer guards a bytes.Buffer written from the search goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func run(t *testing.T, loader EvaluatorLoader, script ...string) string {
	t.Helper()
	var out syncBuffer
	u := New(engine.NewEngine(mcts.Config{Simulations: 16}, mcts.Material{}), &out, loader)
	u.Run(strings.NewReader(strings.Join(script, "\n") + "\n"))
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := run(t, nil, "uci", "isready", "quit")
	for _, want := range []string{"id name ChessZero", "option name Simulations", "option name Model", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGoReturnsLegalMove(t *testing.T) {
	out := run(t, nil, "position startpos moves e2e4 e7e5", "go nodes 16", "quit")
	line := lastLine(out, "bestmove ")
	if line == "" {
		t.Fatalf("no bestmove:\n%s", out)
	}
	m, err := board.ParseMove(strings.TrimPrefix(line, "bestmove "))
	if err != nil {
		t.Fatal(err)
	}

	s := board.NewState()
	for _, mv := range []string{"e2e4", "e7e5"} {
		pm, _ := board.ParseMove(mv)
		if err := board.MakeMove(s, pm); err != nil {
			t.Fatal(err)
		}
	}
	if err := board.MakeMove(s, m); err != nil {
		t.Errorf("bestmove %s is not legal after 1.e4 e5: %v", m, err)
	}
}

func TestGoOnMatedPosition(t *testing.T) {
	out := run(t, nil, "position startpos moves f2f3 e7e5 g2g4 d8h4", "go nodes 8", "quit")
	if !strings.Contains(out, "bestmove 0000") {
		t.Errorf("expected null move after fool's mate:\n%s", out)
	}
}

func TestPositionErrors(t *testing.T) {
	out := run(t, nil, "position fen 8/8/8/8/8/8/8/8 w - - 0 1", "position startpos moves e2e5", "quit")
	if !strings.Contains(out, "only startpos positions are supported") {
		t.Errorf("fen should be rejected:\n%s", out)
	}
	if !strings.Contains(out, "invalid move e2e5") {
		t.Errorf("illegal move should be reported:\n%s", out)
	}
}

func TestHandlePositionAppliesMoves(t *testing.T) {
	u := New(engine.NewEngine(mcts.DefaultConfig(), nil), io.Discard, nil)
	if err := u.handlePosition(strings.Fields("startpos moves e2e4 c7c5 g1f3")); err != nil {
		t.Fatal(err)
	}
	if u.ply != 3 || u.position.SideToMove != board.Black {
		t.Errorf("ply=%d side=%s", u.ply, u.position.SideToMove)
	}
	if p := u.position.Board[board.F3]; p != board.WhiteKnight {
		t.Errorf("f3 holds %s", p)
	}
	if err := u.handlePosition([]string{"fen"}); !errors.Is(err, ErrUnsupportedPosition) {
		t.Errorf("fen err = %v", err)
	}
}

func TestParseGoOptions(t *testing.T) {
	opts := parseGoOptions(strings.Fields("wtime 60000 btime 30000 winc 1000 binc 500 movestogo 20 nodes 400"))
	if opts.Time[board.White].Milliseconds() != 60000 || opts.Time[board.Black].Milliseconds() != 30000 {
		t.Errorf("times = %v", opts.Time)
	}
	if opts.Inc[board.White].Milliseconds() != 1000 || opts.Inc[board.Black].Milliseconds() != 500 {
		t.Errorf("incs = %v", opts.Inc)
	}
	if opts.MovesToGo != 20 || opts.Nodes != 400 {
		t.Errorf("movestogo=%d nodes=%d", opts.MovesToGo, opts.Nodes)
	}
	if !parseGoOptions([]string{"infinite"}).Infinite {
		t.Error("infinite not parsed")
	}
}

func TestSetOption(t *testing.T) {
	name, value := parseOption(strings.Fields("name Model value /tmp/my net.onnx"))
	if name != "Model" || value != "/tmp/my net.onnx" {
		t.Errorf("parseOption = %q, %q", name, value)
	}

	var loaded string
	closed := false
	loader := func(path string) (mcts.Evaluator, io.Closer, error) {
		loaded = path
		return mcts.Uniform{}, closerFunc(func() error { closed = true; return nil }), nil
	}
	out := run(t, loader, "setoption name Simulations value 32", "setoption name Cpuct value abc", "setoption name Model value net.onnx", "quit")
	if loaded != "net.onnx" {
		t.Errorf("loader called with %q", loaded)
	}
	if !closed {
		t.Error("model not closed on quit")
	}
	if !strings.Contains(out, `invalid Cpuct "abc"`) || !strings.Contains(out, "model loaded from net.onnx") {
		t.Errorf("output:\n%s", out)
	}
}

func TestClearModelStopsSearchFirst(t *testing.T) {
	var closed, usedAfterClose atomic.Bool
	eval := mcts.EvaluatorFunc(func(ctx context.Context, obs *encoding.Observation) ([]float32, float32, error) {
		if closed.Load() {
			usedAfterClose.Store(true)
		}
		return mcts.Uniform{}.Evaluate(ctx, obs)
	})
	loader := func(string) (mcts.Evaluator, io.Closer, error) {
		return eval, closerFunc(func() error { closed.Store(true); return nil }), nil
	}

	out := run(t, loader, "setoption name Model value net.onnx", "go infinite", "setoption name Model value <empty>", "quit")
	if usedAfterClose.Load() {
		t.Fatal("search evaluated positions after the model was closed")
	}
	best := strings.Index(out, "bestmove")
	cleared := strings.Index(out, "using material evaluator")
	if best < 0 || cleared < 0 || best > cleared {
		t.Errorf("search not finished before the model was cleared:\n%s", out)
	}
}

func TestPerft(t *testing.T) {
	out := run(t, nil, "perft 2", "quit")
	if !strings.Contains(out, "Nodes: 400") || !strings.Contains(out, "e2e4: 20") {
		t.Errorf("perft output:\n%s", out)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func lastLine(out, prefix string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(lines[i], prefix) {
			return lines[i]
		}
	}
	return ""
}
