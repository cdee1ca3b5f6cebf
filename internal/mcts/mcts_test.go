package mcts

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hailam/chesszero/internal/action"
	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/encoding"
)

// countingEvaluator returns uniform priors and a fixed value and counts calls.
type countingEvaluator struct {
	calls int
	value float32
}

func (e *countingEvaluator) Evaluate(context.Context, *encoding.Observation) ([]float32, float32, error) {
	e.calls++
	return nil, e.value, nil
}

func backRankMate() *board.State {
	s := board.EmptyState()
	s.Board[board.H8] = board.BlackKing
	s.Board[board.G7] = board.BlackPawn
	s.Board[board.H7] = board.BlackPawn
	s.Board[board.A1] = board.WhiteRook
	s.Board[board.C1] = board.WhiteKing
	return s
}

func TestSearchVisitConservation(t *testing.T) {
	for _, sims := range []int{1, 10, 100} {
		eval := &countingEvaluator{}
		m := New(Config{Cpuct: 1.0, Simulations: sims}, eval)

		res, err := m.Search(context.Background(), board.NewState())
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(res.Actions) != 20 {
			t.Fatalf("expected 20 root actions, got %d", len(res.Actions))
		}
		if got := res.TotalVisits(); got != sims {
			t.Errorf("sims=%d: root visits sum to %d", sims, got)
		}
		if res.Simulations != sims {
			t.Errorf("sims=%d: Simulations = %d", sims, res.Simulations)
		}
		if eval.calls > sims+1 {
			t.Errorf("sims=%d: evaluator called %d times", sims, eval.calls)
		}
	}
}

// knightShuffle has only kings and knights and no castling, so lines that
// return to an earlier position are reachable within a few plies.
func knightShuffle() *board.State {
	s := board.EmptyState()
	s.Castling = board.CastlingRights{
		WhiteKingMoved: true, BlackKingMoved: true,
		WhiteKingRookMoved: true, WhiteQueenRookMoved: true,
		BlackKingRookMoved: true, BlackQueenRookMoved: true,
	}
	s.Board[board.B2] = board.WhiteKing
	s.Board[board.G7] = board.BlackKing
	s.Board[board.D4] = board.WhiteKnight
	s.Board[board.E5] = board.BlackKnight
	return s
}

func TestSearchRepetitionKeepsVisitCount(t *testing.T) {
	for _, sims := range []int{1, 50, 1000} {
		res, err := New(Config{Simulations: sims}, Uniform{}).Search(context.Background(), knightShuffle())
		if err != nil {
			t.Fatalf("sims=%d: %v", sims, err)
		}
		if got := res.TotalVisits(); got != sims {
			t.Errorf("sims=%d: root visits sum to %d", sims, got)
		}
		for i, n := range res.Visits {
			if n > sims {
				t.Errorf("sims=%d: action %d has %d visits", sims, res.Actions[i], n)
			}
		}
	}
}

func TestSimulateStopsAtRepeatedPosition(t *testing.T) {
	m := New(Config{Simulations: 1}, Uniform{})
	cfg := m.Config.withDefaults()
	root := knightShuffle()
	tbl := make(table)
	rootNode, _, err := m.expand(context.Background(), tbl, root)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 400; i++ {
		if err := m.simulate(context.Background(), tbl, root.Clone(), cfg); err != nil {
			t.Fatal(err)
		}
		if rootNode.total != i {
			t.Fatalf("after %d simulations the root has %d visits", i, rootNode.total)
		}
	}
}

func TestSearchDeterministic(t *testing.T) {
	run := func() []int {
		m := New(Config{Simulations: 200}, Material{})
		res, err := m.Search(context.Background(), board.NewState())
		if err != nil {
			t.Fatal(err)
		}
		return res.Visits
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("visit counts differ at %d: %v vs %v", i, a, b)
		}
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	m := New(Config{Simulations: 300}, Uniform{})
	res, err := m.Search(context.Background(), backRankMate())
	if err != nil {
		t.Fatal(err)
	}
	want := action.MustEncode(board.NewMove(board.A1, board.A8))
	if got := res.Best(); got != want {
		mv, _ := action.Decode(got)
		t.Fatalf("best move %s, want a1a8", mv)
	}
	for i, a := range res.Actions {
		if a == want && res.Q[i] != 1 {
			t.Errorf("Q(a1a8) = %v, want 1", res.Q[i])
		}
	}
}

func TestSearchTerminalRoot(t *testing.T) {
	s := backRankMate()
	if err := board.ApplyMove(s, board.A1, board.A8, nil); err != nil {
		t.Fatal(err)
	}
	_, err := New(DefaultConfig(), Uniform{}).Search(context.Background(), s)
	if !errors.Is(err, ErrNoLegalActions) {
		t.Fatalf("got %v, want ErrNoLegalActions", err)
	}
}

func TestSearchLeavesRootUntouched(t *testing.T) {
	s := board.NewState()
	before := *s
	if _, err := New(Config{Simulations: 50}, Uniform{}).Search(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	if *s != before {
		t.Fatal("search mutated the root state")
	}
}

func TestSearchEvaluatorError(t *testing.T) {
	boom := errors.New("boom")
	eval := EvaluatorFunc(func(context.Context, *encoding.Observation) ([]float32, float32, error) {
		return nil, 0, boom
	})
	_, err := New(DefaultConfig(), eval).Search(context.Background(), board.NewState())
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped evaluator error", err)
	}
}

func TestSearchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	eval := EvaluatorFunc(func(context.Context, *encoding.Observation) ([]float32, float32, error) {
		calls++
		if calls == 5 {
			cancel()
		}
		return nil, 0, nil
	})

	res, err := New(Config{Simulations: 1000}, eval).Search(ctx, board.NewState())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if res == nil {
		t.Fatal("expected partial result")
	}
	if res.Simulations >= 1000 || res.TotalVisits() != res.Simulations {
		t.Fatalf("partial result has %d simulations and %d visits", res.Simulations, res.TotalVisits())
	}
}

func TestSelectionFollowsPriorsAndTiesGoFirst(t *testing.T) {
	n := &node{
		actions: []int{10, 20, 30},
		priors:  []float32{0.2, 0.6, 0.2},
		visits:  make([]int, 3),
		value:   make([]float64, 3),
	}
	if got := n.selectAction(1.0); got != 1 {
		t.Fatalf("selected %d, want the highest prior", got)
	}

	n.priors = []float32{1.0 / 3, 1.0 / 3, 1.0 / 3}
	if got := n.selectAction(1.0); got != 0 {
		t.Fatalf("selected %d, want the first action on a tie", got)
	}
}

func TestLegalPriors(t *testing.T) {
	full := make([]float32, action.Size)
	full[5] = 0.3
	full[7] = 0.1
	full[9] = 0.5 // not legal

	got := legalPriors(full, []int{5, 7, 11})
	want := []float32{0.75, 0.25, 0}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Fatalf("legalPriors = %v, want %v", got, want)
		}
	}

	got = legalPriors(nil, []int{1, 2, 3, 4})
	for _, p := range got {
		if p != 0.25 {
			t.Fatalf("expected uniform fallback, got %v", got)
		}
	}

	nan := []float32{float32(math.NaN()), float32(math.NaN())}
	got = legalPriors(nan, []int{0, 1})
	if got[0] != 0.5 || got[1] != 0.5 {
		t.Fatalf("expected uniform fallback for NaN priors, got %v", got)
	}
}

func TestMaterialEvaluator(t *testing.T) {
	ctx := context.Background()

	start := encoding.Encode(board.NewState())
	if _, v, _ := (Material{}).Evaluate(ctx, &start); v != 0 {
		t.Errorf("initial position value = %v, want 0", v)
	}

	s := board.NewState()
	s.Board[board.D8] = board.NoPiece
	obs := encoding.Encode(s)
	_, white, _ := Material{}.Evaluate(ctx, &obs)
	if white <= 0 {
		t.Errorf("white to move a queen up: value = %v, want > 0", white)
	}

	s.SideToMove = board.Black
	obs = encoding.Encode(s)
	_, black, _ := Material{}.Evaluate(ctx, &obs)
	if black != -white {
		t.Errorf("black to move: value = %v, want %v", black, -white)
	}
}

func TestResultHelpers(t *testing.T) {
	r := &Result{
		Actions: []int{3, 8, 12},
		Visits:  []int{2, 6, 2},
		Priors:  []float32{0.2, 0.5, 0.3},
	}
	if got := r.Best(); got != 8 {
		t.Errorf("Best() = %d, want 8", got)
	}
	counts := r.Counts()
	if len(counts) != action.Size || counts[8] != 6 || counts[3] != 2 {
		t.Errorf("Counts() wrong: len %d, [8]=%d [3]=%d", len(counts), counts[8], counts[3])
	}
	p := r.Policy()
	if p[1] != 0.6 {
		t.Errorf("Policy()[1] = %v, want 0.6", p[1])
	}

	empty := &Result{Actions: []int{1, 2}, Visits: []int{0, 0}, Priors: []float32{0.4, 0.6}}
	if p := empty.Policy(); p[1] != 0.6 {
		t.Errorf("Policy without visits should fall back to priors, got %v", p)
	}
}
