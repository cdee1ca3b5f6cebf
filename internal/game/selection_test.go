package game

import (
	"errors"
	"testing"

	"github.com/hailam/chesszero/internal/board"
)

func TestClickSelectThenMove(t *testing.T) {
	c := NewController()
	sel := NewSelection()

	g := c.Click(&sel, board.E2)
	if g.Kind != GestureSelect || sel.From != board.E2 || len(sel.Targets) != 2 {
		t.Fatalf("select e2: %+v, selection %+v", g, sel)
	}

	g = c.Click(&sel, board.E4)
	if g.Kind != GestureMove || g.From != board.E2 || g.To != board.E4 {
		t.Fatalf("click e4: %+v", g)
	}
	if sel.Active() {
		t.Fatal("selection should clear once a move is requested")
	}
}

func TestClickReselectsOwnPiece(t *testing.T) {
	c := NewController()
	sel := NewSelection()
	c.Click(&sel, board.E2)

	g := c.Click(&sel, board.G1)
	if g.Kind != GestureSelect || sel.From != board.G1 {
		t.Fatalf("got %+v, selection %v", g, sel.From)
	}
	if !sel.IsTarget(board.F3) || !sel.IsTarget(board.H3) {
		t.Fatalf("knight targets = %v", sel.Targets)
	}
}

func TestClickIgnoresOpponentPieces(t *testing.T) {
	c := NewController()
	sel := NewSelection()
	if g := c.Click(&sel, board.E7); g.Kind != GestureNone || sel.Active() {
		t.Fatalf("got %+v", g)
	}
}

func TestClickRejectReasons(t *testing.T) {
	tests := []struct {
		name     string
		from, to board.Square
		want     error
	}{
		{"own piece", board.D1, board.D2, ErrOwnPiece},
		{"pattern", board.E2, board.E5, ErrPiecePattern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			sel := NewSelection()
			c.Click(&sel, tt.from)
			// Clicking an own piece reselects, so exercise the reason directly.
			if err := c.RejectReason(tt.from, tt.to); !errors.Is(err, tt.want) {
				t.Fatalf("RejectReason = %v, want %v", err, tt.want)
			}
			if !errors.Is(tt.want, board.ErrIllegalMove) {
				t.Fatal("reasons must wrap ErrIllegalMove")
			}
		})
	}

	c := NewController()
	sel := NewSelection()
	c.Click(&sel, board.E2)
	g := c.Click(&sel, board.E5)
	if g.Kind != GestureReject || !errors.Is(g.Err, ErrPiecePattern) || sel.Active() {
		t.Fatalf("e2-e5: %+v", g)
	}
}

func TestRejectPinnedPiece(t *testing.T) {
	s := board.EmptyState()
	s.Place(board.E1, board.WhiteKing)
	s.Place(board.E2, board.NewPiece(board.Rook, board.White))
	s.Place(board.E8, board.NewPiece(board.Rook, board.Black))
	s.Place(board.A8, board.BlackKing)
	c := NewController(WithState(s))

	if err := c.RejectReason(board.E2, board.D2); !errors.Is(err, ErrKingInCheck) {
		t.Fatalf("pinned rook sideways: %v", err)
	}
}

func TestDropOnRookCastles(t *testing.T) {
	s := board.EmptyState()
	s.Place(board.E1, board.WhiteKing)
	s.Place(board.H1, board.NewPiece(board.Rook, board.White))
	s.Place(board.E8, board.BlackKing)
	c := NewController(WithState(s))
	sel := NewSelection()

	c.Click(&sel, board.E1)
	g := c.Drop(&sel, board.H1)
	if g.Kind != GestureMove || g.To != board.G1 {
		t.Fatalf("drop king on rook: %+v", g)
	}
	if _, err := c.Apply(g.From, g.To); err != nil {
		t.Fatal(err)
	}
	if p, _ := c.PieceAt(board.F1); p.Type() != board.Rook {
		t.Fatalf("rook not moved by castling, f1 = %s", p)
	}
}

func TestDropOnOriginKeepsSelection(t *testing.T) {
	c := NewController()
	sel := NewSelection()
	c.Click(&sel, board.B1)
	if g := c.Drop(&sel, board.B1); g.Kind != GestureNone || !sel.Active() {
		t.Fatalf("got %+v", g)
	}
	if g := c.Drop(&sel, board.NoSquare); g.Kind != GestureClear || sel.Active() {
		t.Fatalf("drop off board: %+v", g)
	}
}

func TestPromotionGesture(t *testing.T) {
	s := board.EmptyState()
	s.Place(board.E1, board.WhiteKing)
	s.Place(board.A7, board.WhitePawn)
	s.Place(board.H8, board.BlackKing)
	c := NewController(WithState(s))
	sel := NewSelection()

	c.Click(&sel, board.A7)
	g := c.Drop(&sel, board.A8)
	if g.Kind != GesturePromote || g.From != board.A7 || g.To != board.A8 {
		t.Fatalf("got %+v", g)
	}
	if !sel.Active() {
		t.Fatal("selection must survive until the piece is chosen")
	}
	if _, err := c.ApplyMove(board.NewPromotion(g.From, g.To, board.Knight)); err != nil {
		t.Fatal(err)
	}
	if p, _ := c.PieceAt(board.A8); p != board.NewPiece(board.Knight, board.White) {
		t.Fatalf("a8 = %s", p)
	}
}

func TestNoSelectionAfterGameOver(t *testing.T) {
	c := NewController()
	for _, m := range [][2]board.Square{{board.F2, board.F3}, {board.E7, board.E5}, {board.G2, board.G4}, {board.D8, board.H4}} {
		if _, err := c.Apply(m[0], m[1]); err != nil {
			t.Fatal(err)
		}
	}
	sel := NewSelection()
	if g := c.Click(&sel, board.E1); g.Kind != GestureNone {
		t.Fatalf("got %+v after mate", g)
	}
	if err := c.RejectReason(board.E1, board.E2); !IsRejection(err) {
		t.Fatalf("got %v", err)
	}
}
