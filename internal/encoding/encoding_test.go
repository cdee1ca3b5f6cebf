package encoding

import (
	"testing"

	"github.com/hailam/chesszero/internal/board"
)

func TestEncodeInitialPosition(t *testing.T) {
	obs := Encode(board.NewState())

	tests := []struct {
		name  string
		piece board.Piece
		sq    board.Square
		plane int
	}{
		{"white pawn", board.WhitePawn, board.E2, 0},
		{"black pawn", board.BlackPawn, board.E7, 1},
		{"white rook", board.WhiteRook, board.A1, 2},
		{"black rook", board.BlackRook, board.H8, 3},
		{"white bishop", board.WhiteBishop, board.C1, 4},
		{"white knight", board.WhiteKnight, board.B1, 6},
		{"black queen", board.BlackQueen, board.D8, 9},
		{"white king", board.WhiteKing, board.E1, 10},
		{"black king", board.BlackKing, board.E8, 11},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Plane(tc.piece); got != tc.plane {
				t.Fatalf("Plane(%s) = %d, want %d", tc.piece, got, tc.plane)
			}
			if obs[Offset(tc.plane, tc.sq)] != 1 {
				t.Errorf("plane %d not set at %s", tc.plane, tc.sq)
			}
		})
	}

	var pieces float32
	for _, v := range obs[:TurnPlane*64] {
		pieces += v
	}
	if pieces != 32 {
		t.Errorf("piece planes sum to %v, want 32", pieces)
	}
	for _, v := range obs[TurnPlane*64:] {
		if v != 1 {
			t.Fatal("turn plane should be all ones with white to move")
		}
	}
}

func TestEncodeBlackToMove(t *testing.T) {
	s := board.NewState()
	if err := board.ApplyMove(s, board.E2, board.E4, nil); err != nil {
		t.Fatal(err)
	}
	obs := Encode(s)
	for _, v := range obs[TurnPlane*64:] {
		if v != 0 {
			t.Fatal("turn plane should be zero with black to move")
		}
	}
	if obs[Offset(0, board.E4)] != 1 || obs[Offset(0, board.E2)] != 0 {
		t.Error("pawn plane not updated after e2e4")
	}
}

func TestRowZeroIsRankEight(t *testing.T) {
	if got := Offset(0, board.A8); got != 0 {
		t.Errorf("Offset(0, a8) = %d, want 0", got)
	}
	if got := Offset(1, board.H1); got != 64+63 {
		t.Errorf("Offset(1, h1) = %d, want %d", got, 64+63)
	}
}

func TestEncodeIntoOverwrites(t *testing.T) {
	buf := make([]float32, Size)
	for i := range buf {
		buf[i] = 7
	}
	EncodeInto(board.EmptyState(), buf)
	for i, v := range buf[:TurnPlane*64] {
		if v != 0 {
			t.Fatalf("buf[%d] = %v, want 0", i, v)
		}
	}
}
