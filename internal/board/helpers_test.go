package board

import "testing"

// layout builds a state from eight rows of piece letters, rank 8 first, with
// '.' for empty squares. Castling flags start untouched.
func layout(t *testing.T, side Color, rows ...string) *State {
	t.Helper()
	if len(rows) != 8 {
		t.Fatalf("layout needs 8 rows, got %d", len(rows))
	}
	s := EmptyState()
	s.SideToMove = side
	for i, row := range rows {
		if len(row) != 8 {
			t.Fatalf("row %d has %d columns", i, len(row))
		}
		for file := 0; file < 8; file++ {
			if row[file] == '.' {
				continue
			}
			p := PieceFromChar(row[file])
			if p == NoPiece {
				t.Fatalf("bad piece %q in row %d", row[file], i)
			}
			s.Board[NewSquare(file, 7-i)] = p
		}
	}
	return s
}

func targets(t *testing.T, s *State, sq Square) map[Square]bool {
	t.Helper()
	moves, err := SafeMoves(s, sq)
	if err != nil {
		t.Fatalf("SafeMoves(%s): %v", sq, err)
	}
	out := make(map[Square]bool, len(moves))
	for _, m := range moves {
		out[m] = true
	}
	return out
}

func mustApply(t *testing.T, s *State, moves ...string) {
	t.Helper()
	for _, str := range moves {
		m, err := ParseMove(str)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", str, err)
		}
		if err := MakeMove(s, m); err != nil {
			t.Fatalf("MakeMove(%s): %v\n%s", str, err, s)
		}
	}
}
