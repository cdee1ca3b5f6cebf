package action

import (
	"fmt"

	"github.com/hailam/chesszero/internal/board"
)

// Legal returns the indices of every legal move of the side to move, in
// board.LegalMoves order. A promoting pawn move yields four indices (queen,
// rook, bishop, knight) and never the no-promotion code.
func Legal(s *board.State) []int {
	moves := board.LegalMoves(s)
	out := make([]int, len(moves))
	for i, m := range moves {
		out[i] = MustEncode(m)
	}
	return out
}

// Apply plays the action idx on s. Indices outside the action space return
// ErrUnrepresentableAction; indices that are not currently legal return
// board.ErrIllegalMove and leave s untouched.
func Apply(s *board.State, idx int) error {
	m, err := Decode(idx)
	if err != nil {
		return err
	}
	for _, legal := range board.LegalMoves(s) {
		if legal == m {
			return board.MakeMove(s, m)
		}
	}
	return fmt.Errorf("action %d (%s): %w", idx, m, board.ErrIllegalMove)
}
