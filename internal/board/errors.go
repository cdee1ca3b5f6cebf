package board

import "errors"

var (
	// ErrInvalidSquare is returned for coordinates outside the 8x8 board.
	ErrInvalidSquare = errors.New("invalid square")
	// ErrIllegalMove is returned when a move is not among the safe moves of its piece.
	ErrIllegalMove = errors.New("illegal move")
	// ErrMissingKing marks a position without a king for the queried side.
	ErrMissingKing = errors.New("missing king")
)
