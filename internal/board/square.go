// Package board holds the chess rules: the position model, move generation,
// attack detection, the legality filter and the apply-move step.
package board

import "fmt"

// Square indexes the board as rank*8 + file, so A1=0, H1=7, A8=56, H8=63.
type Square uint8

const (
	A1, B1, C1, D1, E1, F1, G1, H1 Square = 0, 1, 2, 3, 4, 5, 6, 7
	A2, B2, C2, D2, E2, F2, G2, H2 Square = 8, 9, 10, 11, 12, 13, 14, 15
	A3, B3, C3, D3, E3, F3, G3, H3 Square = 16, 17, 18, 19, 20, 21, 22, 23
	A4, B4, C4, D4, E4, F4, G4, H4 Square = 24, 25, 26, 27, 28, 29, 30, 31
	A5, B5, C5, D5, E5, F5, G5, H5 Square = 32, 33, 34, 35, 36, 37, 38, 39
	A6, B6, C6, D6, E6, F6, G6, H6 Square = 40, 41, 42, 43, 44, 45, 46, 47
	A7, B7, C7, D7, E7, F7, G7, H7 Square = 48, 49, 50, 51, 52, 53, 54, 55
	A8, B8, C8, D8, E8, F8, G8, H8 Square = 56, 57, 58, 59, 60, 61, 62, 63

	// NoSquare marks an absent square, such as a cleared en-passant target.
	NoSquare Square = 64
)

// File returns the column, 0 for the a-file.
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the row, 0 for the first rank.
func (sq Square) Rank() int {
	return int(sq) >> 3
}

func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// RelativeRank is the rank counted from c's own back rank.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

// String returns algebraic notation such as "e4", or "-" for NoSquare.
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// NewSquare builds a square from 0-based coordinates that are known to be on the board.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// SquareAt validates coordinates before building a square.
func SquareAt(file, rank int) (Square, error) {
	if !onBoard(file, rank) {
		return NoSquare, fmt.Errorf("file %d rank %d: %w", file, rank, ErrInvalidSquare)
	}
	return NewSquare(file, rank), nil
}

// ParseSquare parses algebraic notation such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%q: %w", s, ErrInvalidSquare)
	}
	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'
	if !onBoard(file, rank) {
		return NoSquare, fmt.Errorf("%q: %w", s, ErrInvalidSquare)
	}
	return NewSquare(file, rank), nil
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

func checkSquare(sq Square) error {
	if !sq.IsValid() {
		return fmt.Errorf("square %d: %w", sq, ErrInvalidSquare)
	}
	return nil
}
