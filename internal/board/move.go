package board

import "fmt"

// Move is a from/to pair plus the promotion kind, NoPieceType when the move
// does not promote.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

// NoMove is the zero-information move, printed as "0000".
var NoMove = Move{From: NoSquare, To: NoSquare, Promotion: NoPieceType}

// NewMove creates a non-promoting move.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to, Promotion: NoPieceType}
}

// NewPromotion creates a pawn move that promotes to pt.
func NewPromotion(from, to Square, pt PieceType) Move {
	return Move{From: from, To: to, Promotion: pt}
}

// IsPromotion reports whether the move carries a promotion kind.
func (m Move) IsPromotion() bool {
	return m.Promotion.IsPromotion()
}

// String returns long algebraic (UCI) notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if !m.From.IsValid() || !m.To.IsValid() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(m.Promotion.Char())
	}
	return s
}

// ParseMove parses UCI notation. It checks syntax only; legality is decided
// against a position by ApplyMove.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	if len(s) == 4 {
		return NewMove(from, to), nil
	}
	switch s[4] {
	case 'q':
		return NewPromotion(from, to, Queen), nil
	case 'r':
		return NewPromotion(from, to, Rook), nil
	case 'b':
		return NewPromotion(from, to, Bishop), nil
	case 'n':
		return NewPromotion(from, to, Knight), nil
	}
	return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
}
