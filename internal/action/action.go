// Package action maps moves to a dense integer action space of 64*64*5 entries
// and back, for the search and evaluator boundary.
//
// An index is (from*64 + to)*5 + promo where promo is 0 for no promotion and
// 1..4 for queen, rook, bishop and knight.
package action

import (
	"errors"
	"fmt"

	"github.com/hailam/chesszero/internal/board"
)

// Size is the number of actions, including ones that are never legal.
const Size = 64 * 64 * 5

// ErrUnrepresentableAction is returned for indices outside [0, Size) and for
// moves that cannot be expressed in the action space.
var ErrUnrepresentableAction = errors.New("unrepresentable action")

// Promotion codes in index order.
const (
	PromoNone = iota
	PromoQueen
	PromoRook
	PromoBishop
	PromoKnight
)

var promoKinds = [5]board.PieceType{board.NoPieceType, board.Queen, board.Rook, board.Bishop, board.Knight}

// PromoCode returns the code of a promotion kind; NoPieceType maps to PromoNone.
func PromoCode(pt board.PieceType) (int, bool) {
	for code, k := range promoKinds {
		if k == pt {
			return code, true
		}
	}
	return 0, false
}

// Index packs a from/to/promo triple. It fails for out-of-range parts.
func Index(from, to board.Square, promo int) (int, error) {
	if !from.IsValid() || !to.IsValid() || promo < 0 || promo >= len(promoKinds) {
		return 0, fmt.Errorf("from %d to %d promo %d: %w", from, to, promo, ErrUnrepresentableAction)
	}
	return (int(from)*64+int(to))*5 + promo, nil
}

// Split is the inverse of Index.
func Split(idx int) (from, to board.Square, promo int, err error) {
	if idx < 0 || idx >= Size {
		return board.NoSquare, board.NoSquare, 0, fmt.Errorf("index %d: %w", idx, ErrUnrepresentableAction)
	}
	promo = idx % 5
	idx /= 5
	return board.Square(idx / 64), board.Square(idx % 64), promo, nil
}

// Encode returns the index of m.
func Encode(m board.Move) (int, error) {
	code, ok := PromoCode(m.Promotion)
	if !ok {
		return 0, fmt.Errorf("%s: promotion to %s: %w", m, m.Promotion, ErrUnrepresentableAction)
	}
	return Index(m.From, m.To, code)
}

// MustEncode is Encode for moves known to be representable, such as those
// returned by board.LegalMoves.
func MustEncode(m board.Move) int {
	idx, err := Encode(m)
	if err != nil {
		panic(err)
	}
	return idx
}

// Decode returns the move stored at idx.
func Decode(idx int) (board.Move, error) {
	from, to, promo, err := Split(idx)
	if err != nil {
		return board.NoMove, err
	}
	return board.Move{From: from, To: to, Promotion: promoKinds[promo]}, nil
}
