package board

import "fmt"

// PromotionChooser picks the kind a pawn reaching the last rank becomes. It is
// called synchronously with the mover's color. Returning anything other than
// queen, rook, bishop or knight selects a queen.
type PromotionChooser func(c Color) PieceType

// Promote returns a chooser that always picks pt.
func Promote(pt PieceType) PromotionChooser {
	return func(Color) PieceType { return pt }
}

// ApplyMove plays from->to for the side to move. The move must be one of the
// safe moves of the piece on from; otherwise the state is left untouched and
// an error wrapping ErrIllegalMove (or ErrInvalidSquare) is returned.
//
// Side effects happen in this order: en-passant pawn removal, castling rook
// relocation, the move itself, promotion through choose (nil means queen),
// castling flag updates for king and rook moves and rook captures on their home
// squares, the new en-passant target, and finally the turn flip.
func ApplyMove(s *State, from, to Square, choose PromotionChooser) error {
	if err := checkSquare(from); err != nil {
		return err
	}
	if err := checkSquare(to); err != nil {
		return err
	}
	p := s.Board[from]
	if p == NoPiece {
		return fmt.Errorf("%s%s: no piece on %s: %w", from, to, from, ErrIllegalMove)
	}
	if p.Color() != s.SideToMove {
		return fmt.Errorf("%s%s: %s is not to move: %w", from, to, p.Color(), ErrIllegalMove)
	}
	targets, err := SafeMoves(s, from)
	if err != nil {
		return err
	}
	if !containsSquare(targets, to) {
		return fmt.Errorf("%s%s: %w", from, to, ErrIllegalMove)
	}

	c := p.Color()
	relocate(&s.Board, from, to, s.EnPassant)

	if p.Type() == Pawn && to.RelativeRank(c) == 7 {
		pt := Queen
		if choose != nil {
			if picked := choose(c); picked.IsPromotion() {
				pt = picked
			}
		}
		s.Board[to] = NewPiece(pt, c)
	}

	s.Castling.touch(from)
	s.Castling.touch(to)
	if p.Type() == King {
		if c == White {
			s.Castling.WhiteKingMoved = true
		} else {
			s.Castling.BlackKingMoved = true
		}
		if d := to.File() - from.File(); d == 2 || d == -2 {
			s.Castling.touch(rookHome(c, d > 0))
		}
	}

	s.EnPassant = NoSquare
	if p.Type() == Pawn && abs(to.Rank()-from.Rank()) == 2 {
		s.EnPassant = NewSquare(from.File(), (from.Rank()+to.Rank())/2)
	}

	s.SideToMove = c.Other()
	return nil
}

// MakeMove applies m, using its promotion kind when it has one.
func MakeMove(s *State, m Move) error {
	var choose PromotionChooser
	if m.IsPromotion() {
		choose = Promote(m.Promotion)
	}
	return ApplyMove(s, m.From, m.To, choose)
}

func rookHome(c Color, kingSide bool) Square {
	file := 0
	if kingSide {
		file = 7
	}
	return NewSquare(file, c.homeRank())
}

func containsSquare(list []Square, sq Square) bool {
	for _, s := range list {
		if s == sq {
			return true
		}
	}
	return false
}
