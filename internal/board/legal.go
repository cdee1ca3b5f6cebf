package board

// SafeMoves returns the pseudo-legal targets of the piece on sq that do not leave
// its own king attacked. Each candidate is played on a scratch copy of the board,
// including the en-passant capture and the castling rook, and the king is then
// tested against the opponent. A side without a king has no safe moves.
func SafeMoves(s *State, sq Square) ([]Square, error) {
	candidates, err := PseudoLegalMoves(&s.Board, sq, s.EnPassant, s.Castling)
	if err != nil || len(candidates) == 0 {
		return nil, err
	}
	c := s.Board[sq].Color()
	safe := candidates[:0]
	for _, to := range candidates {
		scratch := s.Board
		relocate(&scratch, sq, to, s.EnPassant)
		king := scratch.KingSquare(c)
		if king == NoSquare || attacked(&scratch, king, c.Other()) {
			continue
		}
		safe = append(safe, to)
	}
	return safe, nil
}

// relocate moves the piece on from to to, removing a pawn captured en passant
// and moving the rook of a castling king. Rights and turn are left alone.
func relocate(b *Board, from, to, ep Square) {
	p := b[from]
	switch p.Type() {
	case Pawn:
		if to == ep && from.File() != to.File() && b[to] == NoPiece {
			b[NewSquare(to.File(), from.Rank())] = NoPiece
		}
	case King:
		if d := to.File() - from.File(); d == 2 || d == -2 {
			rank := from.Rank()
			rookFrom, rookTo := NewSquare(7, rank), NewSquare(5, rank)
			if d < 0 {
				rookFrom, rookTo = NewSquare(0, rank), NewSquare(3, rank)
			}
			b[rookTo] = b[rookFrom]
			b[rookFrom] = NoPiece
		}
	}
	b[to] = p
	b[from] = NoPiece
}

// LegalMoves lists every legal move of the side to move, walking the board from
// A1 to H8 and keeping each piece's target order. A pawn reaching the last rank
// contributes one move per promotion kind in queen, rook, bishop, knight order.
func LegalMoves(s *State) []Move {
	var moves []Move
	for sq := A1; sq <= H8; sq++ {
		p := s.Board[sq]
		if p == NoPiece || p.Color() != s.SideToMove {
			continue
		}
		targets, _ := SafeMoves(s, sq)
		for _, to := range targets {
			if p.Type() == Pawn && to.RelativeRank(p.Color()) == 7 {
				for _, pt := range PromotionKinds {
					moves = append(moves, NewPromotion(sq, to, pt))
				}
				continue
			}
			moves = append(moves, NewMove(sq, to))
		}
	}
	return moves
}

// HasAnyLegalMove reports whether some piece of color c has a safe move.
func HasAnyLegalMove(s *State, c Color) bool {
	for sq := A1; sq <= H8; sq++ {
		if p := s.Board[sq]; p == NoPiece || p.Color() != c {
			continue
		}
		if targets, _ := SafeMoves(s, sq); len(targets) > 0 {
			return true
		}
	}
	return false
}

// InCheck reports whether c's king is attacked. It returns ErrMissingKing
// together with true when c has no king, since that position is lost for c.
func (s *State) InCheck(c Color) (bool, error) {
	king := s.Board.KingSquare(c)
	if king == NoSquare {
		return true, ErrMissingKing
	}
	return attacked(&s.Board, king, c.Other()), nil
}

// Status classifies a position for the side to move.
type Status uint8

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
)

func (st Status) String() string {
	switch st {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// IsTerminal reports whether the game is over.
func (st Status) IsTerminal() bool {
	return st != Ongoing
}

// Status reports whether the side to move is checkmated, stalemated or still
// playing. A side without a king counts as checkmated.
func (s *State) Status() Status {
	if HasAnyLegalMove(s, s.SideToMove) {
		return Ongoing
	}
	if inCheck, _ := s.InCheck(s.SideToMove); inCheck {
		return Checkmate
	}
	return Stalemate
}
