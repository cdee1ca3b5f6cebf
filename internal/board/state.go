package board

import (
	"fmt"
	"strings"
)

// Board maps every square to the piece on it, or NoPiece.
type Board [64]Piece

// At returns the piece on sq, or NoPiece when sq is off the board.
func (b *Board) At(sq Square) Piece {
	if !sq.IsValid() {
		return NoPiece
	}
	return b[sq]
}

// KingSquare returns the square of c's king, or NoSquare if it has none.
func (b *Board) KingSquare(c Color) Square {
	king := NewPiece(King, c)
	for sq := A1; sq <= H8; sq++ {
		if b[sq] == king {
			return sq
		}
	}
	return NoSquare
}

func (b *Board) isEmpty(file, rank int) bool {
	return b[NewSquare(file, rank)] == NoPiece
}

// CastlingRights records which castling pieces have left their home squares.
// A side may castle only while its king and the matching rook are both unmoved;
// a flag never resets once set.
type CastlingRights struct {
	WhiteKingMoved      bool
	BlackKingMoved      bool
	WhiteKingRookMoved  bool
	WhiteQueenRookMoved bool
	BlackKingRookMoved  bool
	BlackQueenRookMoved bool
}

func (cr CastlingRights) kingMoved(c Color) bool {
	if c == White {
		return cr.WhiteKingMoved
	}
	return cr.BlackKingMoved
}

func (cr CastlingRights) rookMoved(c Color, kingSide bool) bool {
	switch {
	case c == White && kingSide:
		return cr.WhiteKingRookMoved
	case c == White:
		return cr.WhiteQueenRookMoved
	case kingSide:
		return cr.BlackKingRookMoved
	default:
		return cr.BlackQueenRookMoved
	}
}

// CanCastle reports whether the flags still allow c to castle on the given wing.
// Board conditions are checked by the move generator.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return !cr.kingMoved(c) && !cr.rookMoved(c, kingSide)
}

// touch clears the rights tied to a home square that a piece has left or been captured on.
func (cr *CastlingRights) touch(sq Square) {
	switch sq {
	case E1:
		cr.WhiteKingMoved = true
	case E8:
		cr.BlackKingMoved = true
	case H1:
		cr.WhiteKingRookMoved = true
	case A1:
		cr.WhiteQueenRookMoved = true
	case H8:
		cr.BlackKingRookMoved = true
	case A8:
		cr.BlackQueenRookMoved = true
	}
}

// String renders the rights in the familiar KQkq form.
func (cr CastlingRights) String() string {
	var sb strings.Builder
	if cr.CanCastle(White, true) {
		sb.WriteByte('K')
	}
	if cr.CanCastle(White, false) {
		sb.WriteByte('Q')
	}
	if cr.CanCastle(Black, true) {
		sb.WriteByte('k')
	}
	if cr.CanCastle(Black, false) {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func (cr CastlingRights) bits() byte {
	var b byte
	for i, f := range [6]bool{cr.WhiteKingMoved, cr.BlackKingMoved, cr.WhiteKingRookMoved,
		cr.WhiteQueenRookMoved, cr.BlackKingRookMoved, cr.BlackQueenRookMoved} {
		if f {
			b |= 1 << i
		}
	}
	return b
}

// State is a complete position. It holds no pointers, so assigning a State
// copies it fully and a copy never aliases the original board.
type State struct {
	Board      Board
	SideToMove Color
	Castling   CastlingRights
	// EnPassant is the square skipped by a pawn double step on the previous ply, else NoSquare.
	EnPassant Square
}

// NewState returns the standard initial position with white to move.
func NewState() *State {
	s := EmptyState()
	back := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for file, pt := range back {
		s.Board[NewSquare(file, 0)] = NewPiece(pt, White)
		s.Board[NewSquare(file, 1)] = WhitePawn
		s.Board[NewSquare(file, 6)] = BlackPawn
		s.Board[NewSquare(file, 7)] = NewPiece(pt, Black)
	}
	return s
}

// EmptyState returns a board with no pieces, white to move and untouched castling flags.
func EmptyState() *State {
	s := &State{SideToMove: White, EnPassant: NoSquare}
	for i := range s.Board {
		s.Board[i] = NoPiece
	}
	return s
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	c := *s
	return &c
}

// Place puts p on sq, replacing whatever was there. Use NoPiece to clear a square.
func (s *State) Place(sq Square, p Piece) error {
	if err := checkSquare(sq); err != nil {
		return err
	}
	if p > NoPiece {
		return fmt.Errorf("place %s: invalid piece %d", sq, p)
	}
	s.Board[sq] = p
	return nil
}

// PieceAt returns the piece on sq.
func (s *State) PieceAt(sq Square) (Piece, error) {
	if err := checkSquare(sq); err != nil {
		return NoPiece, err
	}
	return s.Board[sq], nil
}

// Key is a canonical serialization of the position: placement, side to move,
// castling flags and en-passant target. Move history is not part of it.
func (s *State) Key() string {
	var buf [67]byte
	for i, p := range s.Board {
		buf[i] = "PNBRQKpnbrqk."[p]
	}
	buf[64] = byte(s.SideToMove)
	buf[65] = s.Castling.bits()
	buf[66] = byte(s.EnPassant)
	return string(buf[:])
}

// String draws the board with rank 8 on top, for logs and debugging.
func (s *State) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteByte(' ')
			sb.WriteString(s.Board[NewSquare(file, rank)].String())
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a b c d e f g h\n")
	fmt.Fprintf(&sb, "side: %s  castling: %s  en passant: %s\n", s.SideToMove, s.Castling, s.EnPassant)
	return sb.String()
}
