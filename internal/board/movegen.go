package board

type offset struct{ df, dr int }

var (
	knightOffsets = [8]offset{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}, {2, 1}, {-2, 1}, {2, -1}, {-2, -1}}
	kingOffsets   = [8]offset{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
	rookDirs      = []offset{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs    = []offset{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	queenDirs     = append(append([]offset{}, rookDirs...), bishopDirs...)
)

// PseudoLegalMoves returns the target squares of the piece on sq that follow its
// movement pattern, without checking whether the mover's own king is left attacked.
// Castling targets are included only when the king and rook are unmoved, the squares
// between them are empty and the king does not start on, pass or land on an attacked
// square. An empty square yields no targets.
//
// Targets come out in a fixed order per piece kind, which callers rely on for
// reproducible enumeration.
func PseudoLegalMoves(b *Board, sq, ep Square, rights CastlingRights) ([]Square, error) {
	if err := checkSquare(sq); err != nil {
		return nil, err
	}
	p := b[sq]
	if p == NoPiece {
		return nil, nil
	}
	c := p.Color()
	file, rank := sq.File(), sq.Rank()

	var moves []Square
	switch p.Type() {
	case Pawn:
		moves = pawnMoves(b, file, rank, c, ep)
	case Knight:
		moves = stepMoves(b, file, rank, c, knightOffsets[:])
	case Bishop:
		moves = slideMoves(b, file, rank, c, bishopDirs)
	case Rook:
		moves = slideMoves(b, file, rank, c, rookDirs)
	case Queen:
		moves = slideMoves(b, file, rank, c, queenDirs)
	case King:
		moves = stepMoves(b, file, rank, c, kingOffsets[:])
		moves = append(moves, castlingMoves(b, sq, c, rights)...)
	}
	return moves, nil
}

func pawnMoves(b *Board, file, rank int, c Color, ep Square) []Square {
	var moves []Square
	dir := c.forward()
	next := rank + dir
	if next < 0 || next > 7 {
		return nil
	}
	if b.isEmpty(file, next) {
		moves = append(moves, NewSquare(file, next))
		startRank := 1
		if c == Black {
			startRank = 6
		}
		if rank == startRank && b.isEmpty(file, next+dir) {
			moves = append(moves, NewSquare(file, next+dir))
		}
	}
	for _, df := range [2]int{-1, 1} {
		f := file + df
		if f < 0 || f > 7 {
			continue
		}
		target := NewSquare(f, next)
		if q := b[target]; q != NoPiece && q.Color() != c {
			moves = append(moves, target)
			continue
		}
		// En passant: the enemy pawn that just double-stepped sits beside us.
		if target == ep && b[target] == NoPiece && b[NewSquare(f, rank)] == NewPiece(Pawn, c.Other()) {
			moves = append(moves, target)
		}
	}
	return moves
}

func stepMoves(b *Board, file, rank int, c Color, offsets []offset) []Square {
	moves := make([]Square, 0, len(offsets))
	for _, o := range offsets {
		f, r := file+o.df, rank+o.dr
		if !onBoard(f, r) {
			continue
		}
		target := NewSquare(f, r)
		if q := b[target]; q == NoPiece || q.Color() != c {
			moves = append(moves, target)
		}
	}
	return moves
}

func slideMoves(b *Board, file, rank int, c Color, dirs []offset) []Square {
	var moves []Square
	for _, d := range dirs {
		for f, r := file+d.df, rank+d.dr; onBoard(f, r); f, r = f+d.df, r+d.dr {
			target := NewSquare(f, r)
			q := b[target]
			if q == NoPiece {
				moves = append(moves, target)
				continue
			}
			if q.Color() != c {
				moves = append(moves, target)
			}
			break
		}
	}
	return moves
}

// castlingMoves returns the king's castling destinations, king side first.
func castlingMoves(b *Board, sq Square, c Color, rights CastlingRights) []Square {
	home := c.homeRank()
	if sq != NewSquare(4, home) {
		return nil
	}
	rook := NewPiece(Rook, c)
	enemy := c.Other()
	var moves []Square
	if rights.CanCastle(c, true) && b[NewSquare(7, home)] == rook &&
		b.isEmpty(5, home) && b.isEmpty(6, home) &&
		!anyAttacked(b, enemy, home, 4, 5, 6) {
		moves = append(moves, NewSquare(6, home))
	}
	if rights.CanCastle(c, false) && b[NewSquare(0, home)] == rook &&
		b.isEmpty(1, home) && b.isEmpty(2, home) && b.isEmpty(3, home) &&
		!anyAttacked(b, enemy, home, 4, 3, 2) {
		moves = append(moves, NewSquare(2, home))
	}
	return moves
}

func anyAttacked(b *Board, by Color, rank int, files ...int) bool {
	for _, f := range files {
		if attacked(b, NewSquare(f, rank), by) {
			return true
		}
	}
	return false
}
