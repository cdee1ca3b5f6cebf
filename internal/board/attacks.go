package board

// IsAttacked reports whether any piece of color by attacks sq. Pawns attack
// only their two forward diagonals; sliders need a clear line to sq.
func IsAttacked(b *Board, sq Square, by Color) (bool, error) {
	if err := checkSquare(sq); err != nil {
		return false, err
	}
	return attacked(b, sq, by), nil
}

func attacked(b *Board, sq Square, by Color) bool {
	for from := A1; from <= H8; from++ {
		p := b[from]
		if p == NoPiece || p.Color() != by {
			continue
		}
		if attacks(b, p, from, sq) {
			return true
		}
	}
	return false
}

// attacks reports whether p standing on from hits to.
func attacks(b *Board, p Piece, from, to Square) bool {
	if from == to {
		return false
	}
	df := to.File() - from.File()
	dr := to.Rank() - from.Rank()
	adf, adr := abs(df), abs(dr)

	switch p.Type() {
	case Pawn:
		return dr == p.Color().forward() && adf == 1
	case Knight:
		return (adf == 1 && adr == 2) || (adf == 2 && adr == 1)
	case King:
		return adf <= 1 && adr <= 1
	case Rook:
		return (df == 0 || dr == 0) && clearPath(b, from, df, dr)
	case Bishop:
		return adf == adr && clearPath(b, from, df, dr)
	case Queen:
		return (df == 0 || dr == 0 || adf == adr) && clearPath(b, from, df, dr)
	}
	return false
}

// clearPath reports whether every square strictly between from and from+(df,dr)
// is empty. The delta must lie on a rank, file or diagonal.
func clearPath(b *Board, from Square, df, dr int) bool {
	sf, sr := sign(df), sign(dr)
	f, r := from.File()+sf, from.Rank()+sr
	tf, tr := from.File()+df, from.Rank()+dr
	for f != tf || r != tr {
		if !b.isEmpty(f, r) {
			return false
		}
		f, r = f+sf, r+sr
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
