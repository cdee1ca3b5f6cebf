package board

// Perft counts the leaf nodes of the legal move tree to the given depth.
// Promotions count once per kind.
func Perft(s *State, depth int) int64 {
	if depth <= 0 {
		return 1
	}
	moves := LegalMoves(s)
	if depth == 1 {
		return int64(len(moves))
	}
	var nodes int64
	for _, m := range moves {
		child := s.Clone()
		if err := MakeMove(child, m); err != nil {
			continue
		}
		nodes += Perft(child, depth-1)
	}
	return nodes
}

// PerftDivide returns the node count below each root move, keyed by its UCI string.
func PerftDivide(s *State, depth int) map[string]int64 {
	out := make(map[string]int64)
	for _, m := range LegalMoves(s) {
		child := s.Clone()
		if err := MakeMove(child, m); err != nil {
			continue
		}
		out[m.String()] = Perft(child, depth-1)
	}
	return out
}
