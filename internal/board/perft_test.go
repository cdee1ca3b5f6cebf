package board

import "testing"

func TestPerftStartingPosition(t *testing.T) {
	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			if tc.depth > 3 && testing.Short() {
				t.Skip("deep perft skipped in short mode")
			}
			got := Perft(NewState(), tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// Kiwipete exercises castling, en passant and promotions together.
func TestPerftKiwipete(t *testing.T) {
	pos := layout(t, White,
		"r...k..r",
		"p.ppqpb.",
		"bn..pnp.",
		"...PN...",
		".p..P...",
		"..N..Q.p",
		"PPPBBPPP",
		"R...K..R",
	)

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			if tc.depth > 2 && testing.Short() {
				t.Skip("deep perft skipped in short mode")
			}
			got := Perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
				for m, n := range PerftDivide(pos, tc.depth) {
					t.Logf("  %s: %d", m, n)
				}
			}
		})
	}
}

// Position 3 of the usual perft suite: pins, discovered checks and en passant
// along the king's rank.
func TestPerftEndgame(t *testing.T) {
	pos := layout(t, White,
		"........",
		"..p.....",
		"...p....",
		"KP.....r",
		".R...p.k",
		"........",
		"....P.P.",
		"........",
	)

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
		{4, 43238},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := Perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}
