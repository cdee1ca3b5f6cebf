// Package encoding turns positions into the fixed-shape tensor consumed by
// position evaluators and stored in training data.
package encoding

import "github.com/hailam/chesszero/internal/board"

const (
	// Planes is the number of 8x8 planes: six kinds times two colors plus the turn plane.
	Planes = 13
	// TurnPlane is 1.0 everywhere when white is to move and 0.0 otherwise.
	TurnPlane = 12
	// Size is the flattened length of an Observation.
	Size = Planes * 64
)

// Observation is a [13][8][8] float32 tensor flattened plane-major. Row 0 is
// rank 8 and column 0 is the a-file, so a plane reads like a printed board.
type Observation [Size]float32

// kindOrder fixes the plane pair of each piece kind.
var kindOrder = [6]board.PieceType{board.Pawn, board.Rook, board.Bishop, board.Knight, board.Queen, board.King}

var planeOf [board.NoPiece]int

func init() {
	for i, pt := range kindOrder {
		planeOf[board.NewPiece(pt, board.White)] = i * 2
		planeOf[board.NewPiece(pt, board.Black)] = i*2 + 1
	}
}

// Plane returns the plane that holds p, or -1 for NoPiece.
func Plane(p board.Piece) int {
	if p >= board.NoPiece {
		return -1
	}
	return planeOf[p]
}

// Offset returns the flat index of (plane, sq).
func Offset(plane int, sq board.Square) int {
	row := 7 - sq.Rank()
	return plane*64 + row*8 + sq.File()
}

// Encode writes the one-hot piece planes and the turn plane for s.
func Encode(s *board.State) Observation {
	var obs Observation
	EncodeInto(s, obs[:])
	return obs
}

// EncodeInto fills dst, which must hold at least Size values. It is used to
// write straight into batched inference buffers.
func EncodeInto(s *board.State, dst []float32) {
	dst = dst[:Size]
	clear(dst)
	for sq := board.A1; sq <= board.H8; sq++ {
		if p := s.Board[sq]; p != board.NoPiece {
			dst[Offset(planeOf[p], sq)] = 1
		}
	}
	if s.SideToMove == board.White {
		turn := dst[TurnPlane*64 : (TurnPlane+1)*64]
		for i := range turn {
			turn[i] = 1
		}
	}
}
