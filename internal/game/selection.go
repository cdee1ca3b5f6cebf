package game

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hailam/chesszero/internal/board"
)

// Reasons a pointer gesture did not produce a move. They wrap board.ErrIllegalMove.
var (
	ErrOwnPiece     = fmt.Errorf("square occupied by your piece: %w", board.ErrIllegalMove)
	ErrKingInCheck  = fmt.Errorf("king would be in check: %w", board.ErrIllegalMove)
	ErrPiecePattern = fmt.Errorf("invalid move for this piece: %w", board.ErrIllegalMove)
)

// GestureKind says what a click or drop on the board asks for.
type GestureKind int

const (
	// GestureNone leaves everything as it was.
	GestureNone GestureKind = iota
	// GestureSelect picked up a piece of the side to move.
	GestureSelect
	// GestureClear dropped the current selection.
	GestureClear
	// GestureMove is a legal move ready for Apply.
	GestureMove
	// GesturePromote is a legal pawn move onto the last rank; ask which piece first.
	GesturePromote
	// GestureReject is an illegal attempt. Err holds the reason.
	GestureReject
)

// Gesture is the outcome of one click or drop.
type Gesture struct {
	Kind     GestureKind
	From, To board.Square
	Err      error
}

// Selection tracks the piece picked up between a press and the next click or
// drop, together with its legal targets.
type Selection struct {
	From    board.Square
	Targets []board.Square
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{From: board.NoSquare}
}

// Active reports whether a piece is picked up.
func (s *Selection) Active() bool {
	return s.From != board.NoSquare
}

// Clear drops the picked up piece.
func (s *Selection) Clear() {
	s.From = board.NoSquare
	s.Targets = nil
}

// IsTarget reports whether sq is a legal destination of the selected piece.
func (s *Selection) IsTarget(sq board.Square) bool {
	return slices.Contains(s.Targets, sq)
}

// Click handles a press on sq. Pressing a piece of the side to move selects
// it; pressing a target of the current selection asks for that move.
func (c *Controller) Click(sel *Selection, sq board.Square) Gesture {
	if !sq.IsValid() {
		sel.Clear()
		return Gesture{Kind: GestureClear}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if sel.Active() && sq != sel.From && sel.IsTarget(sq) {
		return c.moveGestureLocked(sel, sel.From, sq)
	}

	p := c.state.Board.At(sq)
	if p != board.NoPiece && p.Color() == c.state.SideToMove && !c.status.IsTerminal() {
		targets, err := board.SafeMoves(c.state, sq)
		if err != nil {
			sel.Clear()
			return Gesture{Kind: GestureReject, From: sq, To: sq, Err: err}
		}
		sel.From, sel.Targets = sq, targets
		return Gesture{Kind: GestureSelect, From: sq, To: sq}
	}

	if sel.Active() {
		from := sel.From
		sel.Clear()
		return Gesture{Kind: GestureReject, From: from, To: sq, Err: c.rejectReasonLocked(from, sq)}
	}
	return Gesture{Kind: GestureNone}
}

// Drop handles releasing a dragged piece over sq. Dropping the king on its
// own unmoved rook is read as castling towards that rook.
func (c *Controller) Drop(sel *Selection, sq board.Square) Gesture {
	if !sel.Active() {
		return Gesture{Kind: GestureNone}
	}
	if sq == sel.From {
		return Gesture{Kind: GestureNone}
	}
	if !sq.IsValid() {
		sel.Clear()
		return Gesture{Kind: GestureClear}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	to := sq
	if !sel.IsTarget(to) {
		if alias, ok := castleAlias(c.state, sel.From, sq); ok && sel.IsTarget(alias) {
			to = alias
		}
	}
	if sel.IsTarget(to) {
		return c.moveGestureLocked(sel, sel.From, to)
	}

	from := sel.From
	sel.Clear()
	return Gesture{Kind: GestureReject, From: from, To: sq, Err: c.rejectReasonLocked(from, sq)}
}

func (c *Controller) moveGestureLocked(sel *Selection, from, to board.Square) Gesture {
	if c.isPromotion(from, to) {
		return Gesture{Kind: GesturePromote, From: from, To: to}
	}
	sel.Clear()
	return Gesture{Kind: GestureMove, From: from, To: to}
}

// castleAlias maps a king dropped on its own rook to the castling destination.
func castleAlias(s *board.State, from, to board.Square) (board.Square, bool) {
	king := s.Board.At(from)
	rook := s.Board.At(to)
	if king.Type() != board.King || rook != board.NewPiece(board.Rook, king.Color()) {
		return board.NoSquare, false
	}
	if from.Rank() != to.Rank() || from.File() != 4 {
		return board.NoSquare, false
	}
	switch to.File() {
	case 7:
		return board.NewSquare(6, from.Rank()), true
	case 0:
		return board.NewSquare(2, from.Rank()), true
	}
	return board.NoSquare, false
}

// RejectReason explains why from->to is not a legal move in the current position.
func (c *Controller) RejectReason(from, to board.Square) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejectReasonLocked(from, to)
}

func (c *Controller) rejectReasonLocked(from, to board.Square) error {
	if c.status.IsTerminal() {
		return ErrGameOver
	}
	p := c.state.Board.At(from)
	if p == board.NoPiece || !to.IsValid() {
		return board.ErrIllegalMove
	}
	if dst := c.state.Board.At(to); dst != board.NoPiece && dst.Color() == p.Color() {
		return ErrOwnPiece
	}
	pseudo, err := board.PseudoLegalMoves(&c.state.Board, from, c.state.EnPassant, c.state.Castling)
	if err != nil {
		return err
	}
	if slices.Contains(pseudo, to) {
		return ErrKingInCheck
	}
	return ErrPiecePattern
}

// IsRejection reports whether err came from an illegal gesture rather than a
// broken game.
func IsRejection(err error) bool {
	return errors.Is(err, board.ErrIllegalMove) || errors.Is(err, ErrGameOver)
}
