// Package game owns a live chess game: the canonical position, its move
// history and the terminal state. Display and input layers talk to it through
// square-level queries and move requests.
package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hailam/chesszero/internal/action"
	"github.com/hailam/chesszero/internal/board"
)

// ErrGameOver is returned for moves submitted after checkmate or stalemate.
var ErrGameOver = errors.New("game is over")

// ErrNothingToUndo is returned by Undo at the start of a game.
var ErrNothingToUndo = errors.New("nothing to undo")

// Record describes one played move.
type Record struct {
	Move     board.Move
	Piece    board.Piece
	Captured board.Piece
	// Promotion is the piece the pawn became, or NoPiece.
	Promotion board.Piece
	Status    board.Status
}

// Controller is safe for concurrent use; the GUI reads it from the draw loop
// while a search goroutine may be applying the bot's move.
type Controller struct {
	mu       sync.Mutex
	state    *board.State
	start    board.State
	previous []board.State
	history  []Record
	status   board.Status
	choose   board.PromotionChooser
}

// Option configures a Controller.
type Option func(*Controller)

// WithPromotionChooser sets the callback used when a pawn reaches the last
// rank during Apply. Without one pawns promote to queens.
func WithPromotionChooser(choose board.PromotionChooser) Option {
	return func(c *Controller) { c.choose = choose }
}

// WithState starts the game from a copy of s instead of the initial position.
func WithState(s *board.State) Option {
	return func(c *Controller) { c.start = *s }
}

// NewController starts a game at the standard initial position.
func NewController(opts ...Option) *Controller {
	c := &Controller{start: *board.NewState()}
	for _, opt := range opts {
		opt(c)
	}
	c.resetLocked()
	return c
}

func (c *Controller) resetLocked() {
	s := c.start
	c.state = &s
	c.previous = c.previous[:0]
	c.history = c.history[:0]
	c.status = c.state.Status()
}

// Reset returns to the starting position and clears the history.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// SetPromotionChooser replaces the promotion callback.
func (c *Controller) SetPromotionChooser(choose board.PromotionChooser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.choose = choose
}

// PieceAt returns the piece on sq.
func (c *Controller) PieceAt(sq board.Square) (board.Piece, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.PieceAt(sq)
}

// LegalMoves returns the target squares of the piece on sq. Only pieces of the
// side to move have targets, and none are offered once the game is over.
func (c *Controller) LegalMoves(sq board.Square) ([]board.Square, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.state.PieceAt(sq)
	if err != nil {
		return nil, err
	}
	if c.status.IsTerminal() || p == board.NoPiece || p.Color() != c.state.SideToMove {
		return nil, nil
	}
	return board.SafeMoves(c.state, sq)
}

// NeedsPromotion reports whether from->to is a pawn move onto the last rank,
// so a UI can ask the player before calling Apply.
func (c *Controller) NeedsPromotion(from, to board.Square) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isPromotion(from, to)
}

// Apply plays from->to, resolving promotions with the configured chooser.
// It returns the status after the move.
func (c *Controller) Apply(from, to board.Square) (board.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(from, to, c.choose)
}

// ApplyMove plays m, using its promotion kind when set.
func (c *Controller) ApplyMove(m board.Move) (board.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	choose := c.choose
	if m.IsPromotion() {
		choose = board.Promote(m.Promotion)
	}
	return c.applyLocked(m.From, m.To, choose)
}

// ApplyAction plays the move encoded by an action index.
func (c *Controller) ApplyAction(idx int) (board.Status, error) {
	m, err := action.Decode(idx)
	if err != nil {
		return board.Ongoing, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if m.IsPromotion() != c.isPromotion(m.From, m.To) {
		return c.status, fmt.Errorf("action %d (%s): promotion code does not fit the move: %w", idx, m, board.ErrIllegalMove)
	}
	return c.applyLocked(m.From, m.To, board.Promote(m.Promotion))
}

func (c *Controller) isPromotion(from, to board.Square) bool {
	p := c.state.Board.At(from)
	return p.Type() == board.Pawn && to.IsValid() && to.RelativeRank(p.Color()) == 7
}

func (c *Controller) applyLocked(from, to board.Square, choose board.PromotionChooser) (board.Status, error) {
	if c.status.IsTerminal() {
		return c.status, ErrGameOver
	}
	before := *c.state
	rec := Record{
		Piece:     before.Board.At(from),
		Captured:  before.Board.At(to),
		Promotion: board.NoPiece,
	}
	if rec.Piece.Type() == board.Pawn && to == before.EnPassant && from.File() != to.File() {
		rec.Captured = board.NewPiece(board.Pawn, rec.Piece.Color().Other())
	}

	if err := board.ApplyMove(c.state, from, to, choose); err != nil {
		return c.status, err
	}

	rec.Move = board.NewMove(from, to)
	if after := c.state.Board[to]; after != rec.Piece {
		rec.Promotion = after
		rec.Move.Promotion = after.Type()
	}
	c.status = c.state.Status()
	rec.Status = c.status

	c.previous = append(c.previous, before)
	c.history = append(c.history, rec)
	return c.status, nil
}

// Undo takes back the last move.
func (c *Controller) Undo() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.previous)
	if n == 0 {
		return ErrNothingToUndo
	}
	prev := c.previous[n-1]
	c.state = &prev
	c.previous = c.previous[:n-1]
	c.history = c.history[:n-1]
	c.status = c.state.Status()
	return nil
}

// Status reports whether the game is still on.
func (c *Controller) Status() board.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Turn returns the side to move.
func (c *Controller) Turn() board.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.SideToMove
}

// InCheck reports whether the side to move is in check.
func (c *Controller) InCheck() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	inCheck, _ := c.state.InCheck(c.state.SideToMove)
	return inCheck
}

// Snapshot returns an independent copy of the current position.
func (c *Controller) Snapshot() *board.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// History returns a copy of the played moves.
func (c *Controller) History() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Record(nil), c.history...)
}

// LastMove returns the most recent move, if any.
func (c *Controller) LastMove() (board.Move, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == 0 {
		return board.NoMove, false
	}
	return c.history[len(c.history)-1].Move, true
}

// Winner returns the side that delivered checkmate, or NoColor while the game
// is on or after a stalemate.
func (c *Controller) Winner() board.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == board.Checkmate {
		return c.state.SideToMove.Other()
	}
	return board.NoColor
}

// Result describes the outcome in words, or "" while the game is on.
func (c *Controller) Result() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Describe(c.status, c.state.SideToMove)
}

// Describe renders a status for the given side to move.
func Describe(st board.Status, toMove board.Color) string {
	switch st {
	case board.Checkmate:
		return fmt.Sprintf("Checkmate! %s wins", toMove.Other())
	case board.Stalemate:
		return "Stalemate - draw"
	}
	return ""
}
