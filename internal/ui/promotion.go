package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/hailam/chesszero/internal/board"
)

var promotionOrder = [4]board.PieceType{board.Queen, board.Knight, board.Rook, board.Bishop}

// PromotionPicker is the column of pieces shown over the promotion square.
type PromotionPicker struct {
	visible  bool
	from, to board.Square
	color    board.Color
	onPick   func(board.Move)
	onCancel func()
}

// Show opens the picker for a pawn moving from->to.
func (pp *PromotionPicker) Show(from, to board.Square, c board.Color, onPick func(board.Move), onCancel func()) {
	pp.visible = true
	pp.from, pp.to, pp.color = from, to, c
	pp.onPick, pp.onCancel = onPick, onCancel
}

// IsVisible reports whether the picker is open.
func (pp *PromotionPicker) IsVisible() bool {
	return pp.visible
}

// squares lists the picker cells, starting on the promotion square and
// running back towards the mover's side.
func (pp *PromotionPicker) squares() [4]board.Square {
	step := -1
	if pp.color == board.Black {
		step = 1
	}
	var out [4]board.Square
	for i := range out {
		out[i] = board.NewSquare(pp.to.File(), pp.to.Rank()+i*step)
	}
	return out
}

// Update consumes a click: a cell picks that piece, anything else cancels.
func (pp *PromotionPicker) Update(input *InputHandler, r *Renderer) {
	if !pp.visible {
		return
	}
	if input.IsRightJustPressed() || IsKeyJustPressed(ebiten.KeyEscape) {
		pp.cancel()
		return
	}
	if !input.IsLeftJustPressed() {
		return
	}
	sq := r.ScreenToSquare(input.MousePosition())
	for i, cell := range pp.squares() {
		if cell == sq {
			pp.visible = false
			pp.onPick(board.NewPromotion(pp.from, pp.to, promotionOrder[i]))
			return
		}
	}
	pp.cancel()
}

func (pp *PromotionPicker) cancel() {
	pp.visible = false
	if pp.onCancel != nil {
		pp.onCancel()
	}
}

// Draw dims the board and paints the choices.
func (pp *PromotionPicker) Draw(screen *ebiten.Image, r *Renderer) {
	if !pp.visible {
		return
	}
	size := r.s(r.squareSize)
	vector.DrawFilledRect(screen, 0, 0, size*8, size*8, color.RGBA{0, 0, 0, 120}, false)
	for i, sq := range pp.squares() {
		x, y := r.SquareToScreen(sq)
		vector.DrawFilledRect(screen, r.s(x), r.s(y), size, size, color.RGBA{235, 235, 235, 255}, false)
		vector.StrokeRect(screen, r.s(x), r.s(y), size, size, 1, color.RGBA{90, 90, 90, 255}, false)
		r.sprites.DrawPieceAt(screen, board.NewPiece(promotionOrder[i], pp.color), float64(r.s(x)), float64(r.s(y)))
	}
}
