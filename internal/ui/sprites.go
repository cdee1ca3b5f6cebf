package ui

import (
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hailam/chesszero/internal/board"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Piece outlines on a 45x45 canvas. %[1]s is the body fill, %[2]s the stroke.
var pieceShapes = map[board.PieceType]string{
	board.Pawn: `<circle cx="22.5" cy="14" r="5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<path d="M 17 21 L 28 21 L 30 30 L 34 37 L 11 37 L 15 30 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
	board.Knight: `<path d="M 12 37 L 33 37 L 33 33 C 33 25 31 18 27 14 L 26 9 L 22 12 C 17 12 11 18 10 23 L 13 26 L 19 22 C 19 26 15 29 13 33 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<circle cx="19" cy="17" r="1.5" fill="%[2]s"/>`,
	board.Bishop: `<ellipse cx="22.5" cy="23" rx="7" ry="9" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<circle cx="22.5" cy="10.5" r="2.5" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<path d="M 12 37 L 33 37 L 31 32 L 14 32 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<path d="M 20 22 L 25 22 M 22.5 19.5 L 22.5 24.5" stroke="%[2]s" stroke-width="1.5"/>`,
	board.Rook: `<path d="M 11 9 L 15 9 L 15 12 L 20 12 L 20 9 L 25 9 L 25 12 L 30 12 L 30 9 L 34 9 L 34 15 L 31 17 L 31 30 L 34 33 L 34 37 L 11 37 L 11 33 L 14 30 L 14 17 L 11 15 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<path d="M 14 17 L 31 17 M 14 30 L 31 30" stroke="%[2]s" stroke-width="1"/>`,
	board.Queen: `<path d="M 9 14 L 14 28 L 17 12 L 20.5 27 L 22.5 10 L 24.5 27 L 28 12 L 31 28 L 36 14 L 33 33 L 12 33 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<path d="M 11 33 L 34 33 L 34 37 L 11 37 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<circle cx="9" cy="13" r="2" fill="%[1]s" stroke="%[2]s"/><circle cx="17" cy="11" r="2" fill="%[1]s" stroke="%[2]s"/>
<circle cx="22.5" cy="9" r="2" fill="%[1]s" stroke="%[2]s"/><circle cx="28" cy="11" r="2" fill="%[1]s" stroke="%[2]s"/>
<circle cx="36" cy="13" r="2" fill="%[1]s" stroke="%[2]s"/>`,
	board.King: `<path d="M 22.5 5 L 22.5 12 M 19 8.5 L 26 8.5" stroke="%[2]s" stroke-width="2"/>
<path d="M 22.5 14 C 18 14 16 18 18 22 C 12 19 7 23 9 28 L 12 33 L 33 33 L 36 28 C 38 23 33 19 27 22 C 29 18 27 14 22.5 14 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>
<path d="M 11 33 L 34 33 L 34 37 L 11 37 Z" fill="%[1]s" stroke="%[2]s" stroke-width="1.5"/>`,
}

func pieceSVG(p board.Piece) string {
	fill, stroke := "#ffffff", "#000000"
	if p.Color() == board.Black {
		fill, stroke = "#000000", "#ffffff"
	}
	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="45" height="45" viewBox="0 0 45 45">`)
	fmt.Fprintf(&sb, pieceShapes[p.Type()], fill, stroke)
	sb.WriteString(`</svg>`)
	return sb.String()
}

// SpriteManager rasterizes the piece set once per scale.
type SpriteManager struct {
	pieces      map[board.Piece]*ebiten.Image
	size        int
	scale       float64
	renderScale float64
}

// NewSpriteManager renders pieces for squares of size logical pixels.
func NewSpriteManager(size int) *SpriteManager {
	sm := &SpriteManager{
		pieces:      make(map[board.Piece]*ebiten.Image),
		size:        size,
		scale:       1.0,
		renderScale: 3.0,
	}
	sm.loadPieces()
	return sm
}

// SetScale re-renders the pieces when the device scale changes.
func (sm *SpriteManager) SetScale(scale float64) {
	if scale == sm.scale {
		return
	}
	sm.scale = scale
	sm.loadPieces()
}

func (sm *SpriteManager) loadPieces() {
	renderSize := int(float64(sm.size) * sm.scale * sm.renderScale)
	for p := board.WhitePawn; p < board.NoPiece; p++ {
		icon, err := oksvg.ReadIconStream(strings.NewReader(pieceSVG(p)))
		if err != nil {
			slog.Warn("parse piece svg", "piece", p.String(), "err", err)
			continue
		}
		icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))

		rgba := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
		scanner := rasterx.NewScannerGV(renderSize, renderSize, rgba, rgba.Bounds())
		icon.Draw(rasterx.NewDasher(renderSize, renderSize, scanner), 1.0)

		if old := sm.pieces[p]; old != nil {
			old.Deallocate()
		}
		sm.pieces[p] = ebiten.NewImageFromImage(rgba)
	}
}

// GetPiece returns the sprite for p, or nil.
func (sm *SpriteManager) GetPiece(p board.Piece) *ebiten.Image {
	return sm.pieces[p]
}

// DrawPieceAt draws p with its top-left corner at device pixel (x, y).
func (sm *SpriteManager) DrawPieceAt(screen *ebiten.Image, p board.Piece, x, y float64) {
	sprite := sm.GetPiece(p)
	if p == board.NoPiece || sprite == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1/sm.renderScale, 1/sm.renderScale)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
}
