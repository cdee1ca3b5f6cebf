package ui

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/hailam/chesszero/internal/board"
)

// Theme defines the color scheme for the board.
type Theme struct {
	LightSquare    color.RGBA
	DarkSquare     color.RGBA
	SelectedSquare color.RGBA
	LegalMoveColor color.RGBA
	LastMoveColor  color.RGBA
	CheckColor     color.RGBA
	HintColor      color.RGBA
	Background     color.RGBA
	TextColor      color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare:    color.RGBA{240, 217, 181, 255},
		DarkSquare:     color.RGBA{181, 136, 99, 255},
		SelectedSquare: color.RGBA{247, 247, 105, 180},
		LegalMoveColor: color.RGBA{130, 151, 105, 200},
		LastMoveColor:  color.RGBA{180, 190, 100, 90},
		CheckColor:     color.RGBA{255, 100, 100, 180},
		HintColor:      color.RGBA{80, 160, 255, 170},
		Background:     color.RGBA{40, 44, 52, 255},
		TextColor:      color.RGBA{220, 220, 220, 255},
	}
}

// Renderer draws the board in logical coordinates, scaled by the device factor.
type Renderer struct {
	sprites    *SpriteManager
	theme      *Theme
	boardSize  int
	squareSize int
	scale      float64
	flipped    bool
}

// NewRenderer creates a new renderer.
func NewRenderer(boardSize, squareSize int) *Renderer {
	return &Renderer{
		sprites:    NewSpriteManager(squareSize),
		theme:      DefaultTheme(),
		boardSize:  boardSize,
		squareSize: squareSize,
		scale:      1.0,
	}
}

// SetScale sets the HiDPI scale factor for rendering.
func (r *Renderer) SetScale(scale float64) {
	r.scale = scale
	r.sprites.SetScale(scale)
}

// SetFlipped puts black at the bottom when true.
func (r *Renderer) SetFlipped(flipped bool) {
	r.flipped = flipped
}

// Flipped reports whether black is at the bottom.
func (r *Renderer) Flipped() bool {
	return r.flipped
}

func (r *Renderer) s(v int) float32 {
	return float32(float64(v) * r.scale)
}

// DrawBoard draws the squares and the file and rank labels.
func (r *Renderer) DrawBoard(screen *ebiten.Image) {
	size := r.s(r.squareSize)
	for sq := board.A1; sq <= board.H8; sq++ {
		c := r.theme.LightSquare
		if (sq.Rank()+sq.File())%2 == 0 {
			c = r.theme.DarkSquare
		}
		x, y := r.SquareToScreen(sq)
		vector.DrawFilledRect(screen, r.s(x), r.s(y), size, size, c, false)
	}
	r.drawCoordinates(screen)
}

func (r *Renderer) drawCoordinates(screen *ebiten.Image) {
	face := GetFaceWithSize(coordFontSize)
	for i := 0; i < 8; i++ {
		file := board.NewSquare(i, 0)
		rank := board.NewSquare(0, i)
		if r.flipped {
			file = board.NewSquare(i, 7)
			rank = board.NewSquare(7, i)
		}

		fx, _ := r.SquareToScreen(file)
		drawText(screen, file.String()[:1], fx+r.squareSize-10, r.boardSize-15, face, r.labelColor(file))

		_, ry := r.SquareToScreen(rank)
		drawText(screen, rank.String()[1:], 3, ry+2, face, r.labelColor(rank))
	}
}

// labelColor picks the opposite square shade so labels stay readable.
func (r *Renderer) labelColor(sq board.Square) color.RGBA {
	if (sq.Rank()+sq.File())%2 == 0 {
		return r.theme.LightSquare
	}
	return r.theme.DarkSquare
}

// DrawHighlights draws the last move, the selected square and its targets.
func (r *Renderer) DrawHighlights(screen *ebiten.Image, selected board.Square, targets []board.Square, lastMove board.Move) {
	if lastMove != board.NoMove {
		r.highlightSquare(screen, lastMove.From, r.theme.LastMoveColor)
		r.highlightSquare(screen, lastMove.To, r.theme.LastMoveColor)
	}
	if selected != board.NoSquare {
		r.highlightSquare(screen, selected, r.theme.SelectedSquare)
	}
	for _, sq := range targets {
		r.drawLegalMoveIndicator(screen, sq)
	}
}

// DrawCheck highlights the king's square if in check.
func (r *Renderer) DrawCheck(screen *ebiten.Image, kingSq board.Square) {
	r.highlightSquare(screen, kingSq, r.theme.CheckColor)
}

// DrawFlash tints a square with c.
func (r *Renderer) DrawFlash(screen *ebiten.Image, sq board.Square, c color.RGBA) {
	r.highlightSquare(screen, sq, c)
}

func (r *Renderer) highlightSquare(screen *ebiten.Image, sq board.Square, c color.RGBA) {
	if !sq.IsValid() {
		return
	}
	x, y := r.SquareToScreen(sq)
	vector.DrawFilledRect(screen, r.s(x), r.s(y), r.s(r.squareSize), r.s(r.squareSize), c, false)
}

func (r *Renderer) drawLegalMoveIndicator(screen *ebiten.Image, sq board.Square) {
	x, y := r.SquareToScreen(sq)
	cx := r.s(x) + r.s(r.squareSize)/2
	cy := r.s(y) + r.s(r.squareSize)/2
	vector.DrawFilledCircle(screen, cx, cy, r.s(r.squareSize)*0.15, r.theme.LegalMoveColor, false)
}

// DrawHintArrow draws an arrow from one square centre to another.
func (r *Renderer) DrawHintArrow(screen *ebiten.Image, from, to board.Square) {
	if !from.IsValid() || !to.IsValid() {
		return
	}
	half := r.squareSize / 2
	fx, fy := r.SquareToScreen(from)
	tx, ty := r.SquareToScreen(to)
	x0, y0 := r.s(fx+half), r.s(fy+half)
	x1, y1 := r.s(tx+half), r.s(ty+half)
	width := r.s(r.squareSize) * 0.12
	vector.StrokeLine(screen, x0, y0, x1, y1, width, r.theme.HintColor, true)

	angle := math.Atan2(float64(y1-y0), float64(x1-x0))
	head := float64(r.s(r.squareSize)) * 0.3
	var path vector.Path
	path.MoveTo(x1, y1)
	path.LineTo(x1-float32(head*math.Cos(angle-0.5)), y1-float32(head*math.Sin(angle-0.5)))
	path.LineTo(x1-float32(head*math.Cos(angle+0.5)), y1-float32(head*math.Sin(angle+0.5)))
	path.Close()
	vertices, indices := path.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vertices {
		vertices[i].SrcX, vertices[i].SrcY = 1, 1
		vertices[i].ColorR = float32(r.theme.HintColor.R) / 255
		vertices[i].ColorG = float32(r.theme.HintColor.G) / 255
		vertices[i].ColorB = float32(r.theme.HintColor.B) / 255
		vertices[i].ColorA = float32(r.theme.HintColor.A) / 255
	}
	screen.DrawTriangles(vertices, indices, whiteImage(), &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

var whitePixel *ebiten.Image

func whiteImage() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(3, 3)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

// DrawPieces draws every piece except the one on skip, shifted by the shake
// animation when anims is set.
func (r *Renderer) DrawPieces(screen *ebiten.Image, s *board.State, skip board.Square, anims *AnimationManager) {
	for sq := board.A1; sq <= board.H8; sq++ {
		p := s.Board.At(sq)
		if sq == skip || p == board.NoPiece {
			continue
		}
		x, y := r.SquareToScreen(sq)
		var dx float64
		if anims != nil {
			dx, _ = anims.GetShakeOffset(sq)
		}
		r.sprites.DrawPieceAt(screen, p, float64(r.s(x))+dx*r.scale, float64(r.s(y)))
	}
}

// DrawDraggedPiece centres p on the logical mouse position.
func (r *Renderer) DrawDraggedPiece(screen *ebiten.Image, p board.Piece, mouseX, mouseY int) {
	half := r.squareSize / 2
	r.sprites.DrawPieceAt(screen, p, float64(r.s(mouseX-half)), float64(r.s(mouseY-half)))
}

// SquareToScreen returns the logical top-left corner of sq.
func (r *Renderer) SquareToScreen(sq board.Square) (int, int) {
	return squareOrigin(sq, r.squareSize, r.flipped)
}

// ScreenToSquare returns the square under logical (x, y), or NoSquare.
func (r *Renderer) ScreenToSquare(x, y int) board.Square {
	return squareAt(x, y, r.squareSize, r.flipped)
}

func squareOrigin(sq board.Square, size int, flipped bool) (int, int) {
	file, rank := sq.File(), sq.Rank()
	if flipped {
		return (7 - file) * size, rank * size
	}
	return file * size, (7 - rank) * size
}

func squareAt(x, y, size int, flipped bool) board.Square {
	if x < 0 || y < 0 || x >= 8*size || y >= 8*size {
		return board.NoSquare
	}
	file, rank := x/size, 7-y/size
	if flipped {
		file, rank = 7-file, y/size
	}
	return board.NewSquare(file, rank)
}

// SquareSize returns the size of one square in logical pixels.
func (r *Renderer) SquareSize() int {
	return r.squareSize
}

// Theme returns the current theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}
