package ui

import (
	"errors"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/game"
)

// ToastType represents the type of toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastWarning
	ToastError
	ToastSuccess
)

// Toast is one notification message.
type Toast struct {
	Message   string
	Type      ToastType
	StartTime time.Time
	Duration  time.Duration
}

// ToastManager keeps the last few notifications on screen.
type ToastManager struct {
	toasts   []*Toast
	maxStack int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{maxStack: 3}
}

// Show displays a new toast notification.
func (tm *ToastManager) Show(message string, toastType ToastType, duration time.Duration) {
	tm.toasts = append(tm.toasts, &Toast{
		Message:   message,
		Type:      toastType,
		StartTime: time.Now(),
		Duration:  duration,
	})
	if len(tm.toasts) > tm.maxStack {
		tm.toasts = tm.toasts[1:]
	}
}

// Update removes expired toasts.
func (tm *ToastManager) Update() {
	now := time.Now()
	active := tm.toasts[:0]
	for _, t := range tm.toasts {
		if now.Sub(t.StartTime) < t.Duration {
			active = append(active, t)
		}
	}
	tm.toasts = active
}

func toastColors(t ToastType, alpha float64) (bg, fg color.RGBA) {
	a := uint8(220 * alpha)
	fg = color.RGBA{255, 255, 255, uint8(255 * alpha)}
	switch t {
	case ToastWarning:
		return color.RGBA{180, 140, 20, a}, color.RGBA{40, 30, 0, uint8(255 * alpha)}
	case ToastError:
		return color.RGBA{180, 50, 50, a}, fg
	case ToastSuccess:
		return color.RGBA{50, 150, 50, a}, fg
	}
	return color.RGBA{50, 100, 150, a}, fg
}

// Draw renders the active toasts centred over the board.
func (tm *ToastManager) Draw(screen *ebiten.Image) {
	face := GetRegularFace()
	if face == nil {
		return
	}

	y := 50.0
	for _, t := range tm.toasts {
		elapsed := time.Since(t.StartTime).Seconds()
		duration := t.Duration.Seconds()

		alpha := 1.0
		const fade = 0.2
		if elapsed < fade {
			alpha = elapsed / fade
		} else if elapsed > duration-fade {
			alpha = math.Max(0, (duration-elapsed)/fade)
		}
		bg, fg := toastColors(t.Type, alpha)

		w, h := MeasureText(t.Message, face)
		w, h = w/UIScale, h/UIScale
		const padding = 12.0
		boxW, boxH := w+padding*2, h+padding*2
		x := float64(BoardSize)/2 - boxW/2

		vector.DrawFilledRect(screen, float32(x*UIScale), float32(y*UIScale), float32(boxW*UIScale), float32(boxH*UIScale), bg, false)
		drawText(screen, t.Message, int(x+padding), int(y+padding), face, fg)

		y += boxH + 8
	}
}

// ShakeAnimation wiggles a piece that tried an illegal move.
type ShakeAnimation struct {
	Square    board.Square
	StartTime time.Time
	Duration  time.Duration
	Intensity float64
}

// FlashAnimation fades a tint over a square.
type FlashAnimation struct {
	Square    board.Square
	StartTime time.Time
	Duration  time.Duration
	Color     color.RGBA
}

// AnimationManager manages visual animations.
type AnimationManager struct {
	shakes  []*ShakeAnimation
	flashes []*FlashAnimation
}

// NewAnimationManager creates a new animation manager.
func NewAnimationManager() *AnimationManager {
	return &AnimationManager{}
}

// StartShake begins a shake animation on a square.
func (am *AnimationManager) StartShake(sq board.Square) {
	am.shakes = append(am.shakes, &ShakeAnimation{
		Square:    sq,
		StartTime: time.Now(),
		Duration:  300 * time.Millisecond,
		Intensity: 8.0,
	})
}

// StartFlash begins a flash animation on a square.
func (am *AnimationManager) StartFlash(sq board.Square, c color.RGBA) {
	am.flashes = append(am.flashes, &FlashAnimation{
		Square:    sq,
		StartTime: time.Now(),
		Duration:  400 * time.Millisecond,
		Color:     c,
	})
}

// Update removes expired animations.
func (am *AnimationManager) Update() {
	now := time.Now()
	shakes := am.shakes[:0]
	for _, s := range am.shakes {
		if now.Sub(s.StartTime) < s.Duration {
			shakes = append(shakes, s)
		}
	}
	am.shakes = shakes

	flashes := am.flashes[:0]
	for _, f := range am.flashes {
		if now.Sub(f.StartTime) < f.Duration {
			flashes = append(flashes, f)
		}
	}
	am.flashes = flashes
}

// GetShakeOffset returns the current logical offset for a square.
func (am *AnimationManager) GetShakeOffset(sq board.Square) (float64, float64) {
	for _, s := range am.shakes {
		if s.Square != sq {
			continue
		}
		progress := time.Since(s.StartTime).Seconds() / s.Duration.Seconds()
		if progress >= 1.0 {
			return 0, 0
		}
		// damped sine
		amplitude := s.Intensity * math.Exp(-5*progress)
		return amplitude * math.Sin(40*progress), 0
	}
	return 0, 0
}

// DrawFlashes renders all active flash overlays.
func (am *AnimationManager) DrawFlashes(screen *ebiten.Image, r *Renderer) {
	for _, f := range am.flashes {
		progress := time.Since(f.StartTime).Seconds() / f.Duration.Seconds()
		if progress >= 1.0 {
			continue
		}
		c := f.Color
		c.A = uint8(float64(c.A) * (1 - progress))
		r.DrawFlash(screen, f.Square, c)
	}
}

// FeedbackManager turns game events into toasts and animations.
type FeedbackManager struct {
	toasts     *ToastManager
	animations *AnimationManager
}

// NewFeedbackManager creates a new feedback manager.
func NewFeedbackManager() *FeedbackManager {
	return &FeedbackManager{
		toasts:     NewToastManager(),
		animations: NewAnimationManager(),
	}
}

// Update updates all feedback systems.
func (fm *FeedbackManager) Update() {
	fm.toasts.Update()
	fm.animations.Update()
}

// DrawBoardEffects renders flashes; call it before the pieces.
func (fm *FeedbackManager) DrawBoardEffects(screen *ebiten.Image, r *Renderer) {
	fm.animations.DrawFlashes(screen, r)
}

// DrawToasts renders notifications; call it last.
func (fm *FeedbackManager) DrawToasts(screen *ebiten.Image) {
	fm.toasts.Draw(screen)
}

// Animations returns the animation manager for renderer integration.
func (fm *FeedbackManager) Animations() *AnimationManager {
	return fm.animations
}

// OnInvalidMove reports a rejected move.
func (fm *FeedbackManager) OnInvalidMove(from, to board.Square, err error) {
	message := "Invalid move"
	switch {
	case errors.Is(err, game.ErrOwnPiece):
		message = "Square occupied by your piece"
	case errors.Is(err, game.ErrKingInCheck):
		message = "Illegal move - King would be in check"
	case errors.Is(err, game.ErrPiecePattern):
		message = "Invalid move for this piece"
	case errors.Is(err, game.ErrGameOver):
		message = "The game is over"
	}

	fm.toasts.Show(message, ToastWarning, 2*time.Second)
	fm.animations.StartShake(from)
	fm.animations.StartFlash(to, color.RGBA{255, 80, 80, 150})
}

// OnStatus announces check and the end of the game.
func (fm *FeedbackManager) OnStatus(st board.Status, toMove board.Color, inCheck bool) {
	switch {
	case st == board.Checkmate:
		fm.toasts.Show(game.Describe(st, toMove), ToastSuccess, 5*time.Second)
	case st == board.Stalemate:
		fm.toasts.Show(game.Describe(st, toMove), ToastInfo, 5*time.Second)
	case inCheck:
		fm.toasts.Show("Check!", ToastWarning, 2*time.Second)
	}
}

// OnError shows an unexpected failure.
func (fm *FeedbackManager) OnError(msg string) {
	fm.toasts.Show(msg, ToastError, 3*time.Second)
}

// OnInfo shows a neutral message.
func (fm *FeedbackManager) OnInfo(msg string) {
	fm.toasts.Show(msg, ToastInfo, 2*time.Second)
}
