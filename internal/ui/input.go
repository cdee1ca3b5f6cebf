package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputHandler is a per-frame snapshot of the pointer. Positions are in
// logical (unscaled) pixels so board and panel hit tests ignore UIScale.
type InputHandler struct {
	x, y         int
	down         bool
	pressed      bool
	released     bool
	rightPressed bool
	wheel        float64
}

func NewInputHandler() *InputHandler {
	return &InputHandler{}
}

// Update samples the pointer; the game calls it at the top of every tick.
func (ih *InputHandler) Update() {
	cx, cy := ebiten.CursorPosition()
	scale := max(UIScale, 1.0)
	ih.x, ih.y = int(float64(cx)/scale), int(float64(cy)/scale)

	ih.down = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	ih.pressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	ih.released = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	ih.rightPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	_, ih.wheel = ebiten.Wheel()
}

func (ih *InputHandler) MousePosition() (int, int) { return ih.x, ih.y }

// IsLeftJustPressed starts a click or a drag.
func (ih *InputHandler) IsLeftJustPressed() bool { return ih.pressed }

// IsLeftJustReleased ends a drag.
func (ih *InputHandler) IsLeftJustReleased() bool { return ih.released }

func (ih *InputHandler) IsLeftPressed() bool { return ih.down }

// IsRightJustPressed drops the selection or closes the promotion picker.
func (ih *InputHandler) IsRightJustPressed() bool { return ih.rightPressed }

// Wheel is this tick's vertical scroll, used by the move list.
func (ih *InputHandler) Wheel() float64 { return ih.wheel }

// IsKeyJustPressed wraps inpututil for the keyboard shortcuts.
func IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}
