package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/engine"
	"github.com/hailam/chesszero/internal/storage"
)

// Panel dimensions
const (
	PanelPadding   = 20
	SectionSpacing = 24
	ButtonHeight   = 40
	TabHeight      = 32
	SectionLabelH  = 20
	statusBarH     = 90
)

// Panel colors
var (
	panelBg         = color.RGBA{38, 40, 45, 255}
	tabActiveBg     = color.RGBA{76, 132, 96, 255}
	tabInactiveBg   = color.RGBA{50, 54, 60, 255}
	tabHoverBg      = color.RGBA{65, 70, 78, 255}
	buttonBg        = color.RGBA{50, 54, 60, 255}
	buttonHoverBg   = color.RGBA{65, 70, 78, 255}
	buttonPressedBg = color.RGBA{40, 44, 50, 255}
	buttonBorder    = color.RGBA{70, 75, 82, 255}
	accentColor     = color.RGBA{76, 175, 120, 255}
	accentHover     = color.RGBA{96, 195, 140, 255}
	accentPressed   = color.RGBA{56, 155, 100, 255}
	textPrimary     = color.RGBA{240, 240, 245, 255}
	textSecondary   = color.RGBA{160, 165, 175, 255}
	textMuted       = color.RGBA{120, 125, 135, 255}
	dividerColor    = color.RGBA{60, 65, 72, 255}
	moveRowAlt      = color.RGBA{44, 48, 54, 255}
	statusThinking  = color.RGBA{100, 180, 255, 255}
	statusGameOver  = color.RGBA{255, 200, 80, 255}
)

// Button represents a clickable UI element.
type Button struct {
	X, Y, W, H int
	Label      string
	OnClick    func()
	// Active, when set, marks the selected tab of a group.
	Active  func() bool
	hovered bool
	pressed bool
}

func (b *Button) contains(mx, my int) bool {
	return mx >= b.X && mx < b.X+b.W && my >= b.Y && my < b.Y+b.H
}

func (b *Button) isActive() bool {
	return b.Active != nil && b.Active()
}

// Panel is the column right of the board with game controls and the move list.
type Panel struct {
	game *Game

	newGameBtn *Button
	undoBtn    *Button
	flipBtn    *Button
	modeTabs   []*Button
	colorTabs  []*Button
	diffTabs   []*Button

	scrollY    int
	maxScrollY int
}

// NewPanel creates a new panel for the given game.
func NewPanel(g *Game) *Panel {
	p := &Panel{game: g}
	p.createButtons()
	return p
}

func tabRow(x, y, w int, labels []string, onClick func(i int), active func(i int) bool) []*Button {
	tabW := w / len(labels)
	tabs := make([]*Button, len(labels))
	for i, label := range labels {
		tabs[i] = &Button{
			X: x + i*tabW, Y: y, W: tabW, H: TabHeight,
			Label:   label,
			OnClick: func() { onClick(i) },
			Active:  func() bool { return active(i) },
		}
	}
	return tabs
}

func (p *Panel) createButtons() {
	g := p.game
	x := BoardSize + PanelPadding
	w := PanelWidth - PanelPadding*2

	y := PanelPadding
	p.newGameBtn = &Button{X: x, Y: y, W: w, H: ButtonHeight, Label: "New Game", OnClick: g.NewGameAction}

	y += ButtonHeight + 8
	half := (w - 8) / 2
	p.undoBtn = &Button{X: x, Y: y, W: half, H: ButtonHeight - 6, Label: "Undo", OnClick: g.UndoAction}
	p.flipBtn = &Button{X: x + half + 8, Y: y, W: half, H: ButtonHeight - 6, Label: "Flip", OnClick: g.FlipAction}

	modes := []storage.GameMode{storage.ModeHumanVsHuman, storage.ModeHumanVsBot, storage.ModeBotVsBot}
	y += ButtonHeight - 6 + SectionSpacing + SectionLabelH
	p.modeTabs = tabRow(x, y, w, []string{"Human", "vs Bot", "Bot/Bot"},
		func(i int) { g.SetMode(modes[i]) },
		func(i int) bool { return g.mode == modes[i] })

	colors := []board.Color{board.White, board.Black}
	y += TabHeight + SectionSpacing + SectionLabelH
	p.colorTabs = tabRow(x, y, w, []string{"White", "Black"},
		func(i int) { g.ChoosePlayerColor(colors[i]) },
		func(i int) bool { return g.playerColor == colors[i] })

	levels := []engine.Difficulty{engine.Easy, engine.Medium, engine.Hard}
	y += TabHeight + SectionSpacing + SectionLabelH
	p.diffTabs = tabRow(x, y, w, []string{"Easy", "Medium", "Hard"},
		func(i int) { g.ChooseDifficulty(levels[i]) },
		func(i int) bool { return g.difficulty == levels[i] })
}

func (p *Panel) buttons() []*Button {
	out := []*Button{p.newGameBtn, p.undoBtn, p.flipBtn}
	out = append(out, p.modeTabs...)
	if p.game.mode == storage.ModeHumanVsBot {
		out = append(out, p.colorTabs...)
	}
	if p.game.mode != storage.ModeHumanVsHuman {
		out = append(out, p.diffTabs...)
	}
	return out
}

// HandleInput processes input for the panel. Returns true if input was handled.
func (p *Panel) HandleInput(input *InputHandler) bool {
	mx, my := input.MousePosition()

	if wheel := input.Wheel(); wheel != 0 && mx >= BoardSize {
		p.scrollY = min(max(p.scrollY-int(wheel*30), 0), p.maxScrollY)
	}

	for _, btn := range p.buttons() {
		btn.hovered = btn.contains(mx, my)
		btn.pressed = btn.hovered && input.IsLeftPressed()
	}
	if !input.IsLeftJustPressed() {
		return false
	}
	for _, btn := range p.buttons() {
		if btn.hovered {
			btn.OnClick()
			return true
		}
	}
	return false
}

// AnyButtonHovered reports whether the pointer is over a button.
func (p *Panel) AnyButtonHovered() bool {
	for _, btn := range p.buttons() {
		if btn.hovered {
			return true
		}
	}
	return false
}

// Draw renders the panel.
func (p *Panel) Draw(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, sc(BoardSize), 0, sc(PanelWidth), sc(ScreenHeight), panelBg, false)

	p.drawButton(screen, p.newGameBtn, true)
	p.drawButton(screen, p.undoBtn, false)
	p.drawButton(screen, p.flipBtn, false)

	x := BoardSize + PanelPadding
	p.drawTabs(screen, "Game Mode", p.modeTabs)
	bottom := p.modeTabs[0].Y + TabHeight
	if p.game.mode == storage.ModeHumanVsBot {
		p.drawTabs(screen, "Play As", p.colorTabs)
		bottom = p.colorTabs[0].Y + TabHeight
	}
	if p.game.mode != storage.ModeHumanVsHuman {
		p.drawTabs(screen, "Difficulty", p.diffTabs)
		bottom = p.diffTabs[0].Y + TabHeight
	}

	historyY := bottom + SectionSpacing - 4
	drawText(screen, "Moves", x, historyY, GetRegularFace(), textMuted)
	p.drawMoveHistory(screen, historyY+SectionLabelH+4)
	p.drawStatusBar(screen)
}

// sc scales a logical length to device pixels.
func sc(v int) float32 {
	return float32(float64(v) * UIScale)
}

func (p *Panel) drawButton(screen *ebiten.Image, btn *Button, primary bool) {
	bg, border, fg := buttonBg, buttonBorder, textSecondary
	switch {
	case primary && btn.pressed:
		bg, border, fg = accentPressed, accentPressed, textPrimary
	case primary && btn.hovered:
		bg, border, fg = accentHover, accentHover, textPrimary
	case primary:
		bg, border, fg = accentColor, accentPressed, textPrimary
	case btn.pressed:
		bg = buttonPressedBg
	case btn.hovered:
		bg, border = buttonHoverBg, accentColor
	}
	vector.DrawFilledRect(screen, sc(btn.X), sc(btn.Y), sc(btn.W), sc(btn.H), bg, false)
	vector.StrokeRect(screen, sc(btn.X), sc(btn.Y), sc(btn.W), sc(btn.H), 1, border, false)
	drawTextCentered(screen, btn.Label, btn.X+btn.W/2, btn.Y+btn.H/2, GetRegularFace(), fg)
}

func (p *Panel) drawTabs(screen *ebiten.Image, label string, tabs []*Button) {
	drawText(screen, label, tabs[0].X, tabs[0].Y-SectionLabelH, GetRegularFace(), textMuted)
	for _, btn := range tabs {
		active := btn.isActive()
		bg, border, fg := tabInactiveBg, buttonBorder, textSecondary
		switch {
		case active:
			bg, border, fg = tabActiveBg, tabActiveBg, textPrimary
		case btn.pressed:
			bg = buttonPressedBg
		case btn.hovered:
			bg, border = tabHoverBg, accentColor
		}
		vector.DrawFilledRect(screen, sc(btn.X), sc(btn.Y), sc(btn.W), sc(btn.H), bg, false)
		vector.StrokeRect(screen, sc(btn.X), sc(btn.Y), sc(btn.W), sc(btn.H), 1, border, false)
		drawTextCentered(screen, btn.Label, btn.X+btn.W/2, btn.Y+btn.H/2, GetRegularFace(), fg)
	}
}

func (p *Panel) drawMoveHistory(screen *ebiten.Image, startY int) {
	face := GetRegularFace()
	x := BoardSize + PanelPadding
	history := p.game.ctrl.History()
	if len(history) == 0 {
		drawText(screen, "No moves yet", x, startY+5, face, textMuted)
		return
	}

	const rowHeight = 22
	maxY := ScreenHeight - statusBarH
	visible := maxY - startY
	rows := (len(history) + 1) / 2
	p.maxScrollY = max(rows*rowHeight-visible, 0)
	p.scrollY = min(p.scrollY, p.maxScrollY)

	y := startY - p.scrollY%rowHeight
	for i := (p.scrollY / rowHeight) * 2; i < len(history); i += 2 {
		if y > maxY-rowHeight {
			break
		}
		if (i/2)%2 == 1 {
			vector.DrawFilledRect(screen, sc(x-4), sc(max(y-2, startY)), sc(PanelWidth-PanelPadding*2+8), sc(rowHeight), moveRowAlt, false)
		}
		if y >= startY {
			drawText(screen, fmt.Sprintf("%d.", i/2+1), x, y, face, textMuted)
			drawText(screen, history[i].Move.String(), x+36, y, face, textPrimary)
			if i+1 < len(history) {
				drawText(screen, history[i+1].Move.String(), x+120, y, face, textPrimary)
			}
		}
		y += rowHeight
	}
}

func (p *Panel) drawStatusBar(screen *ebiten.Image) {
	g := p.game
	face := GetRegularFace()
	x := BoardSize + PanelPadding
	y := ScreenHeight - statusBarH + 10

	vector.DrawFilledRect(screen, sc(x), sc(y-10), sc(PanelWidth-PanelPadding*2), sc(1), dividerColor, false)

	name := g.username
	if len(name) > 12 {
		name = name[:12] + "..."
	}
	drawText(screen, name, x, y, face, textPrimary)
	drawText(screen, g.evalName, x+150, y, face, accentColor)

	statusColor := color.Color(textPrimary)
	switch {
	case g.ctrl.Status().IsTerminal():
		statusColor = statusGameOver
	case g.aiThinking:
		statusColor = statusThinking
	}
	drawText(screen, g.statusText(), x, y+22, face, statusColor)
	if eval := g.evalText(); eval != "" {
		drawText(screen, eval, x, y+44, face, textSecondary)
	}
}
