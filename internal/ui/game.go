package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/engine"
	"github.com/hailam/chesszero/internal/game"
	"github.com/hailam/chesszero/internal/mcts"
	"github.com/hailam/chesszero/internal/storage"
)

// UI Constants
const (
	ScreenWidth  = 960
	ScreenHeight = 640
	BoardSize    = 640
	SquareSize   = BoardSize / 8
	PanelWidth   = ScreenWidth - BoardSize
)

// UIScale is the global HiDPI scale factor for all UI drawing.
// Set by Game.Layout() and used by the panel and overlays.
var UIScale = 1.0

// hintSimulations keeps Easy mode hints quick.
const hintSimulations = 64

// Options configures NewGame.
type Options struct {
	Search    mcts.Config
	Evaluator mcts.Evaluator
	// EvaluatorName is shown in the status bar.
	EvaluatorName string
	Storage       *storage.Storage
	Logger        *slog.Logger
}

type botMove struct {
	gen  int
	move board.Move
}

type hint struct {
	gen  int
	move board.Move
}

// Game implements ebiten.Game.
type Game struct {
	ctrl *game.Controller
	sel  game.Selection

	dragging  bool
	dragPiece board.Piece

	mode        storage.GameMode
	difficulty  engine.Difficulty
	playerColor board.Color
	username    string
	evalName    string

	storage *storage.Storage
	prefs   *storage.UserPreferences
	logger  *slog.Logger

	renderer  *Renderer
	input     *InputHandler
	panel     *Panel
	feedback  *FeedbackManager
	promotion PromotionPicker

	engine     *engine.Engine
	aiThinking bool
	aiMove     chan botMove
	lastInfo   atomic.Pointer[engine.SearchInfo]

	// gen changes whenever the position is reset or taken back, so results of
	// searches started before that are dropped.
	gen int

	hints       *engine.Engine
	showHints   bool
	hintMove    board.Move
	hintRunning bool
	hintCh      chan hint

	started  time.Time
	recorded bool

	scale float64
}

// NewGame creates the window state and loads saved preferences.
func NewGame(opts Options) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	evalName := opts.EvaluatorName
	if evalName == "" {
		evalName = "Material"
	}

	g := &Game{
		ctrl:        game.NewController(),
		sel:         game.NewSelection(),
		mode:        storage.ModeHumanVsBot,
		difficulty:  engine.Medium,
		playerColor: board.White,
		username:    "Player",
		evalName:    evalName,
		storage:     opts.Storage,
		logger:      logger,
		renderer:    NewRenderer(BoardSize, SquareSize),
		input:       NewInputHandler(),
		feedback:    NewFeedbackManager(),
		engine:      engine.NewEngine(opts.Search, opts.Evaluator),
		aiMove:      make(chan botMove, 4),
		hints:       engine.NewEngine(opts.Search, opts.Evaluator),
		showHints:   true,
		hintMove:    board.NoMove,
		hintCh:      make(chan hint, 4),
		started:     time.Now(),
		scale:       1.0,
	}
	g.engine.OnInfo = func(info engine.SearchInfo) { g.lastInfo.Store(&info) }

	g.loadPreferences()
	g.panel = NewPanel(g)

	if g.storage != nil {
		if first, err := g.storage.IsFirstLaunch(); err == nil && first {
			g.feedback.OnInfo("Welcome! Drag a piece or click to move")
			if err := g.storage.MarkFirstLaunchComplete(); err != nil {
				g.logger.Warn("mark first launch", "err", err)
			}
		}
	}
	return g
}

func (g *Game) loadPreferences() {
	g.prefs = storage.DefaultPreferences()
	if g.storage != nil {
		prefs, err := g.storage.LoadPreferences()
		if err != nil {
			g.logger.Warn("load preferences", "err", err)
		} else {
			g.prefs = prefs
		}
	}

	g.username = g.prefs.Username
	g.mode = g.prefs.GameMode
	g.SetDifficulty(engine.Difficulty(g.prefs.Difficulty))
	g.engine.SetCpuct(g.prefs.Cpuct)
	g.hints.SetCpuct(g.prefs.Cpuct)
	if g.prefs.PlayerColor == storage.ColorBlack {
		g.SetPlayerColor(board.Black)
	} else {
		g.SetPlayerColor(board.White)
	}
}

func (g *Game) savePreferences() {
	if g.storage == nil {
		return
	}
	g.prefs.Username = g.username
	g.prefs.Difficulty = storage.Difficulty(g.difficulty)
	g.prefs.GameMode = g.mode
	g.prefs.PlayerColor = storage.ColorWhite
	if g.playerColor == board.Black {
		g.prefs.PlayerColor = storage.ColorBlack
	}
	g.prefs.LastPlayed = time.Now()
	if err := g.storage.SavePreferences(g.prefs); err != nil {
		g.logger.Warn("save preferences", "err", err)
	}
}

// Update handles one frame of input and background results.
func (g *Game) Update() error {
	g.input.Update()
	g.feedback.Update()

	if g.promotion.IsVisible() {
		g.promotion.Update(g.input, g.renderer)
		return nil
	}

	g.handleKeys()
	if g.panel.HandleInput(g.input) {
		g.updateCursor()
		return nil
	}

	g.handleBoardInput()
	g.checkAIMove()
	g.maybeStartAI()
	g.checkHint()
	g.maybeStartHint()
	g.updateCursor()
	return nil
}

func (g *Game) handleKeys() {
	switch {
	case IsKeyJustPressed(ebiten.KeyN):
		g.NewGameAction()
	case IsKeyJustPressed(ebiten.KeyU), IsKeyJustPressed(ebiten.KeyBackspace):
		g.UndoAction()
	case IsKeyJustPressed(ebiten.KeyF):
		g.FlipAction()
	case IsKeyJustPressed(ebiten.KeyH):
		g.showHints = !g.showHints
	}
}

func (g *Game) updateCursor() {
	if g.panel.AnyButtonHovered() {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

// Draw renders the game.
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.SetScale(g.scale)
	screen.Fill(g.renderer.Theme().Background)

	s := g.ctrl.Snapshot()
	g.renderer.DrawBoard(screen)
	g.feedback.DrawBoardEffects(screen, g.renderer)

	if inCheck, _ := s.InCheck(s.SideToMove); inCheck {
		g.renderer.DrawCheck(screen, kingSquare(s, s.SideToMove))
	}

	last, ok := g.ctrl.LastMove()
	if !ok {
		last = board.NoMove
	}
	var targets []board.Square
	if g.prefs.ShowLegalMoves {
		targets = g.sel.Targets
	}
	g.renderer.DrawHighlights(screen, g.sel.From, targets, last)

	if g.hintVisible() {
		g.renderer.DrawHintArrow(screen, g.hintMove.From, g.hintMove.To)
	}

	skip := board.NoSquare
	if g.dragging {
		skip = g.sel.From
	}
	g.renderer.DrawPieces(screen, s, skip, g.feedback.Animations())
	if g.dragging {
		mx, my := g.input.MousePosition()
		g.renderer.DrawDraggedPiece(screen, g.dragPiece, mx, my)
	}

	g.promotion.Draw(screen, g.renderer)
	g.panel.Draw(screen)
	g.feedback.DrawToasts(screen)
}

func kingSquare(s *board.State, c board.Color) board.Square {
	king := board.NewPiece(board.King, c)
	for sq := board.A1; sq <= board.H8; sq++ {
		if s.Board.At(sq) == king {
			return sq
		}
	}
	return board.NoSquare
}

// Layout returns the game's screen size in device pixels.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.scale = max(ebiten.Monitor().DeviceScaleFactor(), 1.0)
	UIScale = g.scale
	return int(float64(ScreenWidth) * g.scale), int(float64(ScreenHeight) * g.scale)
}

func (g *Game) humanToMove() bool {
	switch g.mode {
	case storage.ModeHumanVsHuman:
		return true
	case storage.ModeBotVsBot:
		return false
	}
	return g.ctrl.Turn() == g.playerColor
}

func (g *Game) handleBoardInput() {
	if g.input.IsRightJustPressed() {
		g.clearSelection()
		return
	}
	if g.aiThinking || !g.humanToMove() || g.ctrl.Status().IsTerminal() {
		return
	}

	mx, my := g.input.MousePosition()
	sq := g.renderer.ScreenToSquare(mx, my)

	if g.input.IsLeftJustPressed() && mx < BoardSize {
		gesture := g.ctrl.Click(&g.sel, sq)
		if gesture.Kind == game.GestureSelect {
			g.dragging = true
			g.dragPiece, _ = g.ctrl.PieceAt(sq)
		}
		g.handleGesture(gesture)
		return
	}

	if g.dragging && g.input.IsLeftJustReleased() {
		g.dragging = false
		g.handleGesture(g.ctrl.Drop(&g.sel, sq))
	}
}

func (g *Game) handleGesture(gesture game.Gesture) {
	switch gesture.Kind {
	case game.GestureMove:
		g.makeMove(board.NewMove(gesture.From, gesture.To))
	case game.GesturePromote:
		g.dragging = false
		g.promotion.Show(gesture.From, gesture.To, g.ctrl.Turn(), g.makeMove, g.clearSelection)
	case game.GestureReject:
		g.dragging = false
		g.feedback.OnInvalidMove(gesture.From, gesture.To, gesture.Err)
	case game.GestureClear:
		g.dragging = false
	}
}

func (g *Game) clearSelection() {
	g.sel.Clear()
	g.dragging = false
	g.dragPiece = board.NoPiece
}

func (g *Game) makeMove(m board.Move) {
	g.clearSelection()
	g.clearHint()

	st, err := g.ctrl.ApplyMove(m)
	if err != nil {
		if game.IsRejection(err) {
			g.feedback.OnInvalidMove(m.From, m.To, err)
		} else {
			g.feedback.OnError(err.Error())
		}
		g.logger.Warn("move rejected", "move", m.String(), "err", err)
		return
	}
	g.logger.Debug("move", "move", m.String(), "status", st.String())

	g.feedback.OnStatus(st, g.ctrl.Turn(), g.ctrl.InCheck())
	if st.IsTerminal() {
		g.recordGame(st)
	}
}

// maybeStartAI launches the bot's search when it is the bot's turn.
func (g *Game) maybeStartAI() {
	if g.aiThinking || g.humanToMove() || g.ctrl.Status().IsTerminal() {
		return
	}
	g.aiThinking = true
	gen := g.gen
	s := g.ctrl.Snapshot()
	limits := engine.DifficultySettings[g.difficulty]
	if g.prefs.Simulations > 0 {
		limits.Simulations = g.prefs.Simulations
	}

	go func() {
		m := g.engine.SearchWithLimits(context.Background(), s, limits)
		g.aiMove <- botMove{gen: gen, move: m}
	}()
}

func (g *Game) checkAIMove() {
	for {
		select {
		case res := <-g.aiMove:
			if res.gen != g.gen {
				continue
			}
			g.aiThinking = false
			if res.move == board.NoMove {
				g.logger.Warn("bot found no move", "status", g.ctrl.Status().String())
				return
			}
			g.makeMove(res.move)
		default:
			return
		}
	}
}

func (g *Game) hintVisible() bool {
	return g.showHints && g.difficulty == engine.Easy && g.mode == storage.ModeHumanVsBot && g.hintMove != board.NoMove
}

func (g *Game) maybeStartHint() {
	if !g.showHints || g.difficulty != engine.Easy || g.mode != storage.ModeHumanVsBot {
		return
	}
	if g.hintRunning || g.hintMove != board.NoMove || g.aiThinking || !g.humanToMove() || g.ctrl.Status().IsTerminal() {
		return
	}
	g.hintRunning = true
	gen := g.gen
	s := g.ctrl.Snapshot()
	go func() {
		m := g.hints.SearchWithLimits(context.Background(), s, engine.SearchLimits{
			Simulations: hintSimulations,
			MoveTime:    500 * time.Millisecond,
		})
		g.hintCh <- hint{gen: gen, move: m}
	}()
}

func (g *Game) checkHint() {
	for {
		select {
		case h := <-g.hintCh:
			g.hintRunning = false
			if h.gen == g.gen {
				g.hintMove = h.move
			}
		default:
			return
		}
	}
}

func (g *Game) clearHint() {
	g.hints.Stop()
	g.hintMove = board.NoMove
}

// invalidate drops pending bot and hint results.
func (g *Game) invalidate() {
	g.gen++
	g.engine.Stop()
	g.aiThinking = false
	g.clearHint()
	g.clearSelection()
	g.promotion.visible = false
}

// NewGameAction resets the board. The bot moves first when the human plays black.
func (g *Game) NewGameAction() {
	g.invalidate()
	g.ctrl.Reset()
	g.started = time.Now()
	g.recorded = false
	g.lastInfo.Store(nil)
}

// UndoAction takes back the last move, or the last two when that returns the
// turn to the bot.
func (g *Game) UndoAction() {
	g.invalidate()
	if err := g.ctrl.Undo(); err != nil {
		g.feedback.OnInfo("Nothing to undo")
		return
	}
	if g.mode == storage.ModeHumanVsBot && !g.humanToMove() {
		if err := g.ctrl.Undo(); err != nil {
			g.logger.Debug("undo bot move", "err", err)
		}
	}
	g.recorded = false
}

// FlipAction turns the board around.
func (g *Game) FlipAction() {
	g.renderer.SetFlipped(!g.renderer.Flipped())
}

// SetMode changes who controls each side.
func (g *Game) SetMode(m storage.GameMode) {
	if m == g.mode {
		return
	}
	g.invalidate()
	g.mode = m
	g.savePreferences()
}

// SetPlayerColor sets which color the human plays and flips the board to match.
func (g *Game) SetPlayerColor(c board.Color) {
	if c != g.playerColor {
		g.invalidate()
	}
	g.playerColor = c
	g.renderer.SetFlipped(c == board.Black)
}

// ChoosePlayerColor is the panel action for SetPlayerColor.
func (g *Game) ChoosePlayerColor(c board.Color) {
	g.SetPlayerColor(c)
	g.savePreferences()
}

// SetDifficulty sets the bot's search budget.
func (g *Game) SetDifficulty(d engine.Difficulty) {
	g.difficulty = d
	g.engine.SetDifficulty(d)
}

// ChooseDifficulty is the panel action for SetDifficulty.
func (g *Game) ChooseDifficulty(d engine.Difficulty) {
	g.SetDifficulty(d)
	g.savePreferences()
}

func outcome(st board.Status, winner board.Color) string {
	switch {
	case st != board.Checkmate:
		return "1/2-1/2"
	case winner == board.White:
		return "1-0"
	}
	return "0-1"
}

// recordGame stores a finished game once.
func (g *Game) recordGame(st board.Status) {
	if g.recorded || g.storage == nil {
		return
	}
	g.recorded = true

	winner := g.ctrl.Winner()
	if g.mode == storage.ModeHumanVsBot {
		err := g.storage.RecordGame(storage.GameResult{
			Won:        winner == g.playerColor,
			Draw:       st == board.Stalemate,
			Mode:       g.mode,
			Difficulty: storage.Difficulty(g.difficulty),
			Duration:   time.Since(g.started),
		})
		if err != nil {
			g.logger.Warn("record game", "err", err)
		}
	}

	history := g.ctrl.History()
	moves := make([]string, len(history))
	for i, rec := range history {
		moves[i] = rec.Move.String()
	}
	rec := &storage.GameRecord{
		Mode:   g.mode,
		Moves:  moves,
		Result: outcome(st, winner),
		Reason: g.ctrl.Result(),
	}
	if err := g.storage.SaveGame(rec); err != nil {
		g.logger.Warn("save game", "err", err)
		return
	}
	g.logger.Info("game finished", "id", rec.ID, "result", rec.Result, "plies", len(moves))
}

// Close stops background searches and releases storage.
func (g *Game) Close() {
	g.engine.Stop()
	g.hints.Stop()
	if g.storage != nil {
		if err := g.storage.Close(); err != nil {
			g.logger.Warn("close storage", "err", err)
		}
	}
}

// statusText is the one-line state shown under the move list.
func (g *Game) statusText() string {
	if st := g.ctrl.Status(); st.IsTerminal() {
		return g.ctrl.Result()
	}
	if g.aiThinking {
		return "Engine thinking..."
	}
	return fmt.Sprintf("%s to move", g.ctrl.Turn())
}

// evalText describes the last finished bot search, or "".
func (g *Game) evalText() string {
	info := g.lastInfo.Load()
	if info == nil {
		return ""
	}
	return fmt.Sprintf("%s  %s  %d sims", info.BestMove, engine.ValueToString(float64(info.Value)), info.Simulations)
}
