// ChessZero - play against a neural-guided tree search, built with Ebitengine
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hailam/chesszero/internal/config"
	"github.com/hailam/chesszero/internal/inference"
	"github.com/hailam/chesszero/internal/logging"
	"github.com/hailam/chesszero/internal/mcts"
	"github.com/hailam/chesszero/internal/storage"
	"github.com/hailam/chesszero/internal/ui"
)

var (
	modelPath = flag.String("model", config.EnvString(config.Name("model"), ""), "ONNX policy/value network (default: saved preference)")
	sessions  = flag.Int("onnx-sessions", config.EnvInt(config.Name("onnx-sessions"), 1), "ONNX Runtime sessions")
	cpuct     = flag.Float64("cpuct", config.EnvFloat(config.Name("cpuct"), mcts.DefaultConfig().Cpuct), "PUCT exploration constant")
	logLevel  = flag.String("log-level", config.EnvString(config.Name("log-level"), "info"), "debug, info, warn or error")
)

func main() {
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(os.Stderr, level, "text")
	slog.SetDefault(logger)

	store, err := storage.NewStorage()
	if err != nil {
		logger.Warn("storage unavailable, preferences will not be saved", "err", err)
		store = nil
	}

	path := *modelPath
	if path == "" && store != nil {
		if prefs, err := store.LoadPreferences(); err == nil {
			path = prefs.ModelPath
		}
	}

	opts := ui.Options{
		Search:  mcts.Config{Cpuct: *cpuct},
		Storage: store,
		Logger:  logger,
	}
	if path != "" {
		ev, err := inference.Open(path, *sessions, inference.OnnxConfig{Logger: logger})
		if err != nil {
			logger.Warn("model not loaded, using material evaluation", "path", path, "err", err)
		} else {
			defer ev.Close()
			opts.Evaluator = ev
			opts.EvaluatorName = "ONNX"
		}
	}

	game := ui.NewGame(opts)
	defer game.Close()

	ebiten.SetWindowSize(ui.ScreenWidth, ui.ScreenHeight)
	ebiten.SetWindowTitle("ChessZero")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		game.Close()
		log.Fatal(err)
	}
}
