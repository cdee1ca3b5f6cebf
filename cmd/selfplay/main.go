// Command selfplay generates MCTS self-play games and writes them as Parquet
// training batches.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hailam/chesszero/internal/config"
	"github.com/hailam/chesszero/internal/dataset"
	"github.com/hailam/chesszero/internal/inference"
	"github.com/hailam/chesszero/internal/logging"
	"github.com/hailam/chesszero/internal/mcts"
	"github.com/hailam/chesszero/internal/monitor"
	"github.com/hailam/chesszero/internal/selfplay"
	"github.com/hailam/chesszero/internal/spectate"
	"github.com/hailam/chesszero/internal/storage"
)

func main() {
	def := selfplay.DefaultConfig()
	env := func(name string) string { return config.Name(name) }

	outDir := flag.String("out-dir", config.EnvString(env("out-dir"), "data/generated"), "Output directory for training parquet batches")
	workers := flag.Int("workers", config.EnvInt(env("workers"), 8), "Number of self-play workers")
	gamesPerFlush := flag.Int("games-per-flush", config.EnvInt(env("games-per-flush"), 50), "Number of games to buffer per parquet flush")
	maxGames := flag.Int64("max-games", config.EnvInt64(env("max-games"), 0), "If > 0, stop after this many games")
	sims := flag.Int("simulations", config.EnvInt(env("simulations"), def.MCTS.Simulations), "MCTS simulations per move")
	cpuct := flag.Float64("cpuct", config.EnvFloat(env("cpuct"), def.MCTS.Cpuct), "PUCT exploration constant")
	maxDepth := flag.Int("max-depth", config.EnvInt(env("max-depth"), def.MCTS.MaxDepth), "Maximum descent depth per simulation")
	sampleMoves := flag.Int("sample-moves", config.EnvInt(env("sample-moves"), def.SampleMoves), "Plies whose move is sampled from the visit distribution")
	maxPlies := flag.Int("max-plies", config.EnvInt(env("max-plies"), def.MaxPlies), "Plies after which a game is scored as a draw")
	seed := flag.Int64("seed", config.EnvInt64(env("seed"), 0), "Base random seed (0 = time based)")
	modelPath := flag.String("model", config.EnvString(env("model"), ""), "ONNX policy/value network (empty = material evaluator)")
	onnxSessions := flag.Int("onnx-sessions", config.EnvInt(env("onnx-sessions"), 1), "ONNX Runtime sessions, each with its own batching loop")
	onnxBatchSize := flag.Int("onnx-batch-size", config.EnvInt(env("onnx-batch-size"), inference.DefaultBatchSize), "ONNX inference batch size")
	onnxBatchTimeout := flag.Duration("onnx-batch-timeout", config.EnvDuration(env("onnx-batch-timeout"), inference.DefaultBatchTimeout), "Max time to wait for filling an ONNX batch")
	useCUDA := flag.Bool("cuda", config.EnvBool(env("cuda"), false), "Use the CUDA execution provider")
	useTUI := flag.Bool("tui", config.EnvBool(env("tui"), false), "Show the terminal monitor")
	spectateAddr := flag.String("spectate", config.EnvString(env("spectate"), ""), "Serve the live spectator feed on this address, e.g. :8080")
	dbDir := flag.String("db", config.EnvString(env("db"), ""), "Badger directory for self-play statistics (empty = data dir, - = disabled)")
	logLevel := flag.String("log-level", config.EnvString(env("log-level"), "info"), "debug, info, warn or error")
	logFormat := flag.String("log-format", config.EnvString(env("log-format"), "text"), "text or json")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// Keep the TUI readable by sending logs to a file.
	var logOut io.Writer = os.Stderr
	if *useTUI {
		f, err := os.OpenFile("selfplay.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.New(logOut, level, *logFormat)
	slog.SetDefault(logger)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	var eval mcts.Evaluator = mcts.Material{}
	var stats func() inference.RuntimeStats
	if *modelPath != "" {
		ev, err := inference.Open(*modelPath, *onnxSessions, inference.OnnxConfig{
			BatchSize:    *onnxBatchSize,
			BatchTimeout: *onnxBatchTimeout,
			UseCUDA:      *useCUDA,
			Logger:       logger,
		})
		if err != nil {
			logger.Error("failed to load model", "path", *modelPath, "err", err)
			os.Exit(1)
		}
		defer ev.Close()
		eval = ev
		stats = ev.Stats
		if maxInflight := *workers; *onnxBatchSize > maxInflight {
			logger.Warn("batch size exceeds in-flight requests; batches will rarely fill",
				"batch_size", *onnxBatchSize, "workers", *workers)
		}
	} else {
		logger.Info("no model given, using material evaluator")
	}

	var store *storage.Storage
	if *dbDir != "-" {
		if *dbDir == "" {
			store, err = storage.NewStorage()
		} else {
			store, err = storage.NewStorageAt(*dbDir)
		}
		if err != nil {
			logger.Warn("statistics disabled", "err", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	rows := make(chan []dataset.TrainingRow, *workers*4)
	updates := make(chan selfplay.GameUpdate, *workers)
	steps := make(chan selfplay.Step, *workers*4)

	runner := &selfplay.Runner{
		Workers:  *workers,
		MaxGames: *maxGames,
		Game: selfplay.Config{
			MCTS:        mcts.Config{Cpuct: *cpuct, Simulations: *sims, MaxDepth: *maxDepth},
			SampleMoves: *sampleMoves,
			MaxPlies:    *maxPlies,
			Seed:        *seed,
			Source:      "selfplay",
			ModelPath:   *modelPath,
		},
		Eval:    eval,
		Logger:  logger,
		Rows:    rows,
		Updates: updates,
		Steps:   steps,
	}

	writerDone := make(chan struct{})
	go func() {
		dataset.WriterLoop(*outDir, *gamesPerFlush, rows, logger)
		close(writerDone)
	}()

	hub := spectate.NewHub()
	hubDone := make(chan struct{})
	defer close(hubDone)
	go hub.Run(hubDone)

	var server *http.Server
	if *spectateAddr != "" {
		server = &http.Server{Addr: *spectateAddr, Handler: spectate.NewRouter(hub)}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("spectator server failed", "err", err)
			}
		}()
		logger.Info("spectator feed listening", "addr", *spectateAddr)
	}

	// Fan runner events out to the hub, the statistics store and the monitor.
	uiUpdates := make(chan selfplay.GameUpdate, *workers)
	uiSteps := make(chan selfplay.Step, 1)
	runnerDone := make(chan struct{})
	fanDone := make(chan struct{})
	go func() {
		defer close(fanDone)
		defer close(uiUpdates)
		for {
			select {
			case u := <-updates:
				hub.PublishResult(u)
				if store != nil {
					if err := store.RecordSelfPlay(u.Result.Outcome(), u.Result.Plies, u.Result.Truncated); err != nil {
						logger.Warn("record self-play stats", "err", err)
					}
				}
				select {
				case uiUpdates <- u:
				default:
				}
			case s := <-steps:
				hub.PublishStep(s)
				select {
				case uiSteps <- s:
				default:
				}
			case <-runnerDone:
				return
			}
		}
	}()

	go func() {
		runner.Run(ctx)
		close(runnerDone)
	}()
	logger.Info("self-play started", "workers", *workers, "simulations", *sims, "out_dir", *outDir)

	if *useTUI {
		m := monitor.New(&runner.Counters, uiUpdates, uiSteps)
		if stats != nil {
			m.Extra = func() string {
				st := stats()
				return fmt.Sprintf("Batch avg=%.1f last=%d q=%d run avg=%.2fms", st.AvgBatchSize, st.LastBatchSize, st.QueueLen, st.AvgRunMs)
			}
		}
		if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			logger.Error("monitor failed", "err", err)
		}
		cancel()
	} else {
		logProgress(ctx, logger, runner, stats, uiUpdates)
	}

	logger.Info("shutdown requested; waiting for workers to finish current games")
	<-runnerDone
	<-fanDone
	<-writerDone
	if server != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("spectator shutdown", "err", err)
		}
	}
	if store != nil {
		if st, err := store.LoadSelfPlayStats(); err == nil {
			logger.Info("lifetime self-play totals", "games", st.Games, "white", st.WhiteWins,
				"black", st.BlackWins, "draws", st.Draws, "avg_plies", st.AveragePlies())
		}
	}
	logger.Info("shutdown complete", "games", runner.Counters.Games.Load())
}

// logProgress prints throughput once a second until ctx ends or the runner
// stops delivering updates.
func logProgress(ctx context.Context, logger *slog.Logger, runner *selfplay.Runner, stats func() inference.RuntimeStats, updates <-chan selfplay.GameUpdate) {
	start := time.Now()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
		case <-ticker.C:
			secs := time.Since(start).Seconds()
			args := []any{
				"games", runner.Counters.Games.Load(),
				"moves_per_sec", fmt.Sprintf("%.2f", float64(runner.Counters.Moves.Load())/secs),
				"evals_per_sec", fmt.Sprintf("%.2f", float64(runner.Counters.Evaluations.Load())/secs),
			}
			if stats != nil {
				st := stats()
				args = append(args, "batch_avg", fmt.Sprintf("%.1f", st.AvgBatchSize), "queue", st.QueueLen,
					"run_avg_ms", fmt.Sprintf("%.2f", st.AvgRunMs))
			}
			logger.Info("stats", args...)
		}
	}
}
