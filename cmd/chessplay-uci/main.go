package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strconv"

	"github.com/hailam/chesszero/internal/config"
	"github.com/hailam/chesszero/internal/engine"
	"github.com/hailam/chesszero/internal/inference"
	"github.com/hailam/chesszero/internal/mcts"
	"github.com/hailam/chesszero/internal/storage"
	"github.com/hailam/chesszero/internal/uci"
)

// defaultModel is looked up in the data directory's models folder and in ./models.
const defaultModel = "chesszero.onnx"

var (
	cpuprofile  = flag.String("cpuprofile", config.EnvString("CPUPROFILE", ""), "write cpu profile to file")
	modelPath   = flag.String("model", config.EnvString(config.Name("model"), ""), "ONNX policy/value network (default: search standard locations)")
	sessions    = flag.Int("onnx-sessions", config.EnvInt(config.Name("onnx-sessions"), 1), "ONNX Runtime sessions")
	cpuct       = flag.Float64("cpuct", config.EnvFloat(config.Name("cpuct"), mcts.DefaultConfig().Cpuct), "PUCT exploration constant")
	simulations = flag.Int("simulations", config.EnvInt(config.Name("simulations"), 0), "default simulations per move (0 = engine default)")
)

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", *cpuprofile)
	}

	eng := engine.NewEngine(mcts.Config{Cpuct: *cpuct}, mcts.Material{})
	loader := func(path string) (mcts.Evaluator, io.Closer, error) {
		ev, err := inference.Open(path, *sessions, inference.OnnxConfig{})
		if err != nil {
			return nil, nil, err
		}
		return ev, ev, nil
	}

	protocol := uci.New(eng, os.Stdout, loader)

	// Auto-load a network from default locations.
	if path := findModel(*modelPath); path != "" {
		protocol.SetOption("Model", path)
	} else {
		log.Printf("Warning: no network found (using material evaluation)")
	}
	if *simulations > 0 {
		protocol.SetOption("Simulations", strconv.Itoa(*simulations))
	}

	protocol.Run(os.Stdin)
}

// findModel returns explicit if set, else the first default location holding a network.
func findModel(explicit string) string {
	if explicit != "" {
		return explicit
	}
	var searchPaths []string
	if dir, err := storage.GetModelDir(); err == nil {
		searchPaths = append(searchPaths, dir)
	}
	searchPaths = append(searchPaths, "./models", ".")

	for _, dir := range searchPaths {
		p := filepath.Join(dir, defaultModel)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
