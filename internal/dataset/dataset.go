// Package dataset stores self-play training rows as Parquet files.
package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// SchemaVersion is written into every file's key/value metadata.
const SchemaVersion = "chess_training_row_v1"

// TrainingRow is one position from a self-play game.
//
// Observation is the 13x8x8 encoder output, flattened plane-major. The policy
// target is sparse: PolicyActions holds action indices and PolicyProbs the
// normalized visit counts for them. Value is the final game result from the
// point of view of the side to move at this position: 1 win, -1 loss, 0 draw.
type TrainingRow struct {
	GameID        string    `parquet:"game_id,dict"`
	Ply           int32     `parquet:"ply"`
	SideToMove    int32     `parquet:"side_to_move"`
	Observation   []float32 `parquet:"observation"`
	PolicyActions []int32   `parquet:"policy_actions"`
	PolicyProbs   []float32 `parquet:"policy_probs"`
	Value         float32   `parquet:"value"`
	Source        string    `parquet:"source,dict"`
	ModelPath     string    `parquet:"model_path,dict,optional"`
}

// WriteBatchParquetAtomic writes rows into outDir/tmp and then renames the
// file into outDir, so readers never see a partial file. It returns the final path.
func WriteBatchParquetAtomic(outDir string, rows []TrainingRow) (string, error) {
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("batch_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.SkipPageBounds("observation"),
		parquet.KeyValueMetadata("schema", SchemaVersion),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// ReadFile loads every row of a batch file.
func ReadFile(path string) ([]TrainingRow, error) {
	rows, err := parquet.ReadFile[TrainingRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}
	return rows, nil
}

// WriterLoop buffers games from in and flushes a batch file every
// gamesPerFlush games, plus a final flush once in is closed. It returns the
// paths written.
func WriterLoop(outDir string, gamesPerFlush int, in <-chan []TrainingRow, logger *slog.Logger) []string {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}
	if logger == nil {
		logger = slog.Default()
	}

	var written []string
	pendingRows := make([]TrainingRow, 0, 128*gamesPerFlush)
	pendingGames := 0

	flush := func(final bool) {
		if pendingGames == 0 || len(pendingRows) == 0 {
			return
		}
		outPath, err := WriteBatchParquetAtomic(outDir, pendingRows)
		if err != nil {
			logger.Error("parquet flush failed", "games", pendingGames, "rows", len(pendingRows), "final", final, "err", err)
		} else {
			logger.Info("parquet flush ok", "path", outPath, "games", pendingGames, "rows", len(pendingRows), "final", final)
			written = append(written, outPath)
		}
		pendingRows = pendingRows[:0]
		pendingGames = 0
	}

	for rows := range in {
		if len(rows) == 0 {
			continue
		}
		pendingRows = append(pendingRows, rows...)
		pendingGames++
		if pendingGames >= gamesPerFlush {
			flush(false)
		}
	}
	flush(true)
	return written
}
