package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func sampleRows(game string, n int) []TrainingRow {
	rows := make([]TrainingRow, n)
	for i := range rows {
		rows[i] = TrainingRow{
			GameID:        game,
			Ply:           int32(i),
			SideToMove:    int32(i % 2),
			Observation:   []float32{1, 0, 0, 1},
			PolicyActions: []int32{10, 20},
			PolicyProbs:   []float32{0.25, 0.75},
			Value:         float32(1 - 2*(i%2)),
			Source:        "test",
		}
	}
	return rows
}

func TestWriteBatchParquetAtomic(t *testing.T) {
	dir := t.TempDir()
	rows := sampleRows("g1", 3)

	path, err := WriteBatchParquetAtomic(dir, rows)
	if err != nil {
		t.Fatalf("WriteBatchParquetAtomic: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("file written to %s, want %s", filepath.Dir(path), dir)
	}
	leftovers, _ := os.ReadDir(filepath.Join(dir, "tmp"))
	if len(leftovers) != 0 {
		t.Errorf("tmp dir not empty: %d entries", len(leftovers))
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(rows) {
		t.Fatalf("read %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i].GameID != "g1" || got[i].Ply != int32(i) || got[i].Value != rows[i].Value {
			t.Errorf("row %d = %+v", i, got[i])
		}
		if len(got[i].PolicyActions) != 2 || got[i].PolicyActions[1] != 20 || got[i].PolicyProbs[1] != 0.75 {
			t.Errorf("row %d policy = %v %v", i, got[i].PolicyActions, got[i].PolicyProbs)
		}
		if len(got[i].Observation) != 4 || got[i].Observation[3] != 1 {
			t.Errorf("row %d observation = %v", i, got[i].Observation)
		}
	}
}

func TestWriterLoopFlushesPerGames(t *testing.T) {
	dir := t.TempDir()
	in := make(chan []TrainingRow, 8)
	in <- sampleRows("a", 2)
	in <- sampleRows("b", 3)
	in <- nil
	in <- sampleRows("c", 1)
	close(in)

	written := WriterLoop(dir, 2, in, nil)
	if len(written) != 2 {
		t.Fatalf("wrote %d files, want 2 (one full batch and the final flush)", len(written))
	}

	var total int
	for _, p := range written {
		rows, err := ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		total += len(rows)
	}
	if total != 6 {
		t.Fatalf("read back %d rows, want 6", total)
	}
}
