package inference

import (
	"context"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/hailam/chesszero/internal/board"
	"github.com/hailam/chesszero/internal/encoding"
	"github.com/hailam/chesszero/internal/mcts"
)

func TestSoftmax(t *testing.T) {
	logits := []float32{1, 2, 3, 1000}
	Softmax(logits)
	var sum float64
	for _, p := range logits {
		if p < 0 || p > 1 {
			t.Fatalf("probability out of range: %v", logits)
		}
		sum += float64(p)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("softmax sums to %v", sum)
	}
	if logits[3] < 0.999 {
		t.Fatalf("largest logit should dominate, got %v", logits)
	}

	flat := []float32{0, 0, 0, 0}
	Softmax(flat)
	for _, p := range flat {
		if p != 0.25 {
			t.Fatalf("equal logits should give uniform probabilities, got %v", flat)
		}
	}
}

func TestEmptyPool(t *testing.T) {
	var p OnnxPool
	obs := encoding.Encode(board.NewState())
	if _, _, err := p.Evaluate(context.Background(), &obs); err == nil {
		t.Fatal("expected an error from a pool without clients")
	}
}

func TestMissingModel(t *testing.T) {
	if _, err := NewOnnxClient("/nonexistent/model.onnx", OnnxConfig{}); err == nil {
		t.Fatal("expected an error for a missing model file")
	}
	for _, sessions := range []int{1, 3} {
		ev, err := Open("/nonexistent/model.onnx", sessions, OnnxConfig{})
		if err == nil || ev != nil {
			t.Errorf("Open with %d sessions = %v, %v; want nil evaluator and an error", sessions, ev, err)
		}
	}
}

// TestOnnxSearch runs a short search against a real model. It needs
// CHESSZERO_TEST_MODEL and an ONNX Runtime library (ORT_SHARED_LIBRARY_PATH).
func TestOnnxSearch(t *testing.T) {
	modelPath := os.Getenv("CHESSZERO_TEST_MODEL")
	if modelPath == "" {
		t.Skip("CHESSZERO_TEST_MODEL not set")
	}
	client, err := NewOnnxClient(modelPath, OnnxConfig{BatchSize: 8})
	if err != nil {
		t.Skipf("onnx runtime unavailable: %v", err)
	}
	defer client.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := mcts.New(mcts.Config{Simulations: 16}, client)
			res, err := m.Search(context.Background(), board.NewState())
			if err != nil {
				t.Errorf("search: %v", err)
				return
			}
			if res.TotalVisits() != 16 {
				t.Errorf("visits = %d, want 16", res.TotalVisits())
			}
		}()
	}
	wg.Wait()

	if st := client.Stats(); st.TotalItems == 0 {
		t.Error("no items went through the batcher")
	}
}
