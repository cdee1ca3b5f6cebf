package inference

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/hailam/chesszero/internal/encoding"
)

// OnnxPool spreads Evaluate calls round-robin over several clients, each
// with its own session and batching loop.
type OnnxPool struct {
	clients []*OnnxClient
	rr      atomic.Uint64
}

// NewOnnxPool opens sessions clients for modelPath.
func NewOnnxPool(modelPath string, sessions int, cfg OnnxConfig) (*OnnxPool, error) {
	if sessions <= 0 {
		sessions = 1
	}
	clients := make([]*OnnxClient, 0, sessions)
	for i := 0; i < sessions; i++ {
		c, err := NewOnnxClient(modelPath, cfg)
		if err != nil {
			for _, created := range clients {
				_ = created.Close()
			}
			return nil, fmt.Errorf("create onnx client %d/%d: %w", i+1, sessions, err)
		}
		clients = append(clients, c)
	}
	return &OnnxPool{clients: clients}, nil
}

func (p *OnnxPool) Close() error {
	var errs []error
	for _, c := range p.clients {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *OnnxPool) Evaluate(ctx context.Context, obs *encoding.Observation) ([]float32, float32, error) {
	if len(p.clients) == 0 {
		return nil, 0, errors.New("onnx pool has no clients")
	}
	idx := int(p.rr.Add(1)-1) % len(p.clients)
	return p.clients[idx].Evaluate(ctx, obs)
}

// Stats sums the counters of every client.
func (p *OnnxPool) Stats() RuntimeStats {
	var out RuntimeStats
	for _, c := range p.clients {
		st := c.Stats()
		out.TotalBatches += st.TotalBatches
		out.TotalItems += st.TotalItems
		out.TotalRunNanos += st.TotalRunNanos
		out.QueueLen += st.QueueLen
		out.LastBatchSize = max(out.LastBatchSize, st.LastBatchSize)
	}
	if out.TotalBatches > 0 {
		out.AvgBatchSize = float64(out.TotalItems) / float64(out.TotalBatches)
		out.AvgRunMs = float64(out.TotalRunNanos) / 1e6 / float64(out.TotalBatches)
	}
	return out
}

// Evaluator is the common surface of OnnxClient and OnnxPool.
type Evaluator interface {
	Evaluate(ctx context.Context, obs *encoding.Observation) ([]float32, float32, error)
	Stats() RuntimeStats
	Close() error
}

// Open returns a single client for one session and a pool otherwise.
func Open(modelPath string, sessions int, cfg OnnxConfig) (Evaluator, error) {
	if sessions <= 1 {
		c, err := NewOnnxClient(modelPath, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	p, err := NewOnnxPool(modelPath, sessions, cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}
