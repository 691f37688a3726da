// Package journal appends order attempts as JSON lines for later inspection.
package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Attempt captures one attempted exchange call and its outcome.
type Attempt struct {
	Ts            time.Time `json:"ts"`
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side"`
	Type          string    `json:"type"`
	Leg           string    `json:"leg,omitempty"`
	Quantity      float64   `json:"qty"`
	Price         float64   `json:"price,omitempty"`
	StopPrice     float64   `json:"stop_price,omitempty"`
	OrderID       int64     `json:"order_id,omitempty"`
	ClientOrderID string    `json:"client_order_id"`
	Status        string    `json:"status,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// Recorder captures attempts for later inspection.
type Recorder interface {
	Record(Attempt)
}

// Nop discards every attempt.
type Nop struct{}

func (Nop) Record(Attempt) {}

// JSONLRecorder appends attempts as JSON lines.
type JSONLRecorder struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLRecorder creates/opens the target file and returns a recorder.
func NewJSONLRecorder(path string) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLRecorder{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Record writes a single attempt to the underlying JSONL file.
func (r *JSONLRecorder) Record(attempt Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.enc.Encode(attempt)
}

// Close flushes and closes the file handle.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
