package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestJSONLRecorder(t *testing.T) {
	tmp := t.TempDir()
	path := tmp + "/orders.jsonl"

	recorder, err := NewJSONLRecorder(path)
	if err != nil {
		t.Fatalf("NewJSONLRecorder error: %v", err)
	}
	attempt := Attempt{
		Ts:            time.Now().UTC(),
		Symbol:        "BTCUSDT",
		Side:          "BUY",
		Type:          "MARKET",
		Quantity:      0.01,
		OrderID:       7,
		ClientOrderID: "tb-1",
		Status:        "FILLED",
	}
	recorder.Record(attempt)
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open recorded file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		t.Fatalf("expected one line in recorder output")
	}
	var decoded Attempt
	if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if decoded.Symbol != attempt.Symbol || decoded.Side != attempt.Side || decoded.OrderID != 7 {
		t.Fatalf("unexpected decoded attempt: %+v", decoded)
	}
}

func TestJSONLRecorderCreatesDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/dir/orders.jsonl"
	recorder, err := NewJSONLRecorder(path)
	if err != nil {
		t.Fatalf("NewJSONLRecorder error: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("journal file missing: %v", err)
	}
}

func TestCloseTwice(t *testing.T) {
	recorder, err := NewJSONLRecorder(t.TempDir() + "/orders.jsonl")
	if err != nil {
		t.Fatalf("NewJSONLRecorder error: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("first Close error: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
}
