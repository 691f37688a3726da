package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/execution"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/journal"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/monitor"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/risk"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/trade"
)

type sequenceSource struct {
	prices []float64
	idx    int
}

func (s *sequenceSource) LatestPrice(_ context.Context, symbol string) (trade.PriceSample, error) {
	price := s.prices[len(s.prices)-1]
	if s.idx < len(s.prices) {
		price = s.prices[s.idx]
		s.idx++
	}
	return trade.PriceSample{Symbol: symbol, Price: price, Ts: time.Now()}, nil
}

func TestMonitorFlowPlacesAndJournalsOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	journalPath := t.TempDir() + "/orders.jsonl"
	recorder, err := journal.NewJSONLRecorder(journalPath)
	if err != nil {
		t.Fatalf("NewJSONLRecorder error: %v", err)
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	placer := execution.NewPaperPlacer(logger)
	dispatcher := execution.NewDispatcher(placer, logger,
		execution.WithLimits(risk.Limits{MaxQuantityPerOrder: 1}),
		execution.WithRecorder(recorder),
	)

	source := &sequenceSource{prices: []float64{60500, 60000, 59999}}
	m := monitor.New(monitor.Config{
		Symbol:   "BTCUSDT",
		Quantity: 0.01,
		BuyBelow: 60000,
		Interval: 5 * time.Millisecond,
		Once:     true,
	}, source, dispatcher, nil, logger)

	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if m.State() != monitor.StateTriggered {
		t.Fatalf("expected TRIGGERED state after run")
	}
	if !strings.Contains(buf.String(), "order placed") {
		t.Fatalf("expected order placed log, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "threshold crossed") {
		t.Fatalf("expected threshold crossed log, got %s", buf.String())
	}

	file, err := os.Open(journalPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		t.Fatalf("expected a journal entry")
	}
	var attempt journal.Attempt
	if err := json.Unmarshal(scanner.Bytes(), &attempt); err != nil {
		t.Fatalf("decode journal entry: %v", err)
	}
	if attempt.Symbol != "BTCUSDT" || attempt.Side != "BUY" || attempt.Type != "MARKET" {
		t.Fatalf("unexpected journal entry: %+v", attempt)
	}
	if attempt.Status != "FILLED" || attempt.Error != "" {
		t.Fatalf("expected successful attempt, got %+v", attempt)
	}
	if scanner.Scan() {
		t.Fatalf("expected exactly one journal entry")
	}
}
