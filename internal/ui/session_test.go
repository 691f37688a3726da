package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/execution"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/trade"
)

type recordingDispatcher struct {
	intents []trade.Intent
	fail    bool
}

func (d *recordingDispatcher) Dispatch(_ context.Context, intent trade.Intent) ([]execution.Ack, error) {
	d.intents = append(d.intents, intent)
	if d.fail {
		return nil, errors.New("rejected")
	}
	return []execution.Ack{{OrderID: 1, Status: "FILLED"}}, nil
}

type fixedSource struct{ price float64 }

func (s fixedSource) LatestPrice(_ context.Context, symbol string) (trade.PriceSample, error) {
	return trade.PriceSample{Symbol: symbol, Price: s.price, Ts: time.Now()}, nil
}

func run(t *testing.T, input string, dispatcher *recordingDispatcher) string {
	t.Helper()
	var out bytes.Buffer
	session := NewSession(strings.NewReader(input), &out, "BTCUSDT", 0.01,
		fixedSource{price: 50000}, dispatcher, zerolog.Nop())
	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return out.String()
}

func TestBuyCommand(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	out := run(t, "b\nq\n", dispatcher)

	if len(dispatcher.intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(dispatcher.intents))
	}
	intent := dispatcher.intents[0]
	if intent.Side != trade.Buy || intent.Kind != trade.Market || intent.Quantity != 0.01 {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if !strings.Contains(out, "BTCUSDT Price: $50000.00") {
		t.Fatalf("expected price header, got %s", out)
	}
	if !strings.Contains(out, "BUY MARKET order submitted") {
		t.Fatalf("expected submission confirmation, got %s", out)
	}
}

func TestOCOCommandPromptsForPrices(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	run(t, "oco\n52000\n48000\nq\n", dispatcher)

	if len(dispatcher.intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(dispatcher.intents))
	}
	intent := dispatcher.intents[0]
	if intent.Kind != trade.OCO || intent.TakeProfitPrice != 52000 || intent.StopLossPrice != 48000 {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if intent.Side != trade.Sell {
		t.Fatalf("OCO prompt places a closing sell, got %s", intent.Side)
	}
}

func TestStopLimitCommand(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	run(t, "stop\n49000\n48900\nq\n", dispatcher)

	if len(dispatcher.intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(dispatcher.intents))
	}
	intent := dispatcher.intents[0]
	if intent.Kind != trade.StopLimit || intent.StopPrice != 49000 || intent.LimitPrice != 48900 {
		t.Fatalf("unexpected intent: %+v", intent)
	}
}

func TestInvalidPriceKeepsSessionAlive(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	out := run(t, "oco\nnot-a-number\nb\nq\n", dispatcher)

	if !strings.Contains(out, "invalid price") {
		t.Fatalf("expected invalid price message, got %s", out)
	}
	if len(dispatcher.intents) != 1 || dispatcher.intents[0].Kind != trade.Market {
		t.Fatalf("expected session to continue to the buy, got %+v", dispatcher.intents)
	}
}

func TestDispatchFailureReportedNotFatal(t *testing.T) {
	dispatcher := &recordingDispatcher{fail: true}
	out := run(t, "s\nq\n", dispatcher)

	if !strings.Contains(out, "order failed") {
		t.Fatalf("expected failure message, got %s", out)
	}
}

func TestEOFEndsSessionCleanly(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	run(t, "b\n", dispatcher) // no trailing q, reader hits EOF

	if len(dispatcher.intents) != 1 {
		t.Fatalf("expected the buy before EOF, got %d", len(dispatcher.intents))
	}
}

func TestUnknownCommand(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	out := run(t, "zz\nq\n", dispatcher)
	if !strings.Contains(out, `unknown command "zz"`) {
		t.Fatalf("expected unknown command message, got %s", out)
	}
	if len(dispatcher.intents) != 0 {
		t.Fatalf("expected no dispatches")
	}
}
