package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func TestParseMiniTicker(t *testing.T) {
	msg := []byte(`{"e":"24hrMiniTicker","E":1700000000000,"s":"BTCUSDT","c":"50001.10","o":"49000","h":"51000","l":"48000","v":"100","q":"5000000"}`)
	sample, err := parseMiniTicker(msg)
	if err != nil {
		t.Fatalf("parseMiniTicker returned error: %v", err)
	}
	if sample.Symbol != "BTCUSDT" {
		t.Fatalf("unexpected symbol %s", sample.Symbol)
	}
	if sample.Price != 50001.10 {
		t.Fatalf("unexpected price %f", sample.Price)
	}
	if sample.Ts.UnixMilli() != 1700000000000 {
		t.Fatalf("unexpected timestamp %v", sample.Ts)
	}
}

func TestParseMiniTickerRejectsGarbage(t *testing.T) {
	if _, err := parseMiniTicker([]byte(`{"result":null,"id":1}`)); err == nil {
		t.Fatalf("expected error for non-ticker payload")
	}
	if _, err := parseMiniTicker([]byte(`{"e":"24hrMiniTicker","s":"BTCUSDT","c":"not-a-number"}`)); err == nil {
		t.Fatalf("expected error for bad price")
	}
}

func TestLatestPriceBeforeFirstSample(t *testing.T) {
	feed := NewFeed("BTCUSDT", true, zerolog.Nop())
	if _, err := feed.LatestPrice(context.Background(), "BTCUSDT"); err == nil {
		t.Fatalf("expected error before first sample")
	}
}

func TestFeedRunCachesLatestSample(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "btcusdt@miniTicker") {
			t.Errorf("unexpected stream path %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		msg := `{"e":"24hrMiniTicker","E":1700000000000,"s":"BTCUSDT","c":"50001.10"}`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			return
		}
		// Keep the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	feed := NewFeed("BTCUSDT", false, zerolog.Nop(), WithStreamURL(wsURL))

	errCh := make(chan error, 1)
	go func() {
		err := feed.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
		close(errCh)
	}()

	deadline := time.After(2 * time.Second)
	for {
		sample, err := feed.LatestPrice(ctx, "BTCUSDT")
		if err == nil {
			if sample.Price != 50001.10 || sample.Symbol != "BTCUSDT" {
				t.Fatalf("unexpected sample: %+v", sample)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for sample: %v", err)
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("feed returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("feed did not stop after cancel")
	}
}
