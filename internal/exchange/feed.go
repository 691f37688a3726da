package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/metrics"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/trade"
)

const (
	mainnetStreamURL = "wss://fstream.binance.com/ws"
	testnetStreamURL = "wss://stream.binancefuture.com/ws"
)

// Feed streams mini-ticker updates for one symbol over a websocket and caches
// the latest sample so the monitor loop can poll it without extra REST calls.
type Feed struct {
	symbol  string
	baseURL string
	log     zerolog.Logger

	mu   sync.RWMutex
	last trade.PriceSample
}

// FeedOption configures Feed construction parameters.
type FeedOption func(*Feed)

// WithStreamURL overrides the websocket base URL (tests point this at a local
// server).
func WithStreamURL(url string) FeedOption {
	return func(f *Feed) {
		if url != "" {
			f.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// NewFeed constructs a price feed for one symbol.
func NewFeed(symbol string, testnet bool, log zerolog.Logger, opts ...FeedOption) *Feed {
	f := &Feed{
		symbol:  strings.ToUpper(symbol),
		baseURL: mainnetStreamURL,
		log:     log,
	}
	if testnet {
		f.baseURL = testnetStreamURL
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// LatestPrice returns the most recent streamed sample. It fails until the
// first ticker message arrives, which the monitor treats as a transient poll
// error.
func (f *Feed) LatestPrice(_ context.Context, symbol string) (trade.PriceSample, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.last.Ts.IsZero() {
		return trade.PriceSample{}, fmt.Errorf("feed: no sample yet for %s", symbol)
	}
	return f.last, nil
}

// Run consumes the stream until the context is canceled, reconnecting with
// backoff on read failures.
func (f *Feed) Run(ctx context.Context) error {
	url := fmt.Sprintf("%s/%s@miniTicker", f.baseURL, strings.ToLower(f.symbol))
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.consumeStream(ctx, url); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Msg("price stream disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (f *Feed) consumeStream(ctx context.Context, url string) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.log.Info().Str("sym", f.symbol).Str("url", url).Msg("connected price stream")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Msg("stream ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		sample, err := parseMiniTicker(message)
		if err != nil {
			f.log.Warn().Err(err).Msg("failed to decode ticker message")
			continue
		}
		metrics.StreamTicksTotal.WithLabelValues(sample.Symbol).Inc()
		f.mu.Lock()
		f.last = sample
		f.mu.Unlock()
	}
}

type miniTickerEvent struct {
	Event     string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Close     string `json:"c"`
}

func parseMiniTicker(message []byte) (trade.PriceSample, error) {
	var event miniTickerEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return trade.PriceSample{}, err
	}
	if event.Symbol == "" || event.Close == "" {
		return trade.PriceSample{}, fmt.Errorf("not a mini ticker event: %q", event.Event)
	}
	px, err := strconv.ParseFloat(event.Close, 64)
	if err != nil {
		return trade.PriceSample{}, fmt.Errorf("invalid close price %q: %w", event.Close, err)
	}
	return trade.PriceSample{
		Symbol: event.Symbol,
		Price:  px,
		Ts:     time.UnixMilli(event.EventTime),
	}, nil
}
