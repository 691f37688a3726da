// Package monitor implements the price-triggered trading loop.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/execution"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/metrics"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/trade"
)

// PriceSource returns the current market price for a symbol. Implemented by
// the REST adapter and the websocket feed.
type PriceSource interface {
	LatestPrice(ctx context.Context, symbol string) (trade.PriceSample, error)
}

// Dispatcher forwards a trading intent to the exchange.
type Dispatcher interface {
	Dispatch(ctx context.Context, intent trade.Intent) ([]execution.Ack, error)
}

// Notifier pushes a human-readable alert out of band.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// State is the loop's position in its two-state machine.
type State int

const (
	// StateWaiting means the loop is polling with no pending action.
	StateWaiting State = iota
	// StateTriggered means a threshold crossing dispatched an intent.
	StateTriggered
)

// Config holds the monitor's trading parameters. Buys fire when the price
// drops strictly below BuyBelow while flat; sells fire when it rises strictly
// above SellAbove while in position. Equal prices never fire, so repeated
// identical samples cannot double-fill.
type Config struct {
	Symbol    string
	Quantity  float64
	BuyBelow  float64
	SellAbove float64
	Interval  time.Duration
	Once      bool
	// StartInPosition marks an existing holding so the first trigger can be
	// a sell.
	StartInPosition bool
}

// Monitor polls a price source on a fixed interval and emits MARKET intents
// when thresholds are crossed. Single-threaded: one poll, one decision, one
// dispatch at a time.
type Monitor struct {
	cfg        Config
	source     PriceSource
	dispatcher Dispatcher
	notifier   Notifier
	log        zerolog.Logger

	state      State
	inPosition bool
}

// New builds a monitor. The notifier may be nil.
func New(cfg Config, source PriceSource, dispatcher Dispatcher, notifier Notifier, log zerolog.Logger) *Monitor {
	return &Monitor{
		cfg:        cfg,
		source:     source,
		dispatcher: dispatcher,
		notifier:   notifier,
		log:        log,
		inPosition: cfg.StartInPosition,
	}
}

// State reports the loop's current machine state.
func (m *Monitor) State() State { return m.state }

// InPosition reports whether the last successful trigger was a buy.
func (m *Monitor) InPosition() bool { return m.inPosition }

// Run polls until the context is canceled. With Once set it returns after the
// first successful trigger.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info().
		Str("sym", m.cfg.Symbol).
		Float64("buy_below", m.cfg.BuyBelow).
		Float64("sell_above", m.cfg.SellAbove).
		Dur("interval", m.cfg.Interval).
		Msg("price monitor started")

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("price monitor stopped")
			return nil
		case <-ticker.C:
			triggered := m.Step(ctx)
			if triggered && m.cfg.Once {
				return nil
			}
		}
	}
}

// Step performs one poll-compare-dispatch cycle. It returns true when an
// intent was dispatched successfully. A failed price fetch is transient: it
// is logged and the next tick proceeds normally.
func (m *Monitor) Step(ctx context.Context) bool {
	sample, err := m.source.LatestPrice(ctx, m.cfg.Symbol)
	if err != nil {
		metrics.PollErrorsTotal.WithLabelValues(m.cfg.Symbol).Inc()
		m.log.Warn().Err(err).Str("sym", m.cfg.Symbol).Msg("price poll failed")
		return false
	}
	metrics.PricePollsTotal.WithLabelValues(m.cfg.Symbol).Inc()
	m.log.Info().
		Str("sym", sample.Symbol).
		Float64("px", sample.Price).
		Bool("in_position", m.inPosition).
		Msg("price poll")

	side, ok := m.decide(sample.Price)
	if !ok {
		return false
	}

	m.state = StateTriggered
	metrics.TriggersTotal.WithLabelValues(m.cfg.Symbol, string(side)).Inc()
	m.log.Info().
		Str("sym", m.cfg.Symbol).
		Str("side", string(side)).
		Float64("px", sample.Price).
		Msg("threshold crossed")

	intent := trade.Intent{
		Symbol:   m.cfg.Symbol,
		Side:     side,
		Quantity: m.cfg.Quantity,
		Kind:     trade.Market,
	}
	if _, err := m.dispatcher.Dispatch(ctx, intent); err != nil {
		// The triggered attempt dies here; the loop itself keeps going.
		m.log.Error().Err(err).Str("sym", m.cfg.Symbol).Msg("triggered dispatch failed")
		m.state = StateWaiting
		return false
	}

	m.inPosition = side == trade.Buy
	m.notify(ctx, fmt.Sprintf("%s %v %s at %.2f", side, m.cfg.Quantity, m.cfg.Symbol, sample.Price))
	if !m.cfg.Once {
		m.state = StateWaiting
	}
	return true
}

// decide applies the strict-inequality threshold rules.
func (m *Monitor) decide(price float64) (trade.Side, bool) {
	if !m.inPosition && m.cfg.BuyBelow > 0 && price < m.cfg.BuyBelow {
		return trade.Buy, true
	}
	if m.inPosition && m.cfg.SellAbove > 0 && price > m.cfg.SellAbove {
		return trade.Sell, true
	}
	return "", false
}

func (m *Monitor) notify(ctx context.Context, text string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(ctx, text); err != nil {
		m.log.Warn().Err(err).Msg("alert delivery failed")
		return
	}
	metrics.AlertsTotal.Inc()
}
