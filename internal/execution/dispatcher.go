package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/journal"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/metrics"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/risk"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/trade"
)

// Placer submits a single order call to a venue.
type Placer interface {
	PlaceOrder(ctx context.Context, call OrderCall) (Ack, error)
}

// Notifier pushes a human-readable alert out of band.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// ExchangeError wraps a failure surfaced by the exchange adapter for one
// attempted call.
type ExchangeError struct {
	Call OrderCall
	Err  error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange: %s %s %s: %v", e.Call.Symbol, e.Call.Side, e.Call.Type, e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// RiskError reports an order rejected by local limits before dispatch.
type RiskError struct {
	Call OrderCall
}

func (e *RiskError) Error() string {
	return fmt.Sprintf("risk limits reject %s %s qty %v", e.Call.Symbol, e.Call.Side, e.Call.Quantity)
}

// Dispatcher validates, builds, and submits trading intents through a Placer,
// logging and journaling every attempted call.
type Dispatcher struct {
	placer   Placer
	limits   risk.Limits
	recorder journal.Recorder
	notifier Notifier
	log      zerolog.Logger
}

// Option configures Dispatcher construction.
type Option func(*Dispatcher)

// WithLimits applies local risk limits before any call leaves the process.
func WithLimits(l risk.Limits) Option {
	return func(d *Dispatcher) { d.limits = l }
}

// WithRecorder journals every attempted call and its outcome.
func WithRecorder(r journal.Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithNotifier sends an alert when a dispatch fails.
func WithNotifier(n Notifier) Option {
	return func(d *Dispatcher) { d.notifier = n }
}

// NewDispatcher wires a Placer with logging and optional risk/journal/alert
// collaborators.
func NewDispatcher(placer Placer, log zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{placer: placer, recorder: journal.Nop{}, log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends the calls derived from intent, one by one, in order. The
// first failure stops the sequence: remaining OCO legs are not attempted and
// the error is returned to the caller. No retries happen here.
func (d *Dispatcher) Dispatch(ctx context.Context, intent trade.Intent) ([]Ack, error) {
	calls, err := Build(intent)
	if err != nil {
		d.log.Error().Err(err).Str("sym", intent.Symbol).Msg("intent rejected")
		return nil, err
	}

	for _, call := range calls {
		refPrice := call.Price
		if refPrice == 0 {
			refPrice = call.StopPrice
		}
		if !d.limits.Allow(call.Quantity, refPrice) {
			err := &RiskError{Call: call}
			d.log.Error().Err(err).Str("sym", call.Symbol).Msg("order blocked by risk limits")
			return nil, err
		}
	}

	acks := make([]Ack, 0, len(calls))
	for _, call := range calls {
		entry := d.log.Info().
			Str("sym", call.Symbol).
			Str("side", string(call.Side)).
			Str("type", string(call.Type)).
			Float64("qty", call.Quantity).
			Str("client_id", call.ClientOrderID)
		if call.Price > 0 {
			entry = entry.Float64("px", call.Price)
		}
		if call.StopPrice > 0 {
			entry = entry.Float64("stop_px", call.StopPrice)
		}
		if call.Leg != "" {
			entry = entry.Str("leg", call.Leg)
		}
		entry.Msg("submitting order")

		metrics.OrdersTotal.WithLabelValues(call.Symbol, string(call.Side)).Inc()
		ack, err := d.placer.PlaceOrder(ctx, call)
		attempt := journal.Attempt{
			Ts:            time.Now().UTC(),
			Symbol:        call.Symbol,
			Side:          string(call.Side),
			Type:          string(call.Type),
			Leg:           call.Leg,
			Quantity:      call.Quantity,
			Price:         call.Price,
			StopPrice:     call.StopPrice,
			ClientOrderID: call.ClientOrderID,
		}
		if err != nil {
			metrics.OrderErrorsTotal.WithLabelValues(call.Symbol, string(call.Side)).Inc()
			exErr := &ExchangeError{Call: call, Err: err}
			attempt.Error = exErr.Error()
			d.recorder.Record(attempt)
			d.log.Error().Err(err).
				Str("sym", call.Symbol).
				Str("side", string(call.Side)).
				Str("type", string(call.Type)).
				Msg("order failed")
			d.alert(ctx, fmt.Sprintf("ORDER FAILED: %s %s %s qty %v: %v",
				call.Symbol, call.Side, call.Type, call.Quantity, err))
			return acks, exErr
		}
		attempt.OrderID = ack.OrderID
		attempt.Status = ack.Status
		d.recorder.Record(attempt)
		d.log.Info().
			Str("sym", call.Symbol).
			Str("side", string(call.Side)).
			Str("type", string(call.Type)).
			Int64("order_id", ack.OrderID).
			Str("status", ack.Status).
			Msg("order placed")
		acks = append(acks, ack)
	}
	return acks, nil
}

func (d *Dispatcher) alert(ctx context.Context, text string) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.Notify(ctx, text); err != nil {
		d.log.Warn().Err(err).Msg("alert delivery failed")
		return
	}
	metrics.AlertsTotal.Inc()
}
