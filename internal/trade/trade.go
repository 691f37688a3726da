// Package trade standardizes payloads shared between the front-end, the
// monitor loop, and the execution layer.
package trade

import (
	"fmt"
	"time"
)

// Side enumerates order directions.
type Side string

const (
	// Buy indicates a long order.
	Buy Side = "BUY"
	// Sell indicates a short order.
	Sell Side = "SELL"
)

// Kind enumerates the supported order kinds.
type Kind string

const (
	// Market executes immediately at the current price.
	Market Kind = "MARKET"
	// StopLimit becomes a limit order once the stop price is reached.
	StopLimit Kind = "STOP_LIMIT"
	// OCO places a take-profit leg and a stop-loss leg; filling one is
	// expected to cancel the other on the exchange side.
	OCO Kind = "OCO"
)

// ParseSide normalizes a user-supplied side string.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Buy, Sell:
		return Side(s), nil
	}
	return "", &ValidationError{Field: "side", Reason: fmt.Sprintf("unknown side %q", s)}
}

// ParseKind normalizes a user-supplied order kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Market, StopLimit, OCO:
		return Kind(s), nil
	}
	return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown order kind %q", s)}
}

// Intent is the normalized representation of a requested order before
// dispatch. Price fields are zero when absent.
type Intent struct {
	Symbol          string
	Side            Side
	Quantity        float64
	Kind            Kind
	StopPrice       float64
	LimitPrice      float64
	TakeProfitPrice float64
	StopLossPrice   float64
}

// PriceSample is a single polled market price.
type PriceSample struct {
	Symbol string
	Price  float64
	Ts     time.Time
}

// ValidationError reports an intent that can never be sent to the exchange.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid intent: %s: %s", e.Field, e.Reason)
}

// Validate checks the intent against the rules for its order kind. It is
// called before any network activity.
func (i Intent) Validate() error {
	if i.Symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if i.Side != Buy && i.Side != Sell {
		return &ValidationError{Field: "side", Reason: fmt.Sprintf("unknown side %q", i.Side)}
	}
	if i.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"stop_price", i.StopPrice},
		{"limit_price", i.LimitPrice},
		{"take_profit_price", i.TakeProfitPrice},
		{"stop_loss_price", i.StopLossPrice},
	} {
		if p.value < 0 {
			return &ValidationError{Field: p.name, Reason: "must be positive"}
		}
	}
	switch i.Kind {
	case Market:
	case StopLimit:
		if i.StopPrice == 0 {
			return &ValidationError{Field: "stop_price", Reason: "required for STOP_LIMIT"}
		}
		if i.LimitPrice == 0 {
			return &ValidationError{Field: "limit_price", Reason: "required for STOP_LIMIT"}
		}
	case OCO:
		if i.TakeProfitPrice == 0 {
			return &ValidationError{Field: "take_profit_price", Reason: "required for OCO"}
		}
		if i.StopLossPrice == 0 {
			return &ValidationError{Field: "stop_loss_price", Reason: "required for OCO"}
		}
	default:
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown order kind %q", i.Kind)}
	}
	return nil
}
