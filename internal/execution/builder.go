// Package execution turns trading intents into exchange calls and handles
// their dispatch.
package execution

import (
	"github.com/google/uuid"

	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/trade"
)

// CallType names the exchange-side order type an OrderCall maps to.
type CallType string

const (
	// CallMarket executes at the current price.
	CallMarket CallType = "MARKET"
	// CallStopLimit rests as a limit order activated at the stop price.
	CallStopLimit CallType = "STOP"
	// CallTakeProfit triggers a market close at the take-profit price.
	CallTakeProfit CallType = "TAKE_PROFIT_MARKET"
	// CallStopLoss triggers a market close at the stop-loss price.
	CallStopLoss CallType = "STOP_MARKET"
)

// OrderCall is a single outbound exchange request derived from an intent.
// Price and StopPrice are zero when the call type does not use them.
type OrderCall struct {
	Symbol        string
	Side          trade.Side
	Type          CallType
	Quantity      float64
	Price         float64
	StopPrice     float64
	ReduceOnly    bool
	ClientOrderID string
	Leg           string // "take-profit" or "stop-loss" for OCO legs
}

// Ack is the exchange acknowledgement for one placed call.
type Ack struct {
	OrderID       int64
	ClientOrderID string
	Status        string
}

// Build maps a trading intent onto its outbound exchange calls without
// touching the network: one call for MARKET and STOP_LIMIT, two for OCO.
// The OCO legs are both reduce-only; filling one is expected to cancel the
// other on the exchange side, not locally.
func Build(intent trade.Intent) ([]OrderCall, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	switch intent.Kind {
	case trade.Market:
		return []OrderCall{{
			Symbol:        intent.Symbol,
			Side:          intent.Side,
			Type:          CallMarket,
			Quantity:      intent.Quantity,
			ClientOrderID: newClientOrderID(),
		}}, nil
	case trade.StopLimit:
		return []OrderCall{{
			Symbol:        intent.Symbol,
			Side:          intent.Side,
			Type:          CallStopLimit,
			Quantity:      intent.Quantity,
			Price:         intent.LimitPrice,
			StopPrice:     intent.StopPrice,
			ClientOrderID: newClientOrderID(),
		}}, nil
	case trade.OCO:
		return []OrderCall{
			{
				Symbol:        intent.Symbol,
				Side:          intent.Side,
				Type:          CallTakeProfit,
				Quantity:      intent.Quantity,
				StopPrice:     intent.TakeProfitPrice,
				ReduceOnly:    true,
				ClientOrderID: newClientOrderID(),
				Leg:           "take-profit",
			},
			{
				Symbol:        intent.Symbol,
				Side:          intent.Side,
				Type:          CallStopLoss,
				Quantity:      intent.Quantity,
				StopPrice:     intent.StopLossPrice,
				ReduceOnly:    true,
				ClientOrderID: newClientOrderID(),
				Leg:           "stop-loss",
			},
		}, nil
	}
	// Validate rejects unknown kinds before we get here.
	return nil, &trade.ValidationError{Field: "type", Reason: "unsupported order kind"}
}

func newClientOrderID() string {
	return "tb-" + uuid.NewString()
}
