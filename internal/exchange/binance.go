// Package exchange adapts Binance USDⓈ-M futures connectivity: a signed REST
// client for orders and account data, and a websocket price feed.
package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/execution"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/trade"
)

// Binance wraps the go-binance futures client. Authentication, request
// signing, and rate limiting all live in the library.
type Binance struct {
	client *futures.Client
	log    zerolog.Logger
}

// NewBinance builds the adapter. Testnet mode flips the library's global
// endpoint switch, so it must be decided before the first client is built.
func NewBinance(apiKey, apiSecret string, testnet bool, log zerolog.Logger) *Binance {
	futures.UseTestnet = testnet
	return &Binance{
		client: futures.NewClient(apiKey, apiSecret),
		log:    log,
	}
}

// PlaceOrder submits one order call and maps the response to an ack.
func (b *Binance) PlaceOrder(ctx context.Context, call execution.OrderCall) (execution.Ack, error) {
	svc := b.client.NewCreateOrderService().
		Symbol(call.Symbol).
		Side(futures.SideType(call.Side)).
		Type(futures.OrderType(call.Type)).
		Quantity(formatAmount(call.Quantity)).
		NewClientOrderID(call.ClientOrderID)

	if call.Price > 0 {
		svc = svc.Price(formatAmount(call.Price)).TimeInForce(futures.TimeInForceTypeGTC)
	}
	if call.StopPrice > 0 {
		svc = svc.StopPrice(formatAmount(call.StopPrice))
	}
	if call.ReduceOnly {
		svc = svc.ReduceOnly(true)
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return execution.Ack{}, fmt.Errorf("create order: %w", err)
	}
	return execution.Ack{
		OrderID:       resp.OrderID,
		ClientOrderID: resp.ClientOrderID,
		Status:        string(resp.Status),
	}, nil
}

// LatestPrice fetches the current mark for a symbol via the ticker endpoint.
func (b *Binance) LatestPrice(ctx context.Context, symbol string) (trade.PriceSample, error) {
	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return trade.PriceSample{}, fmt.Errorf("ticker price: %w", err)
	}
	if len(prices) == 0 {
		return trade.PriceSample{}, fmt.Errorf("ticker price: no data for %s", symbol)
	}
	px, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return trade.PriceSample{}, fmt.Errorf("ticker price: parse %q: %w", prices[0].Price, err)
	}
	return trade.PriceSample{Symbol: symbol, Price: px, Ts: time.Now()}, nil
}

// Balances returns non-zero available balances keyed by asset.
func (b *Binance) Balances(ctx context.Context) (map[string]float64, error) {
	balances, err := b.client.NewGetBalanceService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("account balance: %w", err)
	}
	out := make(map[string]float64)
	for _, bal := range balances {
		free, err := strconv.ParseFloat(bal.AvailableBalance, 64)
		if err != nil {
			b.log.Warn().Str("asset", bal.Asset).Str("raw", bal.AvailableBalance).Msg("unparseable balance")
			continue
		}
		if free > 0 {
			out[bal.Asset] = free
		}
	}
	return out, nil
}

// formatAmount renders a quantity or price the way the REST API expects:
// decimal text without float artifacts or exponent notation.
func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}
