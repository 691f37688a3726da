// Package ui implements the interactive prompt front-end.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/monitor"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/trade"
)

// Session drives a line-oriented prompt loop: show the current price, read a
// command, dispatch the requested order, repeat until quit or EOF.
type Session struct {
	in         *bufio.Reader
	out        io.Writer
	symbol     string
	quantity   float64
	source     monitor.PriceSource
	dispatcher monitor.Dispatcher
	log        zerolog.Logger
}

// NewSession wires the prompt loop. The price source may be nil, in which
// case no price header is printed.
func NewSession(in io.Reader, out io.Writer, symbol string, quantity float64,
	source monitor.PriceSource, dispatcher monitor.Dispatcher, log zerolog.Logger) *Session {
	return &Session{
		in:         bufio.NewReader(in),
		out:        out,
		symbol:     symbol,
		quantity:   quantity,
		source:     source,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Run loops until the user quits, input ends, or the context is canceled.
// A failed dispatch is reported and the prompt continues; only input errors
// end the session abnormally.
func (s *Session) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		s.printPrice(ctx)

		cmd, err := s.prompt("Enter 'b' to buy, 's' to sell, 'oco' for OCO, 'stop' for Stop-Limit, or 'q' to quit: ")
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}

		switch strings.ToLower(cmd) {
		case "b":
			s.dispatch(ctx, trade.Intent{Symbol: s.symbol, Side: trade.Buy, Quantity: s.quantity, Kind: trade.Market})
		case "s":
			s.dispatch(ctx, trade.Intent{Symbol: s.symbol, Side: trade.Sell, Quantity: s.quantity, Kind: trade.Market})
		case "oco":
			tp, err := s.promptFloat("Take Profit Price: ")
			if err != nil {
				fmt.Fprintln(s.out, "invalid price")
				continue
			}
			sl, err := s.promptFloat("Stop Loss Price: ")
			if err != nil {
				fmt.Fprintln(s.out, "invalid price")
				continue
			}
			s.dispatch(ctx, trade.Intent{
				Symbol: s.symbol, Side: trade.Sell, Quantity: s.quantity, Kind: trade.OCO,
				TakeProfitPrice: tp, StopLossPrice: sl,
			})
		case "stop":
			stop, err := s.promptFloat("Stop Price: ")
			if err != nil {
				fmt.Fprintln(s.out, "invalid price")
				continue
			}
			limit, err := s.promptFloat("Limit Price: ")
			if err != nil {
				fmt.Fprintln(s.out, "invalid price")
				continue
			}
			s.dispatch(ctx, trade.Intent{
				Symbol: s.symbol, Side: trade.Sell, Quantity: s.quantity, Kind: trade.StopLimit,
				StopPrice: stop, LimitPrice: limit,
			})
		case "q":
			fmt.Fprintln(s.out, "bye")
			return nil
		case "":
		default:
			fmt.Fprintf(s.out, "unknown command %q\n", cmd)
		}
	}
}

func (s *Session) printPrice(ctx context.Context) {
	if s.source == nil {
		return
	}
	sample, err := s.source.LatestPrice(ctx, s.symbol)
	if err != nil {
		s.log.Warn().Err(err).Msg("price fetch failed")
		return
	}
	fmt.Fprintf(s.out, "%s Price: $%.2f\n", s.symbol, sample.Price)
}

func (s *Session) dispatch(ctx context.Context, intent trade.Intent) {
	if _, err := s.dispatcher.Dispatch(ctx, intent); err != nil {
		fmt.Fprintf(s.out, "order failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s %s order submitted (qty %v)\n", intent.Side, intent.Kind, intent.Quantity)
}

func (s *Session) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Session) promptFloat(label string) (float64, error) {
	raw, err := s.prompt(label)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}
