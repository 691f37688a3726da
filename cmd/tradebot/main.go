// Binary tradebot places orders on the Binance USDⓈ-M Futures Testnet and
// runs the price-triggered monitor loop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/alert"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/config"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/exchange"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/execution"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/journal"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/metrics"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/monitor"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/risk"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/trade"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/ui"
	"github.com/Gowtham-M-Kumar/Binance-Trading-Bot/internal/util"
)

const (
	exitExchangeError   = 1
	exitValidationError = 2
)

type cliFlags struct {
	configPath string
	symbol     string
	side       string
	quantity   float64
	orderType  string
	stopPrice  float64
	limitPrice float64
	takeProfit float64
	stopLoss   float64
	buyBelow   float64
	sellAbove  float64
	interval   time.Duration
	uiMode     bool
	once       bool
	dryRun     bool
	testnet    bool
	stream     bool
	set        map[string]bool
}

func parseFlags() *cliFlags {
	f := &cliFlags{set: map[string]bool{}}
	flag.StringVar(&f.configPath, "config", "config.yaml", "path to YAML config")
	flag.StringVar(&f.symbol, "symbol", "", "trading symbol, e.g. BTCUSDT")
	flag.StringVar(&f.side, "side", "", "order side: BUY or SELL")
	flag.Float64Var(&f.quantity, "qty", 0, "order quantity")
	flag.StringVar(&f.orderType, "type", "", "one-shot order kind: MARKET, STOP_LIMIT, or OCO")
	flag.Float64Var(&f.stopPrice, "stop", 0, "stop price (STOP_LIMIT)")
	flag.Float64Var(&f.limitPrice, "limit", 0, "limit price (STOP_LIMIT)")
	flag.Float64Var(&f.takeProfit, "tp", 0, "take profit price (OCO)")
	flag.Float64Var(&f.stopLoss, "sl", 0, "stop loss price (OCO)")
	flag.Float64Var(&f.buyBelow, "buy", 0, "monitor: buy when price drops below")
	flag.Float64Var(&f.sellAbove, "sell", 0, "monitor: sell when price rises above")
	flag.DurationVar(&f.interval, "interval", 0, "monitor polling interval")
	flag.BoolVar(&f.uiMode, "ui", false, "interactive prompt mode")
	flag.BoolVar(&f.once, "once", false, "monitor: stop after first trigger")
	flag.BoolVar(&f.dryRun, "dry-run", false, "log orders instead of sending them")
	flag.BoolVar(&f.testnet, "testnet", true, "use the futures testnet")
	flag.BoolVar(&f.stream, "stream", false, "monitor: source prices from the websocket feed")
	flag.Parse()
	flag.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f
}

func loadConfig(f *cliFlags, log zerolog.Logger) *config.Config {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		if f.set["config"] {
			log.Fatal().Err(err).Msg("load config")
		}
		log.Warn().Err(err).Msg("config file not found, using defaults")
		cfg = config.Default()
	}
	cfg.LoadCredentials()

	if f.set["symbol"] {
		cfg.Exchange.Symbol = f.symbol
	}
	if f.set["qty"] {
		cfg.Order.Quantity = f.quantity
	}
	if f.set["buy"] {
		cfg.Monitor.BuyBelow = f.buyBelow
	}
	if f.set["sell"] {
		cfg.Monitor.SellAbove = f.sellAbove
	}
	if f.set["interval"] {
		cfg.Monitor.PollIntervalMs = int(f.interval / time.Millisecond)
	}
	if f.set["once"] {
		cfg.Monitor.Once = f.once
	}
	if f.set["stream"] {
		cfg.Monitor.UseStream = f.stream
	}
	if f.set["testnet"] {
		cfg.Exchange.Testnet = f.testnet
	}
	return cfg
}

func main() {
	os.Exit(realMain())
}

// realMain keeps deferred cleanup ahead of the final os.Exit.
func realMain() int {
	_ = godotenv.Load()
	f := parseFlags()

	bootLog := util.NewLogger("info")
	cfg := loadConfig(f, bootLog)

	log := bootLog
	if cfg.App.LogFile != "" {
		fileLog, closer, err := util.NewFileLogger(cfg.App.LogLevel, cfg.App.LogFile)
		if err != nil {
			bootLog.Error().Err(err).Msg("open log file")
			return exitExchangeError
		}
		defer closer.Close()
		log = fileLog
	} else {
		log = util.NewLogger(cfg.App.LogLevel)
	}

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return run(ctx, f, cfg, log)
}

func run(ctx context.Context, f *cliFlags, cfg *config.Config, log zerolog.Logger) int {
	binance := exchange.NewBinance(cfg.Exchange.APIKey, cfg.Exchange.APISecret, cfg.Exchange.Testnet, log)

	var placer execution.Placer = binance
	if f.dryRun {
		log.Info().Msg("dry-run: orders will not reach the exchange")
		placer = execution.NewPaperPlacer(log)
	} else if cfg.Exchange.APIKey == "" || cfg.Exchange.APISecret == "" {
		log.Error().Msg("BINANCE_API_KEY / BINANCE_API_SECRET not set")
		return exitValidationError
	}

	opts := []execution.Option{
		execution.WithLimits(risk.Limits{
			MaxQuantityPerOrder: cfg.Risk.MaxQuantityPerOrder,
			MaxNotionalPerTrade: cfg.Risk.MaxNotionalPerTrade,
		}),
	}
	if cfg.Journal.Path != "" {
		recorder, err := journal.NewJSONLRecorder(cfg.Journal.Path)
		if err != nil {
			log.Error().Err(err).Msg("open order journal")
			return exitExchangeError
		}
		defer recorder.Close()
		opts = append(opts, execution.WithRecorder(recorder))
	}
	var notifier *alert.Telegram
	if cfg.Telegram.Enabled && cfg.Telegram.Token != "" {
		notifier = alert.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
		opts = append(opts, execution.WithNotifier(notifier))
	}
	dispatcher := execution.NewDispatcher(placer, log, opts...)

	if !f.dryRun {
		if balances, err := binance.Balances(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to fetch account balance")
		} else {
			log.Info().Interface("balances", balances).Msg("account balance")
		}
	}

	switch {
	case f.orderType != "":
		return runOneShot(ctx, f, cfg, dispatcher, log)
	case f.uiMode:
		session := ui.NewSession(os.Stdin, os.Stdout, cfg.Exchange.Symbol, cfg.Order.Quantity, binance, dispatcher, log)
		if err := session.Run(ctx); err != nil {
			log.Error().Err(err).Msg("interactive session failed")
			return exitExchangeError
		}
		return 0
	default:
		return runMonitor(ctx, cfg, binance, dispatcher, notifier, log)
	}
}

func runOneShot(ctx context.Context, f *cliFlags, cfg *config.Config, dispatcher *execution.Dispatcher, log zerolog.Logger) int {
	kind, err := trade.ParseKind(f.orderType)
	if err != nil {
		log.Error().Err(err).Msg("bad -type")
		return exitValidationError
	}
	side, err := trade.ParseSide(f.side)
	if err != nil {
		log.Error().Err(err).Msg("bad -side")
		return exitValidationError
	}
	intent := trade.Intent{
		Symbol:          cfg.Exchange.Symbol,
		Side:            side,
		Quantity:        cfg.Order.Quantity,
		Kind:            kind,
		StopPrice:       f.stopPrice,
		LimitPrice:      f.limitPrice,
		TakeProfitPrice: f.takeProfit,
		StopLossPrice:   f.stopLoss,
	}
	if _, err := dispatcher.Dispatch(ctx, intent); err != nil {
		var verr *trade.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(os.Stderr, verr)
			return exitValidationError
		}
		var rerr *execution.RiskError
		if errors.As(err, &rerr) {
			fmt.Fprintln(os.Stderr, rerr)
			return exitValidationError
		}
		return exitExchangeError
	}
	return 0
}

func runMonitor(ctx context.Context, cfg *config.Config, binance *exchange.Binance,
	dispatcher *execution.Dispatcher, notifier *alert.Telegram, log zerolog.Logger) int {
	var source monitor.PriceSource = binance
	if cfg.Monitor.UseStream {
		feed := exchange.NewFeed(cfg.Exchange.Symbol, cfg.Exchange.Testnet, log)
		go func() {
			if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("price stream stopped")
			}
		}()
		source = feed
	}

	mcfg := monitor.Config{
		Symbol:    cfg.Exchange.Symbol,
		Quantity:  cfg.Order.Quantity,
		BuyBelow:  cfg.Monitor.BuyBelow,
		SellAbove: cfg.Monitor.SellAbove,
		Interval:  time.Duration(cfg.Monitor.PollIntervalMs) * time.Millisecond,
		Once:      cfg.Monitor.Once,
	}
	var n monitor.Notifier
	if notifier != nil {
		n = notifier
	}
	m := monitor.New(mcfg, source, dispatcher, n, log)
	if err := m.Run(ctx); err != nil {
		log.Error().Err(err).Msg("monitor stopped")
		return exitExchangeError
	}
	return 0
}
