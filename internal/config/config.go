// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, metrics address,
// and logging sinks.
type App struct {
	Name        string
	Env         string
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
}

// Exchange describes Binance futures connectivity. API credentials are never
// read from YAML; they come from the environment (see LoadCredentials).
type Exchange struct {
	Symbol    string
	Testnet   bool
	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`
}

// Order holds defaults for one-shot order placement.
type Order struct {
	Quantity float64
}

// Monitor configures the price-triggered loop.
type Monitor struct {
	PollIntervalMs int     `yaml:"poll_interval_ms"`
	BuyBelow       float64 `yaml:"buy_below"`
	SellAbove      float64 `yaml:"sell_above"`
	Once           bool
	UseStream      bool `yaml:"use_stream"`
}

// Risk bounds the size a single dispatched order may take on.
type Risk struct {
	MaxQuantityPerOrder float64 `yaml:"max_quantity_per_order"`
	MaxNotionalPerTrade float64 `yaml:"max_notional_per_trade"`
}

// Telegram configures trade alerts. Token and chat id come from the
// environment so they stay out of committed YAML.
type Telegram struct {
	Enabled bool
	Token   string `yaml:"-"`
	ChatID  string `yaml:"-"`
}

// Journal configures the JSONL order-attempt log.
type Journal struct {
	Path string
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Exchange Exchange `yaml:"exchange"`
	Order    Order    `yaml:"order"`
	Monitor  Monitor  `yaml:"monitor"`
	Risk     Risk     `yaml:"risk"`
	Telegram Telegram `yaml:"telegram"`
	Journal  Journal  `yaml:"journal"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Exchange.Symbol == "" {
		c.Exchange.Symbol = "BTCUSDT"
	}
	if c.Monitor.PollIntervalMs <= 0 {
		c.Monitor.PollIntervalMs = 3000
	}
	if c.Order.Quantity <= 0 {
		c.Order.Quantity = 0.001
	}
}

// LoadCredentials pulls secrets from the environment. Callers load .env
// beforehand (godotenv) so a local file works the same as real env vars.
func (c *Config) LoadCredentials() {
	c.Exchange.APIKey = os.Getenv("BINANCE_API_KEY")
	c.Exchange.APISecret = os.Getenv("BINANCE_API_SECRET")
	c.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	c.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")
}

// Default returns the configuration used when no YAML file is present.
func Default() *Config {
	c := &Config{}
	c.Exchange.Testnet = true
	c.applyDefaults()
	return c
}
