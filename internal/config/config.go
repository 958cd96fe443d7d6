package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the etfledger server.
type Config struct {
	Storage Storage `yaml:"storage"`
	Server  Server  `yaml:"server"`
	Markets Markets `yaml:"markets"`
	Logging Logging `yaml:"logging"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Markets configures the market-data module: which ETFs to watch, which
// quote provider to default to, and the refresh schedules (cron specs,
// evaluated in Asia/Kolkata).
type Markets struct {
	WatchList       []WatchedETF `yaml:"watch_list"`
	DefaultProvider string       `yaml:"default_provider"` // "google" or "yahoo"
	ETFRefreshSpec  string       `yaml:"etf_refresh_spec"`
	FIIDIISpec      string       `yaml:"fii_dii_spec"`
}

// WatchedETF is one ETF on the refresh list. GoogleSymbol is the
// exchange-qualified form used by the Google quote page (e.g.
// "NIFTYBEES:NSE"); Symbol is the Yahoo/NSE form ("NIFTYBEES.NS").
type WatchedETF struct {
	Symbol       string `yaml:"symbol"`
	GoogleSymbol string `yaml:"google_symbol"`
	Name         string `yaml:"name"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies defaults and environment variable
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Default returns the built-in configuration, used when no config file
// exists. Environment overrides still apply.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "db/trading.db"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Markets.DefaultProvider == "" {
		cfg.Markets.DefaultProvider = "google"
	}
	if cfg.Markets.ETFRefreshSpec == "" {
		// Every 5 minutes during NSE market hours, weekdays.
		cfg.Markets.ETFRefreshSpec = "*/5 9-15 * * 1-5"
	}
	if cfg.Markets.FIIDIISpec == "" {
		// End of day, after the exchanges publish the flows.
		cfg.Markets.FIIDIISpec = "0 18 * * 1-5"
	}
	if len(cfg.Markets.WatchList) == 0 {
		cfg.Markets.WatchList = DefaultWatchList()
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LEDGER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LEDGER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ETF_DATA_PROVIDER"); v != "" {
		cfg.Markets.DefaultProvider = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// DefaultWatchList is the built-in ETF refresh list used when the config
// file does not supply one.
func DefaultWatchList() []WatchedETF {
	return []WatchedETF{
		{Symbol: "GOLDBEES.NS", GoogleSymbol: "GOLDBEES:NSE", Name: "Nippon India ETF Gold BeES"},
		{Symbol: "NIFTYBEES.NS", GoogleSymbol: "NIFTYBEES:NSE", Name: "Nippon India ETF Nifty 50 BeES"},
		{Symbol: "BANKBEES.NS", GoogleSymbol: "BANKBEES:NSE", Name: "Nippon India ETF Bank BeES"},
		{Symbol: "SILVERBEES.NS", GoogleSymbol: "SILVERBEES:NSE", Name: "Nippon India Silver ETF"},
		{Symbol: "LIQUIDBEES.NS", GoogleSymbol: "LIQUIDBEES:NSE", Name: "Nippon India ETF Liquid BeES"},
		{Symbol: "ITBEES.NS", GoogleSymbol: "ITBEES:NSE", Name: "Nippon India ETF IT"},
		{Symbol: "PHARMABEES.NS", GoogleSymbol: "PHARMABEES:NSE", Name: "Nippon India ETF Pharma"},
		{Symbol: "CPSEETF.NS", GoogleSymbol: "CPSEETF:NSE", Name: "CPSE ETF"},
		{Symbol: "AXISGOLD.NS", GoogleSymbol: "AXISGOLD:NSE", Name: "Axis Gold ETF"},
		{Symbol: "HDFCGOLD.NS", GoogleSymbol: "HDFCGOLD:NSE", Name: "HDFC Gold Exchange Traded Fund"},
	}
}
