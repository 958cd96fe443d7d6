package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	yamlContent := []byte(`
storage:
  data_dir: "/tmp/etfledger/data"
  sqlite_path: "/tmp/etfledger/trading.db"
server:
  host: "0.0.0.0"
  port: 3000
markets:
  default_provider: "yahoo"
  etf_refresh_spec: "*/10 9-15 * * 1-5"
  watch_list:
    - symbol: "NIFTYBEES.NS"
      google_symbol: "NIFTYBEES:NSE"
      name: "Nippon India ETF Nifty 50 BeES"
logging:
  level: "debug"
  format: "json"
`)

	path := filepath.Join(t.TempDir(), "etfledger.yaml")
	if err := os.WriteFile(path, yamlContent, 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	// Clear environment overrides that might interfere.
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("ETF_DATA_PROVIDER")
	os.Unsetenv("LEDGER_PORT")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.SQLitePath != "/tmp/etfledger/trading.db" {
		t.Errorf("SQLitePath = %q", cfg.Storage.SQLitePath)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Markets.DefaultProvider != "yahoo" {
		t.Errorf("DefaultProvider = %q, want yahoo", cfg.Markets.DefaultProvider)
	}
	if len(cfg.Markets.WatchList) != 1 || cfg.Markets.WatchList[0].Symbol != "NIFTYBEES.NS" {
		t.Errorf("WatchList = %+v", cfg.Markets.WatchList)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}

	// Defaults fill in what the file omitted.
	if cfg.Markets.FIIDIISpec == "" {
		t.Error("FIIDIISpec default not applied")
	}
}

func TestLoadDefaultsAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etfledger.yaml")
	if err := os.WriteFile(path, []byte("server:\n  host: \"127.0.0.1\"\n"), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	t.Setenv("SQLITE_PATH", "/override/trading.db")
	t.Setenv("LEDGER_PORT", "8088")
	t.Setenv("ETF_DATA_PROVIDER", "yahoo")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Storage.SQLitePath != "/override/trading.db" {
		t.Errorf("SQLITE_PATH override not applied: %q", cfg.Storage.SQLitePath)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("LEDGER_PORT override not applied: %d", cfg.Server.Port)
	}
	if cfg.Markets.DefaultProvider != "yahoo" {
		t.Errorf("ETF_DATA_PROVIDER override not applied: %q", cfg.Markets.DefaultProvider)
	}
	if len(cfg.Markets.WatchList) != len(DefaultWatchList()) {
		t.Errorf("default watch list not applied, got %d entries", len(cfg.Markets.WatchList))
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level not applied: %q", cfg.Logging.Level)
	}
}
