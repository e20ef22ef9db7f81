package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MODE", "")
	t.Setenv("MAX_RETRIES", "not-a-number")
	t.Setenv("SCRAPE_ENABLED", "")

	cfg := Load()
	if cfg.Mode != "report" {
		t.Errorf("Mode: got %q, want %q", cfg.Mode, "report")
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries: got %d, want 3", cfg.MaxRetries)
	}
	if cfg.ScrapeEnabled {
		t.Error("ScrapeEnabled should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MODE", "SERVE")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("POSTGRES_HOST", "db")

	cfg := Load()
	if cfg.Mode != "serve" {
		t.Errorf("Mode: got %q, want %q", cfg.Mode, "serve")
	}
	if cfg.RedisDB != 2 {
		t.Errorf("RedisDB: got %d, want 2", cfg.RedisDB)
	}
	if !cfg.PostgresEnabled {
		t.Error("PostgresEnabled: got false, want true")
	}
	want := "host=db port=5432 user=rca password=rca123 dbname=rate_comparison sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
