package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("GENERATE_TIMEOUT", "")
	t.Setenv("WORKER_CONCURRENCY", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()
	if cfg.Port == "" {
		t.Fatalf("expected default port")
	}
	if cfg.DBDriver != "mysql" {
		t.Fatalf("expected mysql driver, got %q", cfg.DBDriver)
	}
	if cfg.GenerateTimeout != 0 {
		t.Fatalf("expected no generation timeout by default, got %s", cfg.GenerateTimeout)
	}
	if cfg.WorkerConcurrency != 2 {
		t.Fatalf("expected concurrency 2, got %d", cfg.WorkerConcurrency)
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Fatalf("expected CORS disabled by default, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_DSN", "")
	t.Setenv("GENERATE_TIMEOUT", "45s")
	t.Setenv("WORKER_CONCURRENCY", "500")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()
	if cfg.DBDriver != "sqlite" || cfg.DBDSN != "linkedcraft.db" {
		t.Fatalf("unexpected db config: driver=%q dsn=%q", cfg.DBDriver, cfg.DBDSN)
	}
	if cfg.GenerateTimeout != 45*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.GenerateTimeout)
	}
	if cfg.WorkerConcurrency != 50 {
		t.Fatalf("expected concurrency clamped to 50, got %d", cfg.WorkerConcurrency)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("expected bad REDIS_DB to fall back to 0, got %d", cfg.RedisDB)
	}
}
