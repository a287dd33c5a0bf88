package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaultsWithNoEnvOrFile(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DatabaseHost != "localhost" {
		t.Errorf("DatabaseHost = %q, want %q", cfg.DatabaseHost, "localhost")
	}
	if cfg.DatabasePort != 5432 {
		t.Errorf("DatabasePort = %d, want 5432", cfg.DatabasePort)
	}
	if cfg.FallbackSimilarityStrategy != "weighted" {
		t.Errorf("FallbackSimilarityStrategy = %q, want %q", cfg.FallbackSimilarityStrategy, "weighted")
	}
	if cfg.IngestInterval != 30*time.Minute {
		t.Errorf("IngestInterval = %v, want 30m", cfg.IngestInterval)
	}
	if cfg.CleanupInterval != 6*time.Hour {
		t.Errorf("CleanupInterval = %v, want 6h", cfg.CleanupInterval)
	}
	if cfg.MaxArticlesPerRun != -1 {
		t.Errorf("MaxArticlesPerRun = %d, want -1", cfg.MaxArticlesPerRun)
	}
	if !cfg.LogDevelopment {
		t.Error("LogDevelopment = false, want true by default")
	}
}

func TestDSNFormatsConnectionString(t *testing.T) {
	cfg := &Config{
		DatabaseHost:     "db.internal",
		DatabasePort:     5433,
		DatabaseUser:     "svc",
		DatabasePassword: "secret",
		DatabaseName:     "newsloom_test",
		DatabaseSSLMode:  "require",
	}
	want := "host=db.internal port=5433 user=svc password=secret dbname=newsloom_test sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
