// Package config loads process configuration from the environment (and,
// optionally, a newsloom.yaml file) into a single typed struct, following
// the viper-based layer used throughout the reference stack instead of
// scattered os.Getenv calls.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration, loaded once at startup.
type Config struct {
	// Store
	DatabaseHost     string
	DatabasePort     int
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string

	// Full-text index (realized as a tsvector column in the same store;
	// these two are kept distinct per §6 in case the index is later split
	// out to its own document store).
	IndexURL  string
	IndexName string

	// LLM providers
	LocalProviderBaseURL   string
	LocalGenerationModel   string
	LocalEmbeddingModel    string
	RemoteAAPIKey          string
	RemoteACompactModel    string
	RemoteBAPIKey          string
	RemoteBModel           string

	// Scheduler
	IngestInterval  time.Duration
	EnrichInterval  time.Duration
	CleanupInterval time.Duration

	// Development
	MaxArticlesPerRun int // -1 = no cap

	// Clustering knobs (Open Questions resolved as config per §9)
	FallbackSimilarityStrategy string // "title-jaccard" | "weighted"
	StrictEmbeddingThreshold   bool

	LogDevelopment bool
	LogLevel       string
}

// Load reads configuration from the environment, optionally merged with a
// newsloom.yaml file in the working directory, applying defaults for
// anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("newsloom")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "newsloom")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("index.url", "")
	v.SetDefault("index.name", "articles")

	v.SetDefault("local_provider.base_url", "http://localhost:11434")
	v.SetDefault("local_provider.generation_model", "llama3")
	v.SetDefault("local_provider.embedding_model", "nomic-embed-text")
	v.SetDefault("remote_a.api_key", "")
	v.SetDefault("remote_a.compact_model", "gpt-4o-mini")
	v.SetDefault("remote_b.api_key", "")
	v.SetDefault("remote_b.model", "gemini-1.5-flash")

	v.SetDefault("scheduler.ingest_interval_minutes", 30)
	v.SetDefault("scheduler.enrich_interval_minutes", 30)
	v.SetDefault("scheduler.cleanup_interval_hours", 6)

	v.SetDefault("dev.max_articles_per_run", -1)

	v.SetDefault("clustering.fallback_similarity_strategy", "weighted")
	v.SetDefault("clustering.strict_embedding_threshold", false)

	v.SetDefault("log.development", true)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading newsloom.yaml: %w", err)
		}
	}

	cfg := &Config{
		DatabaseHost:               v.GetString("database.host"),
		DatabasePort:               v.GetInt("database.port"),
		DatabaseUser:               v.GetString("database.user"),
		DatabasePassword:           v.GetString("database.password"),
		DatabaseName:               v.GetString("database.name"),
		DatabaseSSLMode:            v.GetString("database.sslmode"),
		IndexURL:                   v.GetString("index.url"),
		IndexName:                  v.GetString("index.name"),
		LocalProviderBaseURL:       v.GetString("local_provider.base_url"),
		LocalGenerationModel:       v.GetString("local_provider.generation_model"),
		LocalEmbeddingModel:        v.GetString("local_provider.embedding_model"),
		RemoteAAPIKey:              v.GetString("remote_a.api_key"),
		RemoteACompactModel:        v.GetString("remote_a.compact_model"),
		RemoteBAPIKey:              v.GetString("remote_b.api_key"),
		RemoteBModel:               v.GetString("remote_b.model"),
		IngestInterval:             time.Duration(v.GetInt("scheduler.ingest_interval_minutes")) * time.Minute,
		EnrichInterval:             time.Duration(v.GetInt("scheduler.enrich_interval_minutes")) * time.Minute,
		CleanupInterval:            time.Duration(v.GetInt("scheduler.cleanup_interval_hours")) * time.Hour,
		MaxArticlesPerRun:          v.GetInt("dev.max_articles_per_run"),
		FallbackSimilarityStrategy: v.GetString("clustering.fallback_similarity_strategy"),
		StrictEmbeddingThreshold:   v.GetBool("clustering.strict_embedding_threshold"),
		LogDevelopment:             v.GetBool("log.development"),
		LogLevel:                   v.GetString("log.level"),
	}

	return cfg, nil
}

// DSN builds the lib/pq connection string from the configured fields.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost, c.DatabasePort, c.DatabaseUser, c.DatabasePassword, c.DatabaseName, c.DatabaseSSLMode)
}
