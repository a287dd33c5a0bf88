// Package store is the Store Gateway (C1): the sole owner of persisted
// state, providing typed access to the relational store and the full-text
// index, and the explicit transaction boundaries every mutating operation
// in the pipeline goes through.
//
// No full-text search engine appears anywhere in the reference stack this
// repository is grounded on, so the "document store" contract from the
// external-interfaces section is realized as a tsvector column plus GIN
// index on the articles table itself, reachable only through the narrow
// Index interface below — callers never see that it happens to live in the
// same database as everything else.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/config"
)

// Store wraps a connection pool and exposes every table as a narrow,
// entity-scoped method set (see sources.go, articles.go, etc).
type Store struct {
	db *sql.DB
}

// Open establishes the connection pool and verifies connectivity.
func Open(cfg *config.Config) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: connecting to database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw pool for components that need to build their own
// transactions spanning more than one entity-scoped method (clustering
// assembly, bias write-back, cleanup split/dissolve).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates every table this repository needs if absent. Idempotent;
// safe to run on every boot, matching the teacher's own migration idiom.
func (s *Store) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		home_url TEXT NOT NULL,
		feed_url TEXT NOT NULL UNIQUE,
		bias TEXT NOT NULL DEFAULT 'unknown' CHECK (bias IN ('unknown','left','center','right')),
		last_fetch_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS article_groups (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		master_article_id TEXT NOT NULL,
		most_neutral_article_id TEXT,
		neutral_summary TEXT,
		bias_summary TEXT,
		analysis_complete BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
		cluster_id TEXT REFERENCES article_groups(id) ON DELETE SET NULL,
		title TEXT NOT NULL,
		canonical_link TEXT NOT NULL UNIQUE,
		summary TEXT,
		published_at TIMESTAMPTZ NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		bias TEXT NOT NULL DEFAULT 'unknown' CHECK (bias IN ('unknown','left','center','right')),
		indexed BOOLEAN NOT NULL DEFAULT false,
		bias_analyzed BOOLEAN NOT NULL DEFAULT false,
		political_leaning DOUBLE PRECISION,
		sensationalism DOUBLE PRECISION,
		framing_note TEXT,
		search_vector tsvector,
		created_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS story_coverage (
		cluster_id TEXT PRIMARY KEY REFERENCES article_groups(id) ON DELETE CASCADE,
		left_count INTEGER NOT NULL DEFAULT 0,
		center_count INTEGER NOT NULL DEFAULT 0,
		right_count INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL DEFAULT 0,
		coverage_score INTEGER NOT NULL DEFAULT 0 CHECK (coverage_score BETWEEN 0 AND 100),
		first_reported_at TIMESTAMPTZ,
		last_updated_at TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS user_article_ratings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		score INTEGER NOT NULL,
		created_at TIMESTAMPTZ DEFAULT now(),
		updated_at TIMESTAMPTZ DEFAULT now(),
		UNIQUE(user_id, article_id)
	);

	CREATE TABLE IF NOT EXISTS blindspots (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		cluster_id TEXT NOT NULL REFERENCES article_groups(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		severity TEXT NOT NULL,
		description TEXT NOT NULL,
		suggested_sources TEXT[] NOT NULL DEFAULT '{}',
		dismissed BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS ai_analysis_jobs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		cluster_id TEXT,
		succeeded BOOLEAN NOT NULL,
		error TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_articles_source_id ON articles(source_id);
	CREATE INDEX IF NOT EXISTS idx_articles_cluster_id ON articles(cluster_id);
	CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at);
	CREATE INDEX IF NOT EXISTS idx_articles_indexed ON articles(indexed) WHERE NOT indexed;
	CREATE INDEX IF NOT EXISTS idx_articles_search_vector ON articles USING GIN(search_vector);
	CREATE INDEX IF NOT EXISTS idx_blindspots_user_cluster ON blindspots(user_id, cluster_id);
	CREATE INDEX IF NOT EXISTS idx_ai_analysis_jobs_cluster ON ai_analysis_jobs(cluster_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: migration failed: %w", err)
	}
	log.Debug().Msg("store: migration complete")
	return nil
}
