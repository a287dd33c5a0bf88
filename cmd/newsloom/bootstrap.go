package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/bias"
	"github.com/geraldfingburke/newsloom/internal/clustering"
	"github.com/geraldfingburke/newsloom/internal/config"
	"github.com/geraldfingburke/newsloom/internal/coverage"
	"github.com/geraldfingburke/newsloom/internal/embedding"
	"github.com/geraldfingburke/newsloom/internal/feed"
	"github.com/geraldfingburke/newsloom/internal/llmclient"
	"github.com/geraldfingburke/newsloom/internal/logging"
	"github.com/geraldfingburke/newsloom/internal/store"
)

// app holds every process-wide component a subcommand might need. Not
// every field is populated by every command — llm is nil when no
// provider is reachable, which every caller here already tolerates.
type app struct {
	cfg       *config.Config
	store     *store.Store
	llm       *llmclient.Client
	feed      *feed.Reader
	clusterer *clustering.Engine
	analyzer  *bias.Analyzer
	coverage  *coverage.Tracker
}

// bootstrap loads configuration, opens the store, runs migrations, and
// wires every component. Provider unavailability is logged and tolerated
// (§7): commands that need the LLM Client degrade instead of failing
// outright.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logging.Init(cfg.LogDevelopment, cfg.LogLevel)

	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := st.Migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	var llm *llmclient.Client
	var embedSvc *embedding.Service
	client, err := llmclient.New(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("newsloom: no LLM provider available, enrichment will degrade")
	} else {
		llm = client
		embedSvc = embedding.New(client)
	}

	analyzer := bias.New(st, llm)
	clusterCfg := clustering.DefaultConfig()
	clusterCfg.FallbackStrategy = cfg.FallbackSimilarityStrategy
	if cfg.StrictEmbeddingThreshold {
		clusterCfg.EmbeddingThreshold = embedding.StrictEmbeddingThreshold
	}
	engine := clustering.New(st, llm, embedSvc, analyzer, clusterCfg)

	reader := feed.New(st)
	reader.SetIncrementalClusterer(engine)

	return &app{
		cfg:       cfg,
		store:     st,
		llm:       llm,
		feed:      reader,
		clusterer: engine,
		analyzer:  analyzer,
		coverage:  coverage.New(st),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		log.Warn().Err(err).Msg("newsloom: closing store")
	}
}

// refreshCoverage recomputes coverage for every cluster awaiting analysis,
// the same step the Scheduler runs after enrich/cleanup ticks.
func (a *app) refreshCoverage(ctx context.Context) {
	clusters, err := a.store.PendingBiasClusters(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("newsloom: listing pending clusters for coverage refresh")
		return
	}
	for _, c := range clusters {
		if err := a.coverage.Refresh(ctx, c.ID); err != nil {
			log.Warn().Err(err).Str("cluster", c.ID).Msg("newsloom: coverage refresh failed")
		}
	}
}
