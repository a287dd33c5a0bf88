// Package scheduler is the Scheduler (C10): runs three independent
// tickers — ingest, enrich, cleanup — each invoking its pipeline stage on
// its own interval with skip-not-queue semantics (§4.9: if a tick fires
// while a run of any stage is still in flight, the new tick is dropped
// rather than queued).
//
// Structure (ticker + mutex-guarded running flag + stop channel, Start/
// Stop/IsRunning lifecycle) is grounded on the teacher's scheduler.go,
// generalized from its single dossier-delivery ticker to three
// independently-configured stage tickers sharing one in-flight guard, so
// that no two stages ever run concurrently with each other.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/bias"
	"github.com/geraldfingburke/newsloom/internal/clustering"
	"github.com/geraldfingburke/newsloom/internal/coverage"
	"github.com/geraldfingburke/newsloom/internal/feed"
	"github.com/geraldfingburke/newsloom/internal/store"
)

// Config holds the three stage intervals; zero disables that stage's
// ticker entirely.
type Config struct {
	IngestInterval    time.Duration
	EnrichInterval    time.Duration
	CleanupInterval   time.Duration
	MaxArticlesPerRun int
}

// Scheduler owns the three independent timers.
type Scheduler struct {
	cfg        Config
	store      *store.Store
	feedReader *feed.Reader
	clusterer  *clustering.Engine
	analyzer   *bias.Analyzer
	coverage   *coverage.Tracker

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup

	// pipelineBusy is shared across all three stages: ingest, enrich, and
	// cleanup never run concurrently with each other (§9's "default to
	// sequential to avoid transient constraint violations" decision). A
	// tick that fires while any other stage is mid-run is skipped, not
	// queued.
	pipelineBusy sync.Mutex
}

// New builds a Scheduler wired to every pipeline stage it drives.
func New(cfg Config, st *store.Store, reader *feed.Reader, engine *clustering.Engine, analyzer *bias.Analyzer, cov *coverage.Tracker) *Scheduler {
	return &Scheduler{cfg: cfg, store: st, feedReader: reader, clusterer: engine, analyzer: analyzer, coverage: cov}
}

// Start launches the three ticker goroutines. Idempotent: a second call
// while already running is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		log.Warn().Msg("scheduler: already running")
		return
	}
	s.running = true
	s.stop = make(chan struct{})

	s.runTicker(ctx, "ingest", s.cfg.IngestInterval, &s.pipelineBusy, s.runIngest)
	s.runTicker(ctx, "enrich", s.cfg.EnrichInterval, &s.pipelineBusy, s.runEnrich)
	s.runTicker(ctx, "cleanup", s.cfg.CleanupInterval, &s.pipelineBusy, s.runCleanup)

	log.Info().Msg("scheduler: started")
}

// Stop signals every ticker goroutine to exit and waits for in-flight
// ticks to finish. Context cancellation (SIGINT/SIGTERM in the CLI's
// command handler) should already have propagated to whatever stage is
// mid-run before this returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stop)
	s.wg.Wait()
	s.running = false
	log.Info().Msg("scheduler: stopped")
}

// IsRunning reports whether the scheduler's tickers are active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runTicker(ctx context.Context, name string, interval time.Duration, busy *sync.Mutex, fn func(context.Context) error) {
	if interval <= 0 {
		log.Warn().Str("stage", name).Msg("scheduler: interval disabled, ticker not started")
		return
	}
	ticker := time.NewTicker(interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.tick(ctx, name, busy, fn)
			case <-s.stop:
				return
			}
		}
	}()
}

// tick enforces skip-not-queue semantics: if busy is already locked by a
// prior run, this tick is dropped entirely rather than waiting.
func (s *Scheduler) tick(ctx context.Context, name string, busy *sync.Mutex, fn func(context.Context) error) {
	if !busy.TryLock() {
		log.Warn().Str("stage", name).Msg("scheduler: previous run still in flight, skipping tick")
		return
	}
	defer busy.Unlock()

	started := time.Now()
	if err := fn(ctx); err != nil {
		log.Error().Err(err).Str("stage", name).Dur("elapsed", time.Since(started)).Msg("scheduler: stage run failed")
		return
	}
	log.Info().Str("stage", name).Dur("elapsed", time.Since(started)).Msg("scheduler: stage run complete")
}

func (s *Scheduler) runIngest(ctx context.Context) error {
	return s.feedReader.Run(ctx, s.cfg.MaxArticlesPerRun)
}

func (s *Scheduler) runEnrich(ctx context.Context) error {
	if s.analyzer != nil {
		s.analyzer.SetBatchMode(true)
		defer s.analyzer.SetBatchMode(false)
	}
	if err := s.clusterer.RunBatch(ctx); err != nil {
		return err
	}
	return s.refreshCoverage(ctx)
}

func (s *Scheduler) runCleanup(ctx context.Context) error {
	if err := s.clusterer.Cleanup(ctx); err != nil {
		return err
	}
	return s.refreshCoverage(ctx)
}

// refreshCoverage recomputes coverage for every cluster with pending
// analysis, keeping coverage records in step with whatever the enrich or
// cleanup tick just changed.
func (s *Scheduler) refreshCoverage(ctx context.Context) error {
	if s.coverage == nil {
		return nil
	}
	clusters, err := s.store.PendingBiasClusters(ctx)
	if err != nil {
		return err
	}
	for _, c := range clusters {
		if err := s.coverage.Refresh(ctx, c.ID); err != nil {
			log.Warn().Err(err).Str("cluster", c.ID).Msg("scheduler: coverage refresh failed")
		}
	}
	return nil
}
