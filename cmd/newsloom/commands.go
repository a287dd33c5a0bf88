package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/geraldfingburke/newsloom/internal/api"
	"github.com/geraldfingburke/newsloom/internal/scheduler"
)

// newSeedSourcesCmd bulk-upserts the known-bias source list an operator
// maintains in a JSON file shaped as []models.Source.
func newSeedSourcesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-sources",
		Short: "Upsert the configured set of news sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeedSources(cmd.Context(), file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "sources.json", "path to a JSON array of sources")
	return cmd
}

func runSeedSources(ctx context.Context, file string) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	sources, err := loadSourcesFile(file)
	if err != nil {
		return err
	}
	for _, src := range sources {
		if src.ID == "" {
			src.ID = uuid.NewString()
		}
		if err := a.store.UpsertSource(ctx, &src); err != nil {
			return fmt.Errorf("upserting source %s: %w", src.Name, err)
		}
	}
	fmt.Printf("seeded %d sources\n", len(sources))
	return nil
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run one Feed Reader pass over every known-bias source",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			return a.feed.Run(cmd.Context(), a.cfg.MaxArticlesPerRun)
		},
	}
}

func newEnrichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Run one Clustering Engine batch pass and the Bias Analyzer sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			a.analyzer.SetBatchMode(true)
			if err := a.clusterer.RunBatch(cmd.Context()); err != nil {
				return err
			}
			a.refreshCoverage(cmd.Context())
			return nil
		},
	}
}

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Run the Clustering Engine cleanup pass (I1/I4 repair, oversized-cluster truncation)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.clusterer.Cleanup(cmd.Context()); err != nil {
				return err
			}
			a.refreshCoverage(cmd.Context())
			return nil
		},
	}
}

func newFullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "full",
		Short: "Run ingest, enrich, and cleanup once, in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			if err := a.feed.Run(ctx, a.cfg.MaxArticlesPerRun); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			a.analyzer.SetBatchMode(true)
			if err := a.clusterer.RunBatch(ctx); err != nil {
				return fmt.Errorf("enrich: %w", err)
			}
			if err := a.clusterer.Cleanup(ctx); err != nil {
				return fmt.Errorf("cleanup: %w", err)
			}
			a.refreshCoverage(ctx)
			return nil
		},
	}
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the Scheduler's three independent tickers until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			sched := scheduler.New(scheduler.Config{
				IngestInterval:    a.cfg.IngestInterval,
				EnrichInterval:    a.cfg.EnrichInterval,
				CleanupInterval:   a.cfg.CleanupInterval,
				MaxArticlesPerRun: a.cfg.MaxArticlesPerRun,
			}, a.store, a.feed, a.clusterer, a.analyzer, a.coverage)

			sched.Start(ctx)
			<-ctx.Done()
			sched.Stop()
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Read API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			srv := &http.Server{
				Addr:         addr,
				Handler:      api.New(a.store),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 30 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("newsloom: server shutdown")
				}
			}()

			log.Info().Str("addr", addr).Msg("newsloom: read API listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address for the Read API")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print recent job success/failure counts and source last-fetch times",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()
			ctx := cmd.Context()

			stats, err := a.store.RecentJobStats(ctx)
			if err != nil {
				return err
			}
			fmt.Println("AI job stats:")
			for _, s := range stats {
				fmt.Printf("  %-22s succeeded=%d failed=%d\n", s.Kind, s.Succeeded, s.Failed)
			}

			sources, err := a.store.ListAllSources(ctx)
			if err != nil {
				return err
			}
			fmt.Println("Sources:")
			for _, s := range sources {
				fmt.Printf("  %-30s bias=%-8s last_fetch=%s\n", s.Name, s.Bias, s.LastFetchAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigOnly()
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", *cfg)
			return nil
		},
	}
}
