package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"oresync/internal/config"
	"oresync/internal/fetch"
	"oresync/internal/report"
	"oresync/internal/server"
	"oresync/internal/store"
	"oresync/internal/syncer"
	"oresync/pkg/bus"
	gos3 "oresync/pkg/s3"
	"oresync/pkg/telemetry"
)

const serviceName = "oresyncd"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "oresyncd",
		Short:         "Workbook ingestion and reporting service for mining operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newSyncCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server with the sync pipeline attached",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newSyncCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync [type]",
		Short: "Run one sync cycle and exit; with no argument, sync every configured type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			setup, err := initPipeline(ctx)
			if err != nil {
				return err
			}
			defer setup.close()

			if len(args) == 1 {
				dt, err := report.ParseDocType(args[0])
				if err != nil {
					return err
				}
				res, err := setup.manager.Sync(ctx, dt, force)
				if err != nil {
					return err
				}
				log.Info().Str("doc_type", string(dt)).Int("rows", res.RowsWritten).Msg("sync done")
				return nil
			}

			results := setup.manager.SyncAll(ctx, force)
			log.Info().Int("types", len(results)).Msg("sync cycle done")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Bypass the cache and fail on fetch errors")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			initLogging()
			_ = godotenv.Load()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			st, err := store.New(ctx, cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer st.Close()

			return st.Migrate(ctx)
		},
	}
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	setup, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer setup.close()

	srv := &http.Server{
		Addr: setup.cfg.Addr,
		Handler: server.New(setup.store, setup.manager, server.Config{
			AllowedOrigins: setup.cfg.AllowedOrigins,
			ServiceName:    serviceName,
		}, log.Logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", setup.cfg.Addr).Msg("starting oresyncd")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
	return nil
}

// pipeline bundles every long-lived dependency a command needs.
type pipeline struct {
	cfg     config.Config
	store   *store.Store
	manager *syncer.Manager

	cleanups []func()
}

func (p *pipeline) close() {
	for i := len(p.cleanups) - 1; i >= 0; i-- {
		p.cleanups[i]()
	}
}

func initPipeline(ctx context.Context) (*pipeline, error) {
	initLogging()
	_ = godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	p := &pipeline{cfg: cfg}

	otelShutdown, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	p.cleanups = append(p.cleanups, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	})

	st, err := store.New(ctx, cfg.DBDSN)
	if err != nil {
		p.close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	p.store = st
	p.cleanups = append(p.cleanups, st.Close)

	if err := st.Migrate(ctx); err != nil {
		p.close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	cache := fetch.NewCache(fetch.NewDownloader(cfg.FetchTimeout))

	opts := []syncer.Option{}
	if cfg.NATSURL != "" {
		b, err := bus.New(cfg.NATSURL)
		if err != nil {
			p.close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		p.cleanups = append(p.cleanups, b.Close)
		opts = append(opts, syncer.WithBus(b))
	}
	if cfg.SnapshotBucket != "" {
		s3c, err := gos3.NewClientFromEnv()
		if err != nil {
			p.close()
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		opts = append(opts, syncer.WithArchive(s3c, cfg.SnapshotBucket))
	}

	p.manager = syncer.New(sources, cache, st, log.Logger, opts...)
	return p, nil
}

func initLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
