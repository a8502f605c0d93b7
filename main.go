package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/carwatcher/config"
	"sjsage522/carwatcher/helpers"
	"sjsage522/carwatcher/internal"
	"sjsage522/carwatcher/internal/crawler"
	"sjsage522/carwatcher/logger"
	"sjsage522/carwatcher/services/cache"
	"sjsage522/carwatcher/services/notifier"
	"sjsage522/carwatcher/services/publisher"
	"sjsage522/carwatcher/services/store"
	"sjsage522/carwatcher/services/worker"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options holds the command line flags
type options struct {
	interval int
	mode     string
	noEmail  bool
	yearMin  int
	yearMax  int
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "carwatcher",
		Short:        "Watch a classifieds site for new car listings",
		Long:         `Periodically polls the car classifieds search page, filters listings by year, fuel, transmission and body type, and reports the new ones.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.interval, "interval", 30, "check interval in minutes")
	flags.StringVar(&opts.mode, "mode", config.NotifyEmail, "notification mode: email, file or stream")
	flags.BoolVar(&opts.noEmail, "no-email", false, "save HTML reports instead of sending email (same as --mode=file)")
	flags.IntVar(&opts.yearMin, "year-min", 2003, "minimum model year")
	flags.IntVar(&opts.yearMax, "year-max", 2008, "maximum model year")

	return cmd
}

// applyFlags overrides environment configuration with flags set on the command line
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("interval") {
		cfg.CheckInterval = time.Duration(opts.interval) * time.Minute
	}
	if flags.Changed("mode") {
		cfg.NotifyMode = opts.mode
	}
	if opts.noEmail {
		cfg.NotifyMode = config.NotifyFile
	}

	yearMin, yearMax := cfg.Criteria.YearMin, cfg.Criteria.YearMax
	if flags.Changed("year-min") {
		yearMin = opts.yearMin
	}
	if flags.Changed("year-max") {
		yearMax = opts.yearMax
	}
	cfg.Criteria = cfg.Criteria.WithYears(yearMin, yearMax)
}

func run(cmd *cobra.Command, opts *options) error {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return err
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("check_interval", cfg.CheckInterval).
		Str("notify_mode", cfg.NotifyMode).
		Str("criteria", cfg.Criteria.Describe()).
		Msg("Starting application")

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize services")
		return err
	}
	defer services.Cleanup()

	probeSite(ctx, services.Fetcher, cfg.SiteOrigin)

	c, err := crawler.CreateCrawler(cfg, internal.Dependencies{
		Cache:   services.Cache,
		Store:   services.Store,
		Fetcher: services.Fetcher,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create crawler")
		return err
	}

	n, err := notifier.New(cfg, services.Publisher)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create notifier")
		return err
	}

	log.Info().Str("url", c.URL).Msg("Search URL")

	w := worker.NewWorker(c, n, services.Store, cfg.CheckInterval, cfg.CooldownInterval)
	if err := w.Start(ctx); err != nil {
		log.Error().Err(err).Str("state", string(w.State())).Msg("Worker exited with error")
		return err
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	return nil
}

// probeSite makes one request to the site so connectivity problems show up at startup
func probeSite(ctx context.Context, fetcher *helpers.Fetcher, origin string) {
	status, err := fetcher.Probe(ctx, origin)
	if err != nil {
		logger.Warn("Connectivity check to %s failed: %v", origin, err)
		return
	}
	logger.LogInfo("startup", "Connectivity check to %s returned status %d", origin, status)
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Store     store.SeenStore
	Fetcher   *helpers.Fetcher
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			logger.Error("Failed to close seen store: %v", err)
		}
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{
		Fetcher: helpers.NewFetcher(cfg.RequestTimeout),
	}

	// Initialize cache service
	services.Cache = cache.New(cfg.MemcacheAddr)
	if mc, ok := services.Cache.(*cache.MemcacheService); ok {
		if err := mc.Ping(); err != nil {
			logger.Warn("Memcache at %s is not reachable: %v", cfg.MemcacheAddr, err)
		} else {
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		}
	}

	// Initialize seen store
	storeLog := logger.ForStore()
	switch cfg.StoreBackend {
	case config.StoreBolt:
		boltStore, err := store.NewBoltStore(cfg.StorePath, storeLog)
		if err != nil {
			return nil, fmt.Errorf("failed to open seen store: %w", err)
		}
		services.Store = boltStore
	default:
		services.Store = store.NewJSONStore(cfg.StorePath, storeLog)
	}
	logger.Info("Loaded %d seen listings from %s", len(services.Store.Snapshot()), cfg.StorePath)

	// Initialize publisher
	if cfg.NotifyMode == config.NotifyStream {
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(ctx); err != nil {
			redisPublisher.Close()
			services.Cleanup()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		services.Publisher = redisPublisher

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services, nil
}
