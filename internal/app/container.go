package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kapu/repfinder-go/internal/config"
	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/directory"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/geo"
	"github.com/kapu/repfinder-go/internal/metrics"
	"github.com/kapu/repfinder-go/internal/server"
	"github.com/kapu/repfinder-go/internal/service/cache"
	"github.com/kapu/repfinder-go/internal/service/database"
	"github.com/kapu/repfinder-go/internal/service/dataset"
	"github.com/kapu/repfinder-go/internal/service/letter"
	"github.com/kapu/repfinder-go/internal/service/origin"
	"github.com/kapu/repfinder-go/internal/service/reps"
	"github.com/kapu/repfinder-go/internal/service/syncjob"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Container bundles the assembled services shared by the server and the
// one-shot sync command.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Store     *dataset.Store
	Reps      *reps.Service
	Letters   *letter.Service
	Job       *syncjob.Job
	Scheduler *syncjob.Scheduler
	History   *database.SyncHistoryRepository

	closers []func()
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// NewServer builds the HTTP server over the container's services.
func (c *Container) NewServer() *server.Server {
	deps := server.Deps{
		Reps:       c.Reps,
		Sync:       c.Job,
		Status:     c.Store,
		Letters:    c.Letters,
		SyncSecret: c.Config.Sync.Secret,
		Metrics:    c.Metrics,
		Gatherer:   c.Registry,
	}
	if c.History != nil {
		deps.History = c.History
	}
	return server.New(c.Config.Server.Addr, c.Config.Server.ReadTimeout, c.Config.Server.WriteTimeout, deps, c.Logger)
}

// Build assembles every service. Redis and Postgres are optional: without
// Redis datasets live in process memory, without Postgres sync runs are not
// recorded.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.New(c.Registry)

	// Cache store
	var kv dataset.KV
	if cfg.Redis.Enabled() {
		cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", err)
		}
		c.closers = append(c.closers, func() { _ = cacheSvc.Close() })
		if err := cacheSvc.WaitUntilReady(ctx, constants.RedisConfig.ReadyTimeout); err != nil {
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		kv = cacheSvc
	} else {
		logger.Warn("REDIS_HOST not set, datasets are kept in memory")
		kv = dataset.NewMemoryKV()
	}
	c.Store = dataset.NewStore(kv, logger)

	// Sync history
	if cfg.Postgres.Enabled() {
		postgresSvc, err := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", err)
		}
		c.closers = append(c.closers, func() { _ = postgresSvc.Close() })
		if err := postgresSvc.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		c.History = database.NewSyncHistoryRepository(postgresSvc, logger)
	}

	client := upstream.NewClient(
		&http.Client{Timeout: constants.Timeouts.SyncXML},
		logger,
		upstream.WithMetrics(c.Metrics),
	)
	api := constants.APIConfig

	// Origin fetchers
	openAustralia := origin.NewOpenAustralia(client, api.OpenAustraliaURL, cfg.Providers.OpenAustraliaAPIKey, logger)
	committeeScraper := origin.NewCommitteeScraper(client, api.EuroparlURL, logger)
	guard := reps.NewCommitteeGuard(c.Store, committeeScraper, logger)

	// Query path
	resolvers := geo.NewStaticResolvers()
	resolvers[domain.CountryUS] = geo.NewGeocodioResolver(client, api.GeocodioURL, cfg.Providers.GeocodioAPIKey)
	resolvers[domain.CountryUK] = geo.NewPostcodesResolver(client, api.PostcodesURL)
	resolvers[domain.CountryDE] = geo.NewBundestagResolver(client, api.OpenPLZURL, api.AbgeordnetenwatchURL, logger)

	adapters := directory.Registry{
		domain.CountryUS: directory.NewCongressAdapter(client, api.USLegislatorsURL, api.USPhotoURL),
		domain.CountryUK: directory.NewCommonsAdapter(client, api.UKMembersURL),
		domain.CountryCA: directory.NewRepresentAdapter(client, api.RepresentURL),
		domain.CountryDE: directory.NewBundestagAdapter(client, api.AbgeordnetenwatchURL, api.WikidataURL, api.WikimediaUploadURL, logger),
		domain.CountryFR: directory.NewFranceAdapter(c.Store),
		domain.CountrySE: directory.NewSwedenAdapter(c.Store),
		domain.CountryAU: directory.NewAustraliaAdapter(c.Store, openAustralia, logger),
		domain.CountryEU: directory.NewEUAdapter(c.Store, guard, api.EuroparlURL),
	}
	c.Reps = reps.NewService(resolvers, adapters, guard, c.Metrics, logger)

	// Sync job
	fetchers := map[domain.Dataset]syncjob.Fetcher{
		domain.DatasetFrance:            origin.NewFranceFetcher(client, api.NosDeputesURL, api.AssembleePhotoURL, logger),
		domain.DatasetSweden:            origin.NewSwedenFetcher(client, api.RiksdagenURL, logger),
		domain.DatasetAustraliaHouse:    syncjob.FetcherFunc(openAustralia.FetchHouse),
		domain.DatasetAustraliaSenators: syncjob.FetcherFunc(openAustralia.FetchSenators),
		domain.DatasetEUMeps:            origin.NewEuroparlFetcher(client, api.EuroparlURL, logger),
	}
	jobOpts := []syncjob.Option{syncjob.WithMetrics(c.Metrics)}
	if c.History != nil {
		jobOpts = append(jobOpts, syncjob.WithHistory(c.History))
	}
	c.Job = syncjob.NewJob(c.Store, fetchers, committeeScraper, logger, jobOpts...)
	c.Scheduler = syncjob.NewScheduler(c.Job, cfg.Sync.Interval, cfg.Sync.OnStartup, logger)

	// Letter drafting
	c.Letters, err = buildLetters(ctx, cfg, c.Metrics, logger)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func buildLetters(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (*letter.Service, error) {
	geminiModel := cfg.Gemini.Model
	if geminiModel == "" {
		geminiModel = constants.AIConfig.DefaultGeminiModel
	}
	openAIModel := cfg.OpenAI.Model
	if openAIModel == "" {
		openAIModel = constants.AIConfig.DefaultOpenAIModel
	}

	var primary, fallback letter.Provider
	if cfg.Gemini.APIKey != "" {
		gemini, err := letter.NewGeminiProvider(ctx, cfg.Gemini.APIKey, geminiModel, logger)
		if err != nil {
			return nil, err
		}
		primary = gemini
	}
	if cfg.OpenAI.EnableFallback {
		if openAI := letter.NewOpenAIProvider(cfg.OpenAI.APIKey, openAIModel, logger); openAI != nil {
			fallback = openAI
		}
	}
	if primary == nil && fallback != nil {
		primary, fallback = fallback, nil
	}
	if primary == nil {
		logger.Warn("No AI provider configured, letter drafting is disabled")
	}

	logger.Info("Letter drafting configured",
		zap.Bool("gemini", cfg.Gemini.APIKey != ""),
		zap.Bool("openai_fallback", fallback != nil),
		zap.String("gemini_model", geminiModel),
		zap.String("openai_model", openAIModel))

	return letter.NewService(primary, fallback, m, logger), nil
}
