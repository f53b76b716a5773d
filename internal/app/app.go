package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phishblock/phishguard/internal/cache"
	"github.com/phishblock/phishguard/internal/config"
	"github.com/phishblock/phishguard/internal/engine"
	"github.com/phishblock/phishguard/internal/httpserver"
	"github.com/phishblock/phishguard/internal/httpserver/deps"
	"github.com/phishblock/phishguard/internal/logger"
	"github.com/phishblock/phishguard/internal/metrics"
	"github.com/phishblock/phishguard/internal/model"
	"github.com/phishblock/phishguard/internal/policy"
	"github.com/phishblock/phishguard/internal/predictor"
	"github.com/phishblock/phishguard/internal/redis"
	"github.com/phishblock/phishguard/internal/scheduler"
	"github.com/phishblock/phishguard/internal/store"
	memorystore "github.com/phishblock/phishguard/internal/store/memory"
	redisstore "github.com/phishblock/phishguard/internal/store/redis"
	"github.com/phishblock/phishguard/internal/thresholds"
	"github.com/phishblock/phishguard/internal/version"
	"github.com/phishblock/phishguard/internal/whitelist"
)

type App struct {
	cfg       *config.Config
	logger    logger.Logger
	server    *httpserver.Server
	store     store.Store
	engine    *engine.Engine
	janitor   *scheduler.CacheJanitor
	persister *scheduler.StatePersister
	reloader  *scheduler.PolicyReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Load the model first - nothing else is useful without it
	loggerClient.Infof("Loading model from %s", cfg.ModelFile)
	ensemble, err := model.Load(cfg.ModelFile, cfg.ModelMetadataFile)
	if err != nil {
		loggerClient.Errorf("Failed to load model: %v", err)
		os.Exit(1)
	}
	meta := ensemble.Metadata()
	loggerClient.Info("model loaded",
		logger.String("model_version", meta.Version),
		logger.Int("trees", ensemble.NumTrees()),
		logger.Int("features", ensemble.NumFeatures()))

	st := newStore(cfg, loggerClient)

	th := thresholds.NewManager()
	if cfg.ThresholdProfile != "" {
		if err := th.SetProfile(cfg.ThresholdProfile); err != nil {
			loggerClient.Warn("invalid threshold profile, keeping balanced",
				logger.String("profile", cfg.ThresholdProfile), logger.Error(err))
		}
	}

	m := metrics.New()

	eng := engine.New(engine.Options{
		Logger:     loggerClient,
		Predictor:  predictor.New(ensemble),
		Cache:      cache.New(cfg.CacheSize, cfg.CacheTTL),
		Whitelist:  whitelist.New(),
		Thresholds: th,
		Popular:    policy.Default(),
		Metrics:    m,
	})

	restoreState(eng, st, meta, cfg.ThresholdProfile != "", loggerClient)

	janitor := scheduler.NewCacheJanitor(eng.Cache(), loggerClient, cfg.CleanupInterval)
	persister := scheduler.NewStatePersister(eng, st, loggerClient, cfg.PersistInterval)

	// Popular-domain policy file is optional; without it the built-in
	// list stays active for the lifetime of the process.
	var reloader *scheduler.PolicyReloader
	var policyReload chan struct{}
	if cfg.PolicyFile != "" {
		policyReload = make(chan struct{}, 1)
		reloader = scheduler.NewPolicyReloader(
			cfg.PolicyFile,
			eng.PopularDomains(),
			loggerClient,
			cfg.PolicyInterval,
			policyReload,
		)
	} else {
		loggerClient.Info("no policy file configured, using built-in popular-domain list")
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		Engine:       eng,
		Store:        st,
		Metrics:      m.Handler(),
		PolicyReload: policyReload,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:       cfg,
		logger:    loggerClient,
		server:    server,
		store:     st,
		engine:    eng,
		janitor:   janitor,
		persister: persister,
		reloader:  reloader,
	}
}

// newStore selects Redis when an address is configured and falls back to
// the in-memory store otherwise. A configured but unreachable Redis is
// fatal: degrading silently would lose the user's whitelist on restart.
func newStore(cfg *config.Config, loggerClient logger.Logger) store.Store {
	if cfg.RedisAddr == "" {
		loggerClient.Info("no redis configured, state will not survive restarts")
		return memorystore.New()
	}

	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	client, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")
	return redisstore.NewStore(client)
}

// restoreState seeds the engine from persisted user state. Missing state
// is normal on first run; corrupt state is logged and skipped.
//
// Threshold precedence: persisted config wins, then an explicit profile from
// the environment, then the model's recommended threshold, then balanced.
func restoreState(eng *engine.Engine, st store.Store, meta model.Metadata, profileExplicit bool, loggerClient logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if domains, found, err := st.LoadWhitelist(ctx); err != nil {
		loggerClient.Warn("failed to load persisted whitelist", logger.Error(err))
	} else if found {
		eng.Whitelist().Replace(domains)
		loggerClient.Info("whitelist restored", logger.Int("domains", eng.Whitelist().Len()))
	}

	if tcfg, found, err := st.LoadThresholds(ctx); err != nil {
		loggerClient.Warn("failed to load persisted thresholds", logger.Error(err))
	} else if found {
		if err := eng.Thresholds().Restore(tcfg); err != nil {
			loggerClient.Warn("persisted thresholds invalid, keeping defaults", logger.Error(err))
		} else {
			loggerClient.Info("thresholds restored", logger.String("profile", tcfg.Profile))
		}
	} else if !profileExplicit && meta.RecommendedThreshold > 0 && meta.RecommendedThreshold < 1 &&
		meta.RecommendedThreshold != eng.Thresholds().Current().Block {
		warn := meta.RecommendedThreshold - predictor.SuspiciousMargin
		if warn < 0 {
			warn = 0
		}
		if err := eng.Thresholds().SetCustom(meta.RecommendedThreshold, warn); err != nil {
			loggerClient.Warn("model recommended threshold unusable, keeping balanced", logger.Error(err))
		} else {
			loggerClient.Info("using model recommended block threshold",
				logger.Float64("block", meta.RecommendedThreshold),
				logger.Float64("warn", warn))
		}
	}

	if counters, found, err := st.LoadCounters(ctx); err != nil {
		loggerClient.Warn("failed to load persisted counters", logger.Error(err))
	} else if found {
		eng.RestoreCounters(counters)
		loggerClient.Info("counters restored", logger.Int64("total_checks", counters.TotalChecks))
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting PhishGuard v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("PhishGuard %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start policy reloader (loads popular domains and starts periodic refresh)
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to load popular-domain policy: %w", err)
		}
		a.logger.Info("policy reloader started",
			logger.Duration("interval", a.cfg.PolicyInterval))
	}

	a.janitor.Start(ctx)
	a.logger.Info("cache janitor started",
		logger.Duration("interval", a.cfg.CleanupInterval))

	a.persister.Start(ctx)
	a.logger.Info("state persister started",
		logger.Duration("interval", a.cfg.PersistInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}
	a.janitor.Stop()

	// Persister flushes state one last time on Stop
	a.persister.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close store: %v", err)
	}

	a.logger.Info("✅ PhishGuard stopped cleanly")
	return nil
}
