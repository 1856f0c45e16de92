package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mohammed-shakir/uk-projects-map/internal/cache"
	"github.com/mohammed-shakir/uk-projects-map/internal/cache/memo"
	"github.com/mohammed-shakir/uk-projects-map/internal/cache/redisstore"
	"github.com/mohammed-shakir/uk-projects-map/internal/cluster"
	"github.com/mohammed-shakir/uk-projects-map/internal/core/config"
	"github.com/mohammed-shakir/uk-projects-map/internal/core/health"
	"github.com/mohammed-shakir/uk-projects-map/internal/core/observability"
	"github.com/mohammed-shakir/uk-projects-map/internal/core/router"
	"github.com/mohammed-shakir/uk-projects-map/internal/core/server"
	"github.com/mohammed-shakir/uk-projects-map/internal/dataset"
	"github.com/mohammed-shakir/uk-projects-map/internal/logger"
	"github.com/mohammed-shakir/uk-projects-map/internal/markers"
	"github.com/mohammed-shakir/uk-projects-map/internal/metrics"
	"github.com/mohammed-shakir/uk-projects-map/internal/spatial"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// overriding strategy via flag
	strategyFlag := flag.String("strategy", "", "cluster strategy ("+strings.Join(cluster.Strategies(), "|")+")")
	flag.Parse()

	cfg := config.FromEnv()
	if *strategyFlag != "" {
		cfg.ClusterStrategy = strings.ToLower(strings.TrimSpace(*strategyFlag))
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.Log.Level,
		Console:   cfg.Log.Console,
		SampleN:   cfg.Log.SampleN,
		Component: "dashboard",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)

	store, err := dataset.Open(cfg.DatasetPath)
	if err != nil {
		appLog.Error("failed to load dataset", "path", cfg.DatasetPath, "err", err)
		return 1
	}
	observability.SetProjectsLoaded(store.Len())

	idx, err := spatial.Build(store.All(), cfg.IndexRes, nil)
	if err != nil {
		appLog.Error("failed to build spatial index", "res", cfg.IndexRes, "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]health.Check{}
	var shared cache.Interface
	if cfg.Cache.RedisAddr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, cfg.Cache.DialTimeout+time.Second)
		rc, err := redisstore.New(dialCtx, cfg.Cache.RedisAddr, redisOptions(cfg.Cache)...)
		cancel()
		if err != nil {
			// the shared tier is optional; run on the memo alone
			appLog.Warn("redis unavailable; shared marker cache disabled", "addr", cfg.Cache.RedisAddr, "err", err)
		} else {
			defer func() { _ = rc.Close() }()
			shared = rc
			checks["redis"] = rc.Ping
		}
	}

	agg := cluster.New(cfg.ClusterStrategy, appLog)
	svc := markers.New(store, idx, agg, markers.Options{
		Memo:      memo.New(cfg.Cache.MemoSize),
		Shared:    shared,
		TTL:       cfg.Cache.TTL,
		OpTimeout: cfg.Cache.OpTimeout,
		Logger:    appLog,
	})

	appLog.Info("starting dashboard",
		"addr", cfg.Addr,
		"version", Version,
		"projects", store.Len(),
		"dataset", store.Fingerprint(),
		"strategy", agg.Name(),
		"index_res", cfg.IndexRes,
		"map_available", cfg.MapboxToken != "",
		"shared_cache", shared != nil)

	// the API and the metrics listener stop together: on a signal, or as
	// soon as either of them fails
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Metrics.Enabled {
		p := newMetrics(cfg.Metrics)
		g.Go(func() error { return p.Serve(gctx, appLog) })
	}
	h := server.NewHandler(appLog, router.New(cfg, store, svc, appLog), checks)
	g.Go(func() error { return server.Run(gctx, cfg, appLog, h) })

	if err := g.Wait(); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

// read and write timeouts follow the cache op budget
func redisOptions(c config.CacheCfg) []redisstore.Option {
	opts := []redisstore.Option{
		redisstore.WithDialTimeout(c.DialTimeout),
		redisstore.WithReadTimeout(c.OpTimeout),
		redisstore.WithWriteTimeout(c.OpTimeout),
	}
	if c.RedisPoolSize > 0 {
		opts = append(opts, redisstore.WithPoolSize(c.RedisPoolSize))
	}
	return opts
}

func newMetrics(mc config.MetricsCfg) *metrics.Provider {
	p := metrics.Init(metrics.Config{
		Addr: mc.Addr,
		Path: mc.Path,
		Build: metrics.BuildInfo{
			Version:   Version,
			Revision:  os.Getenv("BUILD_REVISION"),
			Branch:    os.Getenv("BUILD_BRANCH"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})
	observability.Init(p.Registerer())
	return p
}
