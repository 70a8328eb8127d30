// cmd/server — the event automation platform's HTTP entry point: wires
// configuration, the database pool, the tenant/cache/scenario layers, and
// the webhook ingress together, then serves until signalled to stop.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/vensus137/coreness-go/internal/actionhub"
	"github.com/vensus137/coreness-go/internal/cache"
	"github.com/vensus137/coreness-go/internal/config"
	"github.com/vensus137/coreness-go/internal/database"
	"github.com/vensus137/coreness-go/internal/loader"
	"github.com/vensus137/coreness-go/internal/opsfeed"
	"github.com/vensus137/coreness-go/internal/scenario"
	"github.com/vensus137/coreness-go/internal/scheduler"
	"github.com/vensus137/coreness-go/internal/store"
	"github.com/vensus137/coreness-go/internal/taskqueue"
	"github.com/vensus137/coreness-go/internal/tenant"
	"github.com/vensus137/coreness-go/internal/userstate"
	"github.com/vensus137/coreness-go/internal/webhook"
	"github.com/vensus137/coreness-go/pkg/logger"
	"github.com/vensus137/coreness-go/pkg/util"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logger.Init(cfg.LogEnv)

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("database init failed", logger.Any(logger.FieldError, err))
	}
	defer pool.Close()

	tenantStore := store.NewTenantStore(pool)
	botStore := store.NewBotStore(pool)
	userStateStore := store.NewUserStateStore(pool)

	appCache := cache.New(
		cache.WithDefaultTTL(time.Duration(cfg.CacheDefaultTTLSec)*time.Second),
		cache.WithCleanupInterval(time.Duration(cfg.CacheCleanupIntervalSec)*time.Second),
		cache.WithSampleSize(cfg.CacheCleanupSampleSize),
		cache.WithExpiredThreshold(cfg.CacheCleanupExpiredThresh),
	)
	defer appCache.Shutdown()

	directory := tenant.New(appCache, tenantStore.AsRepository(), botStore.AsRepository())

	states := userstate.New(appCache,
		userstate.WithRepository(userStateStore.AsRepository()),
		userstate.WithDefaultTTL(time.Duration(cfg.UserStateDefaultTTLSec)*time.Second),
	)

	tasks := taskqueue.NewManager(
		taskqueue.WithSoftCap(cfg.TaskQueueDepth),
		taskqueue.WithShutdownTimeout(time.Duration(cfg.TaskQueueShutdownTimeout)*time.Second),
	)
	defer tasks.Shutdown(context.Background())

	actions := actionhub.New(tasks)
	// The chat-vendor HTTP client itself stays outside this module's
	// scope (spec's interface-only collaborator boundary); once a real
	// Client is available, wire it in with chatvendor.RegisterActions.

	var feed *opsfeed.Feed
	var engOpts []scenario.Option
	if cfg.OpsFeedEnabled {
		feed = opsfeed.NewFeed()
		engOpts = append(engOpts, scenario.WithOpsFeed(feed))
	}

	fsLoader := loader.NewFSLoader(cfg.ScenarioDir, cfg.TriggerDir)
	scenarios := scenario.NewStore(fsLoader)
	engine := scenario.New(scenarios, actions, tasks, states, engOpts...)

	secrets := webhook.NewSecretRegistry(appCache)
	srv := webhook.NewServer(cfg, engine, directory, secrets)
	if feed != nil {
		srv.MountOpsFeed(feed)
	}

	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched = scheduler.New(engine, scenarios, tenantStore)
		if err := sched.Reload(ctx); err != nil {
			logger.Warn("scheduler: initial reload failed", logger.FieldError, err)
		}
		sched.Start()
		defer sched.Stop(context.Background())
	}

	util.SafeGo(func() {
		if err := srv.ListenAndServe(ctx, cfg.HTTPAddr, time.Duration(cfg.HTTPShutdownTimeout)*time.Second); err != nil {
			logger.Fatal("webhook server failed", logger.Any(logger.FieldError, err))
		}
	})

	logger.Infow("server started", logger.FieldAddr, cfg.HTTPAddr)
	<-ctx.Done()
	logger.Info("shutting down")
}
