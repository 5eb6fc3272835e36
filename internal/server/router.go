package server

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/formgrid-dev/formgrid/internal/api/handler"
	"github.com/formgrid-dev/formgrid/internal/events"
	"github.com/formgrid-dev/formgrid/internal/logger"
	"github.com/formgrid-dev/formgrid/internal/server/middleware"
	"github.com/formgrid-dev/formgrid/internal/upstream"
	"github.com/formgrid-dev/formgrid/pkg/configstore"
	"github.com/formgrid-dev/formgrid/pkg/grid"
	"github.com/formgrid-dev/formgrid/pkg/schema"
	"github.com/formgrid-dev/formgrid/pkg/widget"
)

// Runtime bundles the long-lived engine components so the main package can
// schedule maintenance against them.
type Runtime struct {
	API      huma.API
	Upstream *upstream.Client
	Resolver *schema.Resolver
	Grid     *grid.Engine
	Config   *configstore.Store
	Policies *widget.Store
	Cache    *schema.MemoryCache // nil when Redis backs the cache
}

// New wires the service: upstream client, widget policy store, schema
// resolver, grid engine, option loader, config store, events and the huma
// API on a chi router.
func New(cfg Config) (*Runtime, error) {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	var opts []upstream.Option
	if cfg.UpstreamToken != "" {
		opts = append(opts, upstream.WithToken(cfg.UpstreamToken))
	}
	client := upstream.New(cfg.UpstreamURL, opts...)

	policies := widget.NewStore(cfg.PolicyPath, logger.L)
	if cfg.PolicyPath != "" {
		if err := policies.Load(); err != nil {
			return nil, err
		}
		go policies.Watch(context.Background())
	}

	var redisCli *redis.Client
	if cfg.RedisDSN != "" {
		opt, err := redis.ParseURL(cfg.RedisDSN)
		if err != nil {
			return nil, err
		}
		redisCli = redis.NewClient(opt)
	}

	var cache schema.Cache
	var memCache *schema.MemoryCache
	if redisCli != nil {
		cache = &schema.RedisCache{Client: redisCli}
	} else {
		memCache = schema.NewMemoryCache()
		cache = memCache
	}
	resolver := schema.NewResolver(client, policies, cache, logger.L)

	engine := grid.NewEngine(client, logger.L)
	loader := widget.NewOptionLoader(client, logger.L)

	storeOpts := []configstore.Option{}
	if redisCli != nil {
		user := cfg.ConfigUser
		if user == "" {
			user = "default"
		}
		storeOpts = append(storeOpts, configstore.WithPersister(configstore.NewRedisPersister(redisCli, user)))
	}
	storeOpts = append(storeOpts, configstore.WithOnSync(func(items []configstore.Item) {
		events.Emit(context.Background(), events.Event{
			Name: "config.synced",
			Time: time.Now(),
			Data: map[string]int{"items": len(items)},
			ID:   uuid.NewString(),
		})
	}))
	store := configstore.New(client, logger.L, storeOpts...)
	store.Restore(context.Background())
	if serverCfg, err := client.FetchConfig(context.Background()); err != nil {
		logger.L.Error("config hydrate", "err", err)
	} else {
		store.Hydrate(serverCfg)
	}

	evtConf, err := events.LoadConfig(cfg.EventsConfig)
	if err != nil {
		return nil, err
	}
	var sinks []events.Sink
	if wh := events.NewWebhookSink(evtConf.Sinks.Webhook); wh != nil {
		sinks = append(sinks, wh)
	}
	if rs, err := events.NewRedisSink(evtConf.Sinks.Redis); err == nil && rs != nil {
		sinks = append(sinks, rs)
	} else if err != nil {
		logger.L.Error("redis sink", "err", err)
	}
	if ks, err := events.NewKafkaSink(evtConf.Sinks.Kafka); err == nil && ks != nil {
		sinks = append(sinks, ks)
	} else if err != nil {
		logger.L.Error("kafka sink", "err", err)
	}
	events.Default = events.NewDispatcher(evtConf, &events.RedisDLQ{Client: redisCli}, sinks...)

	api := humachi.New(r, huma.DefaultConfig("FormGrid API", "1.0.0"))
	api.UseMiddleware(middleware.MetricsMW)

	handler.RegisterSchema(api, &handler.SchemaHandler{Resolver: resolver})
	handler.RegisterGrid(api, &handler.GridHandler{Engine: engine, Config: store})
	handler.RegisterRecord(api, &handler.RecordHandler{Resolver: resolver, Submitter: client})
	handler.RegisterOptions(api, &handler.OptionsHandler{Loader: loader})
	handler.RegisterConfig(api, &handler.ConfigHandler{Store: store})

	return &Runtime{
		API:      api,
		Upstream: client,
		Resolver: resolver,
		Grid:     engine,
		Config:   store,
		Policies: policies,
		Cache:    memCache,
	}, nil
}
