package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/luxe-storefront/config"
	"github.com/niksmo/luxe-storefront/internal/adapter"
	"github.com/niksmo/luxe-storefront/internal/adapter/feed"
	"github.com/niksmo/luxe-storefront/internal/adapter/httphandler"
	"github.com/niksmo/luxe-storefront/internal/adapter/kafka"
	"github.com/niksmo/luxe-storefront/internal/adapter/storage"
	"github.com/niksmo/luxe-storefront/internal/core/port"
	"github.com/niksmo/luxe-storefront/internal/core/service"
	"github.com/niksmo/luxe-storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type activityProducer interface {
	port.ActivityProducer
	Close()
}

type outbound struct {
	activity       activityProducer
	productsReader port.ProductsReader
	goldPrice      port.GoldPriceFetcher
	sqldb          *storage.SQLDB
}

type coreService struct {
	activity  *service.ActivityQueue
	tracker   *service.GoldPriceTracker
	catalog   service.Catalog
	cart      *service.CartStore
	favorites *service.FavoritesStore
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	serde      schema.Serde
	outbound   outbound
	service    coreService
	handler    http.Handler
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initSerde()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.SlogLevel()}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initSerde() {
	const op = "App.initSerde"

	if len(app.cfg.Broker.SeedBrokers) == 0 {
		return
	}

	urls := app.cfg.Broker.SchemaRegistryURLs
	if len(urls) == 0 {
		app.serde = schema.NewPlainSerdeActivityV1()
		return
	}

	srClient, err := sr.NewClient(sr.URLs(urls...))
	if err != nil {
		app.fallDown(op, err)
	}

	schemaCreater := schema.NewSchemaCreater(srClient)

	activitySS := app.cfg.Broker.ActivityTopic + "-value"
	activitySerde, err := schema.NewSerdeActivityV1(
		app.ctx,
		schema.SubjectOpt(activitySS),
		schema.SchemaIdentifierOpt(schemaCreater),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.serde = activitySerde
}

func (app *App) initOutboundAdapters() {
	app.initActivityProducer()
	app.initProductsReader()
	app.initGoldPriceFetcher()
}

func (app *App) initActivityProducer() {
	const op = "App.initActivityProducer"
	log := slog.With("op", op)

	brokerCfg := app.cfg.Broker
	if len(brokerCfg.SeedBrokers) == 0 {
		log.Warn("no seed brokers, activity is not published")
		app.outbound.activity = kafka.NopActivityProducer{}
		return
	}

	clientCfg := kafka.ProducerClientConfig{
		SeedBrokers: brokerCfg.SeedBrokers,
		Topic:       brokerCfg.ActivityTopic,
	}
	if brokerCfg.TLS.CA != "" {
		tlsConfig, err := adapter.MakeTLSConfig(
			brokerCfg.TLS.CA, brokerCfg.TLS.Cert, brokerCfg.TLS.Key,
		)
		if err != nil {
			app.fallDown(op, err)
		}
		clientCfg.TLS = tlsConfig
	}

	activityProducer, err := kafka.NewActivityProducer(
		kafka.ProducerClientOpt(app.ctx, clientCfg),
		kafka.ProducerEncoderOpt(app.serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.activity = activityProducer
}

func (app *App) initProductsReader() {
	const op = "App.initProductsReader"

	catalogCfg := app.cfg.Catalog
	switch catalogCfg.Source {
	case config.SourceFile:
		app.outbound.productsReader = feed.NewFileProductsReader(catalogCfg.File)
	case config.SourceHTTP:
		app.outbound.productsReader = feed.NewHTTPProductsReader(
			feed.HTTPProductsReaderConfig{
				URL:         catalogCfg.URL,
				MaxAttempts: catalogCfg.MaxAttempts,
			},
		)
	case config.SourceSQL:
		sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
		if err != nil {
			app.fallDown(op, err)
		}
		app.outbound.sqldb = &sqldb
		app.outbound.productsReader = storage.NewProductsRepository(sqldb)
	default:
		app.fallDown(op, fmt.Errorf("unknown catalog source %q", catalogCfg.Source))
	}
}

func (app *App) initGoldPriceFetcher() {
	const op = "App.initGoldPriceFetcher"

	goldCfg := app.cfg.GoldPrice
	switch goldCfg.Source {
	case config.SourceHTTP:
		app.outbound.goldPrice = feed.NewHTTPGoldPriceFetcher(goldCfg.URL, nil)
	case config.SourceFixed:
		app.outbound.goldPrice = feed.FixedGoldPrice(goldCfg.FixedRate)
	default:
		app.fallDown(op, fmt.Errorf("unknown gold price source %q", goldCfg.Source))
	}
}

func (app *App) initCoreService() {
	goldCfg := app.cfg.GoldPrice
	tracker := service.NewGoldPriceTracker(service.GoldPriceTrackerConfig{
		Fetcher:         app.outbound.goldPrice,
		RefreshInterval: goldCfg.RefreshInterval,
		FetchTimeout:    goldCfg.FetchTimeout,
		FallbackRate:    goldCfg.FallbackRate,
	})

	activity := service.NewActivityQueue(service.ActivityQueueConfig{
		Producer:       app.outbound.activity,
		Capacity:       app.cfg.Broker.QueueCapacity,
		PublishTimeout: app.cfg.Broker.PublishTimeout,
	})

	app.service = coreService{
		activity:  activity,
		tracker:   tracker,
		catalog:   service.NewCatalog(app.outbound.productsReader, tracker),
		cart:      service.NewCartStore(activity),
		favorites: service.NewFavoritesStore(activity),
	}
}

func (app *App) initInboundAdapters() {
	addr := app.cfg.HTTPServerAddr
	mux := http.NewServeMux()
	httphandler.RegisterCatalog(mux, app.service.catalog)
	httphandler.RegisterGoldPrice(mux, app.service.tracker)
	httphandler.RegisterCart(mux, app.service.cart, app.service.catalog)
	httphandler.RegisterFavorites(mux, app.service.favorites, app.service.catalog)

	app.handler = httphandler.AllowJSON(mux)
	app.httpServer = httphandler.NewHTTPServer(addr, app.handler)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.service.tracker.Run(app.ctx)
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.service.tracker.Close()
	app.service.activity.Close(ctx)
	app.outbound.activity.Close()
	if app.outbound.sqldb != nil {
		app.outbound.sqldb.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
