package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"comms-metrics-backend/config"
	"comms-metrics-backend/database"
	_ "comms-metrics-backend/docs"
	"comms-metrics-backend/internal/analytics"
	"comms-metrics-backend/internal/audit"
	"comms-metrics-backend/internal/controller"
	"comms-metrics-backend/internal/elasticsearch"
	"comms-metrics-backend/internal/kafka"
	"comms-metrics-backend/internal/observability"
	"comms-metrics-backend/internal/query"
	"comms-metrics-backend/internal/repository"
	"comms-metrics-backend/internal/scheduler"
	"comms-metrics-backend/internal/service"
	"comms-metrics-backend/internal/session"
	"comms-metrics-backend/internal/timescaledb"
	"comms-metrics-backend/internal/util"
)

// @title           Communications Metrics API
// @version         1.0
// @description     Failure details and provider metrics for the messaging analytics dashboard.

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @tag.name         metrics
// @tag.description  Failure details, provider metrics and snapshot history

// @tag.name         audit
// @tag.description  Recently executed analytics queries

// @securityDefinitions.apikey AuthToken
// @in header
// @name X-Auth-Token

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	var wg sync.WaitGroup

	app := fx.New(
		fx.Supply(cfg),
		// Infrastructure Dependencies
		fx.Provide(
			NewPrometheusRegistry,
			database.NewDB,
			timescaledb.ProvideTimescaleDBPool,
			NewGinEngine,
			NewQueryBuilder,
			NewEventRepository,
			NewSessionStore,
			audit.NewRecorder,
			elasticsearch.NewElasticsearchSnapshotRepository,
		),
		// Application Dependencies
		fx.Provide(
			service.NewCommsMetricsService,
			service.NewSnapshotQueryService,
			controller.NewMetricController,
			controller.NewAuditController,
		),
		snapshotPipeline(cfg, &wg),
		fx.Invoke(RegisterAPIRoutes),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}

	log.Info().Msg("Waiting for background goroutines to finish...")
	wg.Wait()
	log.Info().Msg("All background processes finished. Exiting.")
}

// snapshotPipeline wires Kafka, the Elasticsearch bulk indexer and the cron
// job. Nothing connects to the brokers when snapshots are disabled.
func snapshotPipeline(cfg *config.Config, wg *sync.WaitGroup) fx.Option {
	if !cfg.Snapshot.Enabled {
		return fx.Options()
	}
	return fx.Options(
		fx.Provide(
			kafka.NewKafkaSnapshotProducer,
			kafka.NewKafkaSnapshotConsumer,
			elasticsearch.NewElasticSnapshotStore,
			service.NewSnapshotProducerService,
			service.NewSnapshotConsumerService,
		),
		fx.Invoke(
			RegisterScheduler,
			func(lc fx.Lifecycle, consumerService service.SnapshotConsumerService) {
				startSnapshotConsumer(lc, wg, consumerService)
			},
		),
	)
}

func NewPrometheusRegistry() prometheus.Gatherer {
	reg := prometheus.NewRegistry()
	observability.Register(reg)
	return reg
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", controller.HeaderRequestID,
			analytics.HeaderToken, analytics.HeaderUserID, analytics.HeaderTenantID,
			analytics.HeaderTenantName, analytics.HeaderDealerID, analytics.HeaderRoleID,
		},
		ExposeHeaders: []string{"Content-Length", controller.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(controller.RequestIDMiddleware(), controller.SessionMiddleware(), controller.MetricsMiddleware())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func NewQueryBuilder(cfg *config.Config) (*query.Builder, error) {
	loc, err := time.LoadLocation(cfg.Query.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid QUERY_TIMEZONE %q: %w", cfg.Query.Timezone, err)
	}
	start, err := util.ParseTimeOfDay(cfg.Query.DefaultStartTime)
	if err != nil {
		return nil, fmt.Errorf("QUERY_DEFAULT_START_TIME: %w", err)
	}
	end, err := util.ParseTimeOfDay(cfg.Query.DefaultEndTime)
	if err != nil {
		return nil, fmt.Errorf("QUERY_DEFAULT_END_TIME: %w", err)
	}
	return query.NewBuilder(cfg.Analytics.TableName,
		query.WithLocation(loc),
		query.WithDefaultWindow(start, end),
	)
}

// NewEventRepository picks the events backend named by ANALYTICS_BACKEND.
func NewEventRepository(cfg *config.Config, pool *pgxpool.Pool) (repository.EventRepository, error) {
	switch cfg.Analytics.Backend {
	case config.BackendAnalytics:
		return analytics.NewAnalyticsEventRepository(cfg), nil
	case config.BackendTimescaleDB:
		return timescaledb.NewTimescaleEventRepository(pool)
	}
	return nil, fmt.Errorf("unknown ANALYTICS_BACKEND %q", cfg.Analytics.Backend)
}

func NewSessionStore(cfg *config.Config) session.Store {
	return session.NewStore(cfg.Session.FilePath)
}

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	gatherer prometheus.Gatherer,
	metricController *controller.MetricController,
	auditController *controller.AuditController,
) {
	controller.RegisterHealthRoutes(router, gatherer, cfg.Analytics.Backend)
	controller.RegisterMetricRoutes(router, metricController)
	controller.RegisterAuditRoutes(router, auditController)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

// --- Invoker Functions ---

func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, producerSvc service.SnapshotProducerService) error {
	_, err := scheduler.NewScheduler(lc, cfg, producerSvc)
	return err
}

// startSnapshotConsumer runs the consumer loop until fx stops the app.
func startSnapshotConsumer(lc fx.Lifecycle, wg *sync.WaitGroup, consumerService service.SnapshotConsumerService) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info().Msg("Starting Snapshot Consumer goroutine")
			wg.Add(1)
			go consumerService.Run(ctx, wg)
			return nil
		},
		OnStop: func(context.Context) error {
			log.Info().Msg("Signaling Snapshot Consumer goroutine to stop...")
			cancel()
			return nil
		},
	})
}
