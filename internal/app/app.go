package app

import (
	"context"
	"net/http"
	"time"

	"github.com/ssbtech/hilService/internal/adapters/handlers"
	"github.com/ssbtech/hilService/internal/adapters/repositories/postgres"
	"github.com/ssbtech/hilService/internal/config"
	"github.com/ssbtech/hilService/internal/interfaces"
	"github.com/ssbtech/hilService/internal/keywords"
	"github.com/ssbtech/hilService/internal/middleware/logging"
	"github.com/ssbtech/hilService/internal/middleware/swagger"
	"github.com/ssbtech/hilService/internal/services/device_service"
	"github.com/ssbtech/hilService/internal/services/kafka"
	"github.com/ssbtech/hilService/internal/services/monitor"
	"github.com/ssbtech/hilService/internal/services/run_service"
	"github.com/ssbtech/hilService/internal/usecases"

	"go.uber.org/fx"
)

// New creates a new fx.App instance
func New() *fx.App {
	return fx.New(
		ConfigModule,
		LoggingModule,
		RepositoryModule,
		ProducerModule,
		MonitorModule,
		KeywordModule,
		DeviceModule,
		RunModule,
		UsecaseModule,
		HttpServerModule,
		fx.Invoke(InvokeShutdownHooks),
	)
}

// --- FX modules ---

var ConfigModule = fx.Module("config_module",
	fx.Provide(config.LoadConfiguration),
)

func ProvideLogger(cfg *config.AppConfig) *logging.Logger {
	loggerCfg := &logging.Config{
		Enabled:    cfg.Logging.Enable,
		Level:      cfg.Logging.Level,
		LogsDir:    cfg.Logging.LogsDir,
		SavingDays: uint(cfg.Logging.SavingDays),
	}
	return logging.NewLogger(loggerCfg, "HilServiceApp")
}

var LoggingModule = fx.Module("logging_module",
	fx.Provide(ProvideLogger),
)

var RepositoryModule = fx.Module("repository_module",
	fx.Provide(postgres.NewRepository),
)

var ProducerModule = fx.Module("producer_module",
	fx.Provide(kafka.NewKafkaProducer),
)

var MonitorModule = fx.Module("monitor_module",
	fx.Provide(monitor.NewHub),
)

var KeywordModule = fx.Module("keyword_module",
	fx.Provide(keywords.LoadRegistry),
)

var DeviceModule = fx.Module("device_module",
	fx.Provide(device_service.NewDeviceManager),
)

var RunModule = fx.Module("run_module",
	fx.Provide(
		run_service.NewRobotInterpreter,
		run_service.NewRunService,
	),
)

var UsecaseModule = fx.Module("usecases_module",
	fx.Provide(usecases.NewUsecase),
)

func NewSwaggerConfig() *swagger.Config {
	return &swagger.Config{
		Enabled: true,
		Path:    "/swagger",
	}
}

var HttpServerModule = fx.Module("http_server_module",
	fx.Provide(
		NewSwaggerConfig,
		handlers.NewHandler,
		handlers.ProvideRouter,
	),
	fx.Invoke(InvokeHttpServer),
)

// InvokeShutdownHooks releases hardware and broker handles on stop.
func InvokeShutdownHooks(
	lc fx.Lifecycle,
	devices interfaces.DeviceService,
	mon interfaces.Monitor,
	producer interfaces.KafkaService,
	logger *logging.Logger,
) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Releasing device and broker handles...")
			devices.Shutdown()
			mon.Close()
			if err := producer.Close(); err != nil {
				logger.Warn("Failed to close Kafka producer", "error", err)
			}
			return logger.Close()
		},
	})
}

// InvokeHttpServer starts the HTTP server.
func InvokeHttpServer(lc fx.Lifecycle, cfg *config.AppConfig, h http.Handler, logger *logging.Logger) {
	serverAddr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("HTTP Server is starting", "address", serverAddr)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Failed to start server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}
