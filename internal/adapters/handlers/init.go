package handlers

import (
	"net/http"

	"github.com/ssbtech/hilService/internal/config"
	"github.com/ssbtech/hilService/internal/interfaces"
	"github.com/ssbtech/hilService/internal/middleware/logging"
	"github.com/ssbtech/hilService/internal/middleware/swagger"

	"github.com/gin-gonic/gin"
)

// Handler holds the dependencies of the HTTP layer.
type Handler struct {
	usecase interfaces.Usecases
	monitor interfaces.Monitor
	logger  *logging.Logger
}

func NewHandler(usecase interfaces.Usecases, monitor interfaces.Monitor, logger *logging.Logger) *Handler {
	return &Handler{
		usecase: usecase,
		monitor: monitor,
		logger:  logger.WithPrefix("HANDLER"),
	}
}

// ProvideRouter configures and returns the HTTP router.
func ProvideRouter(h *Handler, cfg *config.AppConfig, swagCfg *swagger.Config) http.Handler {
	gin.SetMode(cfg.GinMode)

	router := gin.Default()

	// Swagger
	swagger.Setup(router, swagCfg)

	// Logger Middleware
	router.Use(LoggingMiddleware(h.logger))

	v1 := router.Group("/api/v1")
	{
		devices := v1.Group("/devices")
		{
			devices.GET("", h.ListDevices)
			devices.POST("/connect", h.ConnectDevice)
			devices.POST("/disconnect", h.DisconnectDevice)
			devices.GET("/:id", h.DeviceStatus)
			devices.POST("/send", h.SendCommand)
			devices.POST("/can", h.SendCanMessage)
		}

		v1.GET("/keywords", h.ListKeywords)

		runs := v1.Group("/runs")
		{
			runs.POST("/start", h.StartRun)
			runs.POST("/cancel", h.CancelRun)
			runs.GET("", h.RunHistory)
			runs.GET("/:id", h.RunResult)
			runs.GET("/:id/report", h.RunReport)
		}
	}

	router.GET("/ws/progress", h.ProgressStream)

	return router
}
