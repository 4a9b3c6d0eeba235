package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-converter/internal/http/handlers"
	"github.com/phambaophuc/image-converter/internal/http/middleware"
)

type Router struct {
	convertHandler *handlers.ConvertHandler
	logger         *zap.Logger
}

func NewRouter(
	convertHandler *handlers.ConvertHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		convertHandler: convertHandler,
		logger:         logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.convertHandler.HealthCheck)
		v1.GET("/stats", r.convertHandler.GetStats)

		images := v1.Group("/images", middleware.ValidateContentType())
		{
			images.POST("/convert", r.convertHandler.ConvertImages)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.GET("/:id", r.convertHandler.GetSession)
			sessions.GET("/:id/files/:index", r.convertHandler.DownloadFile)
			sessions.GET("/:id/archive", r.convertHandler.DownloadArchive)
		}

		jobs := v1.Group("/jobs")
		{
			jobs.POST("", middleware.ValidateContentType(), r.convertHandler.SubmitJob)
			jobs.GET("/:id", r.convertHandler.GetJob)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Image conversion is running",
		})
	})

	return router
}
