package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alpha-Sight/propellantBE/internal/http/handler"
	"github.com/Alpha-Sight/propellantBE/internal/service"
)

type RouterConfig struct {
	UploadMaxBytes int64
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		cvHandler := handler.NewCVAnalysisHandler(services.CVAnalysis(), cfg.UploadMaxBytes)
		CVAnalysisRouter(api.Group("/cv-analysis"), cvHandler)
	}
}
