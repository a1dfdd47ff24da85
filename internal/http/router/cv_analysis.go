package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Alpha-Sight/propellantBE/internal/http/handler"
)

func CVAnalysisRouter(rg *gin.RouterGroup, h *handler.CVAnalysisHandler) {
	rg.POST("", h.Analyze)
	rg.POST("/upload", h.Upload)
}
