package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xxxsen/inkwell/internal/middleware"
)

type RouterDeps struct {
	Documents   *DocumentHandler
	Versions    *VersionHandler
	Suggestions *SuggestionHandler
	Analyze     *AnalyzeHandler
	JWTSecret   []byte
	RateLimit   time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.POST("/documents", deps.Documents.Create)
	authGroup.GET("/documents", deps.Documents.List)
	authGroup.GET("/documents/:id", deps.Documents.Get)
	authGroup.PUT("/documents/:id", deps.Documents.Save)
	authGroup.DELETE("/documents/:id", deps.Documents.Delete)

	authGroup.GET("/documents/:id/versions", deps.Versions.List)
	authGroup.POST("/documents/:id/versions", deps.Versions.Create)
	authGroup.GET("/documents/:id/versions/:version", deps.Versions.Get)

	limited := middleware.RateLimit(deps.RateLimit)
	authGroup.GET("/documents/:id/suggestions", deps.Suggestions.List)
	authGroup.POST("/documents/:id/suggestions", deps.Suggestions.Store)
	authGroup.POST("/documents/:id/suggestions/generate", limited, deps.Suggestions.Generate)

	authGroup.POST("/analyze/readability", deps.Analyze.Readability)
	authGroup.POST("/analyze/suggestions", limited, deps.Analyze.Suggestions)
}
