package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/server/handlers"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters served by the engine.
type Handlers struct {
	Farm    *handlers.FarmHandler
	Archive *handlers.ArchiveHandler
	Notify  *handlers.NotifyHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/version", h.Farm.Version)
	api.GET("/date", h.Farm.CurrentDate)
	api.POST("/advance-date", h.Farm.AdvanceDate)
	api.POST("/reset", h.Farm.Reset)
	api.GET("/report", h.Farm.PastureReport)

	api.GET("/paddocks", h.Farm.ListPaddocks)
	api.POST("/paddocks", h.Farm.CreatePaddock)
	api.GET("/paddocks/export.xlsx", h.Farm.ExportPaddocks)
	api.PATCH("/paddocks/areas", h.Farm.UpdatePaddockAreas)
	api.GET("/paddocks/:id", h.Farm.GetPaddock)
	api.PUT("/paddocks/:id", h.Farm.UpdatePaddock)

	api.GET("/mobs", h.Farm.ListMobs)
	api.POST("/mobs/move", h.Farm.MoveMob)
	api.GET("/stock", h.Farm.ListStock)
	api.GET("/animals/:id", h.Farm.GetAnimal)
	api.PUT("/animals/:id", h.Farm.UpdateAnimal)

	if h.Archive != nil {
		api.GET("/reports/:date", h.Archive.Report)
		api.GET("/paddocks/:id/history", h.Archive.History)
	}

	if h.Notify != nil {
		api.POST("/notify", h.Notify.SendMessage)
		api.POST("/notify/summary", h.Notify.SendSummary)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")))
	}
}
