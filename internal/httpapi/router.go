// Package httpapi exposes the shopping list as a JSON API for a browser
// client.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smart-grocer/internal/app"
	"smart-grocer/internal/metrics"
)

// Options configure the router. Only App is required.
type Options struct {
	App         *app.App
	Collectors  *metrics.Collectors
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	// DataPath is measured for the health report.
	DataPath string
}

type handler struct {
	app      *app.App
	dataPath string
}

// NewRouter builds the gin engine with every API route.
func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Collectors))

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := &handler{app: opts.App, dataPath: opts.DataPath}

	api := r.Group("/api")
	api.GET("/items", h.listItems)
	api.POST("/items", h.addItem)
	api.POST("/items/clear", h.clearItems)
	api.PATCH("/items/:id", h.updateItem)
	api.POST("/items/:id/toggle", h.toggleItem)
	api.DELETE("/items/:id", h.removeItem)

	api.POST("/suggestions/recipe", h.suggestRecipe)
	api.POST("/suggestions/text", h.suggestText)
	api.POST("/suggestions/url", h.suggestURL)

	api.GET("/history", h.listHistory)
	api.POST("/history", h.archive)
	api.GET("/history/:id", h.getSnapshot)
	api.PATCH("/history/:id", h.renameSnapshot)
	api.POST("/history/:id/restore", h.restoreSnapshot)
	api.DELETE("/history/:id", h.deleteSnapshot)
	api.GET("/history/:id/export.csv", h.exportSnapshot)

	api.POST("/confirmations/:id", h.confirm)
	api.DELETE("/confirmations/:id", h.cancelConfirmation)

	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.updateProfile)
	api.POST("/profile/setup", h.completeSetup)
	api.GET("/budget", h.getBudget)
	api.PUT("/budget", h.setBudget)

	api.GET("/dashboard", h.dashboard)
	api.POST("/price-compare", h.priceCompare)
	api.GET("/export.csv", h.exportCSV)
	api.GET("/share", h.share)
	api.GET("/notices", h.listNotices)
	api.DELETE("/notices/:id", h.dismissNotice)

	r.GET("/health", h.health)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

// requestLogger logs each request and feeds the HTTP collectors. The route
// label is the matched pattern so ids do not explode cardinality.
func requestLogger(c *metrics.Collectors) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := ctx.Writer.Status()
		elapsed := time.Since(start)
		c.ObserveHTTP(ctx.Request.Method, route, status, elapsed)

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(ctx.Request.Context(), level, "HTTP request",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}
