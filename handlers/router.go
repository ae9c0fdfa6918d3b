package handlers

import (
	"embed"
	"html/template"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templatesFS embed.FS

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if h.settings.MaxImageBytes > 0 {
		r.MaxMultipartMemory = h.settings.MaxImageBytes
	}

	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	r.GET("/", h.Dashboard)
	r.POST("/classify", h.ClassifyPage)

	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/classify", h.Classify)
		api.GET("/labels", h.GetLabels)
		api.GET("/classifications", h.ListClassifications)
		api.GET("/classifications/:id", h.GetClassification)
		api.GET("/classifications/:id/report", h.GetReport)
		api.GET("/stats", h.GetStats)
	}

	return r
}
