package web

import (
	"embed"
	"html/template"

	"invoicing/internal/config"
	"invoicing/internal/logger"
	"invoicing/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates with the shared helpers.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html"))
}

// NewRouter wires the UI pages behind the usual middleware chain.
func NewRouter(h *Handler, httpCfg config.HTTPConfig, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(logger.GinMiddleware(log))
	router.Use(logger.Recovery(log))
	if httpCfg.MaxBodySize > 0 {
		router.Use(middleware.BodyLimit(httpCfg.MaxBodySize))
	}
	router.Use(Flash())

	router.SetHTMLTemplate(Templates())
	h.RegisterRoutes(router)
	return router
}
