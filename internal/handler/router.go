package handler

import (
	"invoicing/internal/config"
	"invoicing/internal/logger"
	"invoicing/internal/middleware"
	"invoicing/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the invoice REST API: middleware first, then every handler under /api
func NewRouter(invoiceService service.InvoiceService, companyService service.CompanyService, httpCfg config.HTTPConfig, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORS(httpCfg.CORSOrigins),
	)
	if httpCfg.MaxBodySize > 0 {
		router.Use(middleware.BodyLimit(httpCfg.MaxBodySize))
	}

	root := router.Group("")
	RegisterHealthRoutes(root)
	NewInvoiceHandler(invoiceService).RegisterRoutes(root)
	NewCompanyHandler(companyService).RegisterRoutes(root)
	return router
}
