package handler

import (
	"net/http"

	"invoicing/pkg/response"

	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes mounts the API root health check.
func RegisterHealthRoutes(router *gin.RouterGroup) {
	router.GET("/api/", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Message{Message: "Invoicing App API is running"})
	})
}
