package handler

import (
	"net/http"

	"invoicing/internal/model"
	"invoicing/internal/service"
	"invoicing/pkg/response"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	company := router.Group("/api/company")
	{
		company.GET("", h.GetCompany)
		company.POST("", h.SaveCompany)
		company.PUT("", h.SaveCompany)
	}
}

// GetCompany returns the company profile, or 404 when none was saved yet
// @Summary      Get company settings
// @Tags         company
// @Produce      json
// @Success      200  {object}  model.CompanyProfile
// @Failure      404  {object}  response.ErrorDetail
// @Router       /api/company [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	profile, err := h.companyService.GetCompany(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// SaveCompany creates or replaces the company profile
// @Summary      Save company settings
// @Tags         company
// @Accept       json
// @Produce      json
// @Param        payload  body      model.CompanyProfile  true  "Company profile"
// @Success      200      {object}  model.CompanyProfile
// @Failure      422      {object}  response.ErrorDetail
// @Router       /api/company [post]
func (h *CompanyHandler) SaveCompany(c *gin.Context) {
	var req model.CompanyProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, response.Detail("Invalid request payload: "+err.Error()))
		return
	}

	profile, err := h.companyService.SaveCompany(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
