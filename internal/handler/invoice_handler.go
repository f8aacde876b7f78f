package handler

import (
	"errors"
	"net/http"

	"invoicing/internal/model"
	"invoicing/internal/repository"
	"invoicing/internal/service"
	"invoicing/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.POST("", h.CreateInvoice)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PUT("/:id", h.UpdateInvoice)
		invoices.DELETE("/:id", h.DeleteInvoice)
	}
}

// ListInvoices returns every invoice, newest first
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Success      200  {array}   model.Invoice
// @Failure      500  {object}  response.ErrorDetail
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.invoiceService.ListInvoices(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// CreateInvoice stores a submitted draft and echoes it with totals
// @Summary      Create invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        payload  body      model.Invoice  true  "Invoice draft"
// @Success      200      {object}  model.Invoice
// @Failure      422      {object}  response.ErrorDetail
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req model.Invoice
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, response.Detail("Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// GetInvoice returns one invoice
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  model.Invoice
// @Failure      404  {object}  response.ErrorDetail
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice replaces an invoice with the submitted draft
// @Summary      Update invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "Invoice ID"
// @Param        payload  body      model.Invoice  true  "Invoice draft"
// @Success      200      {object}  model.Invoice
// @Failure      404      {object}  response.ErrorDetail
// @Failure      422      {object}  response.ErrorDetail
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req model.Invoice
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, response.Detail("Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice removes an invoice
// @Summary      Delete invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Message
// @Failure      404  {object}  response.ErrorDetail
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message{Message: "Invoice deleted successfully"})
}

// writeError maps service errors onto the contract's status codes.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Detail(notFoundMessage(c)))
	case errors.Is(err, model.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, response.Detail(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Detail(err.Error()))
	}
}

func notFoundMessage(c *gin.Context) string {
	if c.FullPath() == "/api/company" {
		return "Company settings not found"
	}
	return "Invoice not found"
}
