// Package web is the server-rendered invoice UI. It keeps no state between
// requests: every page is rebuilt from the backend or from the posted form.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"invoicing/internal/client"
	"invoicing/internal/draft"
	"invoicing/internal/logger"
	"invoicing/internal/model"
	"invoicing/internal/notify"
	"invoicing/internal/service"
	"invoicing/pkg/pagination"
	"invoicing/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// API is the slice of the backend the UI talks to.
type API interface {
	ListInvoices(ctx context.Context) ([]model.Invoice, error)
	GetInvoice(ctx context.Context, id string) (model.Invoice, error)
	CreateInvoice(ctx context.Context, inv model.Invoice) (model.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, inv model.Invoice) (model.Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
	GetCompanyProfile(ctx context.Context) (*model.CompanyProfile, error)
	SaveCompanyProfile(ctx context.Context, profile model.CompanyProfile) (model.CompanyProfile, error)
}

// form keys that steer the handler rather than edit the draft
const (
	actionKey  = "action"
	indexKey   = "index"
	taxModeKey = "tax_mode"
)

const (
	actionAddItem    = "add_item"
	actionRemoveItem = "remove_item"
	actionSave       = "save"
)

type Handler struct {
	api      API
	notifier notify.Notifier
	numbers  service.InvoiceNumberGenerator
	mode     model.TaxMode
	now      func() time.Time
	logger   *zap.Logger
}

type Option func(*Handler)

func WithNotifier(n notify.Notifier) Option {
	return func(h *Handler) { h.notifier = n }
}

func WithInvoiceNumbers(gen service.InvoiceNumberGenerator) Option {
	return func(h *Handler) { h.numbers = gen }
}

func WithTaxMode(mode model.TaxMode) Option {
	return func(h *Handler) { h.mode = mode }
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(api API, opts ...Option) *Handler {
	h := &Handler{
		api:     api,
		numbers: service.NewRandomInvoiceNumbers(nil),
		mode:    model.TaxModeSplit,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	// failures are always logged with their cause, whatever shows them to the user
	switch n := h.notifier.(type) {
	case nil:
		h.notifier = notify.NewLogging(FlashNotifier{}, h.logger)
	case *notify.Logging:
	default:
		h.notifier = notify.NewLogging(n, h.logger)
	}
	return h
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", func(c *gin.Context) { redirect(c, http.StatusFound, "/invoices") })

	invoices := router.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/new", h.NewInvoice)
		invoices.POST("", h.CreateInvoice)
		invoices.POST("/preview", h.PreviewTotals)
		invoices.GET("/:id", h.ShowInvoice)
		invoices.GET("/:id/edit", h.EditInvoice)
		invoices.POST("/:id", h.UpdateInvoice)
		invoices.GET("/:id/delete", h.ConfirmDelete)
		invoices.POST("/:id/delete", h.DeleteInvoice)
	}

	router.GET("/settings", h.ShowSettings)
	router.POST("/settings", h.SaveSettings)
}

// --- Invoices ---

func (h *Handler) ListInvoices(c *gin.Context) {
	ctx := c.Request.Context()

	invoices, err := h.api.ListInvoices(ctx)
	if err != nil {
		notify.Failure(ctx, h.notifier, "Failed to fetch invoices", err)
		invoices = nil
	}

	window := pagination.NewWindow(pagination.Parse(c), len(invoices))
	h.render(c, http.StatusOK, "list.html", gin.H{
		"Title":    "Invoices",
		"Invoices": pagination.Slice(invoices, window),
		"Window":   window,
	})
}

func (h *Handler) NewInvoice(c *gin.Context) {
	d := draft.New(h.now(), h.mode, h.numbers)
	h.renderForm(c, http.StatusOK, d)
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	h.submitDraft(c, "")
}

func (h *Handler) EditInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	inv, err := h.api.GetInvoice(ctx, c.Param("id"))
	if err != nil {
		h.invoiceUnavailable(c, err)
		return
	}
	h.renderForm(c, http.StatusOK, draft.FromInvoice(inv))
}

func (h *Handler) UpdateInvoice(c *gin.Context) {
	h.submitDraft(c, c.Param("id"))
}

// submitDraft handles the form actions for both new (id == "") and existing invoices.
func (h *Handler) submitDraft(c *gin.Context, id string) {
	ctx := c.Request.Context()
	d, applyErr := h.draftFromForm(c, id)

	action, index := parseAction(c)
	switch action {
	case actionAddItem:
		if !d.AddLineItem() {
			h.notifier.Notify(ctx, notify.Notification{
				Level:   notify.LevelInfo,
				Message: "An invoice holds at most " + strconv.Itoa(draft.MaxLineItems) + " line items",
			})
		}
		h.renderForm(c, http.StatusOK, d)
		return
	case actionRemoveItem:
		d.RemoveLineItem(index)
		h.renderForm(c, http.StatusOK, d)
		return
	}

	if applyErr != nil {
		notify.Failure(ctx, h.notifier, "Some fields could not be read: "+strings.Join(problems(applyErr), "; "), applyErr)
		h.renderForm(c, http.StatusUnprocessableEntity, d)
		return
	}

	inv := d.Invoice()
	if err := inv.Validate(); err != nil {
		notify.Failure(ctx, h.notifier, "Invoice is incomplete: "+strings.TrimPrefix(err.Error(), model.ErrValidation.Error()+": "), err)
		h.renderForm(c, http.StatusUnprocessableEntity, d)
		return
	}

	var (
		saved model.Invoice
		err   error
	)
	if id == "" {
		saved, err = h.api.CreateInvoice(ctx, inv)
	} else {
		saved, err = h.api.UpdateInvoice(ctx, id, inv)
	}
	if err != nil {
		verb := "create"
		if id != "" {
			verb = "update"
		}
		notify.Failure(ctx, h.notifier, "Failed to "+verb+" invoice", err)
		h.renderForm(c, http.StatusBadGateway, d)
		return
	}

	if id == "" {
		notify.Success(ctx, h.notifier, "Invoice created successfully")
	} else {
		notify.Success(ctx, h.notifier, "Invoice updated successfully")
	}
	target := saved.ID
	if target == "" {
		target = id
	}
	redirect(c, http.StatusSeeOther, "/invoices/"+target)
}

// ShowInvoice renders the detail and print view. The invoice and the company
// profile are fetched concurrently; a missing company only hides its block.
func (h *Handler) ShowInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	reqLog := logger.GetGinLogger(c)

	var (
		inv     model.Invoice
		company *model.CompanyProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inv, err = h.api.GetInvoice(gctx, c.Param("id"))
		return err
	})
	g.Go(func() error {
		profile, err := h.api.GetCompanyProfile(gctx)
		if err != nil {
			reqLog.Warn("company profile unavailable", zap.Error(err))
			return nil
		}
		company = profile
		return nil
	})
	if err := g.Wait(); err != nil {
		h.invoiceUnavailable(c, err)
		return
	}

	h.render(c, http.StatusOK, "detail.html", gin.H{
		"Title":   "Invoice " + inv.InvoiceNumber,
		"Invoice": inv,
		"Totals":  displayTotals(inv),
		"Mode":    inv.ServiceCharges.Mode(),
		"Company": company,
	})
}

func (h *Handler) ConfirmDelete(c *gin.Context) {
	inv, err := h.api.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.invoiceUnavailable(c, err)
		return
	}
	h.render(c, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":   "Delete invoice " + inv.InvoiceNumber,
		"Invoice": inv,
	})
}

// DeleteInvoice only acts on an explicit confirm=yes. Either way the user
// lands on a freshly fetched list.
func (h *Handler) DeleteInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if c.PostForm("confirm") != "yes" {
		h.notifier.Notify(ctx, notify.Notification{Level: notify.LevelInfo, Message: "Deletion cancelled"})
		redirect(c, http.StatusSeeOther, "/invoices/"+id)
		return
	}

	if err := h.api.DeleteInvoice(ctx, id); err != nil {
		notify.Failure(ctx, h.notifier, "Failed to delete invoice", err)
	} else {
		notify.Success(ctx, h.notifier, "Invoice deleted successfully")
	}
	redirect(c, http.StatusSeeOther, "/invoices")
}

// previewBody is the live recompute answer for the form's totals panel.
type previewBody struct {
	LineAmounts []string          `json:"line_amounts"`
	Totals      model.Totals      `json:"totals"`
	Display     map[string]string `json:"display"`
	Problems    []string          `json:"problems,omitempty"`
}

// PreviewTotals recomputes the posted form without saving it. Fields that
// could not be read are coerced like the form itself would and listed.
func (h *Handler) PreviewTotals(c *gin.Context) {
	d, err := h.draftFromForm(c, "")

	inv := d.Invoice()
	body := previewBody{
		LineAmounts: make([]string, 0, len(inv.LineItems)),
		Totals:      *inv.Totals,
		Display: map[string]string{
			"subtotal":       formatMoneyRaw(inv.Totals.Subtotal),
			"service_charge": formatMoneyRaw(inv.Totals.ServiceCharge),
			"total_gst":      formatMoneyRaw(inv.Totals.TotalGST),
			"grand_total":    formatMoneyRaw(inv.Totals.GrandTotal),
		},
		Problems: problems(err),
	}
	for _, li := range inv.LineItems {
		body.LineAmounts = append(body.LineAmounts, formatMoneyRaw(li.Amount))
	}
	if inv.Totals.GSTOnService != nil {
		body.Display["gst_on_service"] = formatMoneyRaw(inv.Totals.GSTOnService)
	}
	if inv.Totals.TotalCGST != nil {
		body.Display["total_cgst"] = formatMoneyRaw(inv.Totals.TotalCGST)
		body.Display["total_sgst"] = formatMoneyRaw(inv.Totals.TotalSGST)
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, body))
}

// --- Settings ---

func (h *Handler) ShowSettings(c *gin.Context) {
	ctx := c.Request.Context()

	profile, err := h.api.GetCompanyProfile(ctx)
	if err != nil {
		notify.Failure(ctx, h.notifier, "Failed to load company settings", err)
	}
	current := model.NewCompanyProfile()
	if profile != nil {
		current = *profile
		current.ApplyDefaults()
	}
	h.renderSettings(c, http.StatusOK, current)
}

func (h *Handler) SaveSettings(c *gin.Context) {
	ctx := c.Request.Context()
	profile := profileFromForm(c)

	if err := profile.Validate(); err != nil {
		notify.Failure(ctx, h.notifier, "Company name is required", err)
		h.renderSettings(c, http.StatusUnprocessableEntity, profile)
		return
	}

	if _, err := h.api.SaveCompanyProfile(ctx, profile); err != nil {
		notify.Failure(ctx, h.notifier, "Failed to save company settings", err)
		h.renderSettings(c, http.StatusBadGateway, profile)
		return
	}

	notify.Success(ctx, h.notifier, "Company settings saved successfully")
	redirect(c, http.StatusSeeOther, "/settings")
}

// --- Helpers ---

// invoiceUnavailable reports a failed invoice fetch and returns to the list.
func (h *Handler) invoiceUnavailable(c *gin.Context, err error) {
	msg := "Failed to fetch invoice"
	if errors.Is(err, client.ErrNotFound) {
		msg = "Invoice not found"
	}
	notify.Failure(c.Request.Context(), h.notifier, msg, err)
	redirect(c, http.StatusSeeOther, "/invoices")
}

// draftFromForm rebuilds a draft from the posted form. The returned draft is
// usable even when some fields failed to apply.
func (h *Handler) draftFromForm(c *gin.Context, id string) (*draft.Draft, error) {
	mode := h.mode
	if posted := c.PostForm(taxModeKey); posted != "" {
		mode = model.ParseTaxMode(posted)
	}
	d := draft.New(h.now(), mode, nil)
	if id != "" {
		d = draft.FromInvoice(withID(d.Invoice(), id))
	}

	if err := c.Request.ParseForm(); err != nil {
		return d, err
	}
	values := make(map[string]string, len(c.Request.PostForm))
	for key, v := range c.Request.PostForm {
		if key == actionKey || key == indexKey || key == taxModeKey || len(v) == 0 {
			continue
		}
		values[key] = v[0]
	}
	return d, d.Apply(values)
}

// problems splits a joined Apply error into one message per field.
func problems(err error) []string {
	if err == nil {
		return nil
	}
	return strings.Split(err.Error(), "\n")
}

func withID(inv model.Invoice, id string) model.Invoice {
	inv.ID = id
	inv.Totals = nil
	return inv
}

// parseAction accepts "remove_item" with a separate index field or "remove_item:2".
func parseAction(c *gin.Context) (string, int) {
	action, idx, hasIdx := strings.Cut(c.PostForm(actionKey), ":")
	if !hasIdx {
		idx = c.PostForm(indexKey)
	}
	index, err := strconv.Atoi(idx)
	if err != nil {
		index = -1
	}
	if action == "" {
		action = actionSave
	}
	return action, index
}

// displayTotals prefers the totals echoed by the backend and fills the tax
// lines it left out. A missing amount in words is spelled by the template.
func displayTotals(inv model.Invoice) model.Totals {
	computed := service.CalculateTotals(inv.LineItems, inv.ServiceCharges).Round(service.DisplayPlaces)
	if inv.Totals == nil {
		return computed
	}
	totals := inv.Totals.Round(service.DisplayPlaces)
	if totals.GSTOnService == nil && totals.TotalCGST == nil {
		totals.GSTOnService = computed.GSTOnService
		totals.TotalCGST = computed.TotalCGST
		totals.TotalSGST = computed.TotalSGST
	}
	return totals
}

func (h *Handler) renderForm(c *gin.Context, status int, d *draft.Draft) {
	inv := d.Invoice()
	action := "/invoices"
	title := "New Invoice"
	if d.ID() != "" {
		action = "/invoices/" + d.ID()
		title = "Edit Invoice " + inv.InvoiceNumber
	}
	h.render(c, status, "form.html", gin.H{
		"Title":     title,
		"Action":    action,
		"Invoice":   inv,
		"Totals":    *inv.Totals,
		"Mode":      d.Mode(),
		"CanRemove": d.LineItemCount() > 1,
	})
}

func (h *Handler) renderSettings(c *gin.Context, status int, profile model.CompanyProfile) {
	h.render(c, status, "settings.html", gin.H{
		"Title":   "Company Settings",
		"Profile": profile,
	})
}

// render drops the response when the client already went away, so a late
// backend answer never reaches a page nobody is waiting for.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if err := c.Request.Context().Err(); err != nil {
		logger.GetGinLogger(c).Debug("request finished before render", zap.String("template", name), zap.Error(err))
		c.Abort()
		return
	}
	data["Flashes"] = takeFlashes(c)
	c.HTML(status, name, data)
}

func profileFromForm(c *gin.Context) model.CompanyProfile {
	f := func(key string) string { return strings.TrimSpace(c.PostForm(key)) }
	p := model.CompanyProfile{
		ID:           f("id"),
		CompanyName:  f("company_name"),
		AddressLine1: f("address_line1"),
		AddressLine2: f("address_line2"),
		City:         f("city"),
		State:        f("state"),
		ZipCode:      f("zip_code"),
		Country:      f("country"),
		Phone:        f("phone"),
		Email:        f("email"),
		Website:      f("website"),
		GSTIN:        f("gstin"),
		LogoURL:      f("logo_url"),
		BankDetails: model.BankDetails{
			BankName:      f("bank_name"),
			AccountNumber: f("account_number"),
			IFSCCode:      f("ifsc_code"),
			Branch:        f("branch"),
			BranchCode:    f("branch_code"),
		},
	}
	p.ApplyDefaults()
	return p
}
