package handler

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Raymond9734/invoice-dashboard/internal/models"
	"github.com/Raymond9734/invoice-dashboard/internal/search"
	"github.com/Raymond9734/invoice-dashboard/internal/service"
)

// InvoiceHandler serves the server-rendered dashboard pages
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	templates      *template.Template
	logger         *slog.Logger
}

// NewInvoiceHandler creates a new invoice page handler
func NewInvoiceHandler(invoiceService service.InvoiceService, logger *slog.Logger) (*InvoiceHandler, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &InvoiceHandler{
		invoiceService: invoiceService,
		templates:      templates,
		logger:         logger,
	}, nil
}

// Dashboard handles GET /dashboard
func (h *InvoiceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.invoiceService.Dashboard(r.Context())
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, http.StatusOK, "dashboard", dashboardView{Title: "Dashboard", Data: data})
}

// ListInvoices handles GET /dashboard/invoices
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	params := search.ParseParams(r.URL.Query())

	page, err := h.invoiceService.List(r.Context(), params.Query, params.Page)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.render(w, http.StatusOK, "invoices", newInvoicesView(page))
}

// CreateForm handles GET /dashboard/invoices/create
func (h *InvoiceHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, h.createView(formValues{}))
}

// CreateInvoice handles POST /dashboard/invoices
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, http.StatusBadRequest, h.createView(formValues{}), withMessage("Invalid form submission."))
		return
	}

	if _, err := h.invoiceService.Create(r.Context(), r.PostForm); err != nil {
		h.formFailure(w, r, h.createView(formValuesFrom(r.PostForm)), err)
		return
	}

	http.Redirect(w, r, listingPath, http.StatusSeeOther)
}

// EditForm handles GET /dashboard/invoices/{id}/edit
func (h *InvoiceHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	invoice, err := h.invoiceService.GetByID(r.Context(), id)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.renderForm(w, r, http.StatusOK, h.editView(id, formValuesOf(invoice)))
}

// UpdateInvoice handles POST /dashboard/invoices/{id}
func (h *InvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		h.renderForm(w, r, http.StatusBadRequest, h.editView(id, formValues{}), withMessage("Invalid form submission."))
		return
	}

	if _, err := h.invoiceService.Update(r.Context(), id, r.PostForm); err != nil {
		h.formFailure(w, r, h.editView(id, formValuesFrom(r.PostForm)), err)
		return
	}

	http.Redirect(w, r, listingPath, http.StatusSeeOther)
}

// DeleteInvoice handles POST /dashboard/invoices/{id}/delete. The listing
// the button was pressed on is rendered again in place.
func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var form url.Values
	if err := r.ParseForm(); err == nil {
		form = r.PostForm
	}
	params := search.ParseParams(form)

	status := http.StatusOK
	var message string
	if err := h.invoiceService.Delete(r.Context(), id); err != nil {
		status, message = h.failureMessage(err)
	}

	page, err := h.invoiceService.List(r.Context(), params.Query, params.Page)
	if err != nil {
		h.renderError(w, err)
		return
	}

	view := newInvoicesView(page)
	view.Error = message
	h.render(w, status, "invoices", view)
}

func (h *InvoiceHandler) createView(values formValues) formView {
	return formView{
		Title:  "Create Invoice",
		Action: listingPath,
		Submit: "Create Invoice",
		Values: values,
	}
}

func (h *InvoiceHandler) editView(id string, values formValues) formView {
	return formView{
		Title:  "Edit Invoice",
		Action: listingPath + "/" + url.PathEscape(id),
		Submit: "Edit Invoice",
		Values: values,
	}
}

type formOption func(*formView)

func withMessage(message string) formOption {
	return func(v *formView) { v.Message = message }
}

// formFailure re-renders a rejected form with what the user entered
func (h *InvoiceHandler) formFailure(w http.ResponseWriter, r *http.Request, view formView, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		view.Errors = validationErr.Fields
	}

	status, message := h.failureMessage(err)
	h.renderForm(w, r, status, view, withMessage(message))
}

// failureMessage maps a mutation error to a status and a message safe to
// show on the page
func (h *InvoiceHandler) failureMessage(err error) (int, string) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity, validationErr.Message
	}

	var persistenceErr *models.PersistenceError
	if errors.As(err, &persistenceErr) {
		return http.StatusInternalServerError, persistenceErr.Message()
	}

	h.logger.Error("unexpected mutation failure", slog.String("error", err.Error()))
	return http.StatusInternalServerError, "Something went wrong."
}

func (h *InvoiceHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, view formView, opts ...formOption) {
	customers, err := h.invoiceService.Customers(r.Context())
	if err != nil {
		h.renderError(w, err)
		return
	}
	view.Customers = customers

	for _, opt := range opts {
		opt(&view)
	}

	h.render(w, status, "invoice_form", view)
}

func (h *InvoiceHandler) renderError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrNotFound) {
		h.render(w, http.StatusNotFound, "error", errorView{
			Title:   "404 Not Found",
			Message: "Could not find the requested invoice.",
		})
		return
	}

	h.logger.Error("failed to load page", slog.String("error", err.Error()))
	h.render(w, http.StatusInternalServerError, "error", errorView{
		Title:   "Something went wrong!",
		Message: "The page could not be loaded. Please try again.",
	})
}

// render executes a template into a buffer first so a template failure
// never leaves a half-written page
func (h *InvoiceHandler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
