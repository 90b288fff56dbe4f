package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Raymond9734/invoice-dashboard/internal/search"
	"github.com/Raymond9734/invoice-dashboard/internal/service"
)

// APIHandler exposes the invoice operations as JSON
type APIHandler struct {
	invoiceService service.InvoiceService
	logger         *slog.Logger
}

// NewAPIHandler creates a new JSON API handler
func NewAPIHandler(invoiceService service.InvoiceService, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// InvoiceRequest is the JSON body of create and update requests. Amount is
// in dollars and may be sent as a number or a numeric string.
type InvoiceRequest struct {
	CustomerID string      `json:"customer_id"`
	Amount     json.Number `json:"amount"`
	Status     string      `json:"status"`
}

// form converts the request into the same shape the HTML forms submit
func (req InvoiceRequest) form() url.Values {
	return url.Values{
		service.FieldCustomerID: {req.CustomerID},
		service.FieldAmount:     {req.Amount.String()},
		service.FieldStatus:     {req.Status},
	}
}

// ListInvoices handles GET /api/invoices
func (h *APIHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	params := search.ParseParams(r.URL.Query())

	page, err := h.invoiceService.List(r.Context(), params.Query, params.Page)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, page)
}

// CreateInvoice handles POST /api/invoices
func (h *APIHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), req.form())
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondCreated(w, invoice)
}

// GetInvoice handles GET /api/invoices/{id}
func (h *APIHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoiceService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, invoice)
}

// UpdateInvoice handles PUT /api/invoices/{id}
func (h *APIHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	invoice, err := h.invoiceService.Update(r.Context(), chi.URLParam(r, "id"), req.form())
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, invoice)
}

// DeleteInvoice handles DELETE /api/invoices/{id}
func (h *APIHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.invoiceService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCustomers handles GET /api/customers
func (h *APIHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.invoiceService.Customers(r.Context())
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, customers)
}

// Dashboard handles GET /api/dashboard
func (h *APIHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := h.invoiceService.Dashboard(r.Context())
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, data)
}
