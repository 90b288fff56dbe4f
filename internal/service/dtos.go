package service

import (
	"math"
	"net/url"
	"strings"

	"github.com/Raymond9734/invoice-dashboard/internal/models"
)

// Form field names accepted by the invoice forms
const (
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
	FieldID         = "id"
)

// InvoiceInput is a fully validated invoice submission
type InvoiceInput struct {
	CustomerID  string
	AmountCents int64
	Status      string
}

// ValidateInvoiceForm validates and coerces a raw form submission. Every
// offending field is reported; no partial input is ever returned.
// action names the operation in the error message ("Create", "Update").
func ValidateInvoiceForm(form url.Values, action string) (*InvoiceInput, error) {
	fields := make(map[string]string)

	customerID := strings.TrimSpace(form.Get(FieldCustomerID))
	if customerID == "" {
		fields[FieldCustomerID] = "Please select a customer."
	}

	var cents int64
	raw := strings.TrimSpace(form.Get(FieldAmount))
	amount, numeric := models.ParseAmount(raw)
	switch {
	case !numeric && len(raw) > models.MaxAmountLength:
		fields[FieldAmount] = "Amount is too large."
	case !numeric:
		fields[FieldAmount] = "Please enter a numeric amount."
	case amount.Sign() <= 0:
		fields[FieldAmount] = "Please enter an amount greater than $0."
	default:
		var ok bool
		cents, ok = models.ToCents(amount)
		switch {
		case !ok || cents > math.MaxInt32:
			fields[FieldAmount] = "Amount is too large."
		case cents <= 0:
			fields[FieldAmount] = "Please enter an amount greater than $0."
		}
	}

	status := form.Get(FieldStatus)
	if !models.IsValidInvoiceStatus(status) {
		fields[FieldStatus] = "Please select an invoice status."
	}

	if len(fields) > 0 {
		return nil, &models.ValidationError{
			Message: "Missing Fields. Failed to " + action + " Invoice.",
			Fields:  fields,
		}
	}

	return &InvoiceInput{
		CustomerID:  customerID,
		AmountCents: cents,
		Status:      status,
	}, nil
}

// InvoicePage is one page of the invoice listing
type InvoicePage struct {
	Query      string                  `json:"query"`
	Invoices   []*models.InvoiceRow    `json:"invoices"`
	Pagination models.PaginationResult `json:"pagination"`
}

// DashboardData is everything the dashboard overview shows
type DashboardData struct {
	Cards          models.CardData         `json:"cards"`
	LatestInvoices []*models.LatestInvoice `json:"latest_invoices"`
}
