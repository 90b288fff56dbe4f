package models

import (
	"fmt"
	"time"
)

// Invoice status constants
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

// DateLayout is the calendar-day format invoices are stamped with
const DateLayout = "2006-01-02"

// InvoicesTag identifies every cached render of the invoice listing
const InvoicesTag = "dashboard/invoices"

// Invoice represents a stored invoice. Amount is held in cents.
type Invoice struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
	Date       string `json:"date"`
}

// InvoiceRow is an invoice joined with the customer it was billed to
type InvoiceRow struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ImageURL   string `json:"image_url"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
	Date       string `json:"date"`
}

// LatestInvoice is the short form shown on the dashboard overview
type LatestInvoice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url"`
	Amount   int64  `json:"amount"`
}

// CardData holds the aggregate figures shown on the dashboard cards
type CardData struct {
	NumberOfCustomers int64 `json:"number_of_customers"`
	NumberOfInvoices  int64 `json:"number_of_invoices"`
	TotalPaid         int64 `json:"total_paid"`
	TotalPending      int64 `json:"total_pending"`
}

// InvoiceFilter holds the search state for listing invoices
type InvoiceFilter struct {
	Query    string
	Page     int
	PageSize int
}

// Validate performs validation on stored invoice data
func (i *Invoice) Validate() error {
	if i.CustomerID == "" {
		return ErrInvalidInput("customer_id is required")
	}
	if i.Amount < 0 {
		return ErrInvalidInput("amount cannot be negative")
	}
	if !IsValidInvoiceStatus(i.Status) {
		return ErrInvalidInput(fmt.Sprintf("invalid status: %s (must be 'pending' or 'paid')", i.Status))
	}
	if _, err := time.Parse(DateLayout, i.Date); err != nil {
		return ErrInvalidInput(fmt.Sprintf("invalid date: %s", i.Date))
	}
	return nil
}

// IsValidInvoiceStatus checks if the invoice status is valid
func IsValidInvoiceStatus(status string) bool {
	return status == InvoiceStatusPending || status == InvoiceStatusPaid
}

// Today returns the calendar day of t in the invoice date format
func Today(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// FormatDate renders a stored invoice date for display ("Mar 15, 2024").
// Unparseable dates are returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2, 2006")
}
