// Package memory implements in-memory invoice and customer repositories.
// It backs local development (STORAGE=memory) and service tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Raymond9734/invoice-dashboard/internal/models"
)

// ErrUnknownCustomer mirrors the foreign key violation raised by the database
var ErrUnknownCustomer = errors.New("invoice references an unknown customer")

// Store holds customers and invoices behind a single lock so invoice
// listings can join against customers.
type Store struct {
	mu        sync.RWMutex
	customers map[string]models.Customer
	invoices  map[string]models.Invoice
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		customers: make(map[string]models.Customer),
		invoices:  make(map[string]models.Invoice),
	}
}

// Invoices returns the invoice repository view of the store.
func (s *Store) Invoices() *InvoiceRepository {
	return &InvoiceRepository{s: s}
}

// Customers returns the customer repository view of the store.
func (s *Store) Customers() *CustomerRepository {
	return &CustomerRepository{s: s}
}

// CustomerRepository provides an in-memory implementation of repository.CustomerRepository.
type CustomerRepository struct {
	s *Store
}

// Create stores the customer, assigning an ID when none is set.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, ok := r.s.customers[c.ID]; ok {
		return models.ErrAlreadyExists
	}
	r.s.customers[c.ID] = *c
	return nil
}

// List returns all customers ordered by name.
func (r *CustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// InvoiceRepository provides an in-memory implementation of repository.InvoiceRepository.
type InvoiceRepository struct {
	s *Store
}

// Create stores the invoice under a fresh UUID.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[inv.CustomerID]; !ok {
		return ErrUnknownCustomer
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	r.s.invoices[inv.ID] = *inv
	return nil
}

// GetByID retrieves an invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("invoice with ID %s not found", id))
	}
	return &inv, nil
}

// List returns one page of invoices whose customer or invoice fields
// contain the query, case-insensitively.
func (r *InvoiceRepository) List(ctx context.Context, filter models.InvoiceFilter) ([]*models.InvoiceRow, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	r.s.mu.RLock()
	rows := r.joined()
	r.s.mu.RUnlock()

	needle := strings.ToLower(filter.Query)
	matched := rows[:0]
	for _, row := range rows {
		if needle == "" || matches(row, needle) {
			matched = append(matched, row)
		}
	}

	total := int64(len(matched))
	start := models.CalculateOffset(filter.Page, filter.PageSize)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], total, nil
}

// Latest returns the most recent invoices.
func (r *InvoiceRepository) Latest(ctx context.Context, limit int) ([]*models.LatestInvoice, error) {
	r.s.mu.RLock()
	rows := r.joined()
	r.s.mu.RUnlock()

	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]*models.LatestInvoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, &models.LatestInvoice{
			ID:       row.ID,
			Name:     row.Name,
			Email:    row.Email,
			ImageURL: row.ImageURL,
			Amount:   row.Amount,
		})
	}
	return out, nil
}

// CardData returns the dashboard aggregates.
func (r *InvoiceRepository) CardData(ctx context.Context) (*models.CardData, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	data := &models.CardData{
		NumberOfCustomers: int64(len(r.s.customers)),
		NumberOfInvoices:  int64(len(r.s.invoices)),
	}
	for _, inv := range r.s.invoices {
		switch inv.Status {
		case models.InvoiceStatusPaid:
			data.TotalPaid += inv.Amount
		case models.InvoiceStatusPending:
			data.TotalPending += inv.Amount
		}
	}
	return data, nil
}

// Update replaces customer, amount and status of an existing invoice.
// A missing ID affects zero rows.
func (r *InvoiceRepository) Update(ctx context.Context, inv *models.Invoice) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.invoices[inv.ID]
	if !ok {
		return 0, nil
	}
	if _, ok := r.s.customers[inv.CustomerID]; !ok {
		return 0, ErrUnknownCustomer
	}
	current.CustomerID = inv.CustomerID
	current.Amount = inv.Amount
	current.Status = inv.Status
	r.s.invoices[inv.ID] = current
	return 1, nil
}

// Delete removes an invoice by ID. A missing ID affects zero rows.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[id]; !ok {
		return 0, nil
	}
	delete(r.s.invoices, id)
	return 1, nil
}

// joined builds invoice rows ordered by date, newest first. Callers hold the read lock.
func (r *InvoiceRepository) joined() []*models.InvoiceRow {
	rows := make([]*models.InvoiceRow, 0, len(r.s.invoices))
	for _, inv := range r.s.invoices {
		c := r.s.customers[inv.CustomerID]
		rows = append(rows, &models.InvoiceRow{
			ID:         inv.ID,
			CustomerID: inv.CustomerID,
			Name:       c.Name,
			Email:      c.Email,
			ImageURL:   c.ImageURL,
			Amount:     inv.Amount,
			Status:     inv.Status,
			Date:       inv.Date,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].ID > rows[j].ID
	})
	return rows
}

func matches(row *models.InvoiceRow, needle string) bool {
	fields := []string{
		row.Name,
		row.Email,
		strconv.FormatInt(row.Amount, 10),
		row.Date,
		row.Status,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
