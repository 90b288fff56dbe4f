package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Raymond9734/invoice-dashboard/internal/models"
)

// InvoiceRepository defines the interface for invoice data access
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context, filter models.InvoiceFilter) ([]*models.InvoiceRow, int64, error)
	Latest(ctx context.Context, limit int) ([]*models.LatestInvoice, error)
	CardData(ctx context.Context) (*models.CardData, error)
	// Update and Delete report the number of rows affected; a missing id is
	// not an error.
	Update(ctx context.Context, invoice *models.Invoice) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// invoiceRepository implements InvoiceRepository using PostgreSQL
type invoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create inserts a new invoice
func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (customer_id, amount, status, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(
		ctx,
		query,
		invoice.CustomerID,
		invoice.Amount,
		invoice.Status,
		invoice.Date,
	).Scan(&invoice.ID)

	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	return nil
}

// GetByID retrieves an invoice by ID
func (r *invoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := `
		SELECT id, customer_id, amount, status, to_char(date, 'YYYY-MM-DD')
		FROM invoices
		WHERE id = $1`

	// A malformed id cannot match any row; asking would fail the uuid cast
	if uuid.Validate(id) != nil {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("invoice with ID %s not found", id))
	}

	invoice := &models.Invoice{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&invoice.ID,
		&invoice.CustomerID,
		&invoice.Amount,
		&invoice.Status,
		&invoice.Date,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("invoice with ID %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return invoice, nil
}

// List retrieves invoices matching the free-text query, one page at a time
func (r *invoiceRepository) List(ctx context.Context, filter models.InvoiceFilter) ([]*models.InvoiceRow, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	q := buildListQuery(filter)

	// Get total count
	var totalCount int64
	err := r.db.QueryRowContext(ctx, q.count, q.countArgs...).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, q.page, q.pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*models.InvoiceRow{}
	for rows.Next() {
		row := &models.InvoiceRow{}
		err := rows.Scan(
			&row.ID,
			&row.CustomerID,
			&row.Name,
			&row.Email,
			&row.ImageURL,
			&row.Amount,
			&row.Status,
			&row.Date,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, row)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, totalCount, nil
}

// Latest retrieves the most recent invoices with their customers
func (r *invoiceRepository) Latest(ctx context.Context, limit int) ([]*models.LatestInvoice, error) {
	query := `
		SELECT invoices.id, customers.name, customers.email, customers.image_url, invoices.amount
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		ORDER BY invoices.date DESC, invoices.id DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest invoices: %w", err)
	}
	defer rows.Close()

	latest := []*models.LatestInvoice{}
	for rows.Next() {
		inv := &models.LatestInvoice{}
		if err := rows.Scan(&inv.ID, &inv.Name, &inv.Email, &inv.ImageURL, &inv.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan latest invoice: %w", err)
		}
		latest = append(latest, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating latest invoices: %w", err)
	}

	return latest, nil
}

// CardData retrieves the aggregate figures for the dashboard cards
func (r *invoiceRepository) CardData(ctx context.Context) (*models.CardData, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM customers) AS customers,
			COUNT(*) AS invoices,
			COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0) AS paid,
			COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0) AS pending
		FROM invoices`

	var data models.CardData
	err := r.db.QueryRowContext(ctx, query).Scan(
		&data.NumberOfCustomers,
		&data.NumberOfInvoices,
		&data.TotalPaid,
		&data.TotalPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get card data: %w", err)
	}

	return &data, nil
}

// Update updates the customer, amount and status of an invoice
func (r *invoiceRepository) Update(ctx context.Context, invoice *models.Invoice) (int64, error) {
	query := `
		UPDATE invoices
		SET customer_id = $1, amount = $2, status = $3
		WHERE id = $4`

	if uuid.Validate(invoice.ID) != nil {
		return 0, nil
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		invoice.CustomerID,
		invoice.Amount,
		invoice.Status,
		invoice.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update invoice: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// Delete removes an invoice
func (r *invoiceRepository) Delete(ctx context.Context, id string) (int64, error) {
	query := `DELETE FROM invoices WHERE id = $1`

	if uuid.Validate(id) != nil {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete invoice: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// listQuery holds the two statements of a listing read: the total match
// count and one ordered page
type listQuery struct {
	count     string
	countArgs []interface{}
	page      string
	pageArgs  []interface{}
}

// buildListQuery expects filter to have passed ValidateAndSetDefaults
func buildListQuery(filter models.InvoiceFilter) listQuery {
	from := `
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.Query != "" {
		from += fmt.Sprintf(` AND (
			customers.name ILIKE $%[1]d OR
			customers.email ILIKE $%[1]d OR
			invoices.amount::text ILIKE $%[1]d OR
			invoices.date::text ILIKE $%[1]d OR
			invoices.status ILIKE $%[1]d
		)`, argPos)
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		argPos++
	}

	// Stable ordering (date DESC, then id) keeps pages from overlapping
	page := `
		SELECT
			invoices.id,
			invoices.customer_id,
			customers.name,
			customers.email,
			customers.image_url,
			invoices.amount,
			invoices.status,
			to_char(invoices.date, 'YYYY-MM-DD')` + from
	page += fmt.Sprintf(" ORDER BY invoices.date DESC, invoices.id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)

	pageArgs := make([]interface{}, 0, len(args)+2)
	pageArgs = append(pageArgs, args...)
	pageArgs = append(pageArgs, filter.PageSize, models.CalculateOffset(filter.Page, filter.PageSize))

	return listQuery{
		count:     "SELECT COUNT(*)" + from,
		countArgs: args,
		page:      page,
		pageArgs:  pageArgs,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
