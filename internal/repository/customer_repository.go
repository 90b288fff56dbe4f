package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Raymond9734/invoice-dashboard/internal/models"
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	List(ctx context.Context) ([]*models.Customer, error)
}

// customerRepository implements CustomerRepository using PostgreSQL
type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create inserts a customer, keeping the caller's ID when one is set
func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, name, email, image_url)
		VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
		RETURNING id`

	err := r.db.QueryRowContext(
		ctx,
		query,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.ImageURL,
	).Scan(&customer.ID)

	// ON CONFLICT DO NOTHING returns no row for an existing customer
	if err == sql.ErrNoRows {
		return models.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// List retrieves all customers ordered by name
func (r *customerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	query := `
		SELECT id, name, email, image_url
		FROM customers
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		customer := &models.Customer{}
		err := rows.Scan(
			&customer.ID,
			&customer.Name,
			&customer.Email,
			&customer.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}
