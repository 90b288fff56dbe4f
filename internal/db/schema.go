package db

import (
	"context"
	"fmt"
)

// schema creates the customers and invoices tables. Every statement is
// idempotent so Migrate can run on each deploy.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		image_url VARCHAR(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		customer_id UUID NOT NULL REFERENCES customers (id),
		amount INT NOT NULL CHECK (amount >= 0),
		status VARCHAR(255) NOT NULL CHECK (status IN ('pending', 'paid')),
		date DATE NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS invoices_date_idx ON invoices (date DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS invoices_customer_idx ON invoices (customer_id)`,
}

// Migrate applies the schema
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
