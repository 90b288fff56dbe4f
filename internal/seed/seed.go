// Package seed loads the placeholder customers and invoices used for local
// development and demos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Raymond9734/invoice-dashboard/internal/models"
	"github.com/Raymond9734/invoice-dashboard/internal/repository"
)

// namespace derives stable customer IDs from email addresses so reseeding
// finds the customers it created before.
var namespace = uuid.MustParse("7c0f3ad0-5d8b-4a55-9c61-2f8f0cb1e9a4")

// CustomerID returns the seeded ID for a customer email
func CustomerID(email string) string {
	return uuid.NewSHA1(namespace, []byte(email)).String()
}

type seedInvoice struct {
	amount int64
	status string
	date   string
}

type seedCustomer struct {
	name     string
	email    string
	imageURL string
	invoices []seedInvoice
}

var customers = []seedCustomer{
	{
		name: "Delba de Oliveira", email: "delba@oliveira.com", imageURL: "/customers/delba-de-oliveira.png",
		invoices: []seedInvoice{
			{15795, models.InvoiceStatusPending, "2022-12-06"},
			{666, models.InvoiceStatusPending, "2023-06-27"},
		},
	},
	{
		name: "Lee Robinson", email: "lee@robinson.com", imageURL: "/customers/lee-robinson.png",
		invoices: []seedInvoice{
			{20348, models.InvoiceStatusPending, "2022-11-14"},
			{500, models.InvoiceStatusPaid, "2023-08-19"},
		},
	},
	{
		name: "Hector Simpson", email: "hector@simpson.com", imageURL: "/customers/hector-simpson.png",
		invoices: []seedInvoice{
			{3040, models.InvoiceStatusPaid, "2022-10-29"},
			{32545, models.InvoiceStatusPaid, "2023-06-09"},
		},
	},
	{
		name: "Steven Tey", email: "steven@tey.com", imageURL: "/customers/steven-tey.png",
		invoices: []seedInvoice{
			{44800, models.InvoiceStatusPaid, "2023-09-10"},
			{1250, models.InvoiceStatusPaid, "2023-06-17"},
		},
	},
	{
		name: "Steph Dietz", email: "steph@dietz.com", imageURL: "/customers/steph-dietz.png",
		invoices: []seedInvoice{
			{34577, models.InvoiceStatusPending, "2023-08-05"},
			{8546, models.InvoiceStatusPaid, "2023-06-07"},
		},
	},
	{
		name: "Michael Novotny", email: "michael@novotny.com", imageURL: "/customers/michael-novotny.png",
		invoices: []seedInvoice{
			{54246, models.InvoiceStatusPending, "2023-07-16"},
			{8945, models.InvoiceStatusPaid, "2023-06-03"},
		},
	},
	{
		name: "Evil Rabbit", email: "evil@rabbit.com", imageURL: "/customers/evil-rabbit.png",
		invoices: []seedInvoice{
			{1000, models.InvoiceStatusPaid, "2022-06-05"},
		},
	},
	{
		name: "Emil Kowalski", email: "emil@kowalski.com", imageURL: "/customers/emil-kowalski.png",
		invoices: []seedInvoice{
			{19281, models.InvoiceStatusPending, "2023-10-23"},
		},
	},
}

// Result counts what a Load call inserted
type Result struct {
	Customers int
	Invoices  int
}

// Load inserts the placeholder data. Customers that already exist are
// skipped together with their invoices, so Load can be run repeatedly.
func Load(
	ctx context.Context,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	logger *slog.Logger,
) (Result, error) {
	var result Result

	for _, sc := range customers {
		customer := &models.Customer{
			ID:       CustomerID(sc.email),
			Name:     sc.name,
			Email:    sc.email,
			ImageURL: sc.imageURL,
		}

		if err := customer.Validate(); err != nil {
			return result, fmt.Errorf("invalid seed customer %s: %w", sc.email, err)
		}

		err := customerRepo.Create(ctx, customer)
		if errors.Is(err, models.ErrAlreadyExists) {
			logger.Debug("customer already seeded", slog.String("email", sc.email))
			continue
		}
		if err != nil {
			return result, fmt.Errorf("failed to seed customer %s: %w", sc.email, err)
		}
		result.Customers++

		for _, si := range sc.invoices {
			invoice := &models.Invoice{
				CustomerID: customer.ID,
				Amount:     si.amount,
				Status:     si.status,
				Date:       si.date,
			}
			if err := invoice.Validate(); err != nil {
				return result, fmt.Errorf("invalid seed invoice for %s: %w", sc.email, err)
			}
			if err := invoiceRepo.Create(ctx, invoice); err != nil {
				return result, fmt.Errorf("failed to seed invoice for %s: %w", sc.email, err)
			}
			result.Invoices++
		}
	}

	logger.Info("seed data loaded",
		slog.Int("customers", result.Customers),
		slog.Int("invoices", result.Invoices),
	)

	return result, nil
}
