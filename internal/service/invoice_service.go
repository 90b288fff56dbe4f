package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Raymond9734/invoice-dashboard/internal/cache"
	"github.com/Raymond9734/invoice-dashboard/internal/models"
	"github.com/Raymond9734/invoice-dashboard/internal/repository"
)

const latestInvoicesLimit = 5

var tracer = otel.Tracer("github.com/Raymond9734/invoice-dashboard/internal/service")

// InvoiceService handles invoice business logic
type InvoiceService interface {
	Create(ctx context.Context, form url.Values) (*models.Invoice, error)
	Update(ctx context.Context, id string, form url.Values) (*models.Invoice, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context, query string, page int) (*InvoicePage, error)
	Dashboard(ctx context.Context) (*DashboardData, error)
	Customers(ctx context.Context) ([]*models.Customer, error)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	cache        cache.Store
	pageSize     int
	now          func() time.Time
	logger       *slog.Logger
}

// Option customizes an InvoiceService
type Option func(*invoiceService)

// WithClock overrides the clock used to stamp new invoices
func WithClock(now func() time.Time) Option {
	return func(s *invoiceService) { s.now = now }
}

// WithPageSize overrides the listing page size. Sizes above
// models.MaxPageSize are clamped to it.
func WithPageSize(size int) Option {
	return func(s *invoiceService) {
		switch {
		case size > models.MaxPageSize:
			s.pageSize = models.MaxPageSize
		case size > 0:
			s.pageSize = size
		}
	}
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	cacheStore cache.Store,
	logger *slog.Logger,
	opts ...Option,
) InvoiceService {
	s := &invoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		cache:        cacheStore,
		pageSize:     models.InvoicesPerPage,
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the form, stamps today's date and inserts the invoice
func (s *invoiceService) Create(ctx context.Context, form url.Values) (*models.Invoice, error) {
	ctx, span := tracer.Start(ctx, "InvoiceService.Create")
	defer span.End()

	input, err := ValidateInvoiceForm(form, "Create")
	if err != nil {
		return nil, spanError(span, err)
	}

	invoice := &models.Invoice{
		CustomerID: input.CustomerID,
		Amount:     input.AmountCents,
		Status:     input.Status,
		Date:       models.Today(s.now()),
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		s.logPersistenceFailure("create", err, slog.String("customer_id", invoice.CustomerID))
		return nil, spanError(span, models.NewPersistenceError("create", err))
	}

	s.logger.Info("invoice created",
		slog.String("invoice_id", invoice.ID),
		slog.String("customer_id", invoice.CustomerID),
		slog.Int64("amount", invoice.Amount),
		slog.String("status", invoice.Status),
	)
	span.SetAttributes(attribute.String("invoice.id", invoice.ID))

	s.invalidateListing(ctx)

	return invoice, nil
}

// Update validates the form and rewrites customer, amount and status.
// The issue date is left as it was.
func (s *invoiceService) Update(ctx context.Context, id string, form url.Values) (*models.Invoice, error) {
	ctx, span := tracer.Start(ctx, "InvoiceService.Update", trace.WithAttributes(attribute.String("invoice.id", id)))
	defer span.End()

	input, err := ValidateInvoiceForm(form, "Update")
	if err != nil {
		return nil, spanError(span, err)
	}

	invoice := &models.Invoice{
		ID:         id,
		CustomerID: input.CustomerID,
		Amount:     input.AmountCents,
		Status:     input.Status,
	}

	rows, err := s.invoiceRepo.Update(ctx, invoice)
	if err != nil {
		s.logPersistenceFailure("update", err, slog.String("invoice_id", id))
		return nil, spanError(span, models.NewPersistenceError("update", err))
	}

	if rows == 0 {
		s.logger.Warn("invoice update matched no rows", slog.String("invoice_id", id))
	} else {
		s.logger.Info("invoice updated",
			slog.String("invoice_id", id),
			slog.Int64("amount", invoice.Amount),
			slog.String("status", invoice.Status),
		)
	}

	s.invalidateListing(ctx)

	return invoice, nil
}

// Delete removes an invoice. Deleting a missing invoice still succeeds.
func (s *invoiceService) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "InvoiceService.Delete", trace.WithAttributes(attribute.String("invoice.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return spanError(span, &models.ValidationError{
			Message: "Failed to Delete Invoice.",
			Fields:  map[string]string{FieldID: "Invoice id is required."},
		})
	}

	rows, err := s.invoiceRepo.Delete(ctx, id)
	if err != nil {
		s.logPersistenceFailure("delete", err, slog.String("invoice_id", id))
		return spanError(span, models.NewPersistenceError("delete", err))
	}

	if rows == 0 {
		s.logger.Warn("invoice delete matched no rows", slog.String("invoice_id", id))
	} else {
		s.logger.Info("invoice deleted", slog.String("invoice_id", id))
	}

	s.invalidateListing(ctx)

	return nil
}

// GetByID retrieves an invoice for the edit form
func (s *invoiceService) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	ctx, span := tracer.Start(ctx, "InvoiceService.GetByID", trace.WithAttributes(attribute.String("invoice.id", id)))
	defer span.End()

	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, spanError(span, err)
	}

	return invoice, nil
}

// List returns one page of invoices matching query. Pages past the end
// are empty rather than an error.
func (s *invoiceService) List(ctx context.Context, query string, page int) (*InvoicePage, error) {
	ctx, span := tracer.Start(ctx, "InvoiceService.List", trace.WithAttributes(
		attribute.String("search.query", query),
		attribute.Int("search.page", page),
	))
	defer span.End()

	if page < 1 {
		page = 1
	}

	// The generation is read before the repository so a write landing
	// between the read and the store leaves this page under a stale key.
	gen, err := s.cache.Generation(ctx, models.InvoicesTag)
	cacheable := err == nil
	if !cacheable {
		s.logger.Warn("cache generation read failed, bypassing listing cache",
			slog.String("tag", models.InvoicesTag),
			slog.String("error", err.Error()),
		)
	}

	key := cache.ListingKey(gen, query, page)
	if cacheable {
		if cached, ok := s.cachedPage(ctx, key); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
	}

	rows, totalCount, err := s.invoiceRepo.List(ctx, models.InvoiceFilter{
		Query:    query,
		Page:     page,
		PageSize: s.pageSize,
	})
	if err != nil {
		s.logger.Error("failed to list invoices",
			slog.String("query", query),
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
		return nil, spanError(span, err)
	}

	result := &InvoicePage{
		Query:      query,
		Invoices:   rows,
		Pagination: models.NewPaginationResult(page, s.pageSize, totalCount),
	}

	if cacheable {
		s.storePage(ctx, key, result)
	}

	return result, nil
}

// Dashboard returns the overview cards and the most recent invoices
func (s *invoiceService) Dashboard(ctx context.Context) (*DashboardData, error) {
	ctx, span := tracer.Start(ctx, "InvoiceService.Dashboard")
	defer span.End()

	cards, err := s.invoiceRepo.CardData(ctx)
	if err != nil {
		return nil, spanError(span, err)
	}

	latest, err := s.invoiceRepo.Latest(ctx, latestInvoicesLimit)
	if err != nil {
		return nil, spanError(span, err)
	}

	return &DashboardData{
		Cards:          *cards,
		LatestInvoices: latest,
	}, nil
}

// Customers lists the customers an invoice can be billed to
func (s *invoiceService) Customers(ctx context.Context) ([]*models.Customer, error) {
	ctx, span := tracer.Start(ctx, "InvoiceService.Customers")
	defer span.End()

	customers, err := s.customerRepo.List(ctx)
	if err != nil {
		return nil, spanError(span, err)
	}

	return customers, nil
}

// invalidateListing purges every cached listing page. A failure here does
// not undo the write, so it is only logged.
func (s *invoiceService) invalidateListing(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, models.InvoicesTag); err != nil {
		s.logger.Warn("failed to invalidate invoice listing cache",
			slog.String("tag", models.InvoicesTag),
			slog.String("error", err.Error()),
		)
	}
}

func (s *invoiceService) cachedPage(ctx context.Context, key string) (*InvoicePage, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var page InvoicePage
	if err := json.Unmarshal(data, &page); err != nil {
		s.logger.Warn("discarding undecodable cache entry", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}
	return &page, true
}

func (s *invoiceService) storePage(ctx context.Context, key string, page *InvoicePage) {
	data, err := json.Marshal(page)
	if err != nil {
		s.logger.Warn("failed to encode listing for cache", slog.String("error", err.Error()))
		return
	}
	if err := s.cache.Set(ctx, key, data, models.InvoicesTag); err != nil {
		s.logger.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// logPersistenceFailure keeps the underlying cause server-side; callers
// only ever see the generic message.
func (s *invoiceService) logPersistenceFailure(op string, err error, attrs ...any) {
	attrs = append(attrs,
		slog.String("op", op),
		slog.String("error", err.Error()),
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		attrs = append(attrs,
			slog.String("sqlstate", string(pqErr.Code)),
			slog.String("constraint", pqErr.Constraint),
		)
	}

	s.logger.Error("invoice persistence failed", attrs...)
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
