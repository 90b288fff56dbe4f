package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raymond9734/invoice-dashboard/internal/cache"
	"github.com/Raymond9734/invoice-dashboard/internal/models"
	"github.com/Raymond9734/invoice-dashboard/internal/repository/memory"
)

var fixedNow = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockInvoiceRepository records calls and returns canned results
type mockInvoiceRepository struct {
	created   []*models.Invoice
	updated   []*models.Invoice
	deleted   []string
	listCalls int
	rows      int64
	err       error
}

func (m *mockInvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if m.err != nil {
		return m.err
	}
	invoice.ID = fmt.Sprintf("inv-%d", len(m.created)+1)
	m.created = append(m.created, invoice)
	return nil
}

func (m *mockInvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	return nil, models.ErrNotFoundWithMsg("invoice not found")
}

func (m *mockInvoiceRepository) List(ctx context.Context, filter models.InvoiceFilter) ([]*models.InvoiceRow, int64, error) {
	m.listCalls++
	return []*models.InvoiceRow{}, 0, m.err
}

func (m *mockInvoiceRepository) Latest(ctx context.Context, limit int) ([]*models.LatestInvoice, error) {
	return nil, m.err
}

func (m *mockInvoiceRepository) CardData(ctx context.Context) (*models.CardData, error) {
	return &models.CardData{}, m.err
}

func (m *mockInvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.updated = append(m.updated, invoice)
	return m.rows, nil
}

func (m *mockInvoiceRepository) Delete(ctx context.Context, id string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.deleted = append(m.deleted, id)
	return m.rows, nil
}

func (m *mockInvoiceRepository) calls() int {
	return len(m.created) + len(m.updated) + len(m.deleted)
}

// recordingCache wraps the memory store and counts invalidations
type recordingCache struct {
	*cache.MemoryStore
	invalidated    []string
	failInvalidate bool
}

func newRecordingCache() *recordingCache {
	return &recordingCache{MemoryStore: cache.NewMemoryStore()}
}

func (c *recordingCache) Invalidate(ctx context.Context, tag string) error {
	c.invalidated = append(c.invalidated, tag)
	if c.failInvalidate {
		return errors.New("redis: connection refused")
	}
	return c.MemoryStore.Invalidate(ctx, tag)
}

func newTestService(repo *mockInvoiceRepository, c *recordingCache) InvoiceService {
	return NewInvoiceService(repo, memory.New().Customers(), c, discardLogger(), WithClock(func() time.Time { return fixedNow }))
}

func invoiceForm(customerID, amount, status string) url.Values {
	return url.Values{
		FieldCustomerID: {customerID},
		FieldAmount:     {amount},
		FieldStatus:     {status},
	}
}

func TestInvoiceService_Create(t *testing.T) {
	repo := &mockInvoiceRepository{}
	c := newRecordingCache()
	svc := newTestService(repo, c)

	invoice, err := svc.Create(context.Background(), invoiceForm("c1", "25.50", "paid"))
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, &models.Invoice{
		ID:         "inv-1",
		CustomerID: "c1",
		Amount:     2550,
		Status:     "paid",
		Date:       "2024-03-15",
	}, repo.created[0])
	assert.Equal(t, invoice, repo.created[0])
	assert.Equal(t, []string{models.InvoicesTag}, c.invalidated)
}

func TestInvoiceService_Create_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		form      url.Values
		wantField string
	}{
		{name: "status outside enum", form: invoiceForm("c1", "10", "overdue"), wantField: FieldStatus},
		{name: "empty status", form: invoiceForm("c1", "10", ""), wantField: FieldStatus},
		{name: "status wrong case", form: invoiceForm("c1", "10", "Paid"), wantField: FieldStatus},
		{name: "missing customer", form: invoiceForm("", "10", "paid"), wantField: FieldCustomerID},
		{name: "blank customer", form: invoiceForm("   ", "10", "paid"), wantField: FieldCustomerID},
		{name: "non-numeric amount", form: invoiceForm("c1", "ten", "paid"), wantField: FieldAmount},
		{name: "empty amount", form: invoiceForm("c1", "", "paid"), wantField: FieldAmount},
		{name: "zero amount", form: invoiceForm("c1", "0", "paid"), wantField: FieldAmount},
		{name: "negative amount", form: invoiceForm("c1", "-5", "paid"), wantField: FieldAmount},
		{name: "absent fields", form: url.Values{}, wantField: FieldCustomerID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockInvoiceRepository{}
			c := newRecordingCache()
			svc := newTestService(repo, c)

			invoice, err := svc.Create(context.Background(), tt.form)
			assert.Nil(t, invoice)

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
			assert.NotEmpty(t, verr.Field(tt.wantField))
			assert.Equal(t, "Missing Fields. Failed to Create Invoice.", verr.Message)

			assert.Zero(t, repo.calls(), "no persistence call on invalid input")
			assert.Empty(t, c.invalidated)
		})
	}
}

func TestValidateInvoiceForm_ReportsEveryField(t *testing.T) {
	_, err := ValidateInvoiceForm(url.Values{}, "Create")

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
	assert.Equal(t, "Please select a customer.", verr.Field(FieldCustomerID))
	assert.Equal(t, "Please enter a numeric amount.", verr.Field(FieldAmount))
	assert.Equal(t, "Please select an invoice status.", verr.Field(FieldStatus))
}

func TestValidateInvoiceForm_Cents(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"25.50", 2550},
		{"1", 100},
		{"0.01", 1},
		{"0.015", 2},
		{"10.004", 1000},
		{" 42.42 ", 4242},
		{"21474836.47", 2147483647},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			input, err := ValidateInvoiceForm(invoiceForm("c1", tt.amount, "pending"), "Create")
			require.NoError(t, err)
			assert.Equal(t, tt.want, input.AmountCents)
			assert.GreaterOrEqual(t, input.AmountCents, int64(0))
		})
	}

	rejected := []struct {
		amount string
		want   string
	}{
		{"21474836.48", "Amount is too large."},
		{"184467440737095516.17", "Amount is too large."},
		{"92233720368547758.08", "Amount is too large."},
		{"0.004", "Please enter an amount greater than $0."},
		{"-92233720368547758.09", "Please enter an amount greater than $0."},
		{"1e2", "Please enter a numeric amount."},
		{"1e99999999", "Please enter a numeric amount."},
		{"12,50", "Please enter a numeric amount."},
		{"1234567890123456789012345678901234567890", "Amount is too large."},
	}

	for _, tt := range rejected {
		t.Run("rejects "+tt.amount, func(t *testing.T) {
			_, err := ValidateInvoiceForm(invoiceForm("c1", tt.amount, "pending"), "Create")
			require.Error(t, err)

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.want, verr.Field(FieldAmount))
		})
	}
}

func TestInvoiceService_Create_PersistenceError(t *testing.T) {
	repo := &mockInvoiceRepository{err: errors.New("pq: insert or update on table \"invoices\" violates foreign key constraint")}
	c := newRecordingCache()
	svc := newTestService(repo, c)

	_, err := svc.Create(context.Background(), invoiceForm("c1", "25.50", "paid"))
	require.Error(t, err)

	var perr *models.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Database error: Failed to create invoice.", perr.Message())
	assert.Empty(t, c.invalidated, "failed writes do not invalidate")
}

func TestInvoiceService_Update(t *testing.T) {
	repo := &mockInvoiceRepository{rows: 1}
	c := newRecordingCache()
	svc := newTestService(repo, c)

	invoice, err := svc.Update(context.Background(), "inv-9", invoiceForm("c2", "3.07", "pending"))
	require.NoError(t, err)

	require.Len(t, repo.updated, 1)
	assert.Equal(t, &models.Invoice{ID: "inv-9", CustomerID: "c2", Amount: 307, Status: "pending"}, repo.updated[0])
	assert.Empty(t, invoice.Date, "update does not re-stamp the date")
	assert.Equal(t, []string{models.InvoicesTag}, c.invalidated)
}

func TestInvoiceService_Update_Errors(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		repo := &mockInvoiceRepository{}
		svc := newTestService(repo, newRecordingCache())

		_, err := svc.Update(context.Background(), "inv-1", invoiceForm("c1", "abc", "paid"))
		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "Missing Fields. Failed to Update Invoice.", verr.Message)
		assert.Zero(t, repo.calls())
	})

	t.Run("persistence", func(t *testing.T) {
		repo := &mockInvoiceRepository{err: errors.New("connection reset by peer")}
		svc := newTestService(repo, newRecordingCache())

		_, err := svc.Update(context.Background(), "inv-1", invoiceForm("c1", "1", "paid"))
		assert.EqualError(t, err, "Database error: Failed to update invoice.")
	})

	t.Run("missing row is a silent success", func(t *testing.T) {
		repo := &mockInvoiceRepository{rows: 0}
		c := newRecordingCache()
		svc := newTestService(repo, c)

		_, err := svc.Update(context.Background(), "missing", invoiceForm("c1", "1", "paid"))
		assert.NoError(t, err)
		assert.Equal(t, []string{models.InvoicesTag}, c.invalidated)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	t.Run("non-existent id still invalidates", func(t *testing.T) {
		repo := &mockInvoiceRepository{rows: 0}
		c := newRecordingCache()
		svc := newTestService(repo, c)

		require.NoError(t, svc.Delete(context.Background(), "does-not-exist"))
		assert.Equal(t, []string{"does-not-exist"}, repo.deleted)
		assert.Equal(t, []string{models.InvoicesTag}, c.invalidated)
	})

	t.Run("empty id", func(t *testing.T) {
		repo := &mockInvoiceRepository{}
		c := newRecordingCache()
		svc := newTestService(repo, c)

		err := svc.Delete(context.Background(), "")
		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Zero(t, repo.calls())
		assert.Empty(t, c.invalidated)
	})

	t.Run("persistence", func(t *testing.T) {
		repo := &mockInvoiceRepository{err: errors.New("timeout")}
		c := newRecordingCache()
		svc := newTestService(repo, c)

		err := svc.Delete(context.Background(), "inv-1")
		assert.EqualError(t, err, "Database error: Failed to delete invoice.")
		assert.Empty(t, c.invalidated)
	})

	t.Run("invalidation failure does not fail the delete", func(t *testing.T) {
		repo := &mockInvoiceRepository{rows: 1}
		c := newRecordingCache()
		c.failInvalidate = true
		svc := newTestService(repo, c)

		assert.NoError(t, svc.Delete(context.Background(), "inv-1"))
		assert.Len(t, c.invalidated, 1)
	})
}

func seedAcme(t *testing.T, store *memory.Store, n int) {
	t.Helper()
	ctx := context.Background()
	acme := &models.Customer{Name: "Acme Inc", Email: "ops@acme.test"}
	require.NoError(t, store.Customers().Create(ctx, acme))
	other := &models.Customer{Name: "Initech", Email: "bill@initech.test"}
	require.NoError(t, store.Customers().Create(ctx, other))

	for i := 1; i <= n; i++ {
		require.NoError(t, store.Invoices().Create(ctx, &models.Invoice{
			CustomerID: acme.ID,
			Amount:     int64(1000 + i),
			Status:     models.InvoiceStatusPending,
			Date:       fmt.Sprintf("2024-01-%02d", 20-i),
		}))
	}
	require.NoError(t, store.Invoices().Create(ctx, &models.Invoice{
		CustomerID: other.ID, Amount: 5, Status: models.InvoiceStatusPaid, Date: "2024-02-01",
	}))
}

func TestInvoiceService_List_Pagination(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		page           int
		wantAmounts    []int64
		wantTotalCount int64
		wantTotalPages int
		wantPage       int
	}{
		{
			name:           "second page of acme holds rows 7-8",
			query:          "acme",
			page:           2,
			wantAmounts:    []int64{1007, 1008},
			wantTotalCount: 8,
			wantTotalPages: 2,
			wantPage:       2,
		},
		{
			name:           "first page is full",
			query:          "ACME",
			page:           1,
			wantAmounts:    []int64{1001, 1002, 1003, 1004, 1005, 1006},
			wantTotalCount: 8,
			wantTotalPages: 2,
			wantPage:       1,
		},
		{
			name:           "page beyond last is empty",
			query:          "acme",
			page:           3,
			wantAmounts:    []int64{},
			wantTotalCount: 8,
			wantTotalPages: 2,
			wantPage:       3,
		},
		{
			name:           "no matches gives zero pages",
			query:          "umbrella",
			page:           1,
			wantAmounts:    []int64{},
			wantTotalCount: 0,
			wantTotalPages: 0,
			wantPage:       1,
		},
		{
			name:           "zero page defaults to 1",
			query:          "",
			page:           0,
			wantAmounts:    []int64{5, 1001, 1002, 1003, 1004, 1005},
			wantTotalCount: 9,
			wantTotalPages: 2,
			wantPage:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			seedAcme(t, store, 8)
			svc := NewInvoiceService(store.Invoices(), store.Customers(), cache.NewMemoryStore(), discardLogger())

			result, err := svc.List(context.Background(), tt.query, tt.page)
			require.NoError(t, err)

			amounts := make([]int64, 0, len(result.Invoices))
			for _, row := range result.Invoices {
				amounts = append(amounts, row.Amount)
			}
			assert.Equal(t, tt.wantAmounts, amounts)
			assert.Equal(t, tt.wantTotalCount, result.Pagination.TotalCount)
			assert.Equal(t, tt.wantTotalPages, result.Pagination.TotalPages)
			assert.Equal(t, tt.wantPage, result.Pagination.Page)
			assert.Equal(t, models.InvoicesPerPage, result.Pagination.PageSize)
		})
	}
}

func TestInvoiceService_List_CachedUntilInvalidated(t *testing.T) {
	repo := &mockInvoiceRepository{}
	c := newRecordingCache()
	svc := newTestService(repo, c)
	ctx := context.Background()

	_, err := svc.List(ctx, "acme", 1)
	require.NoError(t, err)
	_, err = svc.List(ctx, "acme", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second render is served from cache")

	_, err = svc.List(ctx, "acme", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls, "different search state has its own key")

	_, err = svc.Create(ctx, invoiceForm("c1", "1", "paid"))
	require.NoError(t, err)

	_, err = svc.List(ctx, "acme", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.listCalls, "mutation invalidates cached listings")
}

// interleavingRepository runs afterList once, between the repository read
// of a listing and the moment the service caches it
type interleavingRepository struct {
	*memory.InvoiceRepository
	afterList func()
}

func (r *interleavingRepository) List(ctx context.Context, filter models.InvoiceFilter) ([]*models.InvoiceRow, int64, error) {
	rows, total, err := r.InvoiceRepository.List(ctx, filter)
	if hook := r.afterList; hook != nil {
		r.afterList = nil
		hook()
	}
	return rows, total, err
}

func TestInvoiceService_List_DeleteDuringReadIsNotServed(t *testing.T) {
	store := memory.New()
	seedAcme(t, store, 1)
	ctx := context.Background()

	rows, _, err := store.Invoices().List(ctx, models.InvoiceFilter{Query: "acme", Page: 1, PageSize: models.InvoicesPerPage})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	repo := &interleavingRepository{InvoiceRepository: store.Invoices()}
	svc := NewInvoiceService(repo, store.Customers(), cache.NewMemoryStore(), discardLogger())
	repo.afterList = func() {
		require.NoError(t, svc.Delete(ctx, rows[0].ID))
	}

	stale, err := svc.List(ctx, "acme", 1)
	require.NoError(t, err)
	assert.Len(t, stale.Invoices, 1, "the in-flight read saw the row")

	fresh, err := svc.List(ctx, "acme", 1)
	require.NoError(t, err)
	assert.Empty(t, fresh.Invoices)
	assert.Zero(t, fresh.Pagination.TotalCount)
}

// failingGenerationCache cannot report tag generations
type failingGenerationCache struct {
	*cache.MemoryStore
}

func (c *failingGenerationCache) Generation(ctx context.Context, tag string) (int64, error) {
	return 0, errors.New("redis: connection refused")
}

func TestInvoiceService_List_GenerationFailureBypassesCache(t *testing.T) {
	repo := &mockInvoiceRepository{}
	c := &failingGenerationCache{MemoryStore: cache.NewMemoryStore()}
	svc := NewInvoiceService(repo, memory.New().Customers(), c, discardLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.List(ctx, "acme", 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, repo.listCalls, "every render reads the repository")
}

func TestInvoiceService_List_PageSizeClamped(t *testing.T) {
	store := memory.New()
	seedAcme(t, store, 3)
	svc := NewInvoiceService(store.Invoices(), store.Customers(), cache.NewMemoryStore(), discardLogger(), WithPageSize(500))

	result, err := svc.List(context.Background(), "", 1)
	require.NoError(t, err)

	assert.Equal(t, models.MaxPageSize, result.Pagination.PageSize)
	assert.Equal(t, 1, result.Pagination.TotalPages)
	assert.Len(t, result.Invoices, 4)
}

func TestInvoiceService_Dashboard(t *testing.T) {
	store := memory.New()
	seedAcme(t, store, 7)
	svc := NewInvoiceService(store.Invoices(), store.Customers(), cache.NewMemoryStore(), discardLogger())

	data, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), data.Cards.NumberOfCustomers)
	assert.Equal(t, int64(8), data.Cards.NumberOfInvoices)
	assert.Equal(t, int64(5), data.Cards.TotalPaid)
	assert.Equal(t, int64(1001+1002+1003+1004+1005+1006+1007), data.Cards.TotalPending)
	assert.Len(t, data.LatestInvoices, latestInvoicesLimit)
	assert.Equal(t, int64(5), data.LatestInvoices[0].Amount)

	customers, err := svc.Customers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Acme Inc", customers[0].Name)
}
