package handler

import (
	"embed"
	"html/template"
	"io/fs"
	"net/url"
	"strconv"

	"github.com/Raymond9734/invoice-dashboard/internal/models"
	"github.com/Raymond9734/invoice-dashboard/internal/search"
	"github.com/Raymond9734/invoice-dashboard/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// listingPath is where the invoice listing lives
const listingPath = "/dashboard/invoices"

var templateFuncs = template.FuncMap{
	"formatCurrency": models.FormatCurrency,
	"formatDate":     models.FormatDate,
}

// parseTemplates parses every page template with the shared layout
func parseTemplates() (*template.Template, error) {
	return template.New("pages").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

// StaticFiles serves the embedded browser assets
func StaticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

type dashboardView struct {
	Title string
	Data  *service.DashboardData
}

type pageLink struct {
	Number   int
	URL      string
	Current  bool
	Ellipsis bool
}

type invoicesView struct {
	Title      string
	Page       *service.InvoicePage
	CurrentURL string
	PrevURL    string
	NextURL    string
	Links      []pageLink
	Error      string
}

// formValues echoes what the user entered (or what is stored) back into
// the invoice form
type formValues struct {
	CustomerID string
	Amount     string
	Status     string
}

type formView struct {
	Title     string
	Action    string
	Submit    string
	Customers []*models.Customer
	Values    formValues
	Errors    map[string]string
	Message   string
}

type errorView struct {
	Title   string
	Message string
}

// listingURL rebuilds the listing URL for a search state
func listingURL(query string, page int) *url.URL {
	values := url.Values{}
	if query != "" {
		values.Set(search.ParamQuery, query)
	}
	values.Set(search.ParamPage, strconv.Itoa(page))
	return &url.URL{Path: listingPath, RawQuery: values.Encode()}
}

func newInvoicesView(page *service.InvoicePage) invoicesView {
	current := listingURL(page.Query, page.Pagination.Page)
	view := invoicesView{
		Title:      "Invoices",
		Page:       page,
		CurrentURL: current.RequestURI(),
	}

	p := page.Pagination
	if p.Page > 1 {
		view.PrevURL = search.PageURL(current, p.Page-1)
	}
	if p.Page < p.TotalPages {
		view.NextURL = search.PageURL(current, p.Page+1)
	}

	for _, n := range models.PageItems(p.Page, p.TotalPages) {
		if n == 0 {
			view.Links = append(view.Links, pageLink{Ellipsis: true})
			continue
		}
		view.Links = append(view.Links, pageLink{
			Number:  n,
			URL:     search.PageURL(current, n),
			Current: n == p.Page,
		})
	}

	return view
}

func formValuesFrom(form url.Values) formValues {
	return formValues{
		CustomerID: form.Get(service.FieldCustomerID),
		Amount:     form.Get(service.FieldAmount),
		Status:     form.Get(service.FieldStatus),
	}
}

func formValuesOf(invoice *models.Invoice) formValues {
	return formValues{
		CustomerID: invoice.CustomerID,
		Amount:     models.CentsToDollars(invoice.Amount),
		Status:     invoice.Status,
	}
}
