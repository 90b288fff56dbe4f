package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every route of the dashboard
func NewRouter(pages *InvoiceHandler, api *APIHandler, health *HealthHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RecoveryMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(LoggingMiddleware(logger))

	r.Get("/health", health.Health)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(StaticFiles()))))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", pages.Dashboard)

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", pages.ListInvoices)
			r.Post("/", pages.CreateInvoice)
			r.Get("/create", pages.CreateForm)
			r.Get("/{id}/edit", pages.EditForm)
			r.Post("/{id}", pages.UpdateInvoice)
			r.Post("/{id}/delete", pages.DeleteInvoice)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", api.Dashboard)
		r.Get("/customers", api.ListCustomers)

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", api.ListInvoices)
			r.Post("/", api.CreateInvoice)
			r.Get("/{id}", api.GetInvoice)
			r.Put("/{id}", api.UpdateInvoice)
			r.Delete("/{id}", api.DeleteInvoice)
		})
	})

	return r
}
