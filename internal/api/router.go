/**
 * @description
 * HTTP router setup for the directdebit-service using go-chi/chi.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers direct debit routes.
func NewRouter(h *Handlers, internalKey string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Internal-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Direct debit service is healthy"))
	})

	r.Post("/customers", h.CreateCustomerHandler)
	r.Get("/customers/{id}", h.GetCustomerHandler)
	r.Post("/accounts", h.CreateAccountHandler)
	r.Get("/accounts/{id}", h.GetAccountHandler)
	r.Post("/transfers", h.TransferHandler)

	r.Route("/mandates", func(r chi.Router) {
		r.Post("/", h.CreateMandateHandler)
		r.Get("/{id}", h.GetMandateHandler)
		r.Post("/{id}/activate", h.ActivateMandateHandler)
		r.Post("/{id}/cancel", h.CancelMandateHandler)
	})

	r.Route("/collections", func(r chi.Router) {
		r.Post("/", h.CreateCollectionHandler)
		r.Get("/{id}", h.GetCollectionHandler)
		r.Post("/{id}/approve", h.ApproveCollectionHandler)
		r.Post("/{id}/reject", h.RejectCollectionHandler)
		r.Post("/{id}/cancel", h.CancelCollectionHandler)
	})

	r.Route("/internal/bs-runs", func(r chi.Router) {
		r.Use(InternalAuthMiddleware(internalKey))
		r.Post("/notify", h.NotifyHandler)
		r.Post("/collect", h.CollectHandler)
	})

	return r
}
