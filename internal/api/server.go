package api

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/grocerymarts/backend/internal/auth"
	"github.com/grocerymarts/backend/internal/config"
	"github.com/grocerymarts/backend/internal/notify"
	"github.com/grocerymarts/backend/internal/rewards"
)

// Server holds the handler dependencies and builds the route tree.
type Server struct {
	db       *sql.DB
	cfg      *config.Config
	tokens   *auth.TokenManager
	notifier notify.Notifier
	policy   rewards.Policy
}

func NewServer(db *sql.DB, cfg *config.Config, tokens *auth.TokenManager, notifier notify.Notifier, policy rewards.Policy) *Server {
	return &Server{
		db:       db,
		cfg:      cfg,
		tokens:   tokens,
		notifier: notifier,
		policy:   policy,
	}
}

func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/products", s.handleListProducts)
		r.Get("/products/{id}", s.handleGetProduct)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleMe)

			r.Post("/orders", s.handleCreateOrder)
			r.Get("/orders", s.handleListMyOrders)
			r.Get("/orders/{id}", s.handleGetOrder)
			r.Put("/orders/{id}/cancel", s.handleCancelOrder)

			r.Post("/returns", s.handleCreateReturn)
			r.Get("/returns", s.handleListMyReturns)
			r.Get("/returns/{id}", s.handleGetReturn)
			r.Put("/returns/{id}/cancel", s.handleCancelReturn)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Put("/orders/{id}/status", s.handleUpdateOrderStatus)
				r.Get("/orders/admin/all", s.handleListAllOrders)
				r.Put("/returns/{id}/status", s.handleUpdateReturnStatus)
				r.Get("/returns/admin/all", s.handleListAllReturns)
				r.Post("/products", s.handleCreateProduct)
				r.Get("/users", s.handleListUsers)
				r.Put("/users/{id}/role", s.handleUpdateUserRole)
			})
		})
	})

	return r
}
