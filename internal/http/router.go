package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/category"
	"github.com/MrJamesThe3rd/tally/internal/http/expense"
	"github.com/MrJamesThe3rd/tally/internal/http/export"
	"github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	"github.com/MrJamesThe3rd/tally/internal/http/income"
	"github.com/MrJamesThe3rd/tally/internal/http/matching"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/http/savings"
	"github.com/MrJamesThe3rd/tally/internal/http/user"
)

// Handlers bundles the v1 API handlers.
type Handlers struct {
	Users      *user.Handler
	Categories *category.Handler
	Expenses   *expense.Handler
	Income     *income.Handler
	Savings    *savings.Handler
	Import     *importcsv.Handler
	Rules      *matching.Handler
	Export     *export.Handler
}

func New(tokens *auth.Manager, allowedOrigins []string, v1 Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Expense-Count"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				v1.Users.PublicRoutes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(tokens.Middleware)
				v1.Users.Routes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware)

			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				v1.Categories.Routes(r)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				v1.Expenses.Routes(r)
			})

			r.Route("/income", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				v1.Income.Routes(r)
			})

			r.Route("/savings", v1.Savings.Routes)
			r.Route("/import", v1.Import.Routes)
			r.Route("/rules", v1.Rules.Routes)
			r.Route("/export", v1.Export.Routes)
		})
	})

	return router
}
