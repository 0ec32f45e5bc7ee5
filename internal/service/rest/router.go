package rest

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает chi-роутер сервиса.
func NewRouter(handler *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Post("/sessions", handler.Begin)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", handler.GetSession)
			r.Get("/timeline", handler.GetTimeline)

			r.Put("/address", handler.SelectAddress)
			r.Post("/addresses", handler.CreateAddress)
			r.Put("/shipping", handler.SelectShipping)

			r.Put("/items/{productID}", handler.UpdateItem)
			r.Delete("/items/{productID}", handler.RemoveItem)

			r.Post("/coupon", handler.ApplyCoupon)
			r.Delete("/coupon", handler.RemoveCoupon)

			r.Put("/reward-points", handler.SetRewardPoints)
			r.Put("/preferences", handler.SetPreferences)

			r.Post("/advance", handler.Advance)
			r.Post("/retreat", handler.Retreat)
			r.Post("/commit", handler.Commit)
			r.Post("/abandon", handler.Abandon)
		})
	})

	return r
}
