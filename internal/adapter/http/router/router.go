package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/servilocal/listing-service/internal/adapter/http/handler"
	"github.com/servilocal/listing-service/internal/adapter/http/middleware"
	"github.com/servilocal/listing-service/internal/listing/domain"
)

type Handlers struct {
	Listings   *handler.ListingHandler
	Favorites  *handler.FavoriteHandler
	Admin      *handler.AdminHandler
	Localities *handler.LocalityHandler
}

// New assembles the HTTP surface. Identity runs on every request so public
// reads can still see who is asking; write routes additionally require a
// resolved principal, and the admin subtree requires the moderate capability.
func New(h Handlers, jwtSecret string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Identity(jwtSecret, logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/listings", h.Listings.Search)
		r.Get("/listings/{id}", h.Listings.GetByID)
		r.Get("/portal", h.Listings.Portal)
		r.Get("/localities", h.Localities.Search)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/listings", h.Listings.Create)
			r.Put("/listings/{id}", h.Listings.Update)
			r.Delete("/listings/{id}", h.Listings.Delete)
			r.Post("/listings/{id}/photos", h.Listings.UploadPhoto)
			r.Post("/listings/{id}/promote", h.Listings.Promote)

			r.Get("/favorites", h.Favorites.List)
			r.Post("/favorites", h.Favorites.Add)
			r.Delete("/favorites/{listingID}", h.Favorites.Remove)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(domain.CapabilityModerate))

			r.Patch("/admin/listings/{id}/status", h.Admin.SetStatus)
			r.Patch("/admin/listings/{id}/promote", h.Admin.SetPromotion)
		})
	})

	return r
}
