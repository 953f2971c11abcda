// Package api serves the location picker over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/khanrumi/location-picker/internal/location"
	"github.com/khanrumi/location-picker/internal/model"
)

// LocationService is the subset of location.Service the handlers use.
type LocationService interface {
	ListStates(ctx context.Context) location.Result[[]model.State]
	ListCitiesByState(ctx context.Context, stateID int64) location.Result[[]model.City]
	ListNeighborhoodsByCity(ctx context.Context, cityID int64) location.Result[[]model.Neighborhood]
	AddState(ctx context.Context, name string) location.Result[*model.State]
	AddCity(ctx context.Context, name string, stateID int64) location.Result[*model.City]
	AddNeighborhood(ctx context.Context, name string, cityID int64) location.Result[*model.Neighborhood]
	SaveAddress(ctx context.Context, in model.AddressInput) location.Result[*model.Address]
	Snapshot(ctx context.Context) location.Result[*model.Snapshot]
}

// Resolver records the best geocoding match for a query.
type Resolver interface {
	Resolve(ctx context.Context, query string) location.Result[*model.LocationData]
}

// Options configures the router.
type Options struct {
	// AllowedOrigins lists the origins allowed by CORS. Empty allows any.
	AllowedOrigins []string
	// RequestTimeout bounds each request. Zero disables the limit.
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler for all routes.
func NewRouter(svc LocationService, resolver Resolver, opts Options) http.Handler {
	h := &handlers{svc: svc, resolver: resolver}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/address", h.getAddressData)
		r.Get("/location", h.getLocation)

		r.Get("/states", h.listStates)
		r.Post("/states", h.addState)
		r.Get("/states/{stateID}/cities", h.listCities)

		r.Post("/cities", h.addCity)
		r.Get("/cities/{cityID}/neighborhoods", h.listNeighborhoods)

		r.Post("/neighborhoods", h.addNeighborhood)
		r.Post("/addresses", h.saveAddress)
	})

	return r
}
