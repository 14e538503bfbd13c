package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/product-registry-service/internal/obs"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging, WithMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})

	r.Get("/products", app.listProductsHandler)
	r.Post("/products", app.createProductHandler)
	r.Get("/products/{id}", app.getProductHandler)
	r.Put("/products/{id}", app.updateProductHandler)
	r.Delete("/products/{id}", app.deleteProductHandler)
	r.Post("/products/{id}/ratings", app.rateProductHandler)
	r.Get("/products/{id}/ratings/average", app.averageRatingHandler)

	r.Get("/changes", app.changesHandler)
	r.Get("/healthz", app.healthHandler)
	r.Method(http.MethodGet, "/metrics", obs.MetricsHandler())
	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)

	return r
}
