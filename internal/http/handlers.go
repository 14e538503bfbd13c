package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/product-registry-service/internal/changelog"
	"github.com/fairyhunter13/product-registry-service/internal/config"
	httpopenapi "github.com/fairyhunter13/product-registry-service/internal/http/openapi"
	"github.com/fairyhunter13/product-registry-service/internal/model"
	"github.com/fairyhunter13/product-registry-service/internal/obs"
	"github.com/fairyhunter13/product-registry-service/internal/registry"
	"github.com/fairyhunter13/product-registry-service/internal/store"
)

// App bundles the dependencies of the HTTP handlers.
type App struct {
	Cfg      config.Config
	Registry *registry.Registry
	Store    store.Store
	Changes  *changelog.Manager
	closing  atomic.Bool
	started  time.Time
}

func NewApp(cfg config.Config, reg *registry.Registry, st store.Store, ch *changelog.Manager) *App {
	return &App{Cfg: cfg, Registry: reg, Store: st, Changes: ch, started: time.Now()}
}

// StartShutdown rejects further mutations and closes changelog intake.
func (a *App) StartShutdown() {
	a.closing.Store(true)
	a.Changes.CloseIntake()
}

type ratingRequest struct {
	Rating *int `json:"rating"`
}

type changesResponse struct {
	Events []changelog.Event `json:"events"`
	Count  int               `json:"count"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON enforces the JSON content type and rejects unknown fields.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// rejectIfClosing answers 503 once shutdown has begun. Reads stay allowed
// while the changelog drains.
func (a *App) rejectIfClosing(w http.ResponseWriter) bool {
	if a.closing.Load() || a.Changes.IsShuttingDown() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return true
	}
	return false
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := a.Registry.List(r.Context())
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	if a.rejectIfClosing(w) {
		return
	}
	var pl model.Payload
	if !decodeJSON(w, r, &pl) {
		return
	}
	p, err := a.Registry.Add(r.Context(), pl)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
	obs.Logger.Info("product_created",
		"request_id", obs.RequestIDFromContext(r.Context()),
		"product_id", p.ID,
		"name", p.Name,
		"backlog_size", a.Changes.BacklogSize(),
	)
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	p, err := a.Registry.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	if a.rejectIfClosing(w) {
		return
	}
	var pl model.Payload
	if !decodeJSON(w, r, &pl) {
		return
	}
	p, err := a.Registry.Update(r.Context(), chi.URLParam(r, "id"), pl)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
	obs.Logger.Info("product_updated",
		"request_id", obs.RequestIDFromContext(r.Context()),
		"product_id", p.ID,
		"name", p.Name,
	)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	if a.rejectIfClosing(w) {
		return
	}
	p, err := a.Registry.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
	obs.Logger.Info("product_deleted",
		"request_id", obs.RequestIDFromContext(r.Context()),
		"product_id", p.ID,
		"name", p.Name,
	)
}

func (a *App) rateProductHandler(w http.ResponseWriter, r *http.Request) {
	if a.rejectIfClosing(w) {
		return
	}
	var req ratingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Rating == nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "rating is required")
		return
	}
	p, err := a.Registry.Rate(r.Context(), chi.URLParam(r, "id"), *req.Rating)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
	obs.Logger.Info("product_rated",
		"request_id", obs.RequestIDFromContext(r.Context()),
		"product_id", p.ID,
		"rating", *req.Rating,
		"ratings_count", len(p.Ratings),
	)
}

func (a *App) averageRatingHandler(w http.ResponseWriter, r *http.Request) {
	sum, err := a.Registry.AverageRating(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sum)
}

func (a *App) changesHandler(w http.ResponseWriter, r *http.Request) {
	evs := a.Changes.Recent()
	respondJSON(w, http.StatusOK, changesResponse{Events: evs, Count: len(evs)})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := a.Store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
		obs.Logger.Error("store_ping_failed", "error", err.Error())
	}
	published, recorded, backlog, _ := a.Changes.Metrics()
	respondJSON(w, code, map[string]any{
		"status":           status,
		"store_driver":     a.Cfg.StoreDriver,
		"events_published": published,
		"events_recorded":  recorded,
		"backlog_size":     backlog,
		"uptime_sec":       time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Product Registry API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
