package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fairyhunter13/product-registry-service/internal/changelog"
	"github.com/fairyhunter13/product-registry-service/internal/config"
	httpapi "github.com/fairyhunter13/product-registry-service/internal/http"
	"github.com/fairyhunter13/product-registry-service/internal/model"
	"github.com/fairyhunter13/product-registry-service/internal/obs"
	"github.com/fairyhunter13/product-registry-service/internal/registry"
	"github.com/fairyhunter13/product-registry-service/internal/store"
)

// bootApp wires the full stack over a sqlite store so the gorm driver is
// exercised end to end.
func bootApp(t *testing.T) (*changelog.Manager, http.Handler, func()) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", filepath.Join(t.TempDir(), "registry.db"))
	cfg := config.Load()
	obs.InitLogger("info")

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Migrate(context.Background(), st); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mgr := changelog.NewManager(cfg, changelog.NewFeed(cfg.ChangelogBuffer))
	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	reg := registry.New(st, registry.WithPublisher(mgr))
	app := httpapi.NewApp(cfg, reg, st, mgr)
	h := httpapi.NewRouter(app)
	cleanup := func() {
		cancel()
		mgr.Stop()
		_ = st.Close()
	}
	return mgr, h, cleanup
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestIntegration_ProductLifecycleOverSQLite(t *testing.T) {
	mgr, h, cleanup := bootApp(t)
	defer cleanup()

	w := do(t, h, http.MethodPost, "/products", `{"name":"Chair","description":"Wooden chair","url":"http://x/1.png"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var p model.Product
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = do(t, h, http.MethodPost, "/products/"+p.ID+"/ratings", `{"rating":4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("rate: expected 200, got %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/products/"+p.ID+"/ratings", `{"rating":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("rate: expected 200, got %d", w.Code)
	}

	w = do(t, h, http.MethodGet, "/products/"+p.ID+"/ratings/average", "")
	if w.Code != http.StatusOK {
		t.Fatalf("average: expected 200, got %d", w.Code)
	}
	var sum registry.RatingSummary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.AverageRating != 3.0 || sum.RatingsCount != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	w = do(t, h, http.MethodPut, "/products/"+p.ID, `{"name":"Armchair","description":"Soft","url":"http://x/2.png"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", w.Code)
	}
	var upd model.Product
	if err := json.Unmarshal(w.Body.Bytes(), &upd); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if upd.Name != "Armchair" || len(upd.Ratings) != 2 {
		t.Fatalf("update lost state: %+v", upd)
	}
	if !upd.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("created_at moved on update")
	}

	w = do(t, h, http.MethodGet, "/products", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list []model.Product
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	w = do(t, h, http.MethodDelete, "/products/"+p.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	w = do(t, h, http.MethodGet, "/products/"+p.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("after delete: expected 404, got %d", w.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if ok := mgr.DrainUntil(ctx); !ok {
		t.Fatalf("drain timeout")
	}
	w = do(t, h, http.MethodGet, "/changes", "")
	if w.Code != http.StatusOK {
		t.Fatalf("changes: expected 200, got %d", w.Code)
	}
	var resp struct {
		Events []changelog.Event `json:"events"`
		Count  int               `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode changes: %v", err)
	}
	if resp.Count != 5 {
		t.Fatalf("expected 5 events, got %d", resp.Count)
	}
	wantOps := []string{"deleted", "updated", "rated", "rated", "created"}
	for i, op := range wantOps {
		if resp.Events[i].Op != op {
			t.Fatalf("event %d: expected %s, got %s", i, op, resp.Events[i].Op)
		}
	}
}

func TestIntegration_StateSurvivesReopen(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	dsn := filepath.Join(t.TempDir(), "registry.db")
	t.Setenv("DATABASE_DSN", dsn)
	cfg := config.Load()
	obs.InitLogger("info")

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Migrate(context.Background(), st); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	reg := registry.New(st)
	p, err := reg.Add(context.Background(), model.Payload{Name: "Desk", Description: "Oak desk", URL: "http://x/3.png"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := reg.Rate(context.Background(), p.ID, 5); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st2, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = st2.Close() }()
	reg2 := registry.New(st2)
	got, err := reg2.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Name != "Desk" || len(got.Ratings) != 1 || got.Ratings[0] != 5 {
		t.Fatalf("state lost across reopen: %+v", got)
	}
}
