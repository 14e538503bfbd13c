package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestIntegration_GetUnknownProductNotFound(t *testing.T) {
	waitReady(t)
	resp, err := http.Get(baseURL() + "/products/does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	if m["error"] != "not_found" {
		t.Fatalf("expected error=not_found, got: %+v", m)
	}
}

func TestIntegration_MethodNotAllowed(t *testing.T) {
	waitReady(t)
	u := baseURL()
	// PATCH /products/{id} -> 405
	r1, _ := http.NewRequest(http.MethodPatch, u+"/products/x", bytes.NewBufferString("{}"))
	r1.Header.Set("Content-Type", "application/json")
	resp1, err := http.DefaultClient.Do(r1)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp1.Body.Close() }()
	if resp1.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp1.StatusCode)
	}
	// DELETE /products -> 405
	r2, _ := http.NewRequest(http.MethodDelete, u+"/products", nil)
	resp2, err := http.DefaultClient.Do(r2)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp2.Body.Close() }()
	if resp2.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp2.StatusCode)
	}
}

func TestIntegration_ContentTypeVariants(t *testing.T) {
	waitReady(t)
	u := baseURL()
	variants := []string{
		"application/json",
		"application/json; charset=utf-8",
		"APPLICATION/JSON",
	}
	for _, ctype := range variants {
		body := fmt.Sprintf(`{"name":%q,"description":"d","url":"u"}`, uniqueName("ctv"))
		r, _ := http.NewRequest(http.MethodPost, u+"/products", bytes.NewBufferString(body))
		r.Header.Set("Content-Type", ctype)
		resp, err := http.DefaultClient.Do(r)
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("ctype %q expected 201, got %d", ctype, resp.StatusCode)
		}
	}
}

func TestIntegration_NoContentTypeIs415(t *testing.T) {
	waitReady(t)
	body := fmt.Sprintf(`{"name":%q,"description":"d","url":"u"}`, uniqueName("noct"))
	r, _ := http.NewRequest(http.MethodPost, baseURL()+"/products", bytes.NewBufferString(body))
	resp, err := http.DefaultClient.Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp.StatusCode)
	}
}

func TestIntegration_DuplicateNameConflict(t *testing.T) {
	waitReady(t)
	name := uniqueName("dupe")
	createProduct(t, name)

	body := fmt.Sprintf(`{"name":%q,"description":"again","url":"u"}`, name)
	resp := postJSON(t, "/products", body)
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	if m["error"] != "conflict" {
		t.Fatalf("expected error=conflict, got: %+v", m)
	}
}

func TestIntegration_RatingBoundaryValues(t *testing.T) {
	waitReady(t)
	p := createProduct(t, uniqueName("bv"))

	for _, v := range []int{1, 5} {
		resp := postJSON(t, "/products/"+p.ID+"/ratings", fmt.Sprintf(`{"rating":%d}`, v))
		code := resp.StatusCode
		_ = resp.Body.Close()
		if code != http.StatusOK {
			t.Fatalf("rating %d: expected 200, got %d", v, code)
		}
	}
	for _, v := range []int{0, 6} {
		resp := postJSON(t, "/products/"+p.ID+"/ratings", fmt.Sprintf(`{"rating":%d}`, v))
		code := resp.StatusCode
		_ = resp.Body.Close()
		if code != http.StatusBadRequest {
			t.Fatalf("rating %d: expected 400, got %d", v, code)
		}
	}
}

func TestIntegration_ChangesFeedRecordsMutations(t *testing.T) {
	waitReady(t)
	p := createProduct(t, uniqueName("feed"))
	resp := postJSON(t, "/products/"+p.ID+"/ratings", `{"rating":5}`)
	_ = resp.Body.Close()

	// allow the feed workers to catch up
	time.Sleep(500 * time.Millisecond)

	respC, err := http.Get(baseURL() + "/changes")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = respC.Body.Close() }()
	if respC.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", respC.StatusCode)
	}
	var feed struct {
		Events []struct {
			Seq       uint64 `json:"seq"`
			Op        string `json:"op"`
			ProductID string `json:"product_id"`
		} `json:"events"`
		Count int `json:"count"`
	}
	if err := json.NewDecoder(respC.Body).Decode(&feed); err != nil {
		t.Fatal(err)
	}
	if feed.Count == 0 || len(feed.Events) != feed.Count {
		t.Fatalf("unexpected feed: count=%d events=%d", feed.Count, len(feed.Events))
	}
	found := false
	for _, ev := range feed.Events {
		if ev.ProductID == p.ID && ev.Op == "rated" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected rated event for %s in feed", p.ID)
	}
	for i := 1; i < len(feed.Events); i++ {
		if feed.Events[i-1].Seq <= feed.Events[i].Seq {
			t.Fatalf("feed not newest-first at %d", i)
		}
	}
}

func TestIntegration_MetricsReflectActivity(t *testing.T) {
	waitReady(t)
	createProduct(t, uniqueName("metrics"))

	resp, err := http.Get(baseURL() + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	body := string(b)
	for _, metric := range []string{
		"product_registry_http_requests_total",
		"product_registry_registry_operations_total",
		"product_registry_changelog_events_published_total",
		"product_registry_store_operation_duration_seconds",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("metrics missing %s", metric)
		}
	}
}

func TestIntegration_OpenAPIAndVarsEndpoints(t *testing.T) {
	waitReady(t)
	u := baseURL()
	resp1, err := http.Get(u + "/openapi.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp1.Body.Close() }()
	if resp1.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp1.StatusCode)
	}
	resp2, err := http.Get(u + "/debug/vars")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp2.Body.Close() }()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp2.StatusCode)
	}
}
