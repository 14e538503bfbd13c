package integration

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"
)

// Creates many products concurrently and asserts 201 responses (no 503
// backpressure, no cross-goroutine name collisions).
func TestIntegration_HighLoadNonBlocking(t *testing.T) {
	waitReady(t)
	u := baseURL()
	concurrency := 50
	perGoroutine := 20
	client := &http.Client{Timeout: 5 * time.Second}
	run := time.Now().UnixNano()

	var wg sync.WaitGroup
	wg.Add(concurrency)
	errCh := make(chan error, concurrency*perGoroutine)
	for g := 0; g < concurrency; g++ {
		go func(gid int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				body := []byte(fmt.Sprintf(`{"name":"pl-%d-%d-%d","description":"load fixture","url":"https://img.example.com/pl.png"}`, run, gid, i))
				r, _ := http.NewRequest(http.MethodPost, u+"/products", bytes.NewBuffer(body))
				r.Header.Set("Content-Type", "application/json")
				resp, err := client.Do(r)
				if err != nil {
					errCh <- err
					return
				}
				if resp.StatusCode != http.StatusCreated {
					errCh <- fmt.Errorf("expected 201, got %d", resp.StatusCode)
				}
				_ = resp.Body.Close()
			}
		}(g)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatal(err)
		}
	}
}
