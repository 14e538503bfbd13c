package integration

import (
	"bytes"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// Benchmark for POST /products; to run: go test -bench=. ./test/integration -run ^$
func BenchmarkCreateProduct(b *testing.B) {
	u := baseURL()
	client := &http.Client{}
	if resp, err := client.Get(u + "/healthz"); err != nil {
		b.Skip("no live service; set BASE_URL to run")
	} else {
		_ = resp.Body.Close()
	}
	run := time.Now().UnixNano()
	var n atomic.Int64
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			body := []byte(fmt.Sprintf(`{"name":"bench-%d-%d","description":"bench fixture","url":"https://img.example.com/b.png"}`, run, n.Add(1)))
			r, _ := http.NewRequest(http.MethodPost, u+"/products", bytes.NewBuffer(body))
			r.Header.Set("Content-Type", "application/json")
			resp, err := client.Do(r)
			if err == nil {
				_ = resp.Body.Close()
			}
		}
	})
}
