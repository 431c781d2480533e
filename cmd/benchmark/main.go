package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	workload    string
	username    string
	password    string
)

// Metrics
var (
	totalRequests uint64
	success201    uint64 // Created
	fail409       uint64 // Duplicate ids
	fail401       uint64 // Bad credentials
	failOther     uint64
	seq           uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "unique", "Workload type: unique | duplicate")
	flag.StringVar(&username, "user", "admin", "Basic auth username")
	flag.StringVar(&password, "password", os.Getenv("BENCH_PASSWORD"), "Basic auth password (or set BENCH_PASSWORD)")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	start := time.Now()
	runID := start.UnixNano()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start, runID)
	}

	wg.Wait()
	printResults(time.Since(start))
}

func worker(wg *sync.WaitGroup, start time.Time, runID int64) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		payload := map[string]interface{}{
			"txn_external_id": nextID(runID),
			"provider":        "benchmark",
			"amount":          rand.Intn(100000) + 1,
			"fee":             100,
		}
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest(http.MethodPost, targetURL+"/transactions", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.SetBasicAuth(username, password)

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case http.StatusCreated:
			atomic.AddUint64(&success201, 1)
		case http.StatusConflict:
			atomic.AddUint64(&fail409, 1)
		case http.StatusUnauthorized:
			atomic.AddUint64(&fail401, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

// nextID returns a fresh id, or under the duplicate workload one of a small
// fixed set so most creates conflict.
func nextID(runID int64) string {
	if workload == "duplicate" {
		return fmt.Sprintf("BENCH-%d-%d", runID, rand.Intn(10))
	}
	return fmt.Sprintf("BENCH-%d-%d", runID, atomic.AddUint64(&seq, 1))
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	s201 := atomic.LoadUint64(&success201)
	f409 := atomic.LoadUint64(&fail409)
	f401 := atomic.LoadUint64(&fail401)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()
	var conflictRate float64
	if total > 0 {
		conflictRate = float64(f409) / float64(total) * 100
	}

	results := map[string]interface{}{
		"workload":          workload,
		"duration_sec":      d.Seconds(),
		"total_requests":    total,
		"throughput_tps":    tps,
		"success_created":   s201,
		"duplicate_409":     f409,
		"unauthorized_401":  f401,
		"conflict_rate_pct": conflictRate,
		"errors":            fErr,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	filename := fmt.Sprintf("results_%s.json", workload)
	file, err := os.Create(filename)
	if err != nil {
		log.Printf("Could not save results: %v", err)
		return
	}
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
