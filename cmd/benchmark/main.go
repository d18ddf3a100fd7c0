// Benchmark tool for load-testing a running Steamglass instance.
//
// Usage:
//   go run cmd/benchmark/main.go -url http://localhost:8080 -requests 1000
//
// This tool:
//   1. Verifies the target instance is healthy
//   2. Fires concurrent GET requests across the report views,
//      optionally with a filter query attached
//   3. Reports throughput, error counts, and latency percentiles
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks benchmark results.
type Metrics struct {
	TotalRequests int64
	TotalErrors   int64
	TotalBytes    int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (m *Metrics) record(d time.Duration) {
	m.mu.Lock()
	m.latencies = append(m.latencies, d)
	m.mu.Unlock()
}

func (m *Metrics) percentile(p float64) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

var reportViews = []string{
	"executive", "seasonality", "products", "regions", "customers",
	"predictive", "publishers", "pareto", "cohorts", "explorer",
}

func main() {
	// Parse flags
	baseURL := flag.String("url", "http://localhost:8080", "Steamglass base URL")
	requests := flag.Int("requests", 1000, "Total number of requests")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	filterQuery := flag.String("filter", "", "Filter query string to append, e.g. regions=Europe&genres=Action")
	view := flag.String("view", "", "Benchmark a single view instead of cycling all ten")
	verbose := flag.Bool("verbose", false, "Print each request result")
	flag.Parse()

	views := reportViews
	if *view != "" {
		views = []string{*view}
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║            STEAMGLASS BENCHMARK - Report Throughput           ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nTarget URL:  %s\n", *baseURL)
	fmt.Printf("Requests:    %d\n", *requests)
	fmt.Printf("Workers:     %d\n", *workers)
	fmt.Printf("Views:       %v\n", views)
	if *filterQuery != "" {
		fmt.Printf("Filter:      %s\n", *filterQuery)
	}
	fmt.Println()

	// Check the instance is running
	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: Steamglass not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure Steamglass is running:")
		fmt.Println("  go run cmd/steamglass/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ Steamglass is healthy")

	fmt.Printf("\nRunning benchmark with %d workers...\n", *workers)
	startTime := time.Now()
	metrics := runBenchmark(*baseURL, views, *filterQuery, *requests, *workers, *verbose)
	duration := time.Since(startTime)

	printResults(metrics, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func runBenchmark(baseURL string, views []string, filterQuery string, requests, workers int, verbose bool) *Metrics {
	metrics := &Metrics{}
	jobs := make(chan string, requests)

	for i := 0; i < requests; i++ {
		url := baseURL + "/reports/" + views[i%len(views)]
		if filterQuery != "" {
			url += "?" + filterQuery
		}
		jobs <- url
	}
	close(jobs)

	client := &http.Client{Timeout: 30 * time.Second}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				start := time.Now()
				resp, err := client.Get(url)
				elapsed := time.Since(start)

				atomic.AddInt64(&metrics.TotalRequests, 1)
				if err != nil {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("  ERR  %s: %v\n", url, err)
					}
					continue
				}

				n, _ := io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				atomic.AddInt64(&metrics.TotalBytes, n)

				if resp.StatusCode != http.StatusOK {
					atomic.AddInt64(&metrics.TotalErrors, 1)
					if verbose {
						fmt.Printf("  %d  %s (%s)\n", resp.StatusCode, url, elapsed)
					}
					continue
				}

				metrics.record(elapsed)
				if verbose {
					fmt.Printf("  200  %s (%s, %d bytes)\n", url, elapsed, n)
				}
			}
		}()
	}
	wg.Wait()

	return metrics
}

func printResults(m *Metrics, duration time.Duration) {
	ok := m.TotalRequests - m.TotalErrors
	rps := float64(m.TotalRequests) / duration.Seconds()

	fmt.Println("\n═══════════════════════ RESULTS ═══════════════════════")
	fmt.Printf("Duration:       %s\n", duration.Round(time.Millisecond))
	fmt.Printf("Requests:       %d (%.1f req/s)\n", m.TotalRequests, rps)
	fmt.Printf("Successful:     %d\n", ok)
	fmt.Printf("Errors:         %d\n", m.TotalErrors)
	fmt.Printf("Data received:  %.2f MB\n", float64(m.TotalBytes)/(1024*1024))
	fmt.Println()
	fmt.Printf("Latency p50:    %s\n", m.percentile(0.50).Round(time.Microsecond))
	fmt.Printf("Latency p95:    %s\n", m.percentile(0.95).Round(time.Microsecond))
	fmt.Printf("Latency p99:    %s\n", m.percentile(0.99).Round(time.Microsecond))
	fmt.Println("════════════════════════════════════════════════════════")
}
