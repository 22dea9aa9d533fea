// loadtest fires concurrent search queries at a running searchd and reports
// throughput and latency percentiles.
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

func main() {
	target := flag.String("target", "http://localhost:8080", "searchd base URL")
	concurrency := flag.Int("c", 8, "concurrent workers")
	requests := flag.Int("n", 1000, "total requests")
	queries := flag.String("queries", "hello,world,transcript,interview,music theory", "comma-separated query pool")
	channelID := flag.String("channel", "", "optional channel_id filter")
	flag.Parse()

	pool := strings.Split(*queries, ",")
	client := &http.Client{Timeout: 10 * time.Second}

	var mu sync.Mutex
	latencies := make([]time.Duration, 0, *requests)
	errorCount := 0

	jobs := make(chan int)
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			for range jobs {
				q := pool[rng.Intn(len(pool))]
				reqStart := time.Now()
				err := fire(client, *target, q, *channelID)
				elapsed := time.Since(reqStart)

				mu.Lock()
				if err != nil {
					errorCount++
				} else {
					latencies = append(latencies, elapsed)
				}
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < *requests; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	total := time.Since(start)

	if len(latencies) == 0 {
		fmt.Fprintln(os.Stderr, "all requests failed")
		os.Exit(1)
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Printf("requests: %d  errors: %d  elapsed: %s  rps: %.1f\n",
		*requests, errorCount, total.Round(time.Millisecond),
		float64(len(latencies))/total.Seconds())
	fmt.Printf("latency p50: %s  p95: %s  p99: %s  max: %s\n",
		pct(latencies, 0.50), pct(latencies, 0.95), pct(latencies, 0.99),
		latencies[len(latencies)-1].Round(time.Microsecond))
}

func fire(client *http.Client, target, query, channelID string) error {
	params := url.Values{}
	params.Set("q", query)
	if channelID != "" {
		params.Set("channel_id", channelID)
	}
	resp, err := client.Get(target + "/api/search?" + params.Encode())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func pct(sorted []time.Duration, p float64) time.Duration {
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx].Round(time.Microsecond)
}
