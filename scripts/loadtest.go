package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

type LoadTestConfig struct {
	BaseURL       string
	TotalRequests int
	Concurrency   int
	Duration      time.Duration
}

type Stats struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalLatency    int64
	MinLatency      int64
	MaxLatency      int64
	Errors          sync.Map
}

type client struct {
	baseURL string
	http    *http.Client
	stats   *Stats
}

type envelope struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Service base URL")
	requests := flag.Int("requests", 1000, "Total number of requests")
	concurrency := flag.Int("concurrency", 10, "Number of parallel requests")
	duration := flag.Duration("duration", 0, "Test duration (0 = use -requests)")
	operation := flag.String("operation", "mixed", "Operation: create-dish, get-dish, create-order, get-order, update-order, delete-order, list, mixed")
	flag.Parse()

	cfg := LoadTestConfig{
		BaseURL:       *baseURL,
		TotalRequests: *requests,
		Concurrency:   *concurrency,
		Duration:      *duration,
	}

	fmt.Printf("Starting load test\n")
	fmt.Printf("URL: %s\n", cfg.BaseURL)
	fmt.Printf("Operation: %s\n", *operation)
	if cfg.Duration > 0 {
		fmt.Printf("Duration: %v\n", cfg.Duration)
	} else {
		fmt.Printf("Requests: %d\n", cfg.TotalRequests)
	}
	fmt.Printf("Concurrency: %d\n\n", cfg.Concurrency)

	stats := &Stats{MinLatency: int64(^uint64(0) >> 1)}
	c := &client{baseURL: cfg.BaseURL, http: &http.Client{Timeout: 10 * time.Second}, stats: stats}

	var op func(index int64)
	switch *operation {
	case "create-dish":
		op = func(int64) { c.createDish() }
	case "get-dish":
		ids := c.seed(100, (*client).createDish)
		if len(ids) == 0 {
			fmt.Println("Failed to create dishes for test")
			return
		}
		op = func(i int64) { c.do(http.MethodGet, "/dishes/"+ids[i%int64(len(ids))], nil) }
	case "create-order":
		op = func(int64) { c.createOrder() }
	case "get-order":
		ids := c.seed(100, (*client).createOrder)
		if len(ids) == 0 {
			fmt.Println("Failed to create orders for test")
			return
		}
		op = func(i int64) { c.do(http.MethodGet, "/orders/"+ids[i%int64(len(ids))], nil) }
	case "update-order":
		ids := c.seed(100, (*client).createOrder)
		if len(ids) == 0 {
			fmt.Println("Failed to create orders for test")
			return
		}
		op = func(i int64) { c.updateOrder(ids[i%int64(len(ids))], i) }
	case "delete-order":
		op = func(int64) {
			if id := c.createOrder(); id != "" {
				c.do(http.MethodDelete, "/orders/"+id, nil)
			}
		}
	case "list":
		op = func(i int64) {
			if i%2 == 0 {
				c.do(http.MethodGet, "/dishes", nil)
			} else {
				c.do(http.MethodGet, "/orders", nil)
			}
		}
	case "mixed":
		ids := c.seed(50, (*client).createOrder)
		fmt.Printf("Created %d orders for mixed test\n\n", len(ids))
		op = func(i int64) {
			switch n := i % 10; {
			case n < 2:
				c.createDish()
			case n < 4:
				c.createOrder()
			case n < 7 && len(ids) > 0:
				c.do(http.MethodGet, "/orders/"+ids[i%int64(len(ids))], nil)
			case n < 9:
				c.do(http.MethodGet, "/orders", nil)
			case len(ids) > 0:
				c.updateOrder(ids[i%int64(len(ids))], i)
			}
		}
	default:
		fmt.Printf("Unknown operation: %s\n", *operation)
		return
	}

	start := time.Now()
	run(cfg, op)
	printResults(stats, time.Since(start))
}

// run calls op until the request budget or the duration is used up, with at
// most cfg.Concurrency calls in flight.
func run(cfg LoadTestConfig, op func(index int64)) {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, cfg.Concurrency)

	requestCount := int64(0)
	endTime := time.Now().Add(cfg.Duration)

	for (cfg.Duration <= 0 || !time.Now().After(endTime)) &&
		(cfg.Duration != 0 || requestCount < int64(cfg.TotalRequests)) {
		wg.Add(1)
		semaphore <- struct{}{}
		idx := atomic.AddInt64(&requestCount, 1)

		go func(index int64) {
			defer wg.Done()
			defer func() { <-semaphore }()
			op(index)
		}(idx)
	}

	wg.Wait()
}

// seed creates n records outside the measured stats.
func (c *client) seed(n int, create func(*client) string) []string {
	quiet := &client{baseURL: c.baseURL, http: c.http, stats: &Stats{}}
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if id := create(quiet); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (c *client) createDish() string {
	return c.do(http.MethodPost, "/dishes", map[string]any{
		"name":        fmt.Sprintf("Dish-%d", time.Now().UnixNano()),
		"description": "load test dish",
		"price":       12,
		"image_url":   "https://example.com/dish.png",
	})
}

func (c *client) createOrder() string {
	return c.do(http.MethodPost, "/orders", map[string]any{
		"deliverTo":    "1 Load Test Way",
		"mobileNumber": "555-0100",
		"status":       "pending",
		"dishes":       []map[string]any{{"id": "load-test", "quantity": 2}},
	})
}

func (c *client) updateOrder(id string, i int64) string {
	status := "preparing"
	if i%2 == 0 {
		status = "pending"
	}
	return c.do(http.MethodPut, "/orders/"+id, map[string]any{
		"deliverTo":    fmt.Sprintf("%d Load Test Way", i),
		"mobileNumber": "555-0100",
		"status":       status,
		"dishes":       []map[string]any{{"id": "load-test", "quantity": 3}},
	})
}

// do sends data wrapped in the API envelope and returns the record ID from
// the response, if any.
func (c *client) do(method, path string, data map[string]any) string {
	start := time.Now()
	atomic.AddInt64(&c.stats.TotalRequests, 1)

	var reqBody io.Reader
	if data != nil {
		jsonData, _ := json.Marshal(map[string]any{"data": data})
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		recordError(c.stats, err)
		return ""
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		recordError(c.stats, err)
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	recordLatency(c.stats, time.Since(start).Milliseconds())

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordError(c.stats, fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, string(body)))
		return ""
	}

	atomic.AddInt64(&c.stats.SuccessRequests, 1)
	var env envelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil {
		return env.Data.ID
	}
	return ""
}

func recordLatency(stats *Stats, latency int64) {
	atomic.AddInt64(&stats.TotalLatency, latency)

	for {
		old := atomic.LoadInt64(&stats.MinLatency)
		if latency >= old || atomic.CompareAndSwapInt64(&stats.MinLatency, old, latency) {
			break
		}
	}

	for {
		old := atomic.LoadInt64(&stats.MaxLatency)
		if latency <= old || atomic.CompareAndSwapInt64(&stats.MaxLatency, old, latency) {
			break
		}
	}
}

func recordError(stats *Stats, err error) {
	atomic.AddInt64(&stats.FailedRequests, 1)
	val, _ := stats.Errors.LoadOrStore(err.Error(), new(int64))
	atomic.AddInt64(val.(*int64), 1)
}

func printResults(stats *Stats, elapsed time.Duration) {
	total := atomic.LoadInt64(&stats.TotalRequests)
	success := atomic.LoadInt64(&stats.SuccessRequests)
	failed := atomic.LoadInt64(&stats.FailedRequests)
	if total == 0 {
		fmt.Println("No requests sent")
		return
	}

	fmt.Printf("\nLoad Test Results\n")
	fmt.Printf("===================================================\n")
	fmt.Printf("Total time:           %v\n", elapsed)
	fmt.Printf("Total requests:       %d\n", total)
	fmt.Printf("Successful:           %d (%.2f%%)\n", success, float64(success)/float64(total)*100)
	fmt.Printf("Failed:               %d (%.2f%%)\n", failed, float64(failed)/float64(total)*100)
	fmt.Printf("Throughput:           %.2f req/sec\n\n", float64(total)/elapsed.Seconds())
	fmt.Printf("Latency:\n")
	fmt.Printf("  Average:            %d ms\n", atomic.LoadInt64(&stats.TotalLatency)/total)
	fmt.Printf("  Minimum:            %d ms\n", atomic.LoadInt64(&stats.MinLatency))
	fmt.Printf("  Maximum:            %d ms\n", atomic.LoadInt64(&stats.MaxLatency))

	if failed > 0 {
		fmt.Printf("\nErrors:\n")
		stats.Errors.Range(func(key, value any) bool {
			fmt.Printf("  [%d] %s\n", atomic.LoadInt64(value.(*int64)), key.(string))
			return true
		})
	}
	fmt.Printf("===================================================\n")
}
