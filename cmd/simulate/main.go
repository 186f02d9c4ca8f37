// Command simulate hammers the booking endpoint with concurrent requests for
// the same handful of slots. With the agenda day-lock in place, exactly one
// request per slot should win and the rest should come back as conflicts; a
// duplicate booking in the final report means the race is open.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"
)

type simConfig struct {
	apiBaseURL string
	workers    int
	requests   int
	date       string
	patientID  string
}

type metrics struct {
	total     int64
	created   int64
	conflicts int64
	errors    int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (m *metrics) record(latency time.Duration, status int) {
	atomic.AddInt64(&m.total, 1)
	switch {
	case status == http.StatusCreated:
		atomic.AddInt64(&m.created, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&m.conflicts, 1)
	default:
		atomic.AddInt64(&m.errors, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *metrics) percentile(p int) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func main() {
	cfg := simConfig{}
	flag.StringVar(&cfg.apiBaseURL, "api", "http://127.0.0.1:8080", "base URL of the api-server")
	flag.IntVar(&cfg.workers, "workers", 16, "concurrent workers")
	flag.IntVar(&cfg.requests, "requests", 200, "total booking attempts")
	flag.StringVar(&cfg.date, "date", time.Now().AddDate(0, 0, 1).Format("2006-01-02"), "target agenda day")
	flag.StringVar(&cfg.patientID, "patient", "", "patient UUID to book for (required)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	if cfg.patientID == "" {
		logger.Fatal().Msg("-patient is required")
	}

	gofakeit.Seed(time.Now().UnixNano())

	// A deliberately tiny set of contested slots.
	slots := []string{"09:00", "09:30", "10:00", "10:30", "11:00"}

	logger.Info().
		Int("workers", cfg.workers).
		Int("requests", cfg.requests).
		Str("date", cfg.date).
		Msg("simulation starting")

	var m metrics
	jobs := make(chan int)
	var wg sync.WaitGroup

	client := &http.Client{Timeout: 10 * time.Second}

	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				attemptBooking(client, cfg, slots[rand.Intn(len(slots))], &m)
			}
		}()
	}

	start := time.Now()
	for i := 0; i < cfg.requests; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(start)

	created := atomic.LoadInt64(&m.created)
	logger.Info().
		Int64("total", atomic.LoadInt64(&m.total)).
		Int64("created", created).
		Int64("conflicts", atomic.LoadInt64(&m.conflicts)).
		Int64("errors", atomic.LoadInt64(&m.errors)).
		Dur("elapsed", elapsed).
		Dur("p50", m.percentile(50)).
		Dur("p95", m.percentile(95)).
		Msg("simulation complete")

	if created > int64(len(slots)) {
		logger.Error().
			Int64("created", created).
			Int("slots", len(slots)).
			Msg("more bookings than contested slots: the double-booking race is open")
		os.Exit(1)
	}
}

func attemptBooking(client *http.Client, cfg simConfig, slot string, m *metrics) {
	body, _ := json.Marshal(map[string]any{
		"patient_id":       cfg.patientID,
		"date":             cfg.date,
		"time":             slot,
		"duration_minutes": 30,
		"kind":             "Consulta de valoración",
		"notes":            gofakeit.Sentence(4),
	})

	start := time.Now()
	resp, err := client.Post(cfg.apiBaseURL+"/appointments", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		m.record(latency, 0)
		fmt.Fprintf(os.Stderr, "request error: %v\n", err)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	m.record(latency, resp.StatusCode)
}
