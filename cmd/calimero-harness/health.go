package main

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// healthLimiter throttles the health/metrics router the same way the
// teacher throttles its own HTTP API, kept on a separate gorilla/mux
// router and a separate port from the chi-based inspector so a noisy
// monitoring client can never starve /invoke traffic.
var healthLimiter = rate.NewLimiter(50, 20)

func limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthLimiter.Allow() {
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// healthRouter exposes liveness and a minimal plaintext metrics surface,
// counted separately from the inspector's own request volume.
func healthRouter(s *session) http.Handler {
	r := mux.NewRouter()
	r.Use(limit)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	r.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for name, rep := range s.replicas {
			fmt.Fprintf(w, "calimero_harness_commits{replica=%q} %d\n", name, len(rep.host.Commits()))
			fmt.Fprintf(w, "calimero_harness_events{replica=%q} %d\n", name, len(rep.host.Events()))
		}
		fmt.Fprintf(w, "calimero_harness_requests_total %d\n", requestCount.Load())
	}).Methods("GET")

	return r
}

var requestCount atomic.Int64

// countRequests is installed on the inspector router only: the health
// router's own traffic is deliberately not counted, so /metrics reports
// inspector load rather than its own scrape volume.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		next.ServeHTTP(w, r)
	})
}
