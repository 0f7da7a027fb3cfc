// Package metrics exposes Prometheus collectors for item lookups and completed
// configurations.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jask/machineconfig/internal/session"
)

// Lookup outcome labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusStale = "stale"
)

var (
	// LookupRequestsTotal counts item lookups by keyword and outcome.
	LookupRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machineconfig_lookup_requests_total",
			Help: "Item lookup requests by keyword and status",
		},
		[]string{"keyword", "status"},
	)

	// LookupDuration tracks lookup latency in seconds.
	LookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "machineconfig_lookup_duration_seconds",
			Help:    "Item lookup duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 4, 8},
		},
		[]string{"keyword"},
	)

	// ItemsLoaded is the size of the last applied item list per keyword.
	ItemsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "machineconfig_items_loaded",
			Help: "Number of configurable items in the last applied lookup",
		},
		[]string{"keyword"},
	)

	ConfigurationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "machineconfig_configurations_completed_total",
			Help: "Completed configurations by keyword",
		},
		[]string{"keyword"},
	)

	StaleResponsesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "machineconfig_stale_responses_total",
			Help: "Lookup responses dropped because a newer machine selection superseded them",
		},
	)
)

// RecordLookup records one finished lookup.
func RecordLookup(keyword session.Keyword, d time.Duration, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	LookupRequestsTotal.WithLabelValues(string(keyword), status).Inc()
	LookupDuration.WithLabelValues(string(keyword)).Observe(d.Seconds())
}

// RecordStale records a response that arrived after a newer selection.
func RecordStale() {
	StaleResponsesDropped.Inc()
}

// Observe subscribes to session events and keeps the session-level collectors current.
func Observe(s *session.Session) {
	s.Subscribe(func(ev session.Event) {
		switch ev.Kind {
		case session.EventConfigurationCompleted:
			ConfigurationsCompleted.WithLabelValues(string(ev.Keyword)).Inc()
		case session.EventItemsLoaded:
			ItemsLoaded.WithLabelValues(string(ev.Keyword)).Set(float64(len(s.ActiveItems())))
		}
	})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
