package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the bot's prometheus collectors.
type Metrics struct {
	UpdatesProcessed   prometheus.Counter
	BookingsTotal      *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	ErrorsTotal        prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		UpdatesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "turf_bot_updates_processed_total",
			Help: "Total number of processed telegram updates",
		}),

		BookingsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "turf_bot_bookings_total",
			Help: "Booking submissions by outcome",
		}, []string{"outcome"}),

		APIRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "turf_bot_api_request_duration_seconds",
			Help:    "Duration of turf API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "turf_bot_errors_total",
			Help: "Total number of errors",
		}),
	}
}

// ObserveAPIRequest is the turfapi.Observer hook.
func (m *Metrics) ObserveAPIRequest(method, path string, status int, elapsed time.Duration) {
	m.APIRequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
	if status == 0 || status >= 500 {
		m.ErrorsTotal.Inc()
	}
}

// Serve exposes /metrics on the given port until ctx is cancelled.
func Serve(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
