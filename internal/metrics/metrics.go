package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for CyclesTotal.
const (
	OutcomeSuccess      = "success"
	OutcomeHTTPError    = "http_error"
	OutcomeNetworkError = "network_error"
	OutcomeUnknownError = "unknown_error"
)

var (
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trade_trigger_cycles_total",
			Help: "Send cycles completed, labeled by outcome",
		},
		[]string{"outcome"},
	)
	SendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trade_trigger_send_duration_seconds",
			Help:    "Latency of the message POST",
			Buckets: prometheus.DefBuckets,
		},
	)
	LastSendTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trade_trigger_last_send_timestamp_seconds",
			Help: "Unix time of the last send attempt",
		},
	)
	InboxMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devserver_messages_received_total",
			Help: "Messages accepted by the local messaging server, labeled by channel",
		},
		[]string{"channel"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve runs a /metrics listener until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("[metrics] listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
