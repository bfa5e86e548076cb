// Package metrics exposes Prometheus instruments for the rescan pipeline and
// the leaderboard command.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Cycle and leaderboard outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeAbandoned = "abandoned"
	OutcomePartial   = "partial"
)

type Metrics struct {
	Cycles              *prometheus.CounterVec
	CycleDuration       prometheus.Histogram
	ChannelFailures     prometheus.Counter
	MessagesUpserted    prometheus.Counter
	LeaderboardRequests *prometheus.CounterVec
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kekboard_rescan_cycles_total",
			Help: "Rescan cycles by outcome",
		}, []string{"outcome"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kekboard_rescan_duration_seconds",
			Help:    "Wall time of a full rescan cycle",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		ChannelFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kekboard_channel_scan_failures_total",
			Help: "Channel scans that failed and were skipped",
		}),
		MessagesUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kekboard_messages_upserted_total",
			Help: "Scored messages written to the store",
		}),
		LeaderboardRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kekboard_leaderboard_requests_total",
			Help: "Leaderboard requests by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.Cycles, m.CycleDuration, m.ChannelFailures, m.MessagesUpserted, m.LeaderboardRequests)
	return m
}

// Serve exposes gatherer on addr at /metrics until ctx is cancelled.
func Serve(ctx context.Context, log *zap.SugaredLogger, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		srv.Shutdown(shutdownCtx)
	}()

	log.With("addr", addr).Info("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
