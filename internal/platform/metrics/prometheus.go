package metrics

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/tender-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager holds the service's Prometheus metrics on a dedicated registry.
type Manager struct {
	Registry             *prometheus.Registry
	BidsAcceptedTotal    prometheus.Counter
	BidsRejectedTotal    *prometheus.CounterVec
	ListingsWonTotal     prometheus.Counter
	ListingsUnsoldTotal  prometheus.Counter
	SweepDurationSeconds prometheus.Histogram
}

func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	bidsAcceptedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "bids_accepted_total",
		Help:      "Total number of accepted bids.",
	})
	bidsRejectedTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "bids_rejected_total",
		Help:      "Total number of rejected bids by reason.",
	}, []string{"reason"})
	listingsWonTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_won_total",
		Help:      "Total number of listings resolved as won.",
	})
	listingsUnsoldTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_unsold_total",
		Help:      "Total number of listings resolved as unsold.",
	})
	sweepDurationSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of expiry sweep runs.",
		Buckets:   prometheus.DefBuckets,
	})

	registry.MustRegister(
		bidsAcceptedTotal,
		bidsRejectedTotal,
		listingsWonTotal,
		listingsUnsoldTotal,
		sweepDurationSeconds,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:             registry,
		BidsAcceptedTotal:    bidsAcceptedTotal,
		BidsRejectedTotal:    bidsRejectedTotal,
		ListingsWonTotal:     listingsWonTotal,
		ListingsUnsoldTotal:  listingsUnsoldTotal,
		SweepDurationSeconds: sweepDurationSeconds,
	}
}

// StartServer exposes the registry on /metrics. It blocks, so callers run it
// in a goroutine. An empty port disables the server.
func StartServer(port string, log logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		log.Info("Prometheus metrics server port not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	log.Infof("Prometheus metrics server starting on port %s", port)
	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
