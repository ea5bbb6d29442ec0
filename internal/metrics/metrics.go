package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"breathpace/internal/core/pacer"
	"breathpace/internal/core/sequencer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// StatsSource exposes pacer timer counters.
type StatsSource interface {
	Stats() pacer.Stats
}

// Collector turns session events into Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	events        *prometheus.CounterVec
	phases        *prometheus.CounterVec
	phaseSeconds  *prometheus.CounterVec
	rounds        prometheus.Counter
	sessionActive prometheus.Gauge
}

// New registers the session metrics on a private registry. stats may be nil.
func New(stats StatsSource) *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	collector := &Collector{
		registry: registry,
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "breathpace_session_events_total",
			Help: "Session events by type",
		}, []string{"type"}),
		phases: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "breathpace_phases_total",
			Help: "Phases entered by phase name",
		}, []string{"phase"}),
		phaseSeconds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "breathpace_phase_scheduled_seconds_total",
			Help: "Scheduled phase time by phase name",
		}, []string{"phase"}),
		rounds: factory.NewCounter(prometheus.CounterOpts{
			Name: "breathpace_rounds_completed_total",
			Help: "Completed breathing rounds",
		}),
		sessionActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "breathpace_session_active",
			Help: "1 while a session is counting down, running or paused",
		}),
	}

	if stats != nil {
		factory.NewCounterFunc(prometheus.CounterOpts{
			Name: "breathpace_stale_timers_total",
			Help: "Timer callbacks dropped because the session moved on",
		}, func() float64 {
			return float64(stats.Stats().StaleTimers)
		})
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "breathpace_pending_timers",
			Help: "Timers currently scheduled",
		}, func() float64 {
			return float64(stats.Stats().PendingTimers)
		})
	}
	return collector
}

// Observe records one event.
func (collector *Collector) Observe(event sequencer.Event) {
	collector.events.WithLabelValues(string(event.Type)).Inc()
	switch event.Type {
	case sequencer.EventSessionStarted:
		collector.sessionActive.Set(1)
	case sequencer.EventSessionCompleted, sequencer.EventSessionAborted:
		collector.sessionActive.Set(0)
	case sequencer.EventPhaseChanged:
		collector.phases.WithLabelValues(string(event.Phase)).Inc()
		collector.phaseSeconds.WithLabelValues(string(event.Phase)).Add(event.PhaseDuration.Seconds())
	case sequencer.EventRoundCompleted:
		collector.rounds.Inc()
	}
}

// Run observes events until the channel closes or ctx is cancelled.
func (collector *Collector) Run(ctx context.Context, events <-chan sequencer.Event) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			collector.Observe(event)
		case <-ctx.Done():
			return
		}
	}
}

// Registry returns the registry holding the session metrics.
func (collector *Collector) Registry() *prometheus.Registry {
	return collector.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (collector *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(collector.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (collector *Collector) Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("metrics server shutdown")
		}
	}()

	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
