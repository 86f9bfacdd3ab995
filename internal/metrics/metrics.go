package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Blup1980/tenma-DC-load/batterylog"
)

// NewRegistry creates a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// SessionMetrics mirrors the latest sample of a logging session.
// It implements batterylog.Observer.
type SessionMetrics struct {
	Voltage  prometheus.Gauge
	Current  prometheus.Gauge
	Capacity prometheus.Gauge
	Energy   prometheus.Gauge
	Samples  prometheus.Counter
	Degraded prometheus.Counter // Samples with an unparseable reading
}

// NewSessionMetrics registers and returns the session metrics.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		Voltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tenma_voltage_volts",
			Help: "Last measured voltage at the load terminals.",
		}),
		Current: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tenma_current_amps",
			Help: "Last measured current through the load.",
		}),
		Capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tenma_capacity_amp_hours",
			Help: "Cumulative discharged capacity.",
		}),
		Energy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tenma_energy_watt_hours",
			Help: "Cumulative discharged energy.",
		}),
		Samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenma_samples_total",
			Help: "Samples recorded by the logging session.",
		}),
		Degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenma_degraded_samples_total",
			Help: "Samples recorded with a reading that could not be parsed.",
		}),
	}
	reg.MustRegister(m.Voltage, m.Current, m.Capacity, m.Energy, m.Samples, m.Degraded)
	return m
}

// Observe records the newest sample of history.
func (m *SessionMetrics) Observe(history []batterylog.Sample) {
	if len(history) == 0 {
		return
	}
	s := history[len(history)-1]

	m.Voltage.Set(s.Voltage)
	m.Current.Set(s.Current)
	m.Capacity.Set(s.Capacity)
	m.Energy.Set(s.Energy)
	m.Samples.Inc()
	if s.Degraded {
		m.Degraded.Inc()
	}
}

// Serve exposes reg on addr at path until ctx is done.
func Serve(ctx context.Context, addr, path string, reg *prometheus.Registry, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, Handler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics listening", zap.String("addr", addr), zap.String("path", path))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
