package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/fleetsim/core/metrics"
)

// PromSink exposes simulation progress as Prometheus metrics.
type PromSink struct {
	ticks      prometheus.Counter
	deliveries prometheus.Counter
	responded  prometheus.Gauge
	reward     prometheus.Gauge
	battery    prometheus.Histogram
	episodes   *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The exposition server is started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetsim_ticks_total",
			Help: "Total number of simulation ticks applied",
		}),
		deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetsim_deliveries_total",
			Help: "Total number of demands delivered",
		}),
		responded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetsim_responded_demands",
			Help: "Demands responded in the current episode",
		}),
		reward: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetsim_mean_reward",
			Help: "Mean cumulative per-vehicle reward after the last tick",
		}),
		battery: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetsim_vehicle_battery",
			Help:    "Per-vehicle battery level observed each tick",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		episodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetsim_episodes_total",
			Help: "Finished episodes by completion status",
		}, []string{"done"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetsim_episode_ticks",
			Help:    "Number of ticks per finished episode",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}),
	}

	for _, c := range []prometheus.Collector{s.ticks, s.deliveries, s.responded, s.reward, s.battery, s.episodes, s.duration} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// register tolerates re-registration of an identical collector, like when
// several runners share the default registry.
func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// RecordTick updates the per-tick counters and battery histogram.
func (s *PromSink) RecordTick(rec coremetrics.TickRecord) error {
	s.ticks.Inc()
	s.deliveries.Add(float64(len(rec.Delivered)))
	s.responded.Set(float64(rec.Responded))
	s.reward.Set(rec.MeanReward)
	for _, b := range rec.Batteries {
		s.battery.Observe(b)
	}
	return nil
}

// RecordEpisode counts the finished episode and observes its length.
func (s *PromSink) RecordEpisode(rec coremetrics.EpisodeRecord) error {
	s.episodes.WithLabelValues(strconv.FormatBool(rec.Done)).Inc()
	s.duration.Observe(float64(rec.Ticks))
	return nil
}
