package app

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kilianp07/fleetsim/config"
	"github.com/kilianp07/fleetsim/core/events"
	"github.com/kilianp07/fleetsim/core/fmp"
	coremetrics "github.com/kilianp07/fleetsim/core/metrics"
	"github.com/kilianp07/fleetsim/core/sim"
	"github.com/kilianp07/fleetsim/infra/logger"
	"github.com/kilianp07/fleetsim/infra/metrics"
	"github.com/kilianp07/fleetsim/infra/telemetry"
	"github.com/kilianp07/fleetsim/internal/eventbus"
	"github.com/kilianp07/fleetsim/pkg/export"
)

// Service wires the simulation together: scenario, environment, runner,
// metric sinks and telemetry.
type Service struct {
	cfg    *config.Config
	runner *sim.Runner
	bus    *eventbus.Bus[events.Event]
	pub    *telemetry.Publisher
	log    logger.Logger

	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	problem, err := config.LoadScenario(cfg.Scenario)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logg.Infof("scenario %s: %d vertices, %d demands, %d vehicles (seed %d)",
		cfg.Scenario, len(problem.Vertices), len(problem.Demands), len(problem.Vehicles), seed)
	env := fmp.NewEnv(problem, rand.New(rand.NewSource(seed)), logger.New("env"))

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New[events.Event]()
	runner := sim.NewRunner(env, cfg.Sim, logger.New("runner"), sink, bus)

	if cfg.Logging.Path != "" {
		trace, err := sim.NewTraceStore(cfg.Logging.Path)
		if err != nil {
			return nil, fmt.Errorf("trace store: %w", err)
		}
		runner.SetTraceStore(trace)
	}

	svc := &Service{
		cfg:         cfg,
		runner:      runner,
		bus:         bus,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}
	if cfg.Telemetry.Enabled {
		pub, err := telemetry.NewPublisher(cfg.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		svc.pub = pub
	}
	return svc, nil
}

// Run executes the configured episodes and blocks until they finish or the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort, logger.New("metrics")); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.pub != nil {
		ch, cancel := s.bus.Subscribe(64)
		defer cancel()
		go s.pub.Watch(ch)
	}

	results, err := s.runner.Run(ctx)
	if err != nil {
		return err
	}
	s.log.Infof("run %s finished: %d episodes", s.runner.RunID(), len(results))
	if s.cfg.Output != "" {
		if err := s.export(results); err != nil {
			return fmt.Errorf("export results: %w", err)
		}
	}
	return nil
}

func (s *Service) export(results []sim.Result) error {
	f, err := os.Create(s.cfg.Output)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if strings.EqualFold(filepath.Ext(s.cfg.Output), ".csv") {
		return export.WriteCSV(f, results)
	}
	return export.WriteJSON(f, results)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.pub != nil {
		s.pub.Close()
	}
	return nil
}
