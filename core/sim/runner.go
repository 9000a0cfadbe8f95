package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/fleetsim/core/events"
	"github.com/kilianp07/fleetsim/core/fmp"
	"github.com/kilianp07/fleetsim/core/logger"
	"github.com/kilianp07/fleetsim/core/metrics"
	"github.com/kilianp07/fleetsim/internal/eventbus"
)

// Config controls the episode runner.
type Config struct {
	// Episodes is the number of episodes to run back to back.
	Episodes int `json:"episodes"`
	// MaxTicks cuts an episode off when the fleet has not served every
	// demand in time.
	MaxTicks int `json:"max_ticks"`
	// Seed initializes the simulation's random source. Zero picks a
	// time-based seed.
	Seed int64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Episodes == 0 {
		c.Episodes = 1
	}
	if c.MaxTicks == 0 {
		c.MaxTicks = 1000
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Episodes < 1 {
		return fmt.Errorf("episodes must be positive, got %d", c.Episodes)
	}
	if c.MaxTicks < 1 {
		return fmt.Errorf("max_ticks must be positive, got %d", c.MaxTicks)
	}
	return nil
}

// Result summarises one finished episode.
type Result struct {
	RunID      string        `json:"run_id"`
	Episode    int           `json:"episode"`
	Ticks      int           `json:"ticks"`
	Responded  int           `json:"responded"`
	Demands    int           `json:"demands"`
	Done       bool          `json:"done"`
	MeanReward float64       `json:"mean_reward"`
	StdReward  float64       `json:"std_reward"`
	Rewards    []float64     `json:"rewards"`
	Duration   time.Duration `json:"duration"`
}

// Runner drives an environment with its sampling policy until every demand
// is served or the tick limit is hit, reporting progress to the metrics
// sink and the event bus.
type Runner struct {
	env   *fmp.Env
	cfg   Config
	log   logger.Logger
	sink  metrics.Sink
	bus   *eventbus.Bus[events.Event]
	trace *TraceStore
	runID string
}

// NewRunner creates a runner. sink and bus may be nil; the trace store is
// optional and attached with SetTraceStore.
func NewRunner(env *fmp.Env, cfg Config, log logger.Logger, sink metrics.Sink, bus *eventbus.Bus[events.Event]) *Runner {
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Runner{
		env:   env,
		cfg:   cfg,
		log:   log,
		sink:  sink,
		bus:   bus,
		runID: uuid.NewString(),
	}
}

// SetTraceStore attaches a store persisting every tick record.
func (r *Runner) SetTraceStore(ts *TraceStore) {
	r.trace = ts
}

// RunID returns the identifier shared by all episodes of this runner.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes the configured number of episodes. It stops early when the
// context is cancelled or when a step reports an invariant violation, which
// is not recoverable.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, r.cfg.Episodes)
	for ep := 0; ep < r.cfg.Episodes; ep++ {
		res, err := r.runEpisode(ctx, ep)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) runEpisode(ctx context.Context, episode int) (Result, error) {
	r.env.Reset()
	start := time.Now()
	demands := len(r.env.Problem().Demands)

	var (
		ticks int
		done  bool
		last  fmp.StepResult
	)
	for ticks < r.cfg.MaxTicks && !done {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		step, err := r.env.Step(r.env.Sample())
		if err != nil {
			var inv *fmp.InvariantError
			if errors.As(err, &inv) {
				r.log.Errorf("episode %d halted at tick %d: %v", episode, ticks, err)
			}
			return Result{}, fmt.Errorf("episode %d tick %d: %w", episode, ticks, err)
		}
		ticks++
		last = step
		done = step.Done
		r.record(episode, ticks, step)
	}

	mean := stat.Mean(last.Rewards, nil)
	std := 0.0
	if len(last.Rewards) > 1 {
		std = stat.StdDev(last.Rewards, nil)
	}
	res := Result{
		RunID:      r.runID,
		Episode:    episode,
		Ticks:      ticks,
		Responded:  r.env.Responded(),
		Demands:    demands,
		Done:       done,
		MeanReward: mean,
		StdReward:  std,
		Rewards:    last.Rewards,
		Duration:   time.Since(start),
	}
	r.finishEpisode(res)
	return res, nil
}

func (r *Runner) record(episode, tick int, step fmp.StepResult) {
	now := time.Now()
	rec := metrics.TickRecord{
		RunID:      r.runID,
		Episode:    episode,
		Tick:       tick,
		Batteries:  step.Observation.Batteries,
		Locations:  step.Observation.Locations,
		Delivered:  step.Delivered,
		Responded:  r.env.Responded(),
		MeanReward: stat.Mean(step.Rewards, nil),
		Time:       now,
	}
	if err := r.sink.RecordTick(rec); err != nil {
		r.log.Warnf("record tick: %v", err)
	}
	if r.trace != nil {
		if err := r.trace.Append(rec); err != nil {
			r.log.Warnf("append trace: %v", err)
		}
	}
	if r.bus != nil {
		r.bus.Publish(events.TickEvent{
			RunID:       r.runID,
			Episode:     episode,
			Tick:        tick,
			Observation: step.Observation,
			Responded:   rec.Responded,
			Done:        step.Done,
			Time:        now,
		})
		for _, d := range step.Delivered {
			r.bus.Publish(events.DeliveryEvent{
				RunID:   r.runID,
				Episode: episode,
				Tick:    tick,
				Demand:  d,
				Time:    now,
			})
		}
		for _, v := range step.ChargingStarted {
			r.bus.Publish(events.ChargingEvent{
				RunID:   r.runID,
				Episode: episode,
				Tick:    tick,
				Vehicle: v,
				Station: step.Observation.Chargings[v].Index,
				Time:    now,
			})
		}
	}
}

func (r *Runner) finishEpisode(res Result) {
	r.log.Infof("episode %d: %d/%d demands in %d ticks (done=%t)",
		res.Episode, res.Responded, res.Demands, res.Ticks, res.Done)
	rec := metrics.EpisodeRecord{
		RunID:      res.RunID,
		Episode:    res.Episode,
		Ticks:      res.Ticks,
		Responded:  res.Responded,
		Demands:    res.Demands,
		Done:       res.Done,
		MeanReward: res.MeanReward,
		StdReward:  res.StdReward,
		Duration:   res.Duration,
		Time:       time.Now(),
	}
	if err := r.sink.RecordEpisode(rec); err != nil {
		r.log.Warnf("record episode: %v", err)
	}
	if r.bus != nil {
		r.bus.Publish(events.EpisodeEvent{
			RunID:      res.RunID,
			Episode:    res.Episode,
			Ticks:      res.Ticks,
			Responded:  res.Responded,
			Demands:    res.Demands,
			Done:       res.Done,
			MeanReward: res.MeanReward,
			Time:       rec.Time,
		})
	}
}
