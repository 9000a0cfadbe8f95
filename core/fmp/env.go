package fmp

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/kilianp07/fleetsim/core/logger"
	"github.com/kilianp07/fleetsim/core/model"
)

// InvariantError reports a fatal simulation contract violation: a step
// drove a vehicle's battery negative. The policy is responsible for never
// proposing an unaffordable move, so this is a programming error and the
// episode must halt rather than clamp.
type InvariantError struct {
	Vehicle int
	Battery float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("fmp: battery of vehicle %d driven negative (%g)", e.Vehicle, e.Battery)
}

// StepResult is the outcome of applying one tick of actions.
type StepResult struct {
	Observation model.Observation
	// Rewards are cumulative per-vehicle rewards since the last reset.
	Rewards []float64
	// Delivered lists the demand indices completed this tick.
	Delivered []int
	// ChargingStarted lists the vehicles that plugged in this tick.
	ChargingStarted []int
	// Done is true once every demand has been responded.
	Done bool
}

// Env owns the mutable episode state of a fleet management instance: the
// vehicle states, the responded demand set and the cumulative rewards. It
// advances through Reset and Step only; decisions come from a policy over a
// snapshot of the previous tick's states.
type Env struct {
	problem *Problem
	rng     *rand.Rand
	log     logger.Logger

	states    []model.VehicleState
	responded map[int]struct{}
	rewards   []float64
	policy    *GridPolicy
}

// NewEnv creates an environment for the given instance. rng is the single
// pseudo-random source of the episode; seed it for reproducible runs. The
// environment starts reset.
func NewEnv(p *Problem, rng *rand.Rand, log logger.Logger) *Env {
	e := &Env{problem: p, rng: rng, log: log}
	e.Reset()
	return e
}

// Problem returns the static instance this environment simulates.
func (e *Env) Problem() *Problem {
	return e.problem
}

// Reset reinitializes every vehicle at its configured departure with a full
// battery and no loading or charging intent, clears the responded set,
// zeroes the rewards and rebuilds the sampling policy over the fresh state.
// It returns the initial observation.
func (e *Env) Reset() model.Observation {
	n := len(e.problem.Vehicles)
	e.states = make([]model.VehicleState, n)
	for i := range e.states {
		e.states[i].Location = e.problem.Departures[i]
		e.states[i].Battery = e.problem.Vehicles[i].Capacity
	}
	e.responded = make(map[int]struct{}, len(e.problem.Demands))
	e.rewards = make([]float64, n)
	e.policy = NewGridPolicy(e.problem, e.isResponded, e.rng, e.log)
	return e.observation()
}

// Sample proposes one action per vehicle using the default sampling policy.
func (e *Env) Sample() []model.Action {
	return e.policy.Sample(e.states)
}

// Step applies one action per vehicle in index order. For each vehicle it
// assigns the proposed loading, charging and location, charges the move
// against the battery, applies station charging, accumulates the reward and
// records delivery completions in the responded set. A negative battery
// aborts with *InvariantError and leaves the episode unusable.
func (e *Env) Step(actions []model.Action) (StepResult, error) {
	if len(actions) != len(e.states) {
		return StepResult{}, fmt.Errorf("fmp: %d actions for %d vehicles", len(actions), len(e.states))
	}

	var delivered, chargingStarted []int
	for i, act := range actions {
		prev := e.states[i]
		st := &e.states[i]
		st.Loading = act.Loading
		st.Charging = act.Charging
		st.Location = act.Location

		st.Battery -= e.problem.Graph().Distance(prev.Location, st.Location)
		if st.Battery < 0 {
			return StepResult{}, &InvariantError{Vehicle: i, Battery: st.Battery}
		}
		if st.Charging.Valid {
			if !prev.Charging.Valid {
				chargingStarted = append(chargingStarted, i)
			}
			// No clamp: charging may push the battery above capacity.
			st.Battery += e.problem.Stations[st.Charging.Index].ChargeRate
		}

		e.rewards[i] += math.Min(st.Battery-prev.Battery, 0)

		if prev.Loading.Current.Valid && !st.Loading.Current.Valid {
			d := prev.Loading.Current.Index
			e.responded[d] = struct{}{}
			delivered = append(delivered, d)
			dm := e.problem.Demands[d]
			e.rewards[i] += e.problem.HotSpotWeight(dm.Departure) *
				e.problem.Graph().Distance(dm.Departure, dm.Destination)
		}
	}

	res := StepResult{
		Observation:     e.observation(),
		Rewards:         append([]float64(nil), e.rewards...),
		Delivered:       delivered,
		ChargingStarted: chargingStarted,
		Done:            len(e.responded) == len(e.problem.Demands),
	}
	e.log.Debugw("step applied", map[string]any{
		"batteries": res.Observation.Batteries,
		"responded": len(e.responded),
		"done":      res.Done,
	})
	return res, nil
}

// States returns a copy of the current vehicle states.
func (e *Env) States() []model.VehicleState {
	return append([]model.VehicleState(nil), e.states...)
}

// Responded reports how many demands have been delivered so far.
func (e *Env) Responded() int {
	return len(e.responded)
}

func (e *Env) isResponded(d int) bool {
	_, ok := e.responded[d]
	return ok
}

func (e *Env) observation() model.Observation {
	obs := model.Observation{
		Locations: make([]int, len(e.states)),
		Batteries: make([]float64, len(e.states)),
		Loadings:  make([]model.Loading, len(e.states)),
		Chargings: make([]model.StationRef, len(e.states)),
	}
	for i, s := range e.states {
		obs.Locations[i] = s.Location
		obs.Batteries[i] = s.Battery
		obs.Loadings[i] = s.Loading
		obs.Chargings[i] = s.Charging
	}
	return obs
}
