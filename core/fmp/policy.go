package fmp

import (
	"math/rand"

	"github.com/kilianp07/fleetsim/core/logger"
	"github.com/kilianp07/fleetsim/core/model"
)

// GridPolicy is the default sampling policy. Every tick it classifies each
// vehicle into exactly one of four phases - delivering, en route to a
// pickup, charging, available - and proposes the next action. It reads
// vehicle states and the problem definition but never mutates either; the
// environment applies the produced actions.
type GridPolicy struct {
	problem   *Problem
	responded func(demand int) bool
	rng       *rand.Rand
	log       logger.Logger
}

// NewGridPolicy builds a policy over the given instance. responded reports
// whether a demand has already been delivered; rng is the single seedable
// source all probabilistic choices draw from, in vehicle index order.
func NewGridPolicy(p *Problem, responded func(int) bool, rng *rand.Rand, log logger.Logger) *GridPolicy {
	return &GridPolicy{problem: p, responded: responded, rng: rng, log: log}
}

// Sample proposes one action per vehicle against a consistent snapshot of
// the previous tick's states. The responding commitment set is rebuilt from
// all vehicles before any available-phase decision is taken, so two
// vehicles never pick the same demand within one tick.
func (p *GridPolicy) Sample(states []model.VehicleState) []model.Action {
	responding := make(map[int]struct{}, len(states))
	for _, s := range states {
		if s.Loading.Current.Valid {
			responding[s.Loading.Current.Index] = struct{}{}
		} else if s.Loading.Target.Valid {
			responding[s.Loading.Target.Index] = struct{}{}
		}
	}

	actions := make([]model.Action, len(states))
	for i, s := range states {
		switch {
		case s.Loading.Current.Valid:
			actions[i] = p.deliver(i, s)
		case s.Loading.Target.Valid:
			actions[i] = p.approach(i, s)
		case s.Charging.Valid:
			actions[i] = p.charge(i, s)
		default:
			actions[i] = p.decide(i, s, responding)
		}
	}
	return actions
}

// deliver advances a loaded vehicle toward the carried demand's destination.
// Arrival clears the loading pair, which the environment reads as the
// delivery completion signal.
func (p *GridPolicy) deliver(i int, s model.VehicleState) model.Action {
	dst := p.problem.Demands[s.Loading.Current.Index].Destination
	loc := p.problem.Graph().OneStepToward(s.Location, dst)
	act := model.Action{Location: loc, Loading: s.Loading}
	if loc == dst {
		p.log.Debugf("vehicle %d delivers %s at vertex %d", i, s.Loading.Current, dst)
		act.Loading = model.Loading{}
	}
	return act
}

// approach advances a vehicle toward its target demand's departure vertex.
// Pickup is instantaneous on arrival: the target is promoted to current.
func (p *GridPolicy) approach(i int, s model.VehicleState) model.Action {
	dep := p.problem.Demands[s.Loading.Target.Index].Departure
	loc := p.problem.Graph().OneStepToward(s.Location, dep)
	act := model.Action{Location: loc, Loading: s.Loading}
	if loc == dep {
		p.log.Debugf("vehicle %d picks up %s at vertex %d", i, s.Loading.Target, dep)
		act.Loading = model.Loading{Current: s.Loading.Target, Target: s.Loading.Target}
	}
	return act
}

// charge keeps a plugged-in vehicle at its station until one more tick of
// charging would fill the battery, then leaves the charging reference unset
// so the vehicle is available next tick.
func (p *GridPolicy) charge(i int, s model.VehicleState) model.Action {
	st := p.problem.Stations[s.Charging.Index]
	act := model.Action{Location: st.Location}
	if p.problem.Vehicles[i].Capacity-s.Battery > st.ChargeRate {
		act.Charging = s.Charging
	} else {
		p.log.Debugf("vehicle %d finishes charging at %s", i, s.Charging)
	}
	return act
}

// decide handles an available vehicle: it either seeks the nearest charging
// station, with a probability that grows as the battery empties relative to
// capacity and map scale, or commits to a random unclaimed demand.
func (p *GridPolicy) decide(i int, s model.VehicleState, responding map[int]struct{}) model.Action {
	capacity := p.problem.Vehicles[i].Capacity
	if p.rng.Float64() < p.chargeProbability(s.Battery, capacity) {
		ncs := p.problem.NearestChargingStation(s.Location)
		stLoc := p.problem.Stations[ncs].Location
		loc := p.problem.Graph().OneStepToward(s.Location, stLoc)
		act := model.Action{Location: loc}
		if loc == stLoc {
			act.Charging = model.RefStation(ncs)
		}
		return act
	}

	available := make([]int, 0, len(p.problem.Demands))
	for d := range p.problem.Demands {
		if p.responded(d) {
			continue
		}
		if _, taken := responding[d]; taken {
			continue
		}
		available = append(available, d)
	}
	if len(available) == 0 {
		return model.Action{Location: s.Location}
	}

	demand := available[p.rng.Intn(len(available))]
	responding[demand] = struct{}{}
	p.log.Debugf("vehicle %d targets demand %d", i, demand)

	dep := p.problem.Demands[demand].Departure
	loc := p.problem.Graph().OneStepToward(s.Location, dep)
	act := model.Action{Location: loc}
	if loc == dep {
		act.Loading = model.Loading{Current: model.RefDemand(demand), Target: model.RefDemand(demand)}
	} else {
		act.Loading = model.Loading{Target: model.RefDemand(demand)}
	}
	return act
}

// chargeProbability is the charge-seeking heuristic: battery low relative to
// the vehicle's capacity and the map's bounding-box diagonal pushes the
// pseudo-probability up. The result can leave [0, 1]; callers compare it
// against a uniform draw, so values outside the range are fine.
func (p *GridPolicy) chargeProbability(battery, capacity float64) float64 {
	diagonal := p.problem.Graph().Diagonal()
	return battery/(diagonal-capacity) + capacity/(capacity-diagonal)
}
