package events

import (
	"time"

	"github.com/kilianp07/fleetsim/core/model"
)

// Event is the union of simulation events carried by the bus.
type Event interface{}

// TickEvent is published after each applied simulation tick.
type TickEvent struct {
	RunID       string
	Episode     int
	Tick        int
	Observation model.Observation
	Responded   int
	Done        bool
	Time        time.Time
}

// DeliveryEvent is published when a demand is delivered.
type DeliveryEvent struct {
	RunID   string
	Episode int
	Tick    int
	Demand  int
	Time    time.Time
}

// ChargingEvent is published when a vehicle plugs into a station.
type ChargingEvent struct {
	RunID   string
	Episode int
	Tick    int
	Vehicle int
	Station int
	Time    time.Time
}

// EpisodeEvent is published once an episode ends, whether completed or cut
// off at the tick limit.
type EpisodeEvent struct {
	RunID      string
	Episode    int
	Ticks      int
	Responded  int
	Demands    int
	Done       bool
	MeanReward float64
	Time       time.Time
}
