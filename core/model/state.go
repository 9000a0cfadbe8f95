package model

import "fmt"

// DemandRef optionally refers to a demand by index. The zero value means
// "no demand"; the explicit flag avoids overloading index 0 as a sentinel.
type DemandRef struct {
	Index int
	Valid bool
}

// RefDemand returns a reference to the demand at index i.
func RefDemand(i int) DemandRef { return DemandRef{Index: i, Valid: true} }

func (r DemandRef) String() string {
	if !r.Valid {
		return "none"
	}
	return fmt.Sprintf("demand[%d]", r.Index)
}

// StationRef optionally refers to a charging station by index. The zero
// value means "not charging".
type StationRef struct {
	Index int
	Valid bool
}

// RefStation returns a reference to the charging station at index i.
func RefStation(i int) StationRef { return StationRef{Index: i, Valid: true} }

func (r StationRef) String() string {
	if !r.Valid {
		return "none"
	}
	return fmt.Sprintf("station[%d]", r.Index)
}

// Loading tracks a vehicle's demand-servicing intent. Current is the demand
// being carried toward delivery, Target the demand being approached for
// pickup. In the normal flow at most one of the two drives the next move;
// during transit of a picked-up demand both hold the same index.
type Loading struct {
	Current DemandRef
	Target  DemandRef
}

// VehicleState is the mutable per-tick state of one vehicle. It is owned by
// the environment; policies read it and propose Actions but never mutate it.
type VehicleState struct {
	Location int
	Loading  Loading
	Charging StationRef
	Battery  float64
}

func (s VehicleState) String() string {
	return fmt.Sprintf("location=%d loading=(%s,%s) charging=%s battery=%.3f",
		s.Location, s.Loading.Current, s.Loading.Target, s.Charging, s.Battery)
}

// Action is the proposed next state fragment for one vehicle, produced by a
// policy each tick and applied by the environment.
type Action struct {
	Location int
	Loading  Loading
	Charging StationRef
}

// Observation is a read-only snapshot of all vehicle states after a step.
type Observation struct {
	Locations []int
	Batteries []float64
	Loadings  []Loading
	Chargings []StationRef
}
