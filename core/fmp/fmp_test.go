package fmp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleetsim/core/model"
)

// squareProblem builds the canonical test instance: a unit square with a
// directed cycle 0->1->2->3->0, one demand from vertex 0 to vertex 2, one
// charging station at vertex 1 and a single vehicle starting at vertex 0.
func squareProblem(t *testing.T, capacity float64) *Problem {
	t.Helper()
	p, err := NewProblem(
		[]model.Vertex{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		[]model.Edge{{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 3}, {From: 3, To: 0}},
		[]model.Demand{{Departure: 0, Destination: 2}},
		[]model.ElectricVehicle{{Speed: 1, Capacity: capacity}},
		[]model.ChargingStation{{Location: 1, ChargeRate: 5}},
		[]int{0},
	)
	require.NoError(t, err)
	return p
}

// twoVehicleProblem has two available vehicles and two demands on the same
// square network. Capacity equals the battery at reset; with capacity 2 the
// charge-seeking probability is exactly zero at full battery, which makes
// the availability decision deterministic.
func twoVehicleProblem(t *testing.T) *Problem {
	t.Helper()
	p, err := NewProblem(
		[]model.Vertex{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		[]model.Edge{{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 3}, {From: 3, To: 0}},
		[]model.Demand{{Departure: 0, Destination: 2}, {Departure: 3, Destination: 2}},
		[]model.ElectricVehicle{{Speed: 1, Capacity: 2}, {Speed: 2, Capacity: 2}},
		[]model.ChargingStation{{Location: 1, ChargeRate: 5}},
		[]int{0, 0},
	)
	require.NoError(t, err)
	return p
}
