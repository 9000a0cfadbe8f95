package fmp

import (
	"fmt"
	"strings"

	"github.com/kilianp07/fleetsim/core/model"
)

// ValidationError reports every condition an instance definition failed.
// Validation is total: all checks run before the constructor gives up, so
// Issues lists each violation rather than only the first.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "fmp: invalid problem definition: " + strings.Join(e.Issues, "; ")
}

// Problem is the immutable description of one fleet management instance:
// the road network, the demands to serve, the fleet and where it charges.
// All slices are owned by the Problem after construction and must not be
// mutated by callers.
type Problem struct {
	Vertices   []model.Vertex
	Edges      []model.Edge
	Demands    []model.Demand
	Vehicles   []model.ElectricVehicle
	Stations   []model.ChargingStation
	Departures []int

	graph *Graph
}

// NewProblem validates the instance and precomputes its graph model. It
// returns a *ValidationError describing every violated condition, never a
// partially-built instance.
func NewProblem(
	vertices []model.Vertex,
	edges []model.Edge,
	demands []model.Demand,
	vehicles []model.ElectricVehicle,
	stations []model.ChargingStation,
	departures []int,
) (*Problem, error) {
	var issues []string
	addf := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	if len(vertices) == 0 {
		addf("no vertices")
	}
	if len(edges) == 0 {
		addf("no edges")
	}
	if len(demands) == 0 {
		addf("no demands")
	}
	if len(vehicles) == 0 {
		addf("no vehicles")
	}
	if len(stations) == 0 {
		addf("no charging stations")
	}
	if len(departures) != len(vehicles) {
		addf("%d departures for %d vehicles", len(departures), len(vehicles))
	}

	n := len(vertices)
	inRange := func(v int) bool { return v >= 0 && v < n }

	seenVertices := make(map[model.Vertex]int, n)
	for i, v := range vertices {
		if j, ok := seenVertices[v]; ok {
			addf("vertices %d and %d share coordinates (%g, %g)", j, i, v.X, v.Y)
			continue
		}
		seenVertices[v] = i
	}
	seenEdges := make(map[model.Edge]int, len(edges))
	for i, e := range edges {
		if !inRange(e.From) || !inRange(e.To) {
			addf("edge %d endpoints (%d, %d) out of range", i, e.From, e.To)
		}
		if j, ok := seenEdges[e]; ok {
			addf("edges %d and %d are duplicates", j, i)
			continue
		}
		seenEdges[e] = i
	}
	seenVehicles := make(map[model.ElectricVehicle]int, len(vehicles))
	for i, v := range vehicles {
		if j, ok := seenVehicles[v]; ok {
			addf("vehicles %d and %d share the same specification", j, i)
			continue
		}
		seenVehicles[v] = i
	}
	seenStations := make(map[model.ChargingStation]int, len(stations))
	stationLocs := make(map[int]struct{}, len(stations))
	for i, s := range stations {
		if !inRange(s.Location) {
			addf("charging station %d location %d out of range", i, s.Location)
		}
		if j, ok := seenStations[s]; ok {
			addf("charging stations %d and %d are duplicates", j, i)
			continue
		}
		seenStations[s] = i
		stationLocs[s.Location] = struct{}{}
	}
	for i, d := range demands {
		if !inRange(d.Departure) || !inRange(d.Destination) {
			addf("demand %d endpoints (%d, %d) out of range", i, d.Departure, d.Destination)
			continue
		}
		if _, ok := stationLocs[d.Departure]; ok {
			addf("demand %d departs from charging station location %d", i, d.Departure)
		}
		if _, ok := stationLocs[d.Destination]; ok {
			addf("demand %d ends at charging station location %d", i, d.Destination)
		}
	}
	for i, dep := range departures {
		if !inRange(dep) {
			addf("departure %d vertex %d out of range", i, dep)
		}
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	return &Problem{
		Vertices:   vertices,
		Edges:      edges,
		Demands:    demands,
		Vehicles:   vehicles,
		Stations:   stations,
		Departures: departures,
		graph:      NewGraph(vertices, edges),
	}, nil
}

// Graph returns the precomputed graph model for this instance.
func (p *Problem) Graph() *Graph {
	return p.graph
}

// NearestChargingStation returns the index of the station with the smallest
// travel distance from loc. Exact ties resolve to the lowest station index.
func (p *Problem) NearestChargingStation(loc int) int {
	best := 0
	bestDist := p.graph.Distance(loc, p.Stations[0].Location)
	for i := 1; i < len(p.Stations); i++ {
		if d := p.graph.Distance(loc, p.Stations[i].Location); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// HotSpotWeight scores local demand density around a vertex: one plus the
// fraction of demands departing from v or one of its direct out-neighbors.
// Always >= 1, so delivery bonuses never vanish in sparse areas.
func (p *Problem) HotSpotWeight(v int) float64 {
	near := map[int]struct{}{v: {}}
	for _, n := range p.graph.Neighbors(v) {
		near[n] = struct{}{}
	}
	count := 0
	for _, d := range p.Demands {
		if _, ok := near[d.Departure]; ok {
			count++
		}
	}
	return 1 + float64(count)/float64(len(p.Demands))
}
