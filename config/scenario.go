package config

import (
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/fleetsim/core/fmp"
	"github.com/kilianp07/fleetsim/core/model"
)

// Scenario is the on-disk description of one fleet management instance.
// It decodes from YAML or JSON and produces the same slices the explicit
// construction API consumes; validation happens in fmp.NewProblem.
type Scenario struct {
	Vertices   []ScenarioVertex  `json:"vertices"`
	Edges      []ScenarioEdge    `json:"edges"`
	Demands    []ScenarioDemand  `json:"demands"`
	Vehicles   []ScenarioVehicle `json:"vehicles"`
	Stations   []ScenarioStation `json:"charging_stations"`
	Departures []int             `json:"departures"`
}

type ScenarioVertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ScenarioEdge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type ScenarioDemand struct {
	Departure   int `json:"departure"`
	Destination int `json:"destination"`
}

type ScenarioVehicle struct {
	Speed    float64 `json:"speed"`
	Capacity float64 `json:"capacity"`
}

type ScenarioStation struct {
	Location   int     `json:"location"`
	ChargeRate float64 `json:"charge_rate"`
}

// LoadScenario reads a scenario file and builds the validated problem
// definition from it.
func LoadScenario(path string) (*fmp.Problem, error) {
	k := koanf.New(".")
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	var sc Scenario
	if err := k.UnmarshalWithConf("", &sc, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	return sc.Problem()
}

// Problem converts the scenario into a validated problem definition.
func (sc Scenario) Problem() (*fmp.Problem, error) {
	vertices := make([]model.Vertex, len(sc.Vertices))
	for i, v := range sc.Vertices {
		vertices[i] = model.Vertex{X: v.X, Y: v.Y}
	}
	edges := make([]model.Edge, len(sc.Edges))
	for i, e := range sc.Edges {
		edges[i] = model.Edge{From: e.From, To: e.To}
	}
	demands := make([]model.Demand, len(sc.Demands))
	for i, d := range sc.Demands {
		demands[i] = model.Demand{Departure: d.Departure, Destination: d.Destination}
	}
	vehicles := make([]model.ElectricVehicle, len(sc.Vehicles))
	for i, v := range sc.Vehicles {
		vehicles[i] = model.ElectricVehicle{Speed: v.Speed, Capacity: v.Capacity}
	}
	stations := make([]model.ChargingStation, len(sc.Stations))
	for i, s := range sc.Stations {
		stations[i] = model.ChargingStation{Location: s.Location, ChargeRate: s.ChargeRate}
	}
	return fmp.NewProblem(vertices, edges, demands, vehicles, stations, sc.Departures)
}
