package model

// Vertex is a point of the road network identified by its index in the
// problem definition. Coordinates are immutable once the instance is built.
type Vertex struct {
	X float64
	Y float64
}

// Edge is a directed connection between two vertices. Vehicles travel
// From -> To.
type Edge struct {
	From int
	To   int
}

// Demand is a unit pickup-and-delivery request between two vertices.
// Neither endpoint may coincide with a charging station location.
type Demand struct {
	Departure   int
	Destination int
}

// ChargingStation recharges vehicle batteries at a fixed vertex.
// ChargeRate is the energy added per tick while a vehicle is plugged in.
type ChargingStation struct {
	Location   int
	ChargeRate float64
}

// ElectricVehicle is the static specification of one fleet vehicle.
// Capacity is the maximum battery charge.
type ElectricVehicle struct {
	Speed    float64
	Capacity float64
}
