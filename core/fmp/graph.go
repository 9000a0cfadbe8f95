package fmp

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/fleetsim/core/model"
)

// Graph provides travel costs and single-step routing over a static set of
// vertices and directed edges. Distances are direct Euclidean costs between
// endpoints, not general shortest-path costs; callers must not assume
// routing beyond the one-step contract.
type Graph struct {
	vertices []model.Vertex
	adj      [][]int
	dist     *mat.SymDense
	diagonal float64
}

// NewGraph builds the adjacency lists and precomputes the pairwise distance
// matrix. The vertex set is static, so the matrix is filled once.
func NewGraph(vertices []model.Vertex, edges []model.Edge) *Graph {
	n := len(vertices)
	g := &Graph{
		vertices: vertices,
		adj:      make([][]int, n),
		dist:     mat.NewSymDense(n, nil),
	}
	for _, e := range edges {
		g.adj[e.From] = append(g.adj[e.From], e.To)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.dist.SetSym(i, j, euclidean(vertices[i], vertices[j]))
		}
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, v := range vertices {
		minX = math.Min(minX, v.X)
		maxX = math.Max(maxX, v.X)
		minY = math.Min(minY, v.Y)
		maxY = math.Max(maxY, v.Y)
	}
	g.diagonal = 2 * ((maxY - minY) + (maxX - minX))
	return g
}

func euclidean(a, b model.Vertex) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Distance returns the non-negative travel cost between two vertices.
func (g *Graph) Distance(a, b int) float64 {
	return g.dist.At(a, b)
}

// Neighbors returns the out-neighbors of v in edge insertion order.
func (g *Graph) Neighbors(v int) []int {
	return g.adj[v]
}

// OneStepToward returns the vertex to move to when advancing one tick from
// "from" toward "to": the out-neighbor of "from" closest to "to" by direct
// distance. Ties resolve to the first neighbor in edge insertion order. A
// vertex equal to its destination, or one without out-edges, stays put.
func (g *Graph) OneStepToward(from, to int) int {
	if from == to {
		return from
	}
	next := from
	best := math.Inf(1)
	for _, n := range g.adj[from] {
		if d := g.Distance(n, to); d < best {
			best = d
			next = n
		}
	}
	return next
}

// Diagonal returns twice the half-perimeter of the bounding box around all
// vertices, the map-scale term of the charge-seeking heuristic.
func (g *Graph) Diagonal() float64 {
	return g.diagonal
}

// Order returns the number of vertices.
func (g *Graph) Order() int {
	return len(g.vertices)
}
