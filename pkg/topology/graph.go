package topology

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/stat"

	"skeleton3d/internal/models"
)

// GraphSummary describes a skeleton as a voxel adjacency graph.
type GraphSummary struct {
	Nodes      int     `yaml:"nodes"`
	Edges      int     `yaml:"edges"`
	Endpoints  int     `yaml:"endpoints"` // degree 1
	Junctions  int     `yaml:"junctions"` // degree 3 or more
	Isolated   int     `yaml:"isolated"`  // degree 0
	Components int     `yaml:"components"`
	MeanDegree float64 `yaml:"meanDegree"`
	StdDegree  float64 `yaml:"stdDegree"`
}

// forward holds the 13 neighbour offsets that come after a voxel in raster
// order, so each adjacency is visited once.
var forward = func() [][3]int {
	var out [][3]int
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dz > 0 || (dz == 0 && (dy > 0 || (dy == 0 && dx > 0))) {
					out = append(out, [3]int{dx, dy, dz})
				}
			}
		}
	}
	return out
}()

// BuildGraph returns the 26-adjacency graph of the object voxels of v. Node
// IDs are linear voxel indices.
func BuildGraph(v *models.Volume) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i, b := range v.Data {
		if b != 0 {
			g.AddNode(simple.Node(i))
		}
	}
	for i, b := range v.Data {
		if b == 0 {
			continue
		}
		x, y, z := v.Coords(i)
		for _, d := range forward {
			if v.At(x+d[0], y+d[1], z+d[2]) != 0 {
				j := v.Index(x+d[0], y+d[1], z+d[2])
				g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
			}
		}
	}
	return g
}

// AnalyzeGraph classifies the nodes of g by degree and counts its components.
func AnalyzeGraph(g *simple.UndirectedGraph) GraphSummary {
	s := GraphSummary{Edges: g.Edges().Len()}
	var degrees []float64
	nodes := g.Nodes()
	for nodes.Next() {
		deg := g.From(nodes.Node().ID()).Len()
		degrees = append(degrees, float64(deg))
		switch {
		case deg == 0:
			s.Isolated++
		case deg == 1:
			s.Endpoints++
		case deg >= 3:
			s.Junctions++
		}
	}
	s.Nodes = len(degrees)
	s.Components = len(topo.ConnectedComponents(g))
	if len(degrees) > 0 {
		s.MeanDegree = stat.Mean(degrees, nil)
	}
	if len(degrees) > 1 {
		s.StdDegree = stat.StdDev(degrees, nil)
	}
	return s
}
