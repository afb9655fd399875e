package topology

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"

	"skeleton3d/internal/models"
)

// ErrEmptySkeleton is returned when a measure needs at least one skeleton voxel.
var ErrEmptySkeleton = errors.New("topology: skeleton is empty")

// Point is a voxel centre usable as a k-d tree key.
type Point struct {
	X, Y, Z float64
}

// Compare implements the kdtree.Comparable interface
func (p Point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(Point)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the KD-tree
func (p Point) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between two points
func (p Point) Distance(c kdtree.Comparable) float64 {
	q := c.(Point)
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return dx*dx + dy*dy + dz*dz
}

// Points is a collection of Point that satisfies kdtree.Interface
type Points []Point

func (p Points) Index(i int) kdtree.Comparable         { return p[i] }
func (p Points) Len() int                              { return len(p) }
func (p Points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method
func (p Points) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pointPlane{Points: p, Dim: d}, kdtree.MedianOfRandoms(pointPlane{Points: p, Dim: d}, 100))
}

// pointPlane implements sort.Interface and kdtree.SortSlicer for Points
type pointPlane struct {
	Points
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.Points[i].X < p.Points[j].X
	case 1:
		return p.Points[i].Y < p.Points[j].Y
	case 2:
		return p.Points[i].Z < p.Points[j].Z
	default:
		panic("illegal dimension")
	}
}

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{Points: p.Points[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) {
	p.Points[i], p.Points[j] = p.Points[j], p.Points[i]
}

// RadiusSummary describes the distance from an object's surface to its
// skeleton, an estimate of the local half-thickness, in voxel units.
type RadiusSummary struct {
	Samples int     `yaml:"samples"`
	Mean    float64 `yaml:"mean"`
	StdDev  float64 `yaml:"stdDev"`
	Max     float64 `yaml:"max"`
}

// MedialRadii measures, for every surface voxel of object, the distance to
// the nearest voxel of skeleton. A surface voxel is an object voxel with a
// background 6-neighbour. Both volumes must share the same geometry.
func MedialRadii(object, skeleton *models.Volume) (RadiusSummary, error) {
	pts := voxelPoints(skeleton)
	if len(pts) == 0 {
		return RadiusSummary{}, ErrEmptySkeleton
	}
	tree := kdtree.New(pts, false)

	var radii []float64
	for i, b := range object.Data {
		if b == 0 {
			continue
		}
		x, y, z := object.Coords(i)
		if !onSurface(object, x, y, z) {
			continue
		}
		_, d2 := tree.Nearest(Point{float64(x), float64(y), float64(z)})
		radii = append(radii, math.Sqrt(d2))
	}

	s := RadiusSummary{Samples: len(radii)}
	if len(radii) == 0 {
		return s, nil
	}
	s.Mean = stat.Mean(radii, nil)
	if len(radii) > 1 {
		s.StdDev = stat.StdDev(radii, nil)
	}
	for _, r := range radii {
		s.Max = math.Max(s.Max, r)
	}
	return s, nil
}

func voxelPoints(v *models.Volume) Points {
	var pts Points
	for i, b := range v.Data {
		if b != 0 {
			x, y, z := v.Coords(i)
			pts = append(pts, Point{float64(x), float64(y), float64(z)})
		}
	}
	return pts
}

func onSurface(v *models.Volume, x, y, z int) bool {
	return v.At(x-1, y, z) == 0 || v.At(x+1, y, z) == 0 ||
		v.At(x, y-1, z) == 0 || v.At(x, y+1, z) == 0 ||
		v.At(x, y, z-1) == 0 || v.At(x, y, z+1) == 0
}
