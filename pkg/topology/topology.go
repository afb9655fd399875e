// Package topology measures the digital topology of binary volumes: object
// components, enclosed cavities, tunnels and the Euler characteristic, plus
// graph, radius and shape descriptors of skeletons.
//
// Objects are taken as 26-connected and the background as 6-connected, the
// pairing under which thinning preserves topology. Any non-zero voxel is
// object.
package topology

import "skeleton3d/internal/models"

// Summary is the topological description of a volume.
type Summary struct {
	Voxels     int `yaml:"voxels"`
	Components int `yaml:"components"` // 26-connected object components
	Cavities   int `yaml:"cavities"`   // background components enclosed by the object
	Tunnels    int `yaml:"tunnels"`    // first Betti number
	Euler      int `yaml:"euler"`      // Euler characteristic
}

// Equivalent reports whether two summaries have the same Betti numbers.
func (s Summary) Equivalent(o Summary) bool {
	return s.Components == o.Components && s.Cavities == o.Cavities && s.Tunnels == o.Tunnels
}

// Analyze computes the topological summary of v.
func Analyze(v *models.Volume) Summary {
	s := Summary{
		Components: CountComponents(v),
		Cavities:   CountCavities(v),
		Euler:      EulerCharacteristic(v),
	}
	for _, b := range v.Data {
		if b != 0 {
			s.Voxels++
		}
	}
	// chi = b0 - b1 + b2
	s.Tunnels = s.Components + s.Cavities - s.Euler
	return s
}

// CountComponents returns the number of 26-connected object components.
func CountComponents(v *models.Volume) int {
	seen := make([]bool, len(v.Data))
	stack := make([]int, 0, 64)
	n := 0
	for i, b := range v.Data {
		if b == 0 || seen[i] {
			continue
		}
		n++
		seen[i] = true
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			k := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y, z := v.Coords(k)
			for dz := -1; dz <= 1; dz++ {
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if !v.Contains(x+dx, y+dy, z+dz) {
							continue
						}
						j := v.Index(x+dx, y+dy, z+dz)
						if v.Data[j] != 0 && !seen[j] {
							seen[j] = true
							stack = append(stack, j)
						}
					}
				}
			}
		}
	}
	return n
}

// CountCavities returns the number of 6-connected background components that
// do not reach the outside of the volume. The grid is padded by one voxel so
// all outside background forms a single component.
func CountCavities(v *models.Volume) int {
	px, py, pz := v.Width+2, v.Height+2, v.Depth+2
	pxy := px * py
	bg := make([]bool, px*py*pz)
	for z := 0; z < pz; z++ {
		for y := 0; y < py; y++ {
			for x := 0; x < px; x++ {
				bg[x+px*(y+py*z)] = v.At(x-1, y-1, z-1) == 0
			}
		}
	}

	steps := [6]int{1, -1, px, -px, pxy, -pxy}
	stack := make([]int, 0, 64)
	n := 0
	for i, free := range bg {
		if !free {
			continue
		}
		n++
		bg[i] = false
		stack = append(stack[:0], i)
		for len(stack) > 0 {
			k := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y, z := k%px, k/px%py, k/pxy
			for s, step := range steps {
				// keep the walk inside the padded box
				switch s {
				case 0:
					if x == px-1 {
						continue
					}
				case 1:
					if x == 0 {
						continue
					}
				case 2:
					if y == py-1 {
						continue
					}
				case 3:
					if y == 0 {
						continue
					}
				case 4:
					if z == pz-1 {
						continue
					}
				case 5:
					if z == 0 {
						continue
					}
				}
				if j := k + step; bg[j] {
					bg[j] = false
					stack = append(stack, j)
				}
			}
		}
	}
	if n == 0 {
		return 0
	}
	return n - 1
}

// EulerCharacteristic returns V - E + F - C of the cell complex formed by the
// union of the closed unit cubes of all object voxels.
func EulerCharacteristic(v *models.Volume) int {
	lx, ly := v.Width+1, v.Height+1
	size := lx * ly * (v.Depth + 1)
	lattice := func(x, y, z int) int { return x + lx*(y+ly*z) }

	verts := make([]bool, size)
	var edges, faces [3][]bool
	for a := 0; a < 3; a++ {
		edges[a] = make([]bool, size)
		faces[a] = make([]bool, size)
	}

	nv, ne, nf, nc := 0, 0, 0, 0
	mark := func(set []bool, i int, count *int) {
		if !set[i] {
			set[i] = true
			*count++
		}
	}
	for i, b := range v.Data {
		if b == 0 {
			continue
		}
		nc++
		x, y, z := v.Coords(i)
		for p := 0; p < 2; p++ {
			for q := 0; q < 2; q++ {
				for r := 0; r < 2; r++ {
					mark(verts, lattice(x+p, y+q, z+r), &nv)
				}
				// edges run along the named axis from their lower endpoint
				mark(edges[0], lattice(x, y+p, z+q), &ne)
				mark(edges[1], lattice(x+p, y, z+q), &ne)
				mark(edges[2], lattice(x+p, y+q, z), &ne)
			}
			// faces are indexed by their normal axis
			mark(faces[0], lattice(x+p, y, z), &nf)
			mark(faces[1], lattice(x, y+p, z), &nf)
			mark(faces[2], lattice(x, y, z+p), &nf)
		}
	}
	return nv - ne + nf - nc
}
