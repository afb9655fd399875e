package thinning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// bitAt returns the code bit of the neighbour at offset (dx, dy, dz).
func bitAt(dx, dy, dz int) uint32 {
	return 1 << ((dx + 1) + 3*(dy+1) + 9*(dz+1))
}

func bitOf(v [3]int) uint32 { return bitAt(v[0], v[1], v[2]) }

func unit(axis, sign int) [3]int {
	var v [3]int
	v[axis] = sign
	return v
}

func add(a, b [3]int) [3]int { return [3]int{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

func scale(a [3]int, s int) [3]int { return [3]int{a[0] * s, a[1] * s, a[2] * s} }

// derivePlane builds the section spanned by directions u and w.
func derivePlane(u, w [3]int) plane {
	var p plane
	for _, s := range []int{1, -1} {
		p.edges |= bitOf(scale(u, s)) | bitOf(scale(w, s))
	}
	for su := -1; su <= 1; su++ {
		for sw := -1; sw <= 1; sw++ {
			if su != 0 || sw != 0 {
				p.ring |= bitOf(add(scale(u, su), scale(w, sw)))
			}
		}
	}
	k := 0
	for _, su := range []int{1, -1} {
		for _, sw := range []int{1, -1} {
			a, b := scale(u, su), scale(w, sw)
			p.faces[k] = bitOf(a) | bitOf(b) | bitOf(add(a, b))
			k++
		}
	}
	return p
}

func otherAxes(a int) (int, int) {
	switch a {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

func assertPlane(t *testing.T, want, got plane, msg string) {
	t.Helper()
	assert.Equalf(t, want.edges, got.edges, "%s edges", msg)
	assert.Equalf(t, want.ring, got.ring, "%s ring", msg)
	assert.ElementsMatchf(t, want.faces[:], got.faces[:], "%s faces", msg)
}

func TestEdgeMask(t *testing.T) {
	var want uint32
	for a := 0; a < 3; a++ {
		want |= bitOf(unit(a, 1)) | bitOf(unit(a, -1))
	}
	assert.Equal(t, want, edgeMask)
}

func TestFaceAndCubeMasks(t *testing.T) {
	for a := 0; a < 3; a++ {
		b, c := otherAxes(a)
		p := derivePlane(unit(b, 1), unit(c, 1))
		assert.ElementsMatch(t, p.faces[:], faceMasks[a][:], "axis %d", a)
		assertPlane(t, p, axisPlanes[a], "axis plane")
	}

	var cubes []uint32
	for _, sx := range []int{1, -1} {
		for _, sy := range []int{1, -1} {
			for _, sz := range []int{1, -1} {
				var m uint32
				for p := 0; p < 8; p++ {
					if p == 0 {
						continue
					}
					m |= bitAt(sx*(p&1), sy*(p>>1&1), sz*(p>>2&1))
				}
				cubes = append(cubes, m)
			}
		}
	}
	assert.ElementsMatch(t, cubes, cubeMasks[:])
	for _, m := range cubeMasks {
		assert.Zero(t, m&centerMask)
	}
}

func TestDirectionTables(t *testing.T) {
	for d, v := range directionVectors {
		assert.Equal(t, bitOf(v), dirMasks[d], DirectionName(d))
		assert.Equal(t, bitOf(scale(v, -1)), freeMasks[d], DirectionName(d))

		var moving []int
		for a := 0; a < 3; a++ {
			if v[a] != 0 {
				moving = append(moving, a)
			}
		}

		if d < firstEdgeDirection {
			assert.Len(t, moving, 1, DirectionName(d))
			b, c := otherAxes(moving[0])
			assertPlane(t, axisPlanes[b], dirPlanes[d][0], DirectionName(d))
			assertPlane(t, axisPlanes[c], dirPlanes[d][1], DirectionName(d))
			continue
		}

		assert.Len(t, moving, 2, DirectionName(d))
		fixed := 3 - moving[0] - moving[1]
		assertPlane(t, axisPlanes[fixed], dirPlanes[d][0], DirectionName(d))
		assertPlane(t, derivePlane(v, unit(fixed, 1)), dirPlanes[d][1], DirectionName(d))
	}
}

func TestOppositeDirectionsShareDiagonal(t *testing.T) {
	pairs := [][2]int{
		{NorthEast, SouthWest}, {NorthWest, SouthEast},
		{TopNorth, BottomSouth}, {TopSouth, BottomNorth},
		{TopEast, BottomWest}, {TopWest, BottomEast},
	}
	for _, p := range pairs {
		assert.Equal(t, dirPlanes[p[0]], dirPlanes[p[1]], "%s/%s", DirectionName(p[0]), DirectionName(p[1]))
		assert.Equal(t, dirMasks[p[0]], freeMasks[p[1]])
	}
}

func TestAdjacency(t *testing.T) {
	assert.Equal(t, blockMask&^centerMask, adjacency[centerBit])
	// a corner touches the 7 other cells of its octant
	assert.Equal(t, uint32(0x000361a), adjacency[0])
	for k := 0; k < 27; k++ {
		for j := 0; j < 27; j++ {
			assert.Equal(t, adjacency[k]>>j&1, adjacency[j]>>k&1, "symmetry %d %d", k, j)
		}
	}
}

func TestDirectionName(t *testing.T) {
	assert.Equal(t, "N", DirectionName(North))
	assert.Equal(t, "BW", DirectionName(BottomWest))
	assert.Equal(t, "omni", DirectionName(Omni))
	assert.Equal(t, "?", DirectionName(-1))
	assert.Equal(t, "?", DirectionName(Omni+1))
}
