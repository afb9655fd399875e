package thinning

import (
	"fmt"
	"math/bits"
)

// eulerGate reports whether adding the centre voxel to the 6-connected
// background leaves the local Euler characteristic unchanged. The centre would
// bring in one vertex, an edge per absent face neighbour, a square per fully
// absent square and a cube per fully absent octant. The characteristic is kept
// when edges - squares + cubes == 1.
func eulerGate(code uint32) bool {
	edges := 6 - bits.OnesCount32(code&edgeMask)
	faces := 0
	for a := range faceMasks {
		for _, m := range faceMasks[a] {
			if code&m == 0 {
				faces++
			}
		}
	}
	cubes := 0
	for _, m := range cubeMasks {
		if code&m == 0 {
			cubes++
		}
	}
	return edges-faces+cubes == 1
}

// planar applies the 2-D Euler rule to one section of the neighbourhood. It
// reports whether the centre is simple within the plane and how many in-plane
// neighbours support it.
func planar(code uint32, p *plane) (simple bool, support int) {
	edges := 4 - bits.OnesCount32(code&p.edges)
	faces := 0
	for _, m := range p.faces {
		if code&m == 0 {
			faces++
		}
	}
	return edges-faces == 1, bits.OnesCount32(code & p.ring)
}

// sheetRule reports whether the centre is simple, and not an end point, in
// both coordinate planes containing the axis of the given direction pair.
// Voxels on the rim of a one-voxel-thick surface fail it.
func sheetRule(code uint32, pair int) bool {
	planes := &dirPlanes[2*pair]
	for i := range planes {
		simple, support := planar(code, &planes[i])
		if !simple || support <= 1 {
			return false
		}
	}
	return true
}

// IsSimple reports whether the centre voxel of code can be deleted without
// changing the topology of a (26,6) binary image: the local Euler
// characteristic is unchanged and the remaining neighbours form one
// 26-connected component.
func IsSimple(code uint32) bool {
	return eulerGate(code) && CountComponents(code) == 1
}

// Removable decides whether the centre voxel of code may be deleted in the
// sub-cycle for direction dir (0..Omni). Every accepted voxel is a simple
// point. Directional sub-cycles add planar tie-breaks on top so opposite faces
// of an object thin evenly and curve ends survive.
func Removable(code uint32, dir int, preserveSheets bool) bool {
	if debugChecks && (dir < 0 || dir > Omni) {
		panic(fmt.Sprintf("thinning: direction %d out of range", dir))
	}
	if !IsSimple(code) {
		return false
	}

	if dir == Omni {
		if !preserveSheets {
			return true
		}
		for pair := 0; pair < 3; pair++ {
			if sheetRule(code, pair) {
				return true
			}
		}
		return false
	}

	if preserveSheets {
		if dir >= firstEdgeDirection {
			return false
		}
		return sheetRule(code, dir/2)
	}

	planes := &dirPlanes[dir]
	for i := range planes {
		simple, support := planar(code, &planes[i])
		if !simple {
			return false
		}
		if support <= 1 && code&freeMasks[dir] == 0 {
			return false
		}
	}
	return true
}
