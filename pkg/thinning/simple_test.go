package thinning

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// codeOf builds a code from neighbour offsets; the centre is always set.
func codeOf(offsets ...[3]int) uint32 {
	c := centerMask
	for _, o := range offsets {
		c |= bitOf(o)
	}
	return c
}

// slabCode sets every neighbour accepted by keep.
func slabCode(keep func(dx, dy, dz int) bool) uint32 {
	c := centerMask
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if keep(dx, dy, dz) {
					c |= bitAt(dx, dy, dz)
				}
			}
		}
	}
	return c
}

// referenceSimple is the (26,6) simple point characterisation by topological
// numbers: one 26-component of object in N26, and one 6-component of
// background in N18 that is 6-adjacent to the centre.
func referenceSimple(code uint32) bool {
	if CountComponents(code) != 1 {
		return false
	}
	cell := func(k int) (int, int, int) { return k%3 - 1, k/3%3 - 1, k/9 - 1 }
	inN18 := func(k int) bool {
		x, y, z := cell(k)
		return k != centerBit && abs(x)+abs(y)+abs(z) <= 2
	}
	isN6 := func(k int) bool {
		x, y, z := cell(k)
		return abs(x)+abs(y)+abs(z) == 1
	}
	seen := uint32(0)
	n := 0
	for s := 0; s < 27; s++ {
		if !isN6(s) || code>>s&1 == 1 || seen>>s&1 == 1 {
			continue
		}
		n++
		stack := []int{s}
		seen |= 1 << s
		for len(stack) > 0 {
			k := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			kx, ky, kz := cell(k)
			for j := 0; j < 27; j++ {
				jx, jy, jz := cell(j)
				if abs(kx-jx)+abs(ky-jy)+abs(kz-jz) != 1 {
					continue
				}
				if inN18(j) && code>>j&1 == 0 && seen>>j&1 == 0 {
					seen |= 1 << j
					stack = append(stack, j)
				}
			}
		}
	}
	return n == 1
}

func TestIsSimpleMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50000; i++ {
		density := rng.Float64()
		code := centerMask
		for b := 0; b < 27; b++ {
			if b != centerBit && rng.Float64() < density {
				code |= 1 << b
			}
		}
		require.Equal(t, referenceSimple(code), IsSimple(code), "code %#07x", code)
	}
}

func TestEulerGate(t *testing.T) {
	tests := []struct {
		name string
		code uint32
		want bool
	}{
		{"isolated", centerMask, false},
		{"interior", blockMask, false},
		{"one face neighbour", codeOf([3]int{1, 0, 0}), true},
		{"one corner neighbour", codeOf([3]int{1, 1, 1}), true},
		{"line through", codeOf([3]int{-1, 0, 0}, [3]int{1, 0, 0}), false},
		{"opposite corners", codeOf([3]int{-1, -1, -1}, [3]int{1, 1, 1}), false},
		{"top of half space", slabCode(func(_, _, dz int) bool { return dz <= 0 }), true},
		{"inside plate", slabCode(func(_, _, dz int) bool { return dz == 0 }), false},
		{"rim of plate", slabCode(func(dx, _, dz int) bool { return dz == 0 && dx <= 0 }), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eulerGate(tt.code))
		})
	}
}

func TestPlanar(t *testing.T) {
	xy := &axisPlanes[2]
	tests := []struct {
		name        string
		code        uint32
		wantSimple  bool
		wantSupport int
	}{
		{"isolated", centerMask, false, 0},
		{"end of line", codeOf([3]int{-1, 0, 0}), true, 1},
		{"middle of line", codeOf([3]int{-1, 0, 0}, [3]int{1, 0, 0}), false, 2},
		{"diagonal end", codeOf([3]int{1, 1, 0}), true, 1},
		{"diagonal bridge", codeOf([3]int{1, 1, 0}, [3]int{-1, -1, 0}), false, 2},
		{"filled plane", slabCode(func(_, _, dz int) bool { return dz == 0 }), false, 8},
		{"edge of plane", slabCode(func(dx, _, dz int) bool { return dz == 0 && dx <= 0 }), true, 5},
		{"out of plane neighbours ignored", codeOf([3]int{0, 0, 1}, [3]int{-1, 0, 0}), true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			simple, support := planar(tt.code, xy)
			assert.Equal(t, tt.wantSimple, simple)
			assert.Equal(t, tt.wantSupport, support)
		})
	}
}

func TestRemovable(t *testing.T) {
	halfSpace := slabCode(func(_, _, dz int) bool { return dz <= 0 })
	plateRim := slabCode(func(dx, _, dz int) bool { return dz == 0 && dx <= 0 })
	plate := slabCode(func(_, _, dz int) bool { return dz == 0 })

	tests := []struct {
		name   string
		code   uint32
		dir    int
		sheets bool
		want   bool
	}{
		{"surface of solid, curve mode", halfSpace, Top, false, true},
		{"surface of solid, sheet mode", halfSpace, Top, true, true},
		{"surface of solid, omni", halfSpace, Omni, false, true},
		{"rim of plate, curve mode", plateRim, East, false, true},
		{"rim of plate, sheet mode", plateRim, East, true, false},
		{"rim of plate, omni", plateRim, Omni, false, true},
		{"rim of plate, omni sheet mode", plateRim, Omni, true, false},
		{"inside plate", plate, Top, false, false},
		{"inside plate, omni", plate, Omni, false, false},
		{"edge direction in sheet mode", halfSpace, TopEast, true, false},
		{"isolated", centerMask, Omni, false, false},
		{"line middle", codeOf([3]int{0, 0, -1}, [3]int{0, 0, 1}), Omni, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Removable(tt.code, tt.dir, tt.sheets))
		})
	}
}

// Every voxel accepted in any sub-cycle is a simple point, so deleting it alone
// never changes topology.
func TestRemovableImpliesSimple(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50000; i++ {
		density := rng.Float64()
		code := centerMask
		for b := 0; b < 27; b++ {
			if b != centerBit && rng.Float64() < density {
				code |= 1 << b
			}
		}
		simple := referenceSimple(code)
		for dir := 0; dir <= Omni; dir++ {
			for _, sheets := range []bool{false, true} {
				if Removable(code, dir, sheets) {
					require.True(t, simple, "code %#07x dir %s sheets %v", code, DirectionName(dir), sheets)
				}
			}
		}
	}
}

// Two separate patches of object that the Euler gate alone would accept.
func TestRemovableRejectsSplitNeighbourhood(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	found := 0
	for i := 0; i < 200000 && found < 50; i++ {
		code := centerMask | rng.Uint32()&blockMask
		if !eulerGate(code) || CountComponents(code) == 1 {
			continue
		}
		found++
		for dir := 0; dir <= Omni; dir++ {
			assert.False(t, Removable(code, dir, false), "code %#07x dir %s", code, DirectionName(dir))
		}
	}
	require.NotZero(t, found)
}

func TestSheetModeIsStricter(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20000; i++ {
		code := centerMask | rng.Uint32()&blockMask
		for dir := 0; dir <= Omni; dir++ {
			if Removable(code, dir, true) && dir != Omni {
				require.True(t, Removable(code, dir, false), "code %#07x dir %d", code, dir)
			}
		}
		if Removable(code, Omni, true) {
			require.True(t, Removable(code, Omni, false), "code %#07x", code)
		}
	}
}
