package thinning

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomVolume(rng *rand.Rand, nx, ny, nz int, density float64) []byte {
	vol := make([]byte, nx*ny*nz)
	for i := range vol {
		if rng.Float64() < density {
			vol[i] = 1
		}
	}
	return vol
}

func TestEncodeBitLayout(t *testing.T) {
	const nx, ny, nz = 5, 5, 5
	vol := make([]byte, nx*ny*nz)
	idx := func(x, y, z int) int { return x + nx*(y+ny*z) }
	center := idx(2, 2, 2)

	vol[center] = 1
	assert.Equal(t, centerMask, Encode(vol, center, nx, nx*ny))

	tests := []struct {
		x, y, z int
		bit     int
	}{
		{1, 1, 1, 0},
		{3, 2, 2, 14},
		{1, 2, 2, 12},
		{2, 3, 2, 16},
		{2, 1, 2, 10},
		{2, 2, 3, 22},
		{2, 2, 1, 4},
		{3, 3, 3, 26},
	}
	for _, tt := range tests {
		vol[idx(tt.x, tt.y, tt.z)] = 7
		got := Encode(vol, center, nx, nx*ny)
		assert.Equal(t, centerMask|1<<tt.bit, got, "neighbour (%d,%d,%d)", tt.x, tt.y, tt.z)
		vol[idx(tt.x, tt.y, tt.z)] = 0
	}
}

func TestEncodeEntryPointsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const nx, ny, nz = 7, 6, 5
	vol := randomVolume(rng, nx, ny, nz, 0.5)

	g, err := newGrid(vol, nx, ny, nz, 1)
	require.NoError(t, err)

	for z := 1; z < nz-1; z++ {
		for y := 1; y < ny-1; y++ {
			for x := 1; x < nx-1; x++ {
				i := x + nx*(y+ny*z)
				want := Encode(vol, i, nx, nx*ny)
				assert.Equal(t, want, EncodeAt(vol, x, y, z, nx, ny, nz))
				assert.Equal(t, Encode(g.data, i, nx, nx*ny), g.code(i))
			}
		}
	}
}

func TestEncodeAtBorder(t *testing.T) {
	const n = 3
	vol := make([]byte, n*n*n)
	for i := range vol {
		vol[i] = 1
	}
	// only the octant towards +x+y+z is inside the volume
	code := EncodeAt(vol, 0, 0, 0, n, n, n)
	assert.Equal(t, uint32(0x6c36000), code)
	assert.Equal(t, blockMask, EncodeAt(vol, 1, 1, 1, n, n, n))
}

func TestNewGrid(t *testing.T) {
	const n = 4
	src := make([]byte, n*n*n)
	for i := range src {
		src[i] = byte(i % 5)
	}
	g, err := newGrid(src, n, n, n, 3)
	require.NoError(t, err)

	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				i := g.index(x, y, z)
				want := Background
				if !g.onBorder(x, y, z) && src[i] >= 3 {
					want = Object
				}
				assert.Equal(t, want, g.data[i], "(%d,%d,%d)", x, y, z)
			}
		}
	}
	assert.NotSame(t, &src[0], &g.data[0])
	assert.Equal(t, byte(4), src[4], "input must not be modified")
}

func TestOnShell(t *testing.T) {
	const nx, ny, nz = 4, 5, 6
	n := nx * ny * nz
	for i := 0; i < n; i++ {
		x, y, z := i%nx, i/nx%ny, i/(nx*ny)
		want := x == 0 || y == 0 || z == 0 || x == nx-1 || y == ny-1 || z == nz-1
		require.Equal(t, want, onShell(i, nx, nx*ny, n), "voxel (%d,%d,%d)", x, y, z)
	}
	assert.True(t, onShell(-1, nx, nx*ny, n))
	assert.True(t, onShell(n, nx, nx*ny, n))
}
