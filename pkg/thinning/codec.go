package thinning

import "fmt"

// Encode returns the neighbourhood code of voxel i in a volume whose rows are
// nx voxels long and whose slabs hold nxy voxels. i must not lie on the
// volume's outer shell; the driver guarantees this by never scanning it.
func Encode(vol []byte, i, nx, nxy int) uint32 {
	if debugChecks && onShell(i, nx, nxy, len(vol)) {
		panic(fmt.Sprintf("thinning: encoding shell voxel %d", i))
	}
	var c uint32
	k := 0
	for dz := -nxy; dz <= nxy; dz += nxy {
		for dy := -nx; dy <= nx; dy += nx {
			for dx := -1; dx <= 1; dx++ {
				if vol[i+dz+dy+dx] != Background {
					c |= 1 << k
				}
				k++
			}
		}
	}
	return c
}

// EncodeAt returns the neighbourhood code of voxel (x, y, z) in a
// dimx*dimy*dimz volume. Neighbours outside the volume read as background, so
// any voxel may be encoded. For interior voxels the result equals Encode.
func EncodeAt(vol []byte, x, y, z, dimx, dimy, dimz int) uint32 {
	var c uint32
	k := 0
	for dz := -1; dz <= 1; dz++ {
		zz := z + dz
		for dy := -1; dy <= 1; dy++ {
			yy := y + dy
			for dx := -1; dx <= 1; dx++ {
				xx := x + dx
				if xx >= 0 && xx < dimx && yy >= 0 && yy < dimy && zz >= 0 && zz < dimz &&
					vol[xx+dimx*(yy+dimy*zz)] != Background {
					c |= 1 << k
				}
				k++
			}
		}
	}
	return c
}

// grid is the engine's working volume: binarized, with a cleared one-voxel
// shell, and with the 27 neighbour offsets precomputed for its strides.
type grid struct {
	data       []byte
	nx, ny, nz int
	nxy        int
	offsets    [27]int
}

// newGrid binarizes src into a freshly allocated grid and clears its shell.
func newGrid(src []byte, nx, ny, nz int, threshold uint8) (*grid, error) {
	g := &grid{
		data: make([]byte, len(src)),
		nx:   nx,
		ny:   ny,
		nz:   nz,
		nxy:  nx * ny,
	}
	for i, v := range src {
		if v >= threshold {
			g.data[i] = Object
		}
	}
	k := 0
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				g.offsets[k] = dx + nx*dy + g.nxy*dz
				k++
			}
		}
	}
	g.clearBorder()
	if err := g.verifyBorder(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *grid) index(x, y, z int) int {
	return x + g.nx*(y+g.ny*z)
}

func (g *grid) clearBorder() {
	for z := 0; z < g.nz; z++ {
		for y := 0; y < g.ny; y++ {
			row := g.index(0, y, z)
			if z == 0 || z == g.nz-1 || y == 0 || y == g.ny-1 {
				clear(g.data[row : row+g.nx])
				continue
			}
			g.data[row] = Background
			g.data[row+g.nx-1] = Background
		}
	}
}

// verifyBorder checks the shell invariant every unchecked neighbour read
// depends on.
func (g *grid) verifyBorder() error {
	for z := 0; z < g.nz; z++ {
		for y := 0; y < g.ny; y++ {
			for x := 0; x < g.nx; x++ {
				if !g.onBorder(x, y, z) {
					x = g.nx - 2
					continue
				}
				if i := g.index(x, y, z); g.data[i] != Background {
					return fmt.Errorf("thinning: border voxel (%d,%d,%d) not cleared", x, y, z)
				}
			}
		}
	}
	return nil
}

func (g *grid) onBorder(x, y, z int) bool {
	return x == 0 || y == 0 || z == 0 || x == g.nx-1 || y == g.ny-1 || z == g.nz-1
}

// onShell reports whether index i of an n-voxel volume with row length nx and
// slab size nxy lies on the outer shell, or outside the volume.
func onShell(i, nx, nxy, n int) bool {
	if i < 0 || i >= n || nx <= 0 || nxy < nx {
		return true
	}
	x, y, z := i%nx, i%nxy/nx, i/nxy
	return x == 0 || x == nx-1 || y == 0 || y == nxy/nx-1 || z == 0 || z == n/nxy-1
}

// code returns the neighbourhood code of interior voxel i.
func (g *grid) code(i int) uint32 {
	if debugChecks && onShell(i, g.nx, g.nxy, len(g.data)) {
		x, y, z := i%g.nx, i/g.nx%g.ny, i/g.nxy
		panic(fmt.Sprintf("thinning: encoding border voxel (%d,%d,%d)", x, y, z))
	}
	var c uint32
	for k, off := range g.offsets {
		if g.data[i+off] != Background {
			c |= 1 << k
		}
	}
	return c
}
