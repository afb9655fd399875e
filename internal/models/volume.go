package models

// Volume is a 3-D voxel grid stored as a flat array, x fastest, then y, then z.
type Volume struct {
	// Data holds one byte per voxel
	Data []byte

	// Width, Height and Depth are the grid extents along x, y and z
	Width  int
	Height int
	Depth  int

	// VoxelSize is the physical size of each voxel in mm
	VoxelSize struct {
		X, Y, Z float64
	}
}

// NewVolume allocates an empty volume with unit voxels.
func NewVolume(width, height, depth int) *Volume {
	v := &Volume{
		Data:   make([]byte, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
	}
	v.VoxelSize.X, v.VoxelSize.Y, v.VoxelSize.Z = 1, 1, 1
	return v
}

// Index converts grid coordinates to a linear index.
func (v *Volume) Index(x, y, z int) int {
	return x + v.Width*(y+v.Height*z)
}

// Coords converts a linear index back to grid coordinates.
func (v *Volume) Coords(i int) (x, y, z int) {
	x = i % v.Width
	y = i / v.Width % v.Height
	z = i / (v.Width * v.Height)
	return
}

// Contains reports whether (x, y, z) lies inside the grid.
func (v *Volume) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < v.Width && y < v.Height && z < v.Depth
}

// At returns the voxel at (x, y, z), or 0 outside the grid.
func (v *Volume) At(x, y, z int) byte {
	if !v.Contains(x, y, z) {
		return 0
	}
	return v.Data[v.Index(x, y, z)]
}

// Set stores val at (x, y, z). Coordinates outside the grid are ignored.
func (v *Volume) Set(x, y, z int, val byte) {
	if v.Contains(x, y, z) {
		v.Data[v.Index(x, y, z)] = val
	}
}

// Len returns the number of voxels in the grid.
func (v *Volume) Len() int {
	return v.Width * v.Height * v.Depth
}

// CountAbove returns how many voxels are >= threshold.
func (v *Volume) CountAbove(threshold byte) int {
	n := 0
	for _, b := range v.Data {
		if b >= threshold {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of v.
func (v *Volume) Clone() *Volume {
	c := *v
	c.Data = append([]byte(nil), v.Data...)
	return &c
}

// WithData returns a volume sharing v's geometry but holding data.
func (v *Volume) WithData(data []byte) *Volume {
	c := *v
	c.Data = data
	return &c
}
