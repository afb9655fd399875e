package volumeio

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"skeleton3d/internal/models"
)

const (
	maxBinvoxDim = 1280          // Maximum grid dimensions (maxBinvoxDim^3 <= MaxInt32)
	binvoxSig    = "#binvox 1\n" // Binvox file signature
)

// binvox stores voxels with y fastest, then z, then x; "dim d h w" gives the
// x, z and y extents. Volume keeps x fastest, so the reader and writer
// transpose.
func binvoxIndex(v *models.Volume, x, y, z int) int {
	return x*v.Depth*v.Height + z*v.Height + y
}

// ReadBinvox decodes a run-length encoded binvox grid. The voxel size is the
// model scale divided by the largest grid dimension.
func ReadBinvox(rd io.Reader) (*models.Volume, error) {
	r := bufio.NewReader(rd)
	if _, err := fmt.Fscanf(r, binvoxSig); err != nil {
		return nil, fmt.Errorf("not a binvox file: %w", err)
	}

	var d, h, w uint16
	if _, err := fmt.Fscanf(r, "dim %d %d %d\n", &d, &h, &w); err != nil {
		return nil, err
	}
	if d == 0 || h == 0 || w == 0 || d > maxBinvoxDim || h > maxBinvoxDim || w > maxBinvoxDim {
		return nil, fmt.Errorf("invalid dimensions: %d x %d x %d", d, h, w)
	}

	var tx [3]float64
	var scale float64
	if _, err := fmt.Fscanf(r, "translate %f %f %f\n", &tx[0], &tx[1], &tx[2]); err != nil {
		return nil, err
	}
	if _, err := fmt.Fscanf(r, "scale %f\n", &scale); err != nil {
		return nil, err
	}
	if _, err := fmt.Fscanf(r, "data\n"); err != nil {
		return nil, err
	}

	v := models.NewVolume(int(d), int(w), int(h))
	if scale > 0 {
		vs := scale / float64(max(d, h, w))
		v.VoxelSize.X, v.VoxelSize.Y, v.VoxelSize.Z = vs, vs, vs
	}

	// Grid data is value | count, 1 byte each
	grid := make([]bool, v.Len())
	for i := 0; i < len(grid); {
		val, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		n, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if i+int(n) > len(grid) {
			return nil, fmt.Errorf("run of %d overflows grid at %d", n, i)
		}
		if val != 0 {
			for j := i; j < i+int(n); j++ {
				grid[j] = true
			}
		}
		i += int(n)
	}
	if _, err := r.ReadByte(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected data past end of grid")
		}
		return nil, err
	}

	for z := 0; z < v.Depth; z++ {
		for y := 0; y < v.Height; y++ {
			for x := 0; x < v.Width; x++ {
				if grid[binvoxIndex(v, x, y, z)] {
					v.Data[v.Index(x, y, z)] = 1
				}
			}
		}
	}
	return v, nil
}

// WriteBinvox encodes the non-zero voxels of v as a binvox grid at the origin.
func WriteBinvox(wr io.Writer, v *models.Volume) error {
	if v.Width > maxBinvoxDim || v.Height > maxBinvoxDim || v.Depth > maxBinvoxDim {
		return fmt.Errorf("volume %d x %d x %d exceeds binvox limit of %d", v.Width, v.Height, v.Depth, maxBinvoxDim)
	}
	grid := make([]bool, v.Len())
	for i, b := range v.Data {
		if b != 0 {
			x, y, z := v.Coords(i)
			grid[binvoxIndex(v, x, y, z)] = true
		}
	}

	scale := v.VoxelSize.X * float64(max(v.Width, v.Height, v.Depth))
	if scale <= 0 {
		scale = 1
	}

	w := bufio.NewWriter(wr)
	w.WriteString(binvoxSig)
	fmt.Fprintf(w, "dim %d %d %d\n", v.Width, v.Depth, v.Height)
	fmt.Fprintf(w, "translate %.4f %.4f %.4f\n", 0.0, 0.0, 0.0)
	fmt.Fprintf(w, "scale %.4f\n", scale)
	w.WriteString("data\n")

	b, n := false, byte(0)
	writeRun := func() {
		if n > 0 {
			if b {
				w.WriteByte(1)
			} else {
				w.WriteByte(0)
			}
			w.WriteByte(n)
		}
	}
	for _, val := range grid {
		if b == val && n < math.MaxUint8 {
			n++
		} else {
			writeRun()
			b = val
			n = 1
		}
	}
	writeRun()
	return w.Flush()
}
