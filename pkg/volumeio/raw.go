package volumeio

import (
	"fmt"
	"io"

	"skeleton3d/internal/models"
)

// ReadRaw reads an nx*ny*nz byte grid, x fastest, then y, then z. Trailing
// data is an error.
func ReadRaw(r io.Reader, nx, ny, nz int) (*models.Volume, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %d x %d x %d", nx, ny, nz)
	}
	v := models.NewVolume(nx, ny, nz)
	if _, err := io.ReadFull(r, v.Data); err != nil {
		return nil, fmt.Errorf("short raw volume: %w", err)
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		return nil, fmt.Errorf("unexpected data past end of %d x %d x %d grid", nx, ny, nz)
	}
	return v, nil
}

// WriteRaw writes the voxels of v with no header.
func WriteRaw(w io.Writer, v *models.Volume) error {
	_, err := w.Write(v.Data)
	return err
}
