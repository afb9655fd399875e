// Package visualization renders volumes and skeletons as 2-D images: axis
// aligned slices, maximum-intensity projections, skeleton overlays and
// convergence plots of a thinning run.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"skeleton3d/internal/models"
)

// Viewer extracts images from a volume.
type Viewer struct {
	// volume holds the voxel grid being viewed
	volume *models.Volume

	// gain maps voxel values to 8-bit gray; binary volumes are stretched so
	// object voxels render white
	gain int
}

// NewViewer creates a viewer for v
func NewViewer(v *models.Volume) *Viewer {
	peak := byte(0)
	for _, b := range v.Data {
		if b > peak {
			peak = b
		}
	}
	gain := 1
	if peak == 1 {
		gain = 255
	}
	return &Viewer{volume: v, gain: gain}
}

func (v *Viewer) gray(b byte) color.Gray {
	return color.Gray{Y: uint8(min(int(b)*v.gain, 255))}
}

// axisExtent returns the number of slices along axis and the image size of
// each slice.
func (v *Viewer) axisExtent(axis string) (n, w, h int, err error) {
	vol := v.volume
	switch axis {
	case "x", "X":
		return vol.Width, vol.Depth, vol.Height, nil
	case "y", "Y":
		return vol.Height, vol.Width, vol.Depth, nil
	case "z", "Z":
		return vol.Depth, vol.Width, vol.Height, nil
	}
	return 0, 0, 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
}

// voxelAt maps pixel (i, j) of slice pos along axis to a voxel value. X slices
// put z across and y down; Y slices put x across and z down.
func (v *Viewer) voxelAt(axis string, pos, i, j int) byte {
	switch axis {
	case "x", "X":
		return v.volume.At(pos, j, i)
	case "y", "Y":
		return v.volume.At(i, pos, j)
	default:
		return v.volume.At(i, j, pos)
	}
}

// ExtractSlice extracts a 2D slice from the 3D volume along the specified axis
func (v *Viewer) ExtractSlice(axis string, position int) (*image.Gray, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}
	n, w, h, err := v.axisExtent(axis)
	if err != nil {
		return nil, err
	}
	if position >= n {
		return nil, fmt.Errorf("position %d exceeds %s extent %d", position, axis, n)
	}

	img := image.NewGray(image.Rect(0, 0, w, h))
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			img.SetGray(i, j, v.gray(v.voxelAt(axis, position, i, j)))
		}
	}
	return img, nil
}

// MaxProjection returns the maximum-intensity projection along axis.
func (v *Viewer) MaxProjection(axis string) (*image.Gray, error) {
	n, w, h, err := v.axisExtent(axis)
	if err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			peak := byte(0)
			for pos := 0; pos < n; pos++ {
				if b := v.voxelAt(axis, pos, i, j); b > peak {
					peak = b
				}
			}
			img.SetGray(i, j, v.gray(peak))
		}
	}
	return img, nil
}

// Overlay draws the projection of skeleton in red over the projection of the
// viewed volume. Both volumes must share the same geometry.
func (v *Viewer) Overlay(skeleton *models.Volume, axis string) (*image.RGBA, error) {
	if skeleton.Width != v.volume.Width || skeleton.Height != v.volume.Height || skeleton.Depth != v.volume.Depth {
		return nil, fmt.Errorf("skeleton is %dx%dx%d, volume is %dx%dx%d",
			skeleton.Width, skeleton.Height, skeleton.Depth, v.volume.Width, v.volume.Height, v.volume.Depth)
	}
	base, err := v.MaxProjection(axis)
	if err != nil {
		return nil, err
	}
	bones, err := NewViewer(skeleton).MaxProjection(axis)
	if err != nil {
		return nil, err
	}

	b := base.Bounds()
	img := image.NewRGBA(b)
	red := color.RGBA{R: 255, A: 255}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if bones.GrayAt(x, y).Y != 0 {
				img.SetRGBA(x, y, red)
				continue
			}
			// dim the object so the skeleton stands out
			g := base.GrayAt(x, y).Y / 2
			img.SetRGBA(x, y, color.RGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return img, nil
}

// ExtractRegion extracts a 3D subregion from the volume
func (v *Viewer) ExtractRegion(startX, startY, startZ, sizeX, sizeY, sizeZ int) (*models.Volume, error) {
	if startX < 0 || startY < 0 || startZ < 0 {
		return nil, fmt.Errorf("start coordinates must be non-negative")
	}

	if sizeX <= 0 || sizeY <= 0 || sizeZ <= 0 {
		return nil, fmt.Errorf("size dimensions must be positive")
	}

	vol := v.volume
	if startX+sizeX > vol.Width || startY+sizeY > vol.Height || startZ+sizeZ > vol.Depth {
		return nil, fmt.Errorf("region extends beyond volume boundaries")
	}

	region := models.NewVolume(sizeX, sizeY, sizeZ)
	region.VoxelSize = vol.VoxelSize
	for z := 0; z < sizeZ; z++ {
		for y := 0; y < sizeY; y++ {
			src := vol.Index(startX, startY+y, startZ+z)
			copy(region.Data[region.Index(0, y, z):], vol.Data[src:src+sizeX])
		}
	}
	return region, nil
}

// SaveSlice saves an image as PNG, or as JPEG for a .jpg or .jpeg filename
func SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(file, img)
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// SaveSliceSequence extracts and saves every slice along the specified axis
// as a numbered PNG.
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	n, _, _, err := v.axisExtent(axis)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for pos := 0; pos < n; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.png", strings.ToLower(axis), pos))
		if err := SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
