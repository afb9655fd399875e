// Package volumeio reads and writes binary volumes: headerless raw byte
// grids, binvox files and directories of 2-D slice images.
package volumeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"skeleton3d/internal/models"
)

// Format names a volume encoding.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatRaw    Format = "raw"
	FormatBinvox Format = "binvox"
	FormatSlices Format = "slices"
)

var (
	ErrUnknownFormat = errors.New("volumeio: unknown volume format")
	ErrMissingDims   = errors.New("volumeio: raw volumes need dimensions")
)

// LoadOptions controls Load.
type LoadOptions struct {
	Format Format

	// Dims gives nx, ny, nz for raw input.
	Dims [3]int
}

// Detect picks a format from the path: directories hold slices, and files are
// recognized by extension.
func Detect(path string) (Format, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return FormatSlices, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".binvox":
		return FormatBinvox, nil
	case ".raw", ".bin", ".vol":
		return FormatRaw, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads the volume at path.
func Load(path string, opts LoadOptions) (*models.Volume, error) {
	format := opts.Format
	if format == "" || format == FormatAuto {
		var err error
		if format, err = Detect(path); err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatSlices:
		return ReadSliceDir(path)
	case FormatBinvox:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		v, err := ReadBinvox(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return v, nil
	case FormatRaw:
		if opts.Dims[0] <= 0 || opts.Dims[1] <= 0 || opts.Dims[2] <= 0 {
			return nil, ErrMissingDims
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		v, err := ReadRaw(f, opts.Dims[0], opts.Dims[1], opts.Dims[2])
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Save writes v to path, as binvox for a .binvox extension and raw otherwise.
func Save(path string, v *models.Volume) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(path), ".binvox") {
		err = WriteBinvox(f, v)
	} else {
		err = WriteRaw(f, v)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
