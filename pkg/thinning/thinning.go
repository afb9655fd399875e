// Package thinning implements topology-preserving thinning (skeletonization)
// of 3-D binary volumes.
//
// Objects are 26-connected and the background 6-connected. The driver peels
// border voxels in eighteen directional sub-cycles and repeats the sweep until
// nothing changes. Each sub-cycle works through the eight parity subfields,
// collecting candidates in a read-only scan and then deleting all of them. A final sequential pass then removes any simple
// point left over, one voxel at a time. End points of curves (voxels with a
// single neighbour) are never removed, so the result is a curve skeleton, or a
// surface skeleton when sheets are preserved.
package thinning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"

	"golang.org/x/sync/errgroup"
)

// Voxel states of the output volume.
const (
	Background byte = 0
	Object     byte = 1
)

// MaxVoxels bounds the grid size the engine agrees to allocate.
const MaxVoxels = math.MaxInt32

var (
	// ErrInvalidDimensions is returned when a dimension is below 3, which
	// leaves no interior once the border is cleared.
	ErrInvalidDimensions = errors.New("thinning: every dimension must be at least 3")

	// ErrBufferSize is returned when the input length is not nx*ny*nz.
	ErrBufferSize = errors.New("thinning: buffer length does not match dimensions")

	// ErrAllocation is returned when the output or candidate buffers would
	// exceed MaxVoxels.
	ErrAllocation = errors.New("thinning: volume too large to allocate")
)

// Options configures a thinning run.
type Options struct {
	// Threshold is the smallest input value treated as object. Zero is not a
	// usable threshold, since it would make every voxel object, and selects
	// the default of 1.
	Threshold uint8

	// PreserveSheets keeps 2-D surfaces instead of reducing them to curves.
	PreserveSheets bool

	// Workers is the number of goroutines scanning for candidates in each
	// directional sub-cycle. Values below 2 scan serially. The result does
	// not depend on it.
	Workers int
}

// DefaultOptions returns full (curve) thinning with a threshold of 1.
func DefaultOptions() Options {
	return Options{Threshold: 1, Workers: 1}
}

// Stats describes how a run converged.
type Stats struct {
	// Sweeps counts passes over all eighteen directions, including the final
	// pass that deleted nothing.
	Sweeps int

	// PerSweep holds the deletions made by each sweep.
	PerSweep []int

	// PerDirection holds the deletions made by each direction over all sweeps.
	PerDirection [NumDirections]int

	ParallelDeleted   int
	SequentialScans   int
	SequentialDeleted int
}

// Deleted returns the total number of voxels removed.
func (s Stats) Deleted() int {
	return s.ParallelDeleted + s.SequentialDeleted
}

// Result is the thinned volume and its convergence statistics. Data has the
// input's dimensions and holds only Background and Object.
type Result struct {
	Data  []byte
	Stats Stats
}

// Thin skeletonizes the nx*ny*nz volume in data, laid out x fastest, then y,
// then z. The input is not modified. Voxels on the outer shell of the volume
// are always cleared in the result.
func Thin(ctx context.Context, data []byte, nx, ny, nz int, opts Options) (*Result, error) {
	if err := checkShape(len(data), nx, ny, nz); err != nil {
		return nil, err
	}
	if opts.Threshold == 0 {
		opts.Threshold = 1
	}

	g, err := newGrid(data, nx, ny, nz, opts.Threshold)
	if err != nil {
		return nil, err
	}

	t := &thinner{
		grid:       g,
		opts:       opts,
		candidates: make([]int, 0, len(data)/4),
	}
	if err := t.parallelPhase(ctx); err != nil {
		return nil, err
	}
	if err := t.sequentialPhase(ctx); err != nil {
		return nil, err
	}
	return &Result{Data: g.data, Stats: t.stats}, nil
}

func checkShape(n, nx, ny, nz int) error {
	if nx < 3 || ny < 3 || nz < 3 {
		return fmt.Errorf("%w: got %dx%dx%d", ErrInvalidDimensions, nx, ny, nz)
	}
	if nx > MaxVoxels/ny || nx*ny > MaxVoxels/nz {
		return fmt.Errorf("%w: %dx%dx%d", ErrAllocation, nx, ny, nz)
	}
	if n != nx*ny*nz {
		return fmt.Errorf("%w: have %d, want %d", ErrBufferSize, n, nx*ny*nz)
	}
	return nil
}

// numSubfields is the number of parity classes (x%2, y%2, z%2). No two voxels
// of one class are 26-adjacent.
const numSubfields = 8

func subfield(x, y, z int) int {
	return x&1 | (y&1)<<1 | (z&1)<<2
}

// thinner holds the state of one Thin call.
type thinner struct {
	grid       *grid
	opts       Options
	border     [numSubfields][]int
	candidates []int
	stats      Stats
}

func (t *thinner) parallelPhase(ctx context.Context) error {
	for {
		swept := 0
		for dir := 0; dir < NumDirections; dir++ {
			n, err := t.sweep(ctx, dir)
			if err != nil {
				return err
			}
			t.stats.PerDirection[dir] += n
			swept += n
		}
		t.stats.Sweeps++
		t.stats.PerSweep = append(t.stats.PerSweep, swept)
		t.stats.ParallelDeleted += swept
		if swept == 0 {
			return nil
		}
	}
}

// sweep runs the sub-cycle for direction dir. The voxels exposed in that
// direction are fixed by one read-only scan. They are then thinned one
// subfield at a time: every removable voxel of the subfield is collected
// against the current volume, and all of them are deleted together. A batch
// holds simple points no two of which are 26-adjacent.
func (t *thinner) sweep(ctx context.Context, dir int) (int, error) {
	if err := t.collectBorder(ctx, dir); err != nil {
		return 0, err
	}
	n := 0
	for sf := range t.border {
		if err := t.collect(ctx, dir, t.border[sf]); err != nil {
			return n, err
		}
		n += t.remove()
	}
	return n, nil
}

// split runs fn over [0, n) cut into contiguous ranges, one per worker. fn
// receives its worker index so results can be merged in range order.
func (t *thinner) split(ctx context.Context, n int, fn func(ctx context.Context, w, lo, hi int) error) (int, error) {
	workers := min(t.opts.Workers, n)
	if workers < 2 {
		return 1, fn(ctx, 0, 0, n)
	}
	eg, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		lo, hi := n*w/workers, n*(w+1)/workers
		eg.Go(func() error {
			return fn(ctx, w, lo, hi)
		})
	}
	return workers, eg.Wait()
}

// collectBorder fills t.border with the object voxels whose neighbour in
// direction dir is background, bucketed by subfield in raster order.
func (t *thinner) collectBorder(ctx context.Context, dir int) error {
	g := t.grid
	step := g.offsets[bits.TrailingZeros32(dirMasks[dir])]
	slabs := g.nz - 2
	parts := make([][numSubfields][]int, min(max(t.opts.Workers, 1), slabs))
	workers, err := t.split(ctx, slabs, func(ctx context.Context, w, lo, hi int) error {
		out := &parts[w]
		for z := 1 + lo; z < 1+hi; z++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for y := 1; y < g.ny-1; y++ {
				i := g.index(1, y, z)
				for x := 1; x < g.nx-1; x, i = x+1, i+1 {
					if g.data[i] != Object || g.data[i+step] != Background {
						continue
					}
					sf := subfield(x, y, z)
					out[sf] = append(out[sf], i)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for sf := range t.border {
		t.border[sf] = t.border[sf][:0]
		for _, p := range parts[:workers] {
			t.border[sf] = append(t.border[sf], p[sf]...)
		}
	}
	return nil
}

// collect fills t.candidates with the voxels of list removable in direction
// dir, keeping list order. Nothing is modified until the scan completes.
func (t *thinner) collect(ctx context.Context, dir int, list []int) error {
	g := t.grid
	sheets := t.opts.PreserveSheets
	parts := make([][]int, min(max(t.opts.Workers, 1), max(len(list), 1)))
	workers, err := t.split(ctx, len(list), func(ctx context.Context, w, lo, hi int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var out []int
		for _, i := range list[lo:hi] {
			c := g.code(i)
			// End points of curves stay.
			if bits.OnesCount32(c) <= 2 {
				continue
			}
			if Removable(c, dir, sheets) {
				out = append(out, i)
			}
		}
		parts[w] = out
		return nil
	})
	if err != nil {
		return err
	}
	t.candidates = t.candidates[:0]
	for _, p := range parts[:workers] {
		t.candidates = append(t.candidates, p...)
	}
	return nil
}

// remove deletes every collected candidate.
func (t *thinner) remove() int {
	g := t.grid
	for _, i := range t.candidates {
		if debugChecks && !IsSimple(g.code(i)) {
			panic(fmt.Sprintf("thinning: deleting non-simple voxel %d", i))
		}
		g.data[i] = Background
	}
	return len(t.candidates)
}

func (t *thinner) sequentialPhase(ctx context.Context) error {
	g := t.grid
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := 0
		for z := 1; z < g.nz-1; z++ {
			for y := 1; y < g.ny-1; y++ {
				i := g.index(1, y, z)
				for x := 1; x < g.nx-1; x, i = x+1, i+1 {
					if g.data[i] != Object {
						continue
					}
					c := g.code(i)
					if bits.OnesCount32(c) <= 2 {
						continue
					}
					if Removable(c, Omni, t.opts.PreserveSheets) {
						g.data[i] = Background
						n++
					}
				}
			}
		}
		t.stats.SequentialScans++
		t.stats.SequentialDeleted += n
		if n == 0 {
			return nil
		}
	}
}
