// Package skeletonize runs the complete pipeline around the thinning engine:
// loading a volume, thinning it, checking that its topology survived,
// describing the skeleton and writing the results.
package skeletonize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"skeleton3d/internal/logger"
	"skeleton3d/internal/models"
	"skeleton3d/pkg/thinning"
	"skeleton3d/pkg/topology"
	"skeleton3d/pkg/visualization"
	"skeleton3d/pkg/volumeio"
)

const component = "skeletonize"

// Params holds the pipeline configuration.
type Params struct {
	// InputPath is a raw or binvox file, or a directory of slice images.
	// It is ignored when a volume is supplied with SetVolume.
	InputPath string

	// Format and Dims are passed to volumeio.Load.
	Format volumeio.Format
	Dims   [3]int

	// OutputFile receives the skeleton; binvox for a .binvox name, raw
	// otherwise. Empty skips writing.
	OutputFile string

	// ReportFile receives the metrics as YAML. Empty skips writing.
	ReportFile string

	// Threshold is the smallest voxel value treated as object.
	Threshold uint8

	// PreserveSheets keeps surfaces instead of reducing them to curves.
	PreserveSheets bool

	// NumCores is the number of goroutines scanning for candidates.
	NumCores int

	// SaveIntermediaryResults writes projections, overlays and convergence
	// plots to IntermediaryDir.
	SaveIntermediaryResults bool
	IntermediaryDir         string

	// Logger receives progress; nil discards it.
	Logger logger.Logger
}

// Metrics describes a finished run.
type Metrics struct {
	InputVoxels    int     `yaml:"inputVoxels"`
	SkeletonVoxels int     `yaml:"skeletonVoxels"`
	Reduction      float64 `yaml:"reduction"` // fraction of object voxels removed

	// Input is measured after thresholding and clearing the outer shell,
	// which is the object the engine actually thins.
	Input             topology.Summary `yaml:"input"`
	Skeleton          topology.Summary `yaml:"skeleton"`
	TopologyPreserved bool             `yaml:"topologyPreserved"`

	Graph  topology.GraphSummary  `yaml:"graph"`
	Radius topology.RadiusSummary `yaml:"radius"`
	Axes   *topology.Axes         `yaml:"axes,omitempty"`

	Sweeps            int           `yaml:"sweeps"`
	ParallelDeleted   int           `yaml:"parallelDeleted"`
	SequentialDeleted int           `yaml:"sequentialDeleted"`
	Duration          time.Duration `yaml:"duration"`

	Stats thinning.Stats `yaml:"-"`
}

// Skeletonizer runs the pipeline once.
type Skeletonizer struct {
	params   *Params
	log      logger.Logger
	volume   *models.Volume
	object   *models.Volume
	skeleton *models.Volume
	metrics  Metrics
}

// NewSkeletonizer creates a pipeline for params.
func NewSkeletonizer(params *Params) *Skeletonizer {
	var log logger.Logger = logger.Nop()
	if params.Logger != nil {
		log = params.Logger
	}
	return &Skeletonizer{params: params, log: log}
}

// SetVolume supplies the input directly instead of loading InputPath.
func (s *Skeletonizer) SetVolume(v *models.Volume) {
	s.volume = v
}

// Process runs the complete pipeline
func (s *Skeletonizer) Process(ctx context.Context) error {
	start := time.Now()

	if s.volume == nil {
		if err := s.loadVolume(); err != nil {
			return fmt.Errorf("load: %w", err)
		}
	}
	v := s.volume
	s.log.Info(component, "volume ready", map[string]interface{}{
		"width": v.Width, "height": v.Height, "depth": v.Depth,
	})

	threshold := s.params.Threshold
	if threshold == 0 {
		threshold = 1
	}
	s.object = binarize(v, threshold)
	s.metrics.Input = topology.Analyze(s.object)
	s.metrics.InputVoxels = s.metrics.Input.Voxels
	if cleared := v.CountAbove(threshold) - s.metrics.InputVoxels; cleared > 0 {
		s.log.Warning(component, "object voxels on the volume border are discarded", map[string]interface{}{"voxels": cleared})
	}

	if err := s.saveIntermediaryResult("01_input", v); err != nil {
		return err
	}

	opts := thinning.Options{
		Threshold:      threshold,
		PreserveSheets: s.params.PreserveSheets,
		Workers:        s.params.NumCores,
	}
	res, err := thinning.Thin(ctx, v.Data, v.Width, v.Height, v.Depth, opts)
	if err != nil {
		return fmt.Errorf("thin: %w", err)
	}
	s.skeleton = v.WithData(res.Data)
	s.metrics.Stats = res.Stats
	s.metrics.Sweeps = res.Stats.Sweeps
	s.metrics.ParallelDeleted = res.Stats.ParallelDeleted
	s.metrics.SequentialDeleted = res.Stats.SequentialDeleted
	s.log.Info(component, "thinning finished", map[string]interface{}{
		"sweeps": res.Stats.Sweeps, "deleted": res.Stats.Deleted(), "sequentialDeleted": res.Stats.SequentialDeleted,
	})

	s.analyze()

	if err := s.saveIntermediaryResult("02_skeleton", s.skeleton); err != nil {
		return err
	}
	if s.params.SaveIntermediaryResults {
		dir := filepath.Join(s.params.IntermediaryDir, "03_convergence")
		if _, err := visualization.PlotConvergence(res.Stats, dir); err != nil {
			return fmt.Errorf("failed to plot convergence: %w", err)
		}
	}

	if s.params.OutputFile != "" {
		if err := volumeio.Save(s.params.OutputFile, s.skeleton); err != nil {
			return err
		}
		s.log.Info(component, "skeleton written", map[string]interface{}{"path": s.params.OutputFile})
	}

	s.metrics.Duration = time.Since(start)
	if s.params.ReportFile != "" {
		if err := s.writeReport(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Skeletonizer) loadVolume() error {
	v, err := volumeio.Load(s.params.InputPath, volumeio.LoadOptions{
		Format: s.params.Format,
		Dims:   s.params.Dims,
	})
	if err != nil {
		return err
	}
	s.volume = v
	return nil
}

// analyze fills in the topology comparison and skeleton descriptors.
func (s *Skeletonizer) analyze() {
	m := &s.metrics
	m.Skeleton = topology.Analyze(s.skeleton)
	m.SkeletonVoxels = m.Skeleton.Voxels
	m.TopologyPreserved = m.Input.Equivalent(m.Skeleton)
	if m.InputVoxels > 0 {
		m.Reduction = 1 - float64(m.SkeletonVoxels)/float64(m.InputVoxels)
	}
	if !m.TopologyPreserved {
		s.log.Warning(component, "skeleton topology differs from input", map[string]interface{}{
			"input": m.Input, "skeleton": m.Skeleton,
		})
	}

	m.Graph = topology.AnalyzeGraph(topology.BuildGraph(s.skeleton))

	radius, err := topology.MedialRadii(s.object, s.skeleton)
	switch {
	case errors.Is(err, topology.ErrEmptySkeleton):
		s.log.Debug(component, "empty skeleton, no radius statistics", nil)
	case err != nil:
		s.log.Error(component, err, nil)
	default:
		m.Radius = radius
	}

	if m.SkeletonVoxels >= 2 {
		if axes, err := topology.PrincipalAxes(s.skeleton); err == nil {
			m.Axes = &axes
		} else {
			s.log.Error(component, err, nil)
		}
	}
}

// binarize returns the thresholded copy of v with its outer shell cleared.
func binarize(v *models.Volume, threshold byte) *models.Volume {
	out := v.WithData(make([]byte, v.Len()))
	for z := 1; z < v.Depth-1; z++ {
		for y := 1; y < v.Height-1; y++ {
			for x := 1; x < v.Width-1; x++ {
				i := v.Index(x, y, z)
				if v.Data[i] >= threshold {
					out.Data[i] = thinning.Object
				}
			}
		}
	}
	return out
}

// saveIntermediaryResult writes maximum-intensity projections of v along each
// axis, and for the skeleton an overlay on the input, under stage.
func (s *Skeletonizer) saveIntermediaryResult(stage string, v *models.Volume) error {
	if !s.params.SaveIntermediaryResults {
		return nil
	}

	stageDir := filepath.Join(s.params.IntermediaryDir, stage)
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return fmt.Errorf("failed to create intermediary directory: %w", err)
	}

	viewer := visualization.NewViewer(v)
	for _, axis := range []string{"x", "y", "z"} {
		img, err := viewer.MaxProjection(axis)
		if err != nil {
			return err
		}
		if err := visualization.SaveSlice(img, filepath.Join(stageDir, fmt.Sprintf("mip_%s.png", axis))); err != nil {
			return fmt.Errorf("failed to save projection: %w", err)
		}
		if v != s.skeleton {
			continue
		}
		overlay, err := visualization.NewViewer(s.object).Overlay(s.skeleton, axis)
		if err != nil {
			return err
		}
		if err := visualization.SaveSlice(overlay, filepath.Join(stageDir, fmt.Sprintf("overlay_%s.png", axis))); err != nil {
			return fmt.Errorf("failed to save overlay: %w", err)
		}
	}
	s.log.Debug(component, "intermediary results saved", map[string]interface{}{"dir": stageDir})
	return nil
}

func (s *Skeletonizer) writeReport() error {
	data, err := yaml.Marshal(s.metrics)
	if err != nil {
		return fmt.Errorf("error marshaling report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.params.ReportFile), 0755); err != nil {
		return fmt.Errorf("error creating report directory: %w", err)
	}
	if err := os.WriteFile(s.params.ReportFile, data, 0644); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}

// GetMetrics returns the metrics of the last run
func (s *Skeletonizer) GetMetrics() Metrics {
	return s.metrics
}

// GetVolume returns the skeleton, or nil before Process succeeds
func (s *Skeletonizer) GetVolume() *models.Volume {
	return s.skeleton
}

// GetInput returns the volume that was thinned
func (s *Skeletonizer) GetInput() *models.Volume {
	return s.volume
}
