package visualization

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"skeleton3d/pkg/thinning"
)

// PlotConvergence writes two charts of a thinning run to outputDir: voxels
// deleted per sweep, and voxels deleted per direction. It returns the paths
// written.
func PlotConvergence(stats thinning.Stats, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create plot directory: %w", err)
	}

	pSweep := plot.New()
	pSweep.Title.Text = "Deletions per sweep"
	pSweep.X.Label.Text = "Sweep"
	pSweep.Y.Label.Text = "Voxels deleted"

	pts := make(plotter.XYs, 0, len(stats.PerSweep)+1)
	for i, n := range stats.PerSweep {
		pts = append(pts, plotter.XY{X: float64(i + 1), Y: float64(n)})
	}
	if stats.SequentialScans > 0 {
		pts = append(pts, plotter.XY{X: float64(len(stats.PerSweep) + 1), Y: float64(stats.SequentialDeleted)})
	}
	if len(pts) > 0 {
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, err
		}
		line.Color = color.RGBA{B: 200, A: 255}
		line.Width = vg.Points(1)
		points.GlyphStyle.Color = line.Color
		pSweep.Add(line, points, plotter.NewGrid())
		pSweep.Legend.Add("directional sweeps, then sequential pass", line)
		pSweep.Legend.Top = true
	}

	pDir := plot.New()
	pDir.Title.Text = "Deletions per direction"
	pDir.Y.Label.Text = "Voxels deleted"

	values := make(plotter.Values, thinning.NumDirections)
	names := make([]string, thinning.NumDirections)
	for d := 0; d < thinning.NumDirections; d++ {
		values[d] = float64(stats.PerDirection[d])
		names[d] = thinning.DirectionName(d)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bars.Color = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	pDir.Add(bars)
	pDir.NominalX(names...)

	sweepFile := filepath.Join(outputDir, "convergence_sweeps.png")
	if err := pSweep.Save(8*vg.Inch, 4*vg.Inch, sweepFile); err != nil {
		return nil, fmt.Errorf("save sweep plot: %w", err)
	}
	dirFile := filepath.Join(outputDir, "convergence_directions.png")
	if err := pDir.Save(8*vg.Inch, 4*vg.Inch, dirFile); err != nil {
		return nil, fmt.Errorf("save direction plot: %w", err)
	}
	return []string{sweepFile, dirFile}, nil
}
