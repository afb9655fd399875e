package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"skeleton3d/internal/logger"
	"skeleton3d/pkg/config"
	"skeleton3d/pkg/skeletonize"
	"skeleton3d/pkg/thinning"
	"skeleton3d/pkg/visualization"
	"skeleton3d/pkg/volumeio"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Volume file (.raw, .binvox) or directory of slice images")
	outputPath := flag.String("output", "skeleton.raw", "Output skeleton file (.raw or .binvox)")
	reportPath := flag.String("report", "", "Write run metrics as YAML to this file")
	format := flag.String("format", config.FormatAuto, "Input format: auto, raw, binvox or slices")
	dims := flag.String("dims", "", "Raw volume dimensions as NXxNYxNZ")
	threshold := flag.Int("threshold", 1, "Smallest voxel value treated as object")
	sheets := flag.Bool("sheets", false, "Preserve surfaces (surface skeleton) instead of thinning to curves")
	numCores := flag.Int("cores", 0, "Number of goroutines scanning for candidates (default: all available)")
	configPath := flag.String("config", "", "YAML configuration file")
	writeConfig := flag.String("write-config", "", "Write the default configuration to this file and exit")
	extractSlices := flag.Bool("extract-slices", false, "Extract and save skeleton slices along all axes")
	slicesDir := flag.String("slices-dir", "skeleton_slices", "Directory to save extracted slices")
	saveIntermediary := flag.Bool("save-intermediary", false, "Save projections, overlays and convergence plots")
	intermediaryDir := flag.String("intermediary-dir", "intermediary_results", "Directory to save intermediary results")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Default configuration written to %s\n", *writeConfig)
		return
	}

	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	// Explicit flags override the configuration file
	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Input.Format = *format
		case "dims":
			d, err := parseDims(*dims)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Input.Dims = d
		case "threshold":
			cfg.Thinning.Threshold = *threshold
		case "sheets":
			cfg.Thinning.PreserveSheets = *sheets
		case "cores":
			if *numCores > 0 {
				cfg.Thinning.Workers = *numCores
			}
		case "extract-slices":
			cfg.Output.ExtractSlices = *extractSlices
		case "save-intermediary":
			cfg.Output.SaveIntermediaryResults = *saveIntermediary
		case "log-level":
			cfg.Output.LogLevel = *logLevel
		}
	})
	if flagErr == nil {
		flagErr = cfg.Validate()
	}
	if flagErr != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", flagErr)
		os.Exit(2)
	}

	level, err := logger.ParseLevel(cfg.Output.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}
	log := logger.NewConsoleLogger(level)

	params := &skeletonize.Params{
		InputPath:               *inputPath,
		Format:                  volumeio.Format(cfg.Input.Format),
		OutputFile:              *outputPath,
		ReportFile:              *reportPath,
		Threshold:               uint8(cfg.Thinning.Threshold),
		PreserveSheets:          cfg.Thinning.PreserveSheets,
		NumCores:                cfg.Thinning.Workers,
		SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
		IntermediaryDir:         *intermediaryDir,
		Logger:                  log,
	}
	if len(cfg.Input.Dims) == 3 {
		copy(params.Dims[:], cfg.Input.Dims)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mode := "curve"
	if cfg.Thinning.PreserveSheets {
		mode = "surface"
	}
	fmt.Println("================================")
	fmt.Println("3D TOPOLOGY-PRESERVING THINNING")
	fmt.Println("================================")
	fmt.Printf("Input: %s (%s skeleton, threshold %d, %d cores)\n", *inputPath, mode, cfg.Thinning.Threshold, cfg.Thinning.Workers)

	s := skeletonize.NewSkeletonizer(params)
	startTime := time.Now()
	if err := s.Process(ctx); err != nil {
		log.Error("main", err, map[string]interface{}{"input": *inputPath})
		os.Exit(1)
	}
	processingTime := time.Since(startTime)

	m := s.GetMetrics()
	fmt.Printf("\nThinning completed in %.2f seconds\n", processingTime.Seconds())
	fmt.Printf("Skeleton saved to: %s\n\n", *outputPath)

	fmt.Printf("Voxels:     %d -> %d (%.1f%% removed)\n", m.InputVoxels, m.SkeletonVoxels, 100*m.Reduction)
	fmt.Printf("Sweeps:     %d directional, %d voxels in the sequential pass\n", m.Sweeps, m.SequentialDeleted)
	fmt.Printf("Topology:   components %d -> %d, tunnels %d -> %d, cavities %d -> %d\n",
		m.Input.Components, m.Skeleton.Components,
		m.Input.Tunnels, m.Skeleton.Tunnels,
		m.Input.Cavities, m.Skeleton.Cavities)
	if m.TopologyPreserved {
		fmt.Println("            preserved")
	} else {
		fmt.Println("            CHANGED")
	}
	fmt.Printf("Graph:      %d endpoints, %d junctions, mean degree %.2f\n", m.Graph.Endpoints, m.Graph.Junctions, m.Graph.MeanDegree)
	if m.Radius.Samples > 0 {
		fmt.Printf("Radius:     mean %.2f, max %.2f voxels\n", m.Radius.Mean, m.Radius.Max)
	}
	if m.Axes != nil {
		fmt.Printf("Linearity:  %.3f\n", m.Axes.Linearity)
	}

	if cfg.Output.Verbose {
		fmt.Println("\nDeletions per direction:")
		for d := 0; d < thinning.NumDirections; d++ {
			fmt.Printf("  %-3s %d\n", thinning.DirectionName(d), m.Stats.PerDirection[d])
		}
	}

	if cfg.Output.ExtractSlices {
		fmt.Println("\nExtracting skeleton slices along all axes...")
		viewer := visualization.NewViewer(s.GetVolume())
		for _, axis := range []string{"x", "y", "z"} {
			axisDir := filepath.Join(*slicesDir, axis)
			fmt.Printf("Saving %s-axis slices to: %s\n", axis, axisDir)
			if err := viewer.SaveSliceSequence(axis, axisDir); err != nil {
				log.Warning("main", fmt.Sprintf("failed to save %s-axis slices", axis), map[string]interface{}{"error": err.Error()})
			}
		}
	}

	if cfg.Output.SaveIntermediaryResults {
		fmt.Println("\nIntermediary results saved to:")
		fmt.Printf("%s\n", *intermediaryDir)
		fmt.Println("- 01_input: projections of the input")
		fmt.Println("- 02_skeleton: projections of the skeleton and overlays on the input")
		fmt.Println("- 03_convergence: deletions per sweep and per direction")
	}
}

// parseDims reads "NXxNYxNZ" (or comma separated) into three positive sizes.
func parseDims(s string) ([]int, error) {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == 'x' || r == ',' })
	if len(parts) != 3 {
		return nil, fmt.Errorf("dims %q: want NXxNYxNZ", s)
	}
	out := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("dims %q: bad size %q", s, p)
		}
		out[i] = n
	}
	return out, nil
}
