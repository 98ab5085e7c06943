// Command replay-export renders a replay to an animation file (GIF or
// MP4) without opening the viewer.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/baderabdallah/robot-mapping-warehouses/export"
	"github.com/baderabdallah/robot-mapping-warehouses/replay"
)

func main() {
	dataDir := flag.String("data-dir", "", "Directory containing the log files (default: probe ., main, data)")
	robotPath := flag.String("robot", "", "Robot pose log (overrides --data-dir)")
	detectionsPath := flag.String("detections", "", "Detection log (overrides --data-dir)")
	format := flag.String("format", "", "Output format: gif, mp4 (default: from --out extension, else gif)")
	out := flag.String("out", "", "Output path (default: animation.<format>)")
	fps := flag.Int("fps", 20, "Playback rate of the exported animation")
	height := flag.Int("height", 720, "Output height in pixels")
	every := flag.Int("every", 1, "Keep every Nth frame")
	limit := flag.Int("limit", 0, "Stop after this many kept frames (0 = all)")
	fill := flag.Bool("fill", true, "Fill the canvas with data; false draws grid and legend")
	align := flag.Bool("align", false, "Resample robot poses onto detection timestamps")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	opts, err := exportOptions(*format, *out, *fps, *height, *every, *limit, *fill)
	if err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	robot, detections, err := resolveLogPaths(*dataDir, *robotPath, *detectionsPath)
	if err != nil {
		log.Fatalf("Failed to locate log files: %v", err)
	}
	frames, bounds, err := replay.LoadFiles(robot, detections, replay.Options{Align: *align})
	if err != nil {
		log.Fatalf("Failed to load replay: %v", err)
	}

	if dir := filepath.Dir(opts.OutPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	// Exports can take minutes; die cleanly on Ctrl+C instead of
	// leaving a half-written file around silently.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Warn("export: interrupted, output file is incomplete", "out", opts.OutPath)
		os.Exit(1)
	}()

	if err := export.Run(frames, bounds, opts); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
}

// exportOptions applies the flag defaults and floors. The format falls
// back to the --out extension, then to gif; fps and height have hard
// floors instead of errors so scripted calls cannot produce degenerate
// output.
func exportOptions(format, out string, fps, height, every, limit int, fill bool) (export.Options, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(out)) {
		case ".mp4":
			format = export.FormatMP4
		case ".gif", "":
			format = export.FormatGIF
		default:
			return export.Options{}, fmt.Errorf("cannot infer format from %q, use --format", out)
		}
	}
	format = strings.ToLower(format)
	if format != export.FormatGIF && format != export.FormatMP4 {
		return export.Options{}, fmt.Errorf("unsupported format %q (gif, mp4)", format)
	}
	if out == "" {
		out = "animation." + format
	}
	if fps < 1 {
		fps = 1
	}
	if height < 200 {
		height = 200
	}
	if every < 1 {
		every = 1
	}
	if limit < 0 {
		limit = 0
	}
	return export.Options{
		Format:   format,
		OutPath:  out,
		FPS:      fps,
		HeightPx: height,
		Every:    every,
		Limit:    limit,
		Fill:     fill,
		DPI:      100,
	}, nil
}

func resolveLogPaths(dataDir, robot, detections string) (string, string, error) {
	if robot != "" && detections != "" {
		return robot, detections, nil
	}
	if robot != "" || detections != "" {
		return "", "", fmt.Errorf("--robot and --detections must be set together")
	}
	dir := replay.FindDataDir(dataDir)
	return filepath.Join(dir, replay.RobotLogName), filepath.Join(dir, replay.DetectionLogName), nil
}
