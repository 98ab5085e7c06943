// Command replay serves the interactive replay viewer. It loads the
// robot pose and detection logs, renders frames server-side and
// streams them to the browser.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/baderabdallah/robot-mapping-warehouses/replay"
	"github.com/baderabdallah/robot-mapping-warehouses/server"
)

func main() {
	dataDir := flag.String("data-dir", "", "Directory containing the log files (default: probe ., main, data)")
	robotPath := flag.String("robot", "", "Robot pose log (overrides --data-dir)")
	detectionsPath := flag.String("detections", "", "Detection log (overrides --data-dir)")
	port := flag.Int("port", 0, "HTTP port (overrides REPLAY_PORT)")
	fill := flag.Bool("fill", false, "Fill the canvas with data, no axes chrome (overrides REPLAY_FILL_AXES)")
	height := flag.Int("height", 0, "Initial canvas height in pixels (overrides REPLAY_HEIGHT_PX)")
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

	robot, detections, err := resolveLogPaths(*dataDir, *robotPath, *detectionsPath)
	if err != nil {
		log.Fatalf("Failed to locate log files: %v", err)
	}

	frames, bounds, err := replay.LoadFiles(robot, detections, replay.Options{Align: *align})
	if err != nil {
		log.Fatalf("Failed to load replay: %v", err)
	}

	cfg := server.LoadConfig()
	if *port != 0 {
		cfg.Port = *port
	}
	if *fill {
		cfg.FillAxes = true
	}
	if *height != 0 {
		cfg.HeightPx = *height
	}

	srv, err := server.New(frames, bounds, cfg, *debug)
	if err != nil {
		log.Fatalf("Failed to start viewer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("replay: viewer ready",
		"url", fmt.Sprintf("http://localhost:%d", cfg.Port),
		"frames", len(frames),
		"robot_log", robot,
		"detections_log", detections,
	)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Viewer failed: %v", err)
	}
}

// resolveLogPaths combines the explicit file flags with data directory
// discovery. Either both files are given explicitly or both come from
// the discovered directory.
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
