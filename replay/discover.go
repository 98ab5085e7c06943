package replay

import (
	"os"
	"path/filepath"
)

// Default log file names as written by the tracking pipeline.
const (
	RobotLogName     = "robot_poses.json"
	DetectionLogName = "detections_output.json"
)

// FindDataDir locates the directory holding both log files. The
// explicit directory wins when it contains them; otherwise the working
// directory and the conventional data locations are probed in order.
// Falls back to the working directory so the caller's open error names
// the expected path.
func FindDataDir(explicit string) string {
	candidates := []string{}
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates, ".", "main", "data")

	for _, dir := range candidates {
		if hasLogs(dir) {
			return dir
		}
	}
	return "."
}

func hasLogs(dir string) bool {
	for _, name := range []string{RobotLogName, DetectionLogName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}
