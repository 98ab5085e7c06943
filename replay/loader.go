package replay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"

	"github.com/baderabdallah/robot-mapping-warehouses/geometry"
	"github.com/baderabdallah/robot-mapping-warehouses/replay/align"
)

// Options controls frame loading.
type Options struct {
	// Align resamples robot poses onto the detection timestamps by
	// linear interpolation before pairing. Requires numeric time
	// fields in both logs; falls back to plain index pairing (with a
	// warning) when they are missing.
	Align bool
}

// Wire formats. Every numeric field defaults to 0.0 when absent or
// null; a wrong-typed field is a fatal decode error.

type robotLog struct {
	RobotPose []robotEntry `json:"robotPose"`
}

type robotEntry struct {
	X     float64         `json:"x"`
	Y     float64         `json:"y"`
	Theta float64         `json:"theta"`
	Time  json.RawMessage `json:"time"`
}

type detectionLog struct {
	Detections []detectionEntry `json:"detections"`
}

type detectionEntry struct {
	Poses []poseEntry       `json:"poses"`
	Time  []json.RawMessage `json:"time"`
}

type poseEntry struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// LoadFiles reads the robot pose log and the detection log from disk
// and builds the frame list plus global bounds.
func LoadFiles(robotPath, detectionsPath string, opts Options) ([]Frame, Bounds, error) {
	robotJSON, err := os.ReadFile(robotPath)
	if err != nil {
		return nil, NewBounds(), fmt.Errorf("replay: reading robot log: %w", err)
	}
	detJSON, err := os.ReadFile(detectionsPath)
	if err != nil {
		return nil, NewBounds(), fmt.Errorf("replay: reading detection log: %w", err)
	}
	return Load(robotJSON, detJSON, opts)
}

// Load parses the two logs and builds one Frame per paired entry.
// Pairing is by index and stops at the shorter list. The returned
// bounds cover every finite coordinate of every outline; they stay
// degenerate when there are no frames.
func Load(robotJSON, detectionsJSON []byte, opts Options) ([]Frame, Bounds, error) {
	var rlog robotLog
	if err := json.Unmarshal(robotJSON, &rlog); err != nil {
		return nil, NewBounds(), fmt.Errorf("replay: decoding robot log: %w", err)
	}
	var dlog detectionLog
	if err := json.Unmarshal(detectionsJSON, &dlog); err != nil {
		return nil, NewBounds(), fmt.Errorf("replay: decoding detection log: %w", err)
	}

	robots := rlog.RobotPose
	detections := dlog.Detections

	if opts.Align {
		if resampled, ok := alignRobotPoses(robots, detections); ok {
			robots = resampled
		}
	}

	if len(robots) != len(detections) {
		slog.Warn("replay: log lengths differ, pairing truncated to shorter list",
			"robot_entries", len(robots),
			"detection_entries", len(detections),
		)
	}

	n := len(robots)
	if len(detections) < n {
		n = len(detections)
	}

	frames := make([]Frame, 0, n)
	bounds := NewBounds()

	for i := 0; i < n; i++ {
		re := robots[i]
		de := detections[i]

		poses := make([]geometry.Pose, len(de.Poses))
		centers := make([]r2.Point, len(de.Poses))
		for j, p := range de.Poses {
			poses[j] = geometry.Pose{X: p.X, Y: p.Y, Theta: p.Theta}
			centers[j] = r2.Point{X: p.X, Y: p.Y}
		}

		f := Frame{
			Index:           i,
			RobotOutline:    geometry.RobotOutline(re.X, re.Y, re.Theta),
			CarriersOutline: geometry.CarriersOutline(poses),
			RobotCenter:     r2.Point{X: re.X, Y: re.Y},
			CarrierCenters:  centers,
			Timestamp:       frameTimestamp(re, de),
			TraceID:         uuid.NewString(),
		}

		bounds.ExtendAll(f.RobotOutline)
		bounds.ExtendAll(f.CarriersOutline)
		frames = append(frames, f)
	}

	return frames, bounds, nil
}

// frameTimestamp picks the display label: the robot entry's time
// field, else the first element of the detection entry's time array,
// else the empty string.
func frameTimestamp(re robotEntry, de detectionEntry) string {
	if s := timeLabel(re.Time); s != "" {
		return s
	}
	if len(de.Time) > 0 {
		return timeLabel(de.Time[0])
	}
	return ""
}

// timeLabel renders a raw JSON time value as a display string. Strings
// are unquoted, numbers are printed compactly, null/absent is "".
func timeLabel(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			return str
		}
		return ""
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return s
}

// timeValue parses a raw JSON time as a number.
func timeValue(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || strings.HasPrefix(s, `"`) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// alignRobotPoses resamples the robot trajectory onto the detection
// timestamps. Returns false (and warns) when either log lacks usable
// numeric times, leaving the caller on plain index pairing.
func alignRobotPoses(robots []robotEntry, detections []detectionEntry) ([]robotEntry, bool) {
	times := make([]float64, 0, len(robots))
	xs := make([]float64, 0, len(robots))
	ys := make([]float64, 0, len(robots))
	thetas := make([]float64, 0, len(robots))
	for _, re := range robots {
		t, ok := timeValue(re.Time)
		if !ok {
			slog.Warn("replay: align requested but robot log has non-numeric times, using index pairing")
			return nil, false
		}
		times = append(times, t)
		xs = append(xs, re.X)
		ys = append(ys, re.Y)
		thetas = append(thetas, re.Theta)
	}

	refTimes := make([]float64, 0, len(detections))
	for _, de := range detections {
		if len(de.Time) == 0 {
			slog.Warn("replay: align requested but a detection entry has no time, using index pairing")
			return nil, false
		}
		t, ok := timeValue(de.Time[0])
		if !ok {
			slog.Warn("replay: align requested but detection log has non-numeric times, using index pairing")
			return nil, false
		}
		refTimes = append(refTimes, t)
	}

	rx, err := align.Resample(times, xs, refTimes)
	if err != nil {
		slog.Warn("replay: align failed, using index pairing", "error", err)
		return nil, false
	}
	ry, err := align.Resample(times, ys, refTimes)
	if err != nil {
		slog.Warn("replay: align failed, using index pairing", "error", err)
		return nil, false
	}
	rtheta, err := align.Resample(times, thetas, refTimes)
	if err != nil {
		slog.Warn("replay: align failed, using index pairing", "error", err)
		return nil, false
	}

	out := make([]robotEntry, len(refTimes))
	for i := range refTimes {
		out[i] = robotEntry{
			X:     rx[i],
			Y:     ry[i],
			Theta: rtheta[i],
			Time:  json.RawMessage(strconv.FormatFloat(refTimes[i], 'g', -1, 64)),
		}
	}

	slog.Info("replay: robot poses resampled onto detection timestamps",
		"robot_entries", len(robots),
		"detection_entries", len(detections),
	)
	return out, true
}
