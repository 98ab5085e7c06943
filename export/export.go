// Package export renders a replay to an animation file. Frames are
// rasterized once each in index order and handed to a format-specific
// encoder (GIF via the standard image pipeline, MP4 via GStreamer).
package export

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/baderabdallah/robot-mapping-warehouses/render"
	"github.com/baderabdallah/robot-mapping-warehouses/replay"
	"github.com/baderabdallah/robot-mapping-warehouses/scene"
)

// Supported output formats.
const (
	FormatGIF = "gif"
	FormatMP4 = "mp4"
)

// Options controls one export run. The cmd layer applies the flag
// defaults and floors before calling Run.
type Options struct {
	Format   string
	OutPath  string
	FPS      int
	HeightPx int
	Every    int  // keep every Nth frame, 1 = all
	Limit    int  // stop after this many kept frames, 0 = no limit
	Fill     bool // data fills the canvas; false draws grid and legend
	DPI      float64
}

// Encoder consumes rendered frames and writes the output file.
type Encoder interface {
	Append(img *image.RGBA) error
	Close() error
}

func (o Options) validate() error {
	if o.Format != FormatGIF && o.Format != FormatMP4 {
		return fmt.Errorf("export: unsupported format %q", o.Format)
	}
	if o.OutPath == "" {
		return fmt.Errorf("export: output path is empty")
	}
	if o.FPS < 1 {
		return fmt.Errorf("export: fps must be at least 1, got %d", o.FPS)
	}
	if o.HeightPx < 1 {
		return fmt.Errorf("export: height must be positive, got %d", o.HeightPx)
	}
	if o.Every < 1 {
		return fmt.Errorf("export: every must be at least 1, got %d", o.Every)
	}
	if o.Limit < 0 {
		return fmt.Errorf("export: limit must not be negative, got %d", o.Limit)
	}
	return nil
}

// selectFrames applies the every/limit subsampling.
func selectFrames(frames []replay.Frame, every, limit int) []replay.Frame {
	out := make([]replay.Frame, 0, len(frames)/every+1)
	for i := 0; i < len(frames); i += every {
		out = append(out, frames[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Run renders the selected frames into opts.OutPath.
func Run(frames []replay.Frame, bounds replay.Bounds, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	selected := selectFrames(frames, opts.Every, opts.Limit)
	if len(selected) == 0 {
		return fmt.Errorf("export: no frames to encode")
	}

	vp := scene.ExportViewport(bounds, opts.HeightPx, opts.DPI)
	vp.Fill = opts.Fill
	canvas, err := render.NewCanvas(vp)
	if err != nil {
		return err
	}
	w, h := canvas.Size()

	var enc Encoder
	switch opts.Format {
	case FormatGIF:
		enc, err = newGIFEncoder(opts.OutPath, opts.FPS)
	case FormatMP4:
		enc, err = newMP4Encoder(opts.OutPath, w, h, opts.FPS)
	}
	if err != nil {
		return err
	}

	slog.Info("export: encoding started",
		"format", opts.Format,
		"out", opts.OutPath,
		"frames", len(selected),
		"size", fmt.Sprintf("%dx%d", w, h),
		"fps", opts.FPS,
	)
	start := time.Now()

	for i := range selected {
		canvas.DrawFrame(&selected[i], "")
		if err := enc.Append(canvas.Image()); err != nil {
			enc.Close()
			return fmt.Errorf("export: encoding frame %d: %w", i, err)
		}
		if (i+1)%50 == 0 {
			slog.Info("export: progress", "done", i+1, "total", len(selected))
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("export: finalizing %s: %w", opts.OutPath, err)
	}
	slog.Info("export: saved",
		"out", opts.OutPath,
		"frames", len(selected),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
