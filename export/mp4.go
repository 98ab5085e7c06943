package export

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// mp4Encoder pushes raw RGB frames into a GStreamer pipeline:
//
//	appsrc → videoconvert → x264enc → mp4mux → filesink
//
// Frames carry explicit presentation timestamps at 1/fps spacing, so
// the muxer produces a constant-frame-rate file regardless of how fast
// rendering runs.
type mp4Encoder struct {
	pipeline *gst.Pipeline
	src      *app.Source
	frame    int
	fps      int
	size     int
	closed   bool
}

func newMP4Encoder(path string, width, height, fps int) (*mp4Encoder, error) {
	// Initialize GStreamer (safe to call multiple times)
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("mp4: failed to create pipeline: %w", err)
	}

	appsrc, err := app.NewAppSrc()
	if err != nil {
		return nil, fmt.Errorf("mp4: failed to create appsrc: %w", err)
	}
	capsStr := buildVideoCaps(width, height, fps)
	appsrc.SetCaps(gst.NewCapsFromString(capsStr))
	// Timestamped push mode: block when the encoder falls behind
	// instead of growing an unbounded queue.
	appsrc.SetProperty("format", int(gst.FormatTime))
	appsrc.SetProperty("block", true)
	appsrc.SetProperty("is-live", false)

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("mp4: failed to create videoconvert: %w", err)
	}

	encoder, err := gst.NewElement("x264enc")
	if err != nil {
		return nil, fmt.Errorf("mp4: failed to create x264enc: %w", err)
	}
	// Offline encode: quality over latency.
	encoder.SetProperty("speed-preset", 6) // medium

	muxer, err := gst.NewElement("mp4mux")
	if err != nil {
		return nil, fmt.Errorf("mp4: failed to create mp4mux: %w", err)
	}

	filesink, err := gst.NewElement("filesink")
	if err != nil {
		return nil, fmt.Errorf("mp4: failed to create filesink: %w", err)
	}
	filesink.SetProperty("location", path)

	pipeline.AddMany(appsrc.Element, converter, encoder, muxer, filesink)
	if err := gst.ElementLinkMany(appsrc.Element, converter, encoder, muxer, filesink); err != nil {
		return nil, fmt.Errorf("mp4: failed to link pipeline elements: %w", err)
	}

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return nil, fmt.Errorf("mp4: failed to start pipeline: %w", err)
	}
	slog.Debug("mp4: pipeline started", "caps", capsStr, "out", path)

	return &mp4Encoder{
		pipeline: pipeline,
		src:      appsrc,
		fps:      fps,
		size:     width * height * 3,
	}, nil
}

func (e *mp4Encoder) Append(img *image.RGBA) error {
	rgb := packRGB(img)
	if len(rgb) != e.size {
		return fmt.Errorf("mp4: frame is %d bytes, want %d", len(rgb), e.size)
	}

	buffer := gst.NewBufferFromBytes(rgb)
	buffer.SetPresentationTimestamp(
		time.Duration(e.frame) * time.Second / time.Duration(e.fps),
	)
	if ret := e.src.PushBuffer(buffer); ret != gst.FlowOK {
		return fmt.Errorf("mp4: push rejected with flow state %v", ret)
	}
	e.frame++
	return nil
}

// Close signals end-of-stream and waits for the muxer to finalize the
// file before tearing the pipeline down.
func (e *mp4Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if ret := e.src.EndStream(); ret != gst.FlowOK {
		e.pipeline.SetState(gst.StateNull)
		return fmt.Errorf("mp4: end-of-stream rejected with flow state %v", ret)
	}

	err := e.waitEOS(30 * time.Second)
	if stateErr := e.pipeline.SetState(gst.StateNull); stateErr != nil && err == nil {
		err = fmt.Errorf("mp4: failed to stop pipeline: %w", stateErr)
	}
	return err
}

// waitEOS polls the pipeline bus until the EOS message arrives.
func (e *mp4Encoder) waitEOS(timeout time.Duration) error {
	bus := e.pipeline.GetPipelineBus()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		msg := bus.TimedPop(100 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			return nil
		case gst.MessageError:
			gerr := msg.ParseError()
			return fmt.Errorf("mp4: pipeline error: %s (%s)", gerr.Error(), gerr.DebugString())
		}
	}
	return fmt.Errorf("mp4: timed out waiting for end of stream")
}

// packRGB flattens an RGBA image into a packed 3-bytes-per-pixel
// buffer matching the appsrc caps.
func packRGB(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, b.Dx()*b.Dy()*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			out[i+0] = row[x*4+0]
			out[i+1] = row[x*4+1]
			out[i+2] = row[x*4+2]
			i += 3
		}
	}
	return out
}

// buildVideoCaps builds the raw video caps string for the appsrc.
//
// Format: "video/x-raw,format=RGB,width=W,height=H,framerate=N/1"
func buildVideoCaps(width, height, fps int) string {
	return fmt.Sprintf(
		"video/x-raw,format=RGB,width=%d,height=%d,framerate=%d/1",
		width, height, fps,
	)
}
