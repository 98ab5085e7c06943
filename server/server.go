// Package server exposes the interactive replay viewer over HTTP. The
// browser receives an MJPEG stream of rendered frames and posts
// playback commands back; all rendering happens server-side.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/baderabdallah/robot-mapping-warehouses/playback"
	"github.com/baderabdallah/robot-mapping-warehouses/render"
	"github.com/baderabdallah/robot-mapping-warehouses/replay"
	"github.com/baderabdallah/robot-mapping-warehouses/scene"
)

const (
	viewerDPI   = 100
	jpegQuality = 85
	// Height presets bound to the number keys, and the +/- step.
	heightStep = 80
)

var heightPresets = map[int]int{1: 680, 2: 720, 3: 740, 4: 820, 5: 900}

// Server renders replay frames and serves them to browsers.
type Server struct {
	cfg    Config
	frames []replay.Frame
	bounds replay.Bounds
	player *playback.Player
	hub    *hub
	engine *gin.Engine

	// mu guards the canvas, which is swapped out on resize and
	// fill-mode toggles.
	mu       sync.Mutex
	canvas   *render.Canvas
	heightPx int
	fill     bool
}

// New builds a viewer over the loaded frames. debug enables gin's
// request logging.
func New(frames []replay.Frame, bounds replay.Bounds, cfg Config, debug bool) (*Server, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("server: no frames to serve")
	}

	s := &Server{
		cfg:      cfg,
		frames:   frames,
		bounds:   bounds,
		hub:      newHub(),
		heightPx: cfg.HeightPx,
		fill:     cfg.FillAxes,
	}
	if err := s.rebuildCanvas(cfg.HeightPx, cfg.FillAxes); err != nil {
		return nil, err
	}
	s.player = playback.New(len(frames), true, s.renderState)

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	if debug {
		engine.Use(gin.Logger())
	}
	engine.GET("/", s.handleIndex)
	engine.GET("/stream", s.handleStream)
	engine.GET("/frame", s.handleFrame)
	engine.GET("/status", s.handleStatus)
	engine.POST("/control", s.handleControl)
	s.engine = engine

	// First paint before playback starts ticking.
	s.renderState(playback.State{Index: 0, IntervalMS: playback.DefaultIntervalMS, ShowHUD: true})

	return s, nil
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	playCtx, stopPlayback := context.WithCancel(ctx)
	defer stopPlayback()
	go s.player.Run(playCtx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server: listening", "addr", srv.Addr, "frames", len(s.frames))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.hub.close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		slog.Info("server: stopped", "stream_drops", s.hub.dropCount())
		return nil
	case err := <-errCh:
		s.hub.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	}
}

// rebuildCanvas recreates the drawing surface for the given height and
// fill settings and commits them under mu. Handlers call in from
// concurrent goroutines, so the settings are never read outside the
// lock. Caller must not hold mu.
func (s *Server) rebuildCanvas(heightPx int, fill bool) error {
	vp := scene.Layout(s.bounds, fill, heightPx, viewerDPI)
	canvas, err := render.NewCanvas(vp)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.canvas = canvas
	s.heightPx = vp.HeightPx
	s.fill = fill
	s.mu.Unlock()
	return nil
}

// renderState draws the frame for st and publishes it to the stream.
// It is the player's update callback and also runs after control
// actions that change the picture without moving the index.
func (s *Server) renderState(st playback.State) {
	i := st.Index
	if i < 0 || i >= len(s.frames) {
		return
	}
	f := &s.frames[i]

	s.mu.Lock()
	hud := ""
	if s.canvas.Viewport().Fill && st.ShowHUD {
		hud = s.hudText(f, st)
	}
	s.canvas.DrawFrame(f, hud)

	var buf bytes.Buffer
	err := jpeg.Encode(&buf, s.canvas.Image(), &jpeg.Options{Quality: jpegQuality})
	s.mu.Unlock()

	if err != nil {
		slog.Error("server: jpeg encode failed", "frame", i, "error", err)
		return
	}
	s.hub.publish(buf.Bytes())
}

func (s *Server) hudText(f *replay.Frame, st playback.State) string {
	mode := "playing"
	if !st.Playing {
		mode = "paused"
	}
	hud := fmt.Sprintf("Frame %d/%d  %s  %dms", st.Index+1, len(s.frames), mode, st.IntervalMS)
	if f.Timestamp != "" {
		hud += "\nt=" + f.Timestamp
	}
	return hud
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(s.indexPage()))
}

// handleStream writes an MJPEG multipart stream. Each subscriber
// follows the hub's newest frame and drops anything it missed.
func (s *Server) handleStream(c *gin.Context) {
	c.Header("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	c.Header("Cache-Control", "no-store")

	frame, seq := s.hub.latest()
	for {
		if frame != nil {
			if err := writeMJPEGPart(c.Writer, frame); err != nil {
				return
			}
			c.Writer.Flush()
		}
		select {
		case <-c.Request.Context().Done():
			return
		default:
		}
		var ok bool
		frame, seq, ok = s.hub.next(seq)
		if !ok {
			return
		}
	}
}

func writeMJPEGPart(w http.ResponseWriter, jpeg []byte) error {
	_, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg))
	if err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err = fmt.Fprint(w, "\r\n")
	return err
}

// handleFrame returns the last rendered frame as a lossless PNG
// snapshot.
func (s *Server) handleFrame(c *gin.Context) {
	var buf bytes.Buffer
	s.mu.Lock()
	err := png.Encode(&buf, s.canvas.Image())
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleStatus(c *gin.Context) {
	st := s.player.Snapshot()
	s.mu.Lock()
	heightPx := s.heightPx
	fill := s.fill
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"frames":      len(s.frames),
		"index":       st.Index,
		"playing":     st.Playing,
		"interval_ms": st.IntervalMS,
		"hud":         st.ShowHUD,
		"height_px":   heightPx,
		"fill":        fill,
	})
}

type controlRequest struct {
	Action string `json:"action" binding:"required"`
	Value  int    `json:"value"`
}

// handleControl applies one playback or view command. View commands
// (resize, fill) rebuild the canvas and re-render the current frame.
func (s *Server) handleControl(c *gin.Context) {
	var req controlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var st playback.State
	switch req.Action {
	case "play":
		st = s.player.TogglePlay()
	case "next":
		st = s.player.StepForward()
	case "prev":
		st = s.player.StepBack()
	case "slower":
		st = s.player.Slower()
	case "faster":
		st = s.player.Faster()
	case "hud":
		st = s.player.ToggleHUD()
	case "preset":
		px, ok := heightPresets[req.Value]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown height preset %d", req.Value)})
			return
		}
		st = s.applyView(px, s.fillSetting())
	case "grow":
		st = s.applyView(s.heightSetting()+heightStep, s.fillSetting())
	case "shrink":
		st = s.applyView(s.heightSetting()-heightStep, s.fillSetting())
	case "fill":
		st = s.applyView(s.heightSetting(), !s.fillSetting())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown action %q", req.Action)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"index":       st.Index,
		"playing":     st.Playing,
		"interval_ms": st.IntervalMS,
	})
}

func (s *Server) heightSetting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heightPx
}

func (s *Server) fillSetting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fill
}

// applyView swaps the canvas for new view settings and repaints the
// current frame so the change is visible while paused. On rebuild
// failure the previous view stays in effect.
func (s *Server) applyView(heightPx int, fill bool) playback.State {
	if err := s.rebuildCanvas(heightPx, fill); err != nil {
		slog.Error("server: canvas rebuild failed", "height_px", heightPx, "error", err)
		return s.player.Snapshot()
	}

	st := s.player.Snapshot()
	if st.Index < 0 {
		st.Index = 0
	}
	s.renderState(st)
	slog.Debug("server: view changed", "height_px", s.heightSetting(), "fill", fill)
	return st
}
