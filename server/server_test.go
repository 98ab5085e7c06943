package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang/geo/r2"

	"github.com/baderabdallah/robot-mapping-warehouses/geometry"
	"github.com/baderabdallah/robot-mapping-warehouses/replay"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	frames := make([]replay.Frame, 4)
	b := replay.NewBounds()
	for i := range frames {
		x := float64(i)
		frames[i] = replay.Frame{
			Index:        i,
			RobotOutline: geometry.RobotOutline(x, 2, 0),
			RobotCenter:  r2.Point{X: x, Y: 2},
			Timestamp:    "t" + string(rune('0'+i)),
		}
		b.ExtendAll(frames[i].RobotOutline)
	}

	s, err := New(frames, b, Config{Port: 0, FillAxes: true, HeightPx: 740}, false)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func postControl(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/control", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_RejectsEmptyReplay(t *testing.T) {
	if _, err := New(nil, replay.NewBounds(), Config{Port: 8988, HeightPx: 740}, false); err == nil {
		t.Error("expected error for empty frame list")
	}
}

func TestServer_FrameEndpointServesPNG(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/frame", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if _, err := png.Decode(w.Body); err != nil {
		t.Errorf("response is not a PNG: %v", err)
	}
}

func TestServer_ControlStepsAndStatus(t *testing.T) {
	s := testServer(t)

	for i := 0; i < 2; i++ {
		if w := postControl(t, s, `{"action":"next"}`); w.Code != http.StatusOK {
			t.Fatalf("control status = %d: %s", w.Code, w.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var st struct {
		Frames  int  `json:"frames"`
		Index   int  `json:"index"`
		Playing bool `json:"playing"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decoding status: %v", err)
	}
	if st.Frames != 4 {
		t.Errorf("frames = %d, want 4", st.Frames)
	}
	if st.Index != 1 {
		t.Errorf("index = %d, want 1 after two steps from -1", st.Index)
	}
	if st.Playing {
		t.Error("stepping must pause playback")
	}
}

func TestServer_ControlRejectsUnknownAction(t *testing.T) {
	s := testServer(t)

	if w := postControl(t, s, `{"action":"rewind"}`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if w := postControl(t, s, `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing action", w.Code)
	}
}

func TestServer_HeightPresetRebuildsCanvas(t *testing.T) {
	s := testServer(t)

	if w := postControl(t, s, `{"action":"preset","value":5}`); w.Code != http.StatusOK {
		t.Fatalf("control status = %d: %s", w.Code, w.Body.String())
	}
	if got := s.heightSetting(); got != 900 {
		t.Errorf("height = %d, want preset 900", got)
	}

	if w := postControl(t, s, `{"action":"preset","value":9}`); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown preset", w.Code)
	}

	// Shrink clamps at the layout floor, never below.
	for i := 0; i < 10; i++ {
		postControl(t, s, `{"action":"shrink"}`)
	}
	if got := s.heightSetting(); got < 600 {
		t.Errorf("height = %d, below the layout floor", got)
	}
}

// TestServer_ConcurrentViewControls hammers the view-changing actions
// from parallel goroutines; run with -race to verify the canvas
// settings are only touched under the lock.
func TestServer_ConcurrentViewControls(t *testing.T) {
	s := testServer(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := `{"action":"fill"}`
			if i%2 == 0 {
				body = `{"action":"grow"}`
			}
			postControl(t, s, body)
		}(i)
	}
	wg.Wait()

	if got := s.heightSetting(); got < 600 || got > 1200 {
		t.Errorf("height = %d, outside the layout clamps", got)
	}
}

func TestServer_FillToggleSwitchesChrome(t *testing.T) {
	s := testServer(t)

	if !s.fillSetting() {
		t.Fatal("fill should start enabled")
	}
	postControl(t, s, `{"action":"fill"}`)
	if s.fillSetting() {
		t.Error("fill not toggled off")
	}
}

func TestServer_IndexPageToolbar(t *testing.T) {
	s := testServer(t)
	if !strings.Contains(s.indexPage(), "play/pause") {
		t.Error("toolbar missing from page")
	}

	s.cfg.HideToolbar = true
	if strings.Contains(s.indexPage(), "play/pause") {
		t.Error("toolbar shown despite REPLAY_HIDE_TOOLBAR")
	}
}

func TestHub_LatestWinsAndCountsDrops(t *testing.T) {
	h := newHub()

	h.publish([]byte("a"))
	h.publish([]byte("b"))
	if h.dropCount() != 1 {
		t.Errorf("drops = %d, want 1", h.dropCount())
	}

	frame, seq := h.latest()
	if !bytes.Equal(frame, []byte("b")) {
		t.Errorf("latest = %q, want b", frame)
	}

	done := make(chan []byte, 1)
	go func() {
		f, _, ok := h.next(seq)
		if !ok {
			done <- nil
			return
		}
		done <- f
	}()
	h.publish([]byte("c"))
	if got := <-done; !bytes.Equal(got, []byte("c")) {
		t.Errorf("next = %q, want c", got)
	}

	h.close()
	if _, _, ok := h.next(0); ok {
		t.Error("next must fail after close")
	}
}
