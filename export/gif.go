package export

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
)

// gifEncoder collects paletted frames in memory and writes the file on
// Close. GIF delays are in centiseconds, so the effective rate is
// floor(100/fps) and very high fps values saturate at 100.
type gifEncoder struct {
	path  string
	delay int
	anim  gif.GIF
}

func newGIFEncoder(path string, fps int) (*gifEncoder, error) {
	delay := 100 / fps
	if delay < 1 {
		delay = 1
	}
	return &gifEncoder{path: path, delay: delay}, nil
}

func (e *gifEncoder) Append(img *image.RGBA) error {
	p := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(p, img.Bounds(), img, image.Point{})
	e.anim.Image = append(e.anim.Image, p)
	e.anim.Delay = append(e.anim.Delay, e.delay)
	return nil
}

func (e *gifEncoder) Close() error {
	if len(e.anim.Image) == 0 {
		return fmt.Errorf("gif: no frames appended")
	}
	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("gif: creating %s: %w", e.path, err)
	}
	if err := gif.EncodeAll(f, &e.anim); err != nil {
		f.Close()
		return fmt.Errorf("gif: encoding: %w", err)
	}
	return f.Close()
}
