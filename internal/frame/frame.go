package frame

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/slidecast/internal/source"
)

// Canvas is the fixed output frame geometry shared by every picture of a
// run. Background is always black; padding around a letterboxed picture is
// filled with it.
type Canvas struct {
	Width  int
	Height int
}

func (c Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width, c.Height)
}

// Normalized is one picture fitted onto the canvas. When Degraded is set
// the original image was passed through unscaled (resize failed) and Note
// says why; the encoder's letterbox filter still brings it to canvas size.
type Normalized struct {
	Image       image.Image
	SourcePath  string
	Width       int
	Height      int
	ScratchPath string
	Degraded    bool
	Note        string
}

// Normalizer fits arbitrary-size pictures onto a fixed canvas: scale by
// min(W/w, H/h) preserving aspect ratio, then center on a black background.
// Safe for concurrent use.
type Normalizer struct {
	canvas  Canvas
	scratch string
	pool    *Pool
}

// NewNormalizer validates the canvas and binds a scratch directory for
// persisted frames.
func NewNormalizer(canvas Canvas, scratchDir string) (*Normalizer, error) {
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return nil, fmt.Errorf("canvas %dx%d: dimensions must be positive", canvas.Width, canvas.Height)
	}
	return &Normalizer{
		canvas:  canvas,
		scratch: scratchDir,
		pool:    NewPool(canvas.Bounds()),
	}, nil
}

func (n *Normalizer) Canvas() Canvas { return n.canvas }

// Normalize produces a canvas-sized frame from src. It never fails: if the
// resize step cannot run, the original image is passed through unmodified
// and the frame is marked degraded. Decode failures belong to the source
// collaborator and never reach this point.
func (n *Normalizer) Normalize(src *source.Image) *Normalized {
	if src.Width <= 0 || src.Height <= 0 {
		return &Normalized{
			Image:      src.Img,
			SourcePath: src.Path,
			Width:      src.Width,
			Height:     src.Height,
			Degraded:   true,
			Note:       fmt.Sprintf("invalid dimensions %dx%d, passing original through", src.Width, src.Height),
		}
	}

	scaleW := float64(n.canvas.Width) / float64(src.Width)
	scaleH := float64(n.canvas.Height) / float64(src.Height)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	newW := int(float64(src.Width) * scale)
	newH := int(float64(src.Height) * scale)
	if newW <= 0 || newH <= 0 {
		return &Normalized{
			Image:      src.Img,
			SourcePath: src.Path,
			Width:      src.Width,
			Height:     src.Height,
			Degraded:   true,
			Note:       fmt.Sprintf("scaled size %dx%d is degenerate, passing original through", newW, newH),
		}
	}

	dst := n.pool.Get()
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	// Integer (floor) division keeps the offset stable for odd paddings.
	offsetX := (n.canvas.Width - newW) / 2
	offsetY := (n.canvas.Height - newH) / 2
	target := image.Rect(offsetX, offsetY, offsetX+newW, offsetY+newH)

	xdraw.CatmullRom.Scale(dst, target, src.Img, src.Img.Bounds(), draw.Over, nil)

	return &Normalized{
		Image:      dst,
		SourcePath: src.Path,
		Width:      n.canvas.Width,
		Height:     n.canvas.Height,
	}
}

// Persist writes the frame into the scratch namespace as a PNG and releases
// its pixel buffer back to the pool. After Persist the frame is addressed
// by ScratchPath only.
func (n *Normalizer) Persist(index int, f *Normalized) error {
	path := filepath.Join(n.scratch, fmt.Sprintf("frame_%05d.png", index))

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("scratch frame %d: %w", index, err)
	}
	if err := png.Encode(out, f.Image); err != nil {
		out.Close()
		return fmt.Errorf("scratch frame %d: %w", index, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("scratch frame %d: %w", index, err)
	}

	f.ScratchPath = path
	n.Release(f)
	return nil
}

// Release returns the frame's buffer to the pool. Only canvas-sized buffers
// are recycled; degraded pass-through images are left to the GC.
func (n *Normalizer) Release(f *Normalized) {
	if rgba, ok := f.Image.(*image.RGBA); ok && !f.Degraded {
		n.pool.Put(rgba)
	}
	f.Image = nil
}
