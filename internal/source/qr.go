package source

import (
	"github.com/skip2/go-qrcode"
)

// qrOutro appends a generated QR code as the final slide. The code is
// rendered once at construction so that Image stays a pure decode step.
type qrOutro struct {
	Source
	qr *Image
}

// WithQROutro wraps src so that a QR code pointing at url becomes the last
// picture of the sequence. size is the edge length in pixels.
func WithQROutro(src Source, url string, size int) (Source, error) {
	if size <= 0 {
		size = 512
	}
	code, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, &DecodeError{Path: "qr:" + url, Err: err}
	}
	img := code.Image(size)
	b := img.Bounds()
	return &qrOutro{
		Source: src,
		qr:     &Image{Path: "qr_outro", Img: img, Width: b.Dx(), Height: b.Dy()},
	}, nil
}

func (s *qrOutro) Count() int { return s.Source.Count() + 1 }

func (s *qrOutro) Name(i int) string {
	if i == s.Source.Count() {
		return "qr_outro"
	}
	return s.Source.Name(i)
}

func (s *qrOutro) Image(i int) (*Image, error) {
	if i == s.Source.Count() {
		return s.qr, nil
	}
	return s.Source.Image(i)
}
