package source

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// PDFSource serves the pages of a PDF document as source images, in page
// order. Useful for turning a presentation export straight into a slideshow
// without an intermediate image dump.
type PDFSource struct {
	path  string
	doc   *fitz.Document
	dpi   float64
	pages int
}

// NewPDFSource opens a PDF and fixes its page count. dpi controls the
// rasterization density; 150 is plenty for typical output resolutions.
func NewPDFSource(path string, dpi float64) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if dpi <= 0 {
		dpi = 150
	}
	return &PDFSource{path: path, doc: doc, dpi: dpi, pages: doc.NumPage()}, nil
}

func (s *PDFSource) Count() int { return s.pages }

func (s *PDFSource) Name(i int) string { return fmt.Sprintf("page_%03d", i+1) }

// Image rasterizes page i. fitz documents are not safe for concurrent use,
// so each call opens its own handle; the shared doc only serves metadata.
func (s *PDFSource) Image(i int) (*Image, error) {
	doc, err := fitz.New(s.path)
	if err != nil {
		return nil, &DecodeError{Path: s.path, Err: err}
	}
	defer doc.Close()

	img, err := doc.ImageDPI(i, s.dpi)
	if err != nil {
		return nil, &DecodeError{Path: s.path, Err: fmt.Errorf("страница %d: %w", i+1, err)}
	}

	b := img.Bounds()
	return &Image{Path: s.Name(i), Img: img, Width: b.Dx(), Height: b.Dy()}, nil
}

func (s *PDFSource) Close() error { return s.doc.Close() }
