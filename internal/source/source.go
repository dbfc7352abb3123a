package source

import (
	"fmt"
	"image"
)

// Image is one decoded source picture. Immutable once read: the pipeline
// consumes it during normalization and never writes back.
type Image struct {
	Path   string
	Img    image.Image
	Width  int
	Height int
}

// DecodeError reports an unreadable or unsupported source file.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Source enumerates the pictures of one composition run in display order.
// Ordering is fixed at construction time and is part of the contract:
// callers rely on index i always resolving to the same picture.
type Source interface {
	Count() int
	// Name returns a stable human-readable identifier for position i,
	// used in logs and warnings.
	Name(i int) string
	// Image decodes the picture at position i. Returns *DecodeError when
	// the file cannot be read or decoded.
	Image(i int) (*Image, error)
	Close() error
}
