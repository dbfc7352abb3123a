package frame

import (
	"image"
	"sync"
)

// Pool recycles canvas-sized RGBA buffers across the parallel normalize
// phase to keep GC pressure down. All buffers share one rectangle; callers
// must not Put foreign sizes.
type Pool struct {
	rect image.Rectangle
	pool sync.Pool
}

func NewPool(rect image.Rectangle) *Pool {
	p := &Pool{rect: rect}
	p.pool.New = func() any {
		return image.NewRGBA(rect)
	}
	return p
}

func (p *Pool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

func (p *Pool) Put(img *image.RGBA) {
	if img == nil || img.Rect != p.rect {
		return
	}
	p.pool.Put(img)
}
