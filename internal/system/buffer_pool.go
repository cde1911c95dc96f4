package system

import (
	"image"
	"sync"
)

// FramePool reuses *image.RGBA frame buffers across batches to keep GC
// pressure flat while streaming thousands of frames.
type FramePool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &FramePool{
	pools: make(map[string]*sync.Pool),
}

// GetFrame returns a frame buffer for rect, reusing a pooled one when a
// matching size is available.
func GetFrame(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutFrame returns a frame buffer to the pool.
func PutFrame(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *FramePool) Get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *FramePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
