package system

import (
	"image"
	"sync"
)

// ImagePool reuses *image.RGBA buffers of identical bounds, so layer
// extraction over a batch does not churn the GC with same-sized crops.
type ImagePool struct {
	mu    sync.RWMutex
	pools map[image.Rectangle]*sync.Pool
}

var layerPool = NewImagePool()

// NewImagePool returns an empty pool.
func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

// GetImage берёт буфер с границами rect из общего пула. Содержимое не
// очищается: вызывающий код перезаписывает каждый пиксель.
func GetImage(rect image.Rectangle) *image.RGBA { return layerPool.Get(rect) }

// PutImage возвращает буфер в общий пул.
func PutImage(img *image.RGBA) { layerPool.Put(img) }

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, ok := p.pools[rect]
	p.mu.RUnlock()

	// Пул для нового размера создаём под полной блокировкой
	if !ok {
		p.mu.Lock()
		if pool, ok = p.pools[rect]; !ok {
			pool = &sync.Pool{New: func() any { return image.NewRGBA(rect) }}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}
	return pool.Get().(*image.RGBA)
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, ok := p.pools[img.Rect]
	p.mu.RUnlock()
	// Буферы чужого размера просто отдаём сборщику мусора
	if ok {
		pool.Put(img)
	}
}
