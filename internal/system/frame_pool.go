package system

import (
	"image"
	"sync"
)

// FramePool переиспользует кадровые буферы *image.RGBA одной геометрии,
// чтобы тикающий рендер не создавал мусор на каждый кадр.
type FramePool struct {
	rect image.Rectangle
	pool sync.Pool
}

func NewFramePool(width, height int) *FramePool {
	rect := image.Rect(0, 0, width, height)
	return &FramePool{
		rect: rect,
		pool: sync.Pool{
			New: func() interface{} {
				return image.NewRGBA(rect)
			},
		},
	}
}

// Get возвращает буфер из пула или создает новый.
func (p *FramePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

// Put возвращает буфер в пул. Буферы чужой геометрии отбрасываются.
func (p *FramePool) Put(frame *image.RGBA) {
	if frame == nil || frame.Rect != p.rect {
		return
	}
	p.pool.Put(frame)
}
