package compositor

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// coverDraw scales src to fill dst completely, cropping the overflow around
// the center (cover, not letterbox: vertical frames must never show bars).
func coverDraw(dst *image.RGBA, src image.Image) {
	db := dst.Bounds()
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}

	scaleX := float64(db.Dx()) / float64(sb.Dx())
	scaleY := float64(db.Dy()) / float64(sb.Dy())
	scale := scaleX
	if scaleY > scale {
		scale = scaleY
	}

	// Центрируем источник: берем окно, которое после масштабирования
	// покрывает кадр ровно
	cropW := int(float64(db.Dx()) / scale)
	cropH := int(float64(db.Dy()) / scale)
	cropX := sb.Min.X + (sb.Dx()-cropW)/2
	cropY := sb.Min.Y + (sb.Dy()-cropH)/2
	cropRect := image.Rect(cropX, cropY, cropX+cropW, cropY+cropH)

	xdraw.ApproxBiLinear.Scale(dst, db, src, cropRect, xdraw.Src, nil)
}

// drawRoundedRect alpha-blends a rounded rectangle of the given color onto
// dst. The corner mask is computed per pixel against the corner radius.
func drawRoundedRect(dst *image.RGBA, rect image.Rectangle, radius int, col color.RGBA) {
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	if radius <= 0 {
		draw.Draw(dst, rect, image.NewUniform(col), image.Point{}, draw.Over)
		return
	}
	maxR := rect.Dx() / 2
	if rect.Dy()/2 < maxR {
		maxR = rect.Dy() / 2
	}
	if radius > maxR {
		radius = maxR
	}

	mask := image.NewAlpha(rect)
	r2 := radius * radius
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			// Расстояние до ближайшего углового центра
			cx, cy := x, y
			if x < rect.Min.X+radius {
				cx = rect.Min.X + radius
			} else if x >= rect.Max.X-radius {
				cx = rect.Max.X - radius - 1
			}
			if y < rect.Min.Y+radius {
				cy = rect.Min.Y + radius
			} else if y >= rect.Max.Y-radius {
				cy = rect.Max.Y - radius - 1
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r2 {
				mask.SetAlpha(x, y, color.Alpha{A: 255})
			}
		}
	}

	draw.DrawMask(dst, rect, image.NewUniform(col), image.Point{}, mask, rect.Min, draw.Over)
}
