package compositor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/sseedwings2026/0114-shortform/internal/config"
	"github.com/sseedwings2026/0114-shortform/internal/timeline"
)

// Compositor рисует один кадр: активное изображение сцены, растянутое на весь
// кадр, плюс прожжённые субтитры на полупрозрачной плашке. Все входные данные
// неизменяемы после New, поэтому Render детерминирован для одной и той же
// пары (сцена, субтитр).
type Compositor struct {
	width  int
	height int
	style  config.Style
	face   font.Face
	qr     image.Image // Предрассчитанный QR для аутро (может быть nil)
}

func New(width, height int, style config.Style) (*Compositor, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    style.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}

	c := &Compositor{
		width:  width,
		height: height,
		style:  style,
		face:   face,
	}

	if style.OutroLink != "" {
		code, err := qrcode.New(style.OutroLink, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("outro qr: %w", err)
		}
		c.qr = code.Image(style.QRSize)
	}

	return c, nil
}

// Bounds returns the fixed frame geometry.
func (c *Compositor) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

// Render composites one frame into dst. dst must have the compositor's
// geometry. scene may be nil (black frame), active may be nil (no caption).
func (c *Compositor) Render(dst *image.RGBA, scene image.Image, active *timeline.TimedCaption) {
	// Фон — чёрный, на случай отсутствия сцены
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	if scene != nil {
		coverDraw(dst, scene)
	}

	if active != nil && active.Text != "" {
		c.drawCaption(dst, active.Text)
	}

	if c.qr != nil && active != nil && active.Section == timeline.SectionOutro {
		c.drawQR(dst)
	}
}

// drawCaption word-wraps the text to at most two lines, draws a rounded
// semi-opaque panel sized to the text block and then the text itself with a
// drop shadow.
func (c *Compositor) drawCaption(dst *image.RGBA, text string) {
	maxWidth := fixed.I(int(c.style.MaxWidthFrac * float64(c.width)))
	lines := c.wrapText(text, maxWidth)
	if len(lines) == 0 {
		return
	}

	metrics := c.face.Metrics()
	lineHeight := int(float64(metrics.Height.Ceil()) * c.style.LineSpacing)
	ascent := metrics.Ascent.Ceil()

	textWidth := 0
	for _, line := range lines {
		if w := c.measure(line).Ceil(); w > textWidth {
			textWidth = w
		}
	}

	pad := c.style.PanelPadding
	panelW := textWidth + 2*pad
	panelH := len(lines)*lineHeight + 2*pad
	panelX := (c.width - panelW) / 2
	panelY := c.height - c.style.BottomMargin - panelH

	panelColor := color.RGBA{0, 0, 0, uint8(c.style.PanelOpacity * 255)}
	drawRoundedRect(dst, image.Rect(panelX, panelY, panelX+panelW, panelY+panelH), c.style.PanelRadius, panelColor)

	shadow := c.style.ShadowOffset
	for i, line := range lines {
		lineW := c.measure(line).Ceil()
		x := (c.width - lineW) / 2
		y := panelY + pad + ascent + i*lineHeight

		if shadow > 0 {
			c.drawText(dst, line, x+shadow, y+shadow, color.RGBA{0, 0, 0, 200})
		}
		c.drawText(dst, line, x, y, color.RGBA{255, 255, 255, 255})
	}
}

func (c *Compositor) drawText(dst *image.RGBA, text string, x, y int, col color.RGBA) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func (c *Compositor) measure(text string) fixed.Int26_6 {
	d := font.Drawer{Face: c.face}
	return d.MeasureString(text)
}

// drawQR places the precomputed QR code near the top-right corner.
func (c *Compositor) drawQR(dst *image.RGBA) {
	b := c.qr.Bounds()
	m := c.style.QRMargin
	target := image.Rect(c.width-m-b.Dx(), m, c.width-m, m+b.Dy())
	draw.Draw(dst, target, c.qr, b.Min, draw.Over)
}
