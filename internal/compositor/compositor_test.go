package compositor

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/sseedwings2026/0114-shortform/internal/config"
	"github.com/sseedwings2026/0114-shortform/internal/timeline"
)

func testCompositor(t *testing.T, style config.Style) *Compositor {
	t.Helper()
	comp, err := New(360, 640, style)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return comp
}

func solidScene(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderDeterministic(t *testing.T) {
	comp := testCompositor(t, config.DefaultStyle())
	scene := solidScene(90, 160, color.RGBA{200, 60, 60, 255})
	caption := &timeline.TimedCaption{Text: "Winter treats are here.", Section: timeline.SectionHook}

	a := image.NewRGBA(comp.Bounds())
	b := image.NewRGBA(comp.Bounds())
	comp.Render(a, scene, caption)
	comp.Render(b, scene, caption)

	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("Render is not reproducible for identical inputs")
	}
}

func TestRenderCoversFrame(t *testing.T) {
	comp := testCompositor(t, config.DefaultStyle())
	// Wide scene into a tall frame: cover-crop must leave no black bars
	scene := solidScene(160, 90, color.RGBA{0, 200, 0, 255})

	frame := image.NewRGBA(comp.Bounds())
	comp.Render(frame, scene, nil)

	for _, y := range []int{0, 320, 639} {
		r, g, _, _ := frame.At(180, y).RGBA()
		if g == 0 && r == 0 {
			t.Errorf("Black bar at y=%d: cover scaling failed", y)
		}
	}
}

func TestRenderNilSceneProducesFrame(t *testing.T) {
	comp := testCompositor(t, config.DefaultStyle())
	frame := image.NewRGBA(comp.Bounds())
	// Degenerate input still yields a renderable (black) frame
	comp.Render(frame, nil, nil)

	if _, _, _, a := frame.At(10, 10).RGBA(); a == 0 {
		t.Error("Frame must be fully opaque even without a scene")
	}
}

func TestRenderDrawsCaptionPanel(t *testing.T) {
	comp := testCompositor(t, config.DefaultStyle())
	scene := solidScene(90, 160, color.RGBA{255, 255, 255, 255})

	plain := image.NewRGBA(comp.Bounds())
	captioned := image.NewRGBA(comp.Bounds())
	comp.Render(plain, scene, nil)
	comp.Render(captioned, scene, &timeline.TimedCaption{Text: "Try them today!", Section: timeline.SectionBody})

	if bytes.Equal(plain.Pix, captioned.Pix) {
		t.Error("Caption left no trace on the frame")
	}

	// The panel darkens the bottom area of a white scene
	y := 640 - comp.style.BottomMargin - comp.style.PanelPadding - 5
	r, _, _, _ := captioned.At(180, y).RGBA()
	pr, _, _, _ := plain.At(180, y).RGBA()
	if r >= pr {
		t.Errorf("Expected darkened panel pixel at y=%d (%d vs %d)", y, r, pr)
	}
}

func TestRenderOutroQR(t *testing.T) {
	style := config.DefaultStyle()
	style.OutroLink = "https://example.com/follow"
	comp := testCompositor(t, style)
	scene := solidScene(90, 160, color.RGBA{10, 10, 10, 255})

	body := image.NewRGBA(comp.Bounds())
	outro := image.NewRGBA(comp.Bounds())
	comp.Render(body, scene, &timeline.TimedCaption{Text: "x", Section: timeline.SectionBody})
	comp.Render(outro, scene, &timeline.TimedCaption{Text: "x", Section: timeline.SectionOutro})

	// QR occupies the top-right corner only on outro frames
	region := image.Rect(360-style.QRMargin-style.QRSize, style.QRMargin,
		360-style.QRMargin, style.QRMargin+style.QRSize)
	diff := false
	for y := region.Min.Y; y < region.Max.Y && !diff; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			if body.RGBAAt(x, y) != outro.RGBAAt(x, y) {
				diff = true
				break
			}
		}
	}
	if !diff {
		t.Error("Outro frame shows no QR code")
	}
}

func TestWrapTextTwoLineLimit(t *testing.T) {
	comp := testCompositor(t, config.DefaultStyle())
	maxWidth := fixed.I(120)

	tests := []struct {
		text     string
		maxLines int
	}{
		{"short", 1},
		{"a few little words that need wrapping", 2},
		{"an extremely long caption with far too many words to ever fit into the panel limit", 2},
	}

	for _, tt := range tests {
		lines := comp.wrapText(tt.text, maxWidth)
		if len(lines) > tt.maxLines {
			t.Errorf("%q: expected at most %d lines, got %d: %v", tt.text, tt.maxLines, len(lines), lines)
		}
		for _, line := range lines {
			t.Logf("%q -> %q (%v)", tt.text, line, comp.measure(line))
		}
	}

	if lines := comp.wrapText("   ", maxWidth); lines != nil {
		t.Errorf("Blank caption must produce no lines, got %v", lines)
	}
}
