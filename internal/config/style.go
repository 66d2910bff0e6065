package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Style describes how captions are drawn onto a frame.
type Style struct {
	FontSize     float64 `yaml:"font_size"`     // Text height in points
	MaxWidthFrac float64 `yaml:"max_width_frac"` // Caption width as a fraction of frame width
	PanelOpacity float64 `yaml:"panel_opacity"` // Background panel alpha (0..1)
	PanelRadius  int     `yaml:"panel_radius"`  // Corner radius in pixels
	PanelPadding int     `yaml:"panel_padding"` // Padding around the text block
	BottomMargin int     `yaml:"bottom_margin"` // Distance from panel bottom to frame bottom
	ShadowOffset int     `yaml:"shadow_offset"` // Drop shadow offset in pixels
	LineSpacing  float64 `yaml:"line_spacing"`  // Line height multiplier
	OutroLink    string  `yaml:"outro_link"`    // Optional URL drawn as a QR code on outro scenes
	QRSize       int     `yaml:"qr_size"`       // QR code edge in pixels
	QRMargin     int     `yaml:"qr_margin"`     // QR offset from the top-right corner
}

// DefaultStyle returns the styling used when no style file is supplied.
func DefaultStyle() Style {
	return Style{
		FontSize:     36,
		MaxWidthFrac: 0.86,
		PanelOpacity: 0.55,
		PanelRadius:  18,
		PanelPadding: 20,
		BottomMargin: 140,
		ShadowOffset: 2,
		LineSpacing:  1.25,
		QRSize:       120,
		QRMargin:     32,
	}
}

// ReadStyle reads a style overlay from a YAML file. Zero-valued fields keep
// their defaults.
func ReadStyle(path string) (Style, error) {
	style := DefaultStyle()

	data, err := os.ReadFile(path)
	if err != nil {
		return style, err
	}

	if err := yaml.Unmarshal(data, &style); err != nil {
		return style, err
	}
	style.fillDefaults()
	return style, nil
}

// WriteStyle writes a style to a YAML file.
func WriteStyle(style Style, path string) error {
	data, err := yaml.Marshal(style)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Style) fillDefaults() {
	def := DefaultStyle()
	if s.FontSize <= 0 {
		s.FontSize = def.FontSize
	}
	if s.MaxWidthFrac <= 0 || s.MaxWidthFrac > 1 {
		s.MaxWidthFrac = def.MaxWidthFrac
	}
	if s.PanelOpacity <= 0 || s.PanelOpacity > 1 {
		s.PanelOpacity = def.PanelOpacity
	}
	if s.PanelRadius < 0 {
		s.PanelRadius = def.PanelRadius
	}
	if s.PanelPadding <= 0 {
		s.PanelPadding = def.PanelPadding
	}
	if s.BottomMargin <= 0 {
		s.BottomMargin = def.BottomMargin
	}
	if s.LineSpacing <= 0 {
		s.LineSpacing = def.LineSpacing
	}
	if s.QRSize <= 0 {
		s.QRSize = def.QRSize
	}
	if s.QRMargin <= 0 {
		s.QRMargin = def.QRMargin
	}
}
