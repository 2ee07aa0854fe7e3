package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Persistence policies for how long a line's image and captions stay on screen.
const (
	// PersistLiteral keeps each visual for d_i + (n-1)*gap.
	PersistLiteral = "literal"
	// PersistGap keeps each visual for d_i + gap (d_i for the last line).
	PersistGap = "gap"
)

// English caption width modes.
const (
	// WidthEstimate sizes the English caption from 4x the Chinese character count.
	WidthEstimate = "estimate"
	// WidthMeasure sizes the English caption from the measured advance of the text.
	WidthMeasure = "measure"
)

// Layout is the immutable set of visual and timing constants of a composition.
// It is passed by value; nothing mutates it after LoadLayout returns.
type Layout struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`

	Gap            float64 `yaml:"gap"`             // silence between lines, seconds
	EffectDuration float64 `yaml:"effect_duration"` // transition length, seconds
	VoiceGain      float64 `yaml:"voice_gain"`
	Persistence    string  `yaml:"persistence"`

	BackgroundColor string  `yaml:"background_color"`
	BandColor       string  `yaml:"band_color"`
	GoldenRatio     float64 `yaml:"golden_ratio"`

	ImageBoxWidth  float64 `yaml:"image_box_width"`  // fraction of canvas width
	ImageBoxHeight float64 `yaml:"image_box_height"` // fraction of band height

	CNFontSize          float64 `yaml:"cn_font_size"`
	ENFontSize          float64 `yaml:"en_font_size"`
	CharWidthFactor     float64 `yaml:"char_width_factor"`
	ENLengthFactor      int     `yaml:"en_length_factor"`
	LineHeight          float64 `yaml:"line_height"`
	CaptionBottomOffset int     `yaml:"caption_bottom_offset"`
	CaptionPadding      int     `yaml:"caption_padding"`
	CaptionBackground   string  `yaml:"caption_background"`
	CaptionColor        string  `yaml:"caption_color"`
	EnglishWidth        string  `yaml:"english_width"`

	TitleFontSize float64 `yaml:"title_font_size"`
	TitlePadding  int     `yaml:"title_padding"`
	TitleColor    string  `yaml:"title_color"`

	MarkSize  int    `yaml:"mark_size"`
	MarkColor string `yaml:"mark_color"`

	FooterFontSize float64 `yaml:"footer_font_size"`
	FooterPadding  int     `yaml:"footer_padding"`
	FooterColor    string  `yaml:"footer_color"`

	QRSize    int `yaml:"qr_size"`
	QRPadding int `yaml:"qr_padding"`
}

// DefaultLayout returns the 1080x1920 vertical layout.
func DefaultLayout() Layout {
	return Layout{
		Width:  1080,
		Height: 1920,
		FPS:    24,

		Gap:            0.3,
		EffectDuration: 0.3,
		VoiceGain:      0.9,
		Persistence:    PersistLiteral,

		BackgroundColor: "#1F2833",
		BandColor:       "#FFFFFF",
		GoldenRatio:     0.618,

		ImageBoxWidth:  0.6,
		ImageBoxHeight: 0.5,

		CNFontSize:          56,
		ENFontSize:          36,
		CharWidthFactor:     0.8,
		ENLengthFactor:      4,
		LineHeight:          1.4,
		CaptionBottomOffset: 40,
		CaptionPadding:      24,
		CaptionBackground:   "#FFFFFF",
		CaptionColor:        "#111111",
		EnglishWidth:        WidthEstimate,

		TitleFontSize: 72,
		TitlePadding:  60,
		TitleColor:    "#FFFFFF",

		MarkSize:  24,
		MarkColor: "#E4572E",

		FooterFontSize: 32,
		FooterPadding:  80,
		FooterColor:    "#C5C6C7",

		QRSize:    180,
		QRPadding: 60,
	}
}

// LoadLayout reads YAML overrides on top of DefaultLayout. An empty path
// returns the defaults.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()
	if strings.TrimSpace(path) == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, fmt.Errorf("layout %s: %w", path, err)
	}
	return layout, nil
}

// Validate reports the first inconsistent value.
func (l Layout) Validate() error {
	switch {
	case l.Width <= 0 || l.Height <= 0:
		return fmt.Errorf("canvas must be positive, got %dx%d", l.Width, l.Height)
	case l.Width%2 != 0 || l.Height%2 != 0:
		return fmt.Errorf("canvas must have even dimensions for yuv420p, got %dx%d", l.Width, l.Height)
	case l.FPS <= 0:
		return fmt.Errorf("fps must be positive, got %d", l.FPS)
	case l.Gap < 0:
		return fmt.Errorf("gap must be >= 0, got %v", l.Gap)
	case l.EffectDuration <= 0:
		return fmt.Errorf("effect_duration must be positive, got %v", l.EffectDuration)
	case l.GoldenRatio <= 0 || l.GoldenRatio >= 1:
		return fmt.Errorf("golden_ratio must be in (0,1), got %v", l.GoldenRatio)
	case l.ImageBoxWidth <= 0 || l.ImageBoxWidth > 1 || l.ImageBoxHeight <= 0 || l.ImageBoxHeight > 1:
		return fmt.Errorf("image box fractions must be in (0,1]")
	case l.CNFontSize <= 0 || l.ENFontSize <= 0 || l.TitleFontSize <= 0 || l.FooterFontSize <= 0:
		return fmt.Errorf("font sizes must be positive")
	case l.Persistence != PersistLiteral && l.Persistence != PersistGap:
		return fmt.Errorf("persistence must be %q or %q, got %q", PersistLiteral, PersistGap, l.Persistence)
	case l.EnglishWidth != WidthEstimate && l.EnglishWidth != WidthMeasure:
		return fmt.Errorf("english_width must be %q or %q, got %q", WidthEstimate, WidthMeasure, l.EnglishWidth)
	}
	for name, value := range map[string]string{
		"background_color":   l.BackgroundColor,
		"band_color":         l.BandColor,
		"caption_background": l.CaptionBackground,
		"caption_color":      l.CaptionColor,
		"title_color":        l.TitleColor,
		"mark_color":         l.MarkColor,
		"footer_color":       l.FooterColor,
	} {
		if _, err := ParseColor(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// BandHeight is the golden-ratio height of the highlight band.
func (l Layout) BandHeight() int {
	return int(float64(l.Height) * (1 - l.GoldenRatio))
}

// BandY is the top edge of the vertically centered band.
func (l Layout) BandY() int {
	return (l.Height - l.BandHeight()) / 2
}

// BandBottom is the first row below the band.
func (l Layout) BandBottom() int {
	return l.BandY() + l.BandHeight()
}

// LineBox is the pixel height of a caption line at the given font size.
func (l Layout) LineBox(size float64) int {
	return int(size * l.LineHeight)
}

// ImageBox is the maximum size an illustration is resized into.
func (l Layout) ImageBox() (int, int) {
	return int(float64(l.Width) * l.ImageBoxWidth), int(float64(l.BandHeight()) * l.ImageBoxHeight)
}

// Scaled returns a copy with every pixel quantity multiplied by factor. Used
// for half-resolution previews.
func (l Layout) Scaled(factor float64) Layout {
	even := func(v int) int {
		s := int(float64(v) * factor)
		if s%2 != 0 {
			s++
		}
		return s
	}
	px := func(v int) int { return int(float64(v) * factor) }

	s := l
	s.Width = even(l.Width)
	s.Height = even(l.Height)
	s.CNFontSize = l.CNFontSize * factor
	s.ENFontSize = l.ENFontSize * factor
	s.TitleFontSize = l.TitleFontSize * factor
	s.FooterFontSize = l.FooterFontSize * factor
	s.CaptionBottomOffset = px(l.CaptionBottomOffset)
	s.CaptionPadding = px(l.CaptionPadding)
	s.TitlePadding = px(l.TitlePadding)
	s.MarkSize = px(l.MarkSize)
	s.FooterPadding = px(l.FooterPadding)
	s.QRSize = px(l.QRSize)
	s.QRPadding = px(l.QRPadding)
	return s
}

// ParseColor accepts "#RRGGBB" or "#RRGGBBAA".
func ParseColor(value string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", value)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", value, err)
	}
	return color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

// FFmpegColor converts "#RRGGBB[AA]" into ffmpeg's "0xRRGGBB[@alpha]" syntax.
func FFmpegColor(value string) string {
	c, err := ParseColor(value)
	if err != nil {
		return "black"
	}
	if c.A == 0xff {
		return fmt.Sprintf("0x%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("0x%02X%02X%02X@%.3f", c.R, c.G, c.B, float64(c.A)/255)
}
