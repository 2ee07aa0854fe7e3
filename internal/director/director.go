package director

import (
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/ivlev/script2video/internal/config"
	"github.com/ivlev/script2video/internal/effects"
	"github.com/ivlev/script2video/internal/script"
	"github.com/ivlev/script2video/internal/source"
	"github.com/ivlev/script2video/internal/timeline"
)

// Measurer returns the pixel advance of text at a font size.
type Measurer interface {
	Measure(text string, size float64) (int, error)
}

// Director turns a timeline into an ordered layer plan.
type Director struct {
	Layout   config.Layout
	Picker   effects.Picker
	Measurer Measurer // required for config.WidthMeasure
	Seed     int64
}

// NewDirector creates a Director using a seeded random effect picker.
func NewDirector(layout config.Layout, seed int64) *Director {
	return &Director{
		Layout: layout,
		Picker: effects.NewRandomPicker(seed),
		Seed:   seed,
	}
}

// Build lays out every layer. illustrations must be index-aligned with the
// script items. Text and QR assets are named under assetDir; rendering them
// is left to the caller.
func (d *Director) Build(meta *script.MovieMeta, tl *timeline.Timeline, illustrations []source.Illustration, assetDir string) (*Plan, error) {
	n := len(meta.ScriptItems)
	if tl.Len() != n || len(illustrations) != n {
		return nil, fmt.Errorf("director: %d items, %d segments, %d illustrations", n, tl.Len(), len(illustrations))
	}
	if d.Layout.EnglishWidth == config.WidthMeasure && d.Measurer == nil {
		return nil, fmt.Errorf("director: english_width %q needs a font measurer", config.WidthMeasure)
	}
	picker := d.Picker
	if picker == nil {
		picker = effects.NewRandomPicker(d.Seed)
	}

	l := d.Layout
	plan := &Plan{
		Version: PlanVersion,
		Title:   meta.Title,
		Width:   l.Width,
		Height:  l.Height,
		FPS:     l.FPS,
		Gap:     tl.Gap,
		Total:   tl.Total,
		Seed:    d.Seed,
		Audio:   tl.Segments,
	}
	whole := func(kind LayerKind) Layer {
		return Layer{Kind: kind, Index: -1, Start: 0, Duration: tl.Total, End: tl.Total, Effect: effects.None}
	}

	bg := whole(KindBackground)
	bg.W, bg.H, bg.Color = l.Width, l.Height, l.BackgroundColor
	plan.Layers = append(plan.Layers, bg)

	band := whole(KindHighlight)
	band.Y, band.W, band.H, band.Color = l.BandY(), l.Width, l.BandHeight(), l.BandColor
	plan.Layers = append(plan.Layers, band)

	title := whole(KindTitle)
	title.Text, title.FontSize, title.Color = meta.Title, l.TitleFontSize, l.TitleColor
	title.X, title.Y = l.TitlePadding, l.TitlePadding
	title.W = min(EstimateWidth(meta.Title, l.TitleFontSize, l.CharWidthFactor), l.Width-2*l.TitlePadding)
	title.H = l.LineBox(l.TitleFontSize)
	title.Source = filepath.Join(assetDir, AssetName(KindTitle, -1))
	plan.Layers = append(plan.Layers, title)

	for _, pos := range d.markPositions() {
		mark := whole(KindDecoration)
		mark.X, mark.Y, mark.W, mark.H, mark.Color = pos[0], pos[1], l.MarkSize, l.MarkSize, l.MarkColor
		plan.Layers = append(plan.Layers, mark)
	}

	if meta.Footer != "" {
		footer := whole(KindFooter)
		footer.Text, footer.FontSize, footer.Color = meta.Footer, l.FooterFontSize, l.FooterColor
		footer.W = min(EstimateWidth(meta.Footer, l.FooterFontSize, l.CharWidthFactor), l.Width)
		footer.H = l.LineBox(l.FooterFontSize)
		footer.X = (l.Width - footer.W) / 2
		footer.Y = l.Height - l.FooterPadding - footer.H
		footer.Source = filepath.Join(assetDir, AssetName(KindFooter, -1))
		plan.Layers = append(plan.Layers, footer)
	}

	if meta.Link != "" {
		qr := whole(KindQRCode)
		qr.Text = meta.Link
		qr.W, qr.H = l.QRSize, l.QRSize
		qr.X = l.Width - l.QRPadding - l.QRSize
		qr.Y = l.Height - l.QRPadding - l.QRSize
		qr.Source = filepath.Join(assetDir, AssetName(KindQRCode, -1))
		plan.Layers = append(plan.Layers, qr)
	}

	boxW, boxH := l.ImageBox()
	sizes := make([][2]int, n)
	tallest := 0
	for i, ill := range illustrations {
		w, h := source.Fit(float64(ill.Width), float64(ill.Height), boxW, boxH)
		sizes[i] = [2]int{w, h}
		tallest = max(tallest, h)
	}
	imageTop := l.BandY() + l.BandHeight()/2 - tallest/2

	for i, ill := range illustrations {
		win := tl.Visuals[i]
		w, h := sizes[i][0], sizes[i][1]
		plan.Layers = append(plan.Layers, Layer{
			Kind:     KindImage,
			Index:    i,
			Start:    win.Start,
			Duration: win.Duration,
			End:      win.Start + win.Duration,
			X:        (l.Width - w) / 2,
			Y:        imageTop,
			W:        w,
			H:        h,
			Effect:   picker.Pick(i),
			Source:   ill.Path,
		})
	}

	cnH := l.LineBox(l.CNFontSize)
	enH := l.LineBox(l.ENFontSize)
	cnY := l.BandBottom() - l.CaptionBottomOffset - enH - cnH
	for i, item := range meta.ScriptItems {
		win := tl.Visuals[i]
		enW, err := d.englishWidth(item)
		if err != nil {
			return nil, fmt.Errorf("director: item %d: %w", i, err)
		}
		enPad := 0
		if l.EnglishWidth == config.WidthMeasure {
			enPad = l.CaptionPadding
		}
		captions := []struct {
			kind LayerKind
			text string
			size float64
			w, y int
			h    int
			pad  int
		}{
			{KindCaptionCN, item.CN, l.CNFontSize, ChineseWidth(item.CN, l), cnY, cnH, 0},
			{KindCaptionEN, item.EN, l.ENFontSize, enW, cnY + cnH, enH, enPad},
		}
		for _, c := range captions {
			plan.Layers = append(plan.Layers, Layer{
				Kind:       c.kind,
				Index:      i,
				Start:      win.Start,
				Duration:   win.Duration,
				End:        win.Start + win.Duration,
				X:          (l.Width - c.w) / 2,
				Y:          c.y,
				W:          c.w,
				H:          c.h,
				Effect:     effects.CrossFadeIn,
				Source:     filepath.Join(assetDir, AssetName(c.kind, i)),
				Text:       c.text,
				FontSize:   c.size,
				Padding:    c.pad,
				Color:      l.CaptionColor,
				Background: l.CaptionBackground,
			})
		}
	}
	return plan, nil
}

// markPositions pins the decorations to the band's top-left and bottom-right
// corners.
func (d *Director) markPositions() [][2]int {
	l := d.Layout
	return [][2]int{
		{0, l.BandY()},
		{l.Width - l.MarkSize, l.BandBottom() - l.MarkSize},
	}
}

func (d *Director) englishWidth(item script.ScriptItem) (int, error) {
	l := d.Layout
	if l.EnglishWidth == config.WidthMeasure {
		w, err := d.Measurer.Measure(item.EN, l.ENFontSize)
		if err != nil {
			return 0, fmt.Errorf("measure english caption: %w", err)
		}
		return min(w+2*l.CaptionPadding, l.Width), nil
	}
	return EnglishEstimate(item.CN, l), nil
}

// EstimateWidth approximates the advance of text as size * runes * factor.
// It never returns less than one pixel.
func EstimateWidth(text string, size, factor float64) int {
	return max(int(size*float64(utf8.RuneCountInString(text))*factor), 1)
}

// ChineseWidth is the caption box width of a Chinese line.
func ChineseWidth(cn string, l config.Layout) int {
	return EstimateWidth(cn, l.CNFontSize, l.CharWidthFactor)
}

// EnglishEstimate sizes the English caption from the Chinese character count
// inflated by ENLengthFactor, clamped to the canvas width.
func EnglishEstimate(cn string, l config.Layout) int {
	runes := utf8.RuneCountInString(cn) * l.ENLengthFactor
	w := int(l.ENFontSize * float64(runes) * l.CharWidthFactor)
	return min(max(w, 1), l.Width)
}
