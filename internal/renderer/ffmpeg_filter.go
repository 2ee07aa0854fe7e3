package renderer

import (
	"fmt"

	"github.com/ivlev/script2video/internal/config"
	"github.com/ivlev/script2video/internal/director"
	"github.com/ivlev/script2video/internal/effects"
)

// VideoLabel is the filter_complex pad carrying the composed picture.
const VideoLabel = "vout"

// Graph is the video half of a filter_complex. Input 0 is always the lavfi
// background; Stills are looped image inputs 1..len(Stills).
type Graph struct {
	Background string
	Stills     []string
	Filters    []string
	// Overlays counts overlay filters, one per asset layer.
	Overlays int
}

// NextInput is the ffmpeg input index following the graph's own inputs.
func (g Graph) NextInput() int { return 1 + len(g.Stills) }

// BuildGraph translates plan into ffmpeg filters. Layers are applied in plan
// order: solid layers as drawbox, asset layers as timed overlays.
func BuildGraph(plan *director.Plan, effectDuration float64) (Graph, error) {
	if len(plan.Layers) == 0 || plan.Layers[0].Kind != director.KindBackground {
		return Graph{}, fmt.Errorf("renderer: plan must start with a background layer")
	}
	bg := plan.Layers[0]
	g := Graph{
		Background: fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%.6f",
			config.FFmpegColor(bg.Color), plan.Width, plan.Height, plan.FPS, plan.Total),
	}

	current := "0:v"
	for i, l := range plan.Layers[1:] {
		next := fmt.Sprintf("v%d", i)
		if !l.HasAsset() {
			g.Filters = append(g.Filters, fmt.Sprintf("[%s]%s[%s]", current, drawbox(l), next))
			current = next
			continue
		}

		g.Stills = append(g.Stills, l.Source)
		input := len(g.Stills)
		still := fmt.Sprintf("s%d", i)
		chain := fmt.Sprintf("[%d:v]format=rgba,scale=%d:%d", input, l.W, l.H)
		motion := effects.MotionFor(l.Effect, l.X, l.Y, l.W, l.H, plan.Width, plan.Height)
		if motion.Fade {
			chain += "," + effects.FadeFilter(l.Start, effectDuration)
		}
		g.Filters = append(g.Filters, fmt.Sprintf("%s[%s]", chain, still))

		x, y := effects.OverlayExpr(motion, l.Start, effectDuration)
		g.Filters = append(g.Filters, fmt.Sprintf(
			"[%s][%s]overlay=x='%s':y='%s':enable='%s':eof_action=pass[%s]",
			current, still, x, y, Enable(l), next))
		g.Overlays++
		current = next
	}

	g.Filters = append(g.Filters, fmt.Sprintf("[%s]format=yuv420p[%s]", current, VideoLabel))
	return g, nil
}

// Enable is the overlay enable expression of a layer's visibility window.
func Enable(l director.Layer) string {
	return fmt.Sprintf("between(t,%.6f,%.6f)", l.Start, l.End)
}

func drawbox(l director.Layer) string {
	return fmt.Sprintf("drawbox=x=%d:y=%d:w=%d:h=%d:color=%s:t=fill:enable='%s'",
		l.X, l.Y, l.W, l.H, config.FFmpegColor(l.Color), Enable(l))
}
