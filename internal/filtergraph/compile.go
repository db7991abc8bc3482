package filtergraph

import (
	"fmt"
	"math"
	"strings"

	"clipforge/internal/timeline"
	"clipforge/pkg/util"
)

// Output geometry every clip is normalized to before concatenation.
// The concat filter demands identical frame geometry across inputs.
const (
	OutputWidth  = 1280
	OutputHeight = 720
)

// Compile translates a timeline snapshot into a validated pipeline
// graph. The result depends only on clip and text-layer input order,
// never on ids, randomness or the clock.
func Compile(clips []timeline.Clip, textLayers []timeline.TextLayer) (*Graph, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("cannot compile an empty timeline")
	}

	graph := &Graph{}

	for i, clip := range clips {
		input := fmt.Sprintf("%d:v", i)
		graph.InputPads = append(graph.InputPads, input)
		graph.Nodes = append(graph.Nodes, Node{
			Inputs:  []string{input},
			Filters: clipFilters(clip),
			Output:  fmt.Sprintf("v%d", i),
		})
	}

	if len(clips) > 1 {
		inputs := make([]string, len(clips))
		for i := range clips {
			inputs[i] = fmt.Sprintf("v%d", i)
		}
		graph.Nodes = append(graph.Nodes, Node{
			Inputs:  inputs,
			Filters: []Filter{{Name: "concat", Args: fmt.Sprintf("n=%d:v=1:a=0", len(clips))}},
			Output:  "vconcat",
		})
	} else {
		// Keep downstream wiring uniform regardless of clip count.
		graph.Nodes = append(graph.Nodes, Node{
			Inputs:  []string{"v0"},
			Filters: []Filter{{Name: "copy"}},
			Output:  "vconcat",
		})
	}

	if len(textLayers) == 0 {
		graph.Nodes = append(graph.Nodes, Node{
			Inputs:  []string{"vconcat"},
			Filters: []Filter{{Name: "copy"}},
			Output:  FinalPad,
		})
	} else {
		current := "vconcat"
		for i, layer := range textLayers {
			next := FinalPad
			if i < len(textLayers)-1 {
				next = fmt.Sprintf("vtext%d", i)
			}
			graph.Nodes = append(graph.Nodes, Node{
				Inputs:  []string{current},
				Filters: []Filter{drawtextFilter(layer)},
				Output:  next,
			})
			current = next
		}
	}

	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("compiled graph is malformed: %w", err)
	}

	return graph, nil
}

// clipFilters builds the per-clip filter sequence. Trim/normalize are
// always applied; everything else is emitted only when the effect
// deviates from its neutral value.
func clipFilters(clip timeline.Clip) []Filter {
	effects := clip.Effects
	filters := []Filter{
		{Name: "trim", Args: fmt.Sprintf("start=%s:end=%s", util.FormatSeconds(clip.TrimStart), util.FormatSeconds(clip.TrimEnd))},
		{Name: "setpts", Args: "PTS-STARTPTS"},
	}

	if effects.Crop != nil {
		filters = append(filters, Filter{
			Name: "crop",
			Args: fmt.Sprintf("%d:%d:%d:%d", effects.Crop.Width, effects.Crop.Height, effects.Crop.X, effects.Crop.Y),
		})
	}

	if effects.Scale != nil {
		filters = append(filters, Filter{
			Name: "scale",
			Args: fmt.Sprintf("%d:%d", effects.Scale.Width, effects.Scale.Height),
		})
	}

	switch effects.Flip {
	case timeline.FlipHorizontal:
		filters = append(filters, Filter{Name: "hflip"})
	case timeline.FlipVertical:
		filters = append(filters, Filter{Name: "vflip"})
	}

	if effects.RotateDegrees != 0 {
		radians := effects.RotateDegrees * math.Pi / 180
		filters = append(filters, Filter{Name: "rotate", Args: util.FormatSeconds(radians)})
	}

	if effects.HasColorAdjustment() {
		filters = append(filters, Filter{
			Name: "eq",
			Args: fmt.Sprintf("brightness=%s:contrast=%s:saturation=%s",
				util.FormatSeconds(effects.Brightness),
				util.FormatSeconds(effects.Contrast),
				util.FormatSeconds(effects.Saturation)),
		})
	}

	if effects.Blur > 0 {
		filters = append(filters, Filter{Name: "boxblur", Args: util.FormatSeconds(effects.Blur)})
	}

	if effects.Sharpen > 0 {
		filters = append(filters, Filter{Name: "unsharp", Args: fmt.Sprintf("5:5:%s:5:5:0", util.FormatSeconds(effects.Sharpen))})
	}

	if effects.FadeInSeconds > 0 {
		filters = append(filters, Filter{Name: "fade", Args: fmt.Sprintf("t=in:st=0:d=%s", util.FormatSeconds(effects.FadeInSeconds))})
	}

	if effects.FadeOutSeconds > 0 {
		// A fade window that would start at or before zero is dropped
		// rather than clamped.
		fadeOutStart := clip.Duration() - effects.FadeOutSeconds
		if fadeOutStart > 0 {
			filters = append(filters, Filter{
				Name: "fade",
				Args: fmt.Sprintf("t=out:st=%s:d=%s", util.FormatSeconds(fadeOutStart), util.FormatSeconds(effects.FadeOutSeconds)),
			})
		}
	}

	filters = append(filters,
		Filter{Name: "scale", Args: fmt.Sprintf("%d:%d:force_original_aspect_ratio=decrease", OutputWidth, OutputHeight)},
		Filter{Name: "pad", Args: fmt.Sprintf("%d:%d:(ow-iw)/2:(oh-ih)/2", OutputWidth, OutputHeight)},
	)

	return filters
}

func drawtextFilter(layer timeline.TextLayer) Filter {
	return Filter{
		Name: "drawtext",
		Args: fmt.Sprintf("text='%s':x=%d:y=%d:fontsize=%d:fontcolor=%s:enable='between(t\\,%s\\,%s)'",
			EscapeText(layer.Text),
			layer.X,
			layer.Y,
			layer.FontSize,
			layer.Color,
			util.FormatSeconds(layer.StartTime),
			util.FormatSeconds(layer.EndTime)),
	}
}

// EscapeText escapes overlay text so literal quotes and field
// separators survive the filter description syntax.
func EscapeText(text string) string {
	escaped := strings.ReplaceAll(text, "'", `'\\\''`)
	return strings.ReplaceAll(escaped, ":", `\:`)
}
