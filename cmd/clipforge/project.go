package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"clipforge/internal/engine"
	"clipforge/internal/media"
	"clipforge/internal/timeline"
)

// projectFile describes a timeline to export non-interactively.
type projectFile struct {
	Assets []projectAsset `yaml:"assets"`
	Clips  []projectClip  `yaml:"clips"`
	Text   []projectText  `yaml:"text_layers"`
}

type projectAsset struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type projectClip struct {
	Asset     int             `yaml:"asset"`
	Position  float64         `yaml:"position"`
	Track     string          `yaml:"track"`
	TrimStart *float64        `yaml:"trim_start"`
	TrimEnd   *float64        `yaml:"trim_end"`
	Effects   *projectEffects `yaml:"effects"`
}

type projectEffects struct {
	Brightness     float64         `yaml:"brightness"`
	Contrast       float64         `yaml:"contrast"`
	Saturation     float64         `yaml:"saturation"`
	Blur           float64         `yaml:"blur"`
	Sharpen        float64         `yaml:"sharpen"`
	Volume         float64         `yaml:"volume"`
	RotateDegrees  float64         `yaml:"rotate_degrees"`
	Flip           string          `yaml:"flip"`
	Crop           *timeline.Crop  `yaml:"crop"`
	Scale          *timeline.Scale `yaml:"scale"`
	FadeInSeconds  float64         `yaml:"fade_in"`
	FadeOutSeconds float64         `yaml:"fade_out"`
}

// UnmarshalYAML applies the neutral effect defaults before decoding so
// omitted fields keep their defaults instead of collapsing to zero.
func (pe *projectEffects) UnmarshalYAML(value *yaml.Node) error {
	type raw projectEffects
	decoded := raw{Contrast: 1, Saturation: 1, Volume: 1}
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*pe = projectEffects(decoded)
	return nil
}

type projectText struct {
	Text      string  `yaml:"text"`
	X         int     `yaml:"x"`
	Y         int     `yaml:"y"`
	FontSize  int     `yaml:"font_size"`
	Color     string  `yaml:"color"`
	StartTime float64 `yaml:"start"`
	EndTime   float64 `yaml:"end"`
}

func loadProject(path string) (*projectFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	var project projectFile
	if err := yaml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}
	if len(project.Clips) == 0 {
		return nil, fmt.Errorf("project has no clips")
	}
	return &project, nil
}

// buildTimeline registers the project's assets (probing each for
// metadata) and assembles the timeline.
func buildTimeline(ctx context.Context, project *projectFile, library *media.Library, tl *timeline.Timeline, eng *engine.FFmpeg) error {
	assets := make([]*media.Asset, 0, len(project.Assets))
	for _, pa := range project.Assets {
		info, err := eng.Probe(ctx, pa.Path)
		if err != nil {
			return fmt.Errorf("failed to probe %s: %w", pa.Path, err)
		}
		name := pa.Name
		if name == "" {
			name = pa.Path
		}
		asset, err := library.Register(name, pa.Path, info.Duration.Seconds(), info.Width, info.Height)
		if err != nil {
			return err
		}
		assets = append(assets, asset)
	}

	for i, pc := range project.Clips {
		if pc.Asset < 0 || pc.Asset >= len(assets) {
			return fmt.Errorf("clip %d references unknown asset %d", i, pc.Asset)
		}
		track := pc.Track
		if track == "" {
			track = "video-1"
		}
		clip, err := tl.AddClip(assets[pc.Asset], pc.Position, track)
		if err != nil {
			return fmt.Errorf("clip %d: %w", i, err)
		}
		if pc.TrimStart != nil || pc.TrimEnd != nil {
			trimStart := clip.TrimStart
			trimEnd := clip.TrimEnd
			if pc.TrimStart != nil {
				trimStart = *pc.TrimStart
			}
			if pc.TrimEnd != nil {
				trimEnd = *pc.TrimEnd
			}
			if err := tl.Retrim(clip.ID, trimStart, trimEnd); err != nil {
				return fmt.Errorf("clip %d: %w", i, err)
			}
		}
		if pc.Effects != nil {
			if err := tl.UpdateClipEffects(clip.ID, projectEffectsToModel(*pc.Effects)); err != nil {
				return fmt.Errorf("clip %d: %w", i, err)
			}
		}
	}

	for i, pt := range project.Text {
		_, err := tl.AddTextLayer(timeline.TextLayerParams{
			Text:      pt.Text,
			X:         pt.X,
			Y:         pt.Y,
			FontSize:  pt.FontSize,
			Color:     pt.Color,
			StartTime: pt.StartTime,
			EndTime:   pt.EndTime,
		})
		if err != nil {
			return fmt.Errorf("text layer %d: %w", i, err)
		}
	}

	return nil
}

func projectEffectsToModel(pe projectEffects) timeline.Effects {
	effects := timeline.Effects{
		Brightness:     pe.Brightness,
		Contrast:       pe.Contrast,
		Saturation:     pe.Saturation,
		Blur:           pe.Blur,
		Sharpen:        pe.Sharpen,
		Volume:         pe.Volume,
		RotateDegrees:  pe.RotateDegrees,
		Flip:           timeline.Flip(pe.Flip),
		FadeInSeconds:  pe.FadeInSeconds,
		FadeOutSeconds: pe.FadeOutSeconds,
	}
	if pe.Crop != nil {
		crop := *pe.Crop
		effects.Crop = &crop
	}
	if pe.Scale != nil {
		scale := *pe.Scale
		effects.Scale = &scale
	}
	return effects
}
