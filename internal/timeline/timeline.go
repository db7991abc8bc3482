package timeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clipforge/internal/accel"
	"clipforge/internal/media"
)

// Clip places a trimmed slice of an asset on the timeline. The asset
// reference is shared and read-only; the effect set is owned by the clip.
type Clip struct {
	ID               string
	Asset            *media.Asset
	TrackID          string
	TrimStart        float64
	TrimEnd          float64
	TimelinePosition float64
	Effects          Effects
}

// Duration is the played length of the clip in seconds
func (c *Clip) Duration() float64 {
	return c.TrimEnd - c.TrimStart
}

// TextLayer is a timed text overlay. Layers have no track and never
// affect the timeline duration; their sequence order determines the
// overlay chaining order at compile time.
type TextLayer struct {
	ID        string
	Text      string
	X         int
	Y         int
	FontSize  int
	Color     string
	StartTime float64
	EndTime   float64
}

// Timeline owns the clips and text layers of the session. All mutation
// happens on the UI goroutine; the compiler and orchestrator only ever
// see snapshots taken at export start.
type Timeline struct {
	logger     zerolog.Logger
	bridge     accel.Bridge
	clips      []*Clip
	clipsByID  map[string]*Clip
	textLayers []*TextLayer
	duration   float64
}

// New creates an empty timeline
func New(logger zerolog.Logger, bridge accel.Bridge) *Timeline {
	if bridge == nil {
		bridge = accel.Nop{}
	}
	return &Timeline{
		logger:    logger.With().Str("component", "timeline").Logger(),
		bridge:    bridge,
		clips:     make([]*Clip, 0),
		clipsByID: make(map[string]*Clip),
	}
}

// AddClip places an asset on a track with full-asset trim and neutral effects
func (t *Timeline) AddClip(asset *media.Asset, timelinePosition float64, trackID string) (*Clip, error) {
	if asset == nil {
		return nil, fmt.Errorf("asset is required")
	}
	if timelinePosition < 0 {
		return nil, fmt.Errorf("timeline position %.2fs cannot be negative", timelinePosition)
	}

	clip := &Clip{
		ID:               uuid.NewString(),
		Asset:            asset,
		TrackID:          trackID,
		TrimStart:        0,
		TrimEnd:          asset.DurationSeconds,
		TimelinePosition: timelinePosition,
		Effects:          DefaultEffects(),
	}

	t.clips = append(t.clips, clip)
	t.clipsByID[clip.ID] = clip
	t.recomputeDuration()

	t.bridge.AddClip(asset.SourceHandle, clip.TrimStart, clip.TrimEnd, timelinePosition, 0)

	t.logger.Info().
		Str("clip", clip.ID).
		Str("asset", asset.Name).
		Str("track", trackID).
		Float64("position", timelinePosition).
		Msg("clip added")

	return clip, nil
}

// UpdateClipEffects replaces the clip's effect set wholesale. Callers
// supply every field; there are no partial merge semantics.
func (t *Timeline) UpdateClipEffects(clipID string, effects Effects) error {
	clip, ok := t.clipsByID[clipID]
	if !ok {
		return fmt.Errorf("clip %s not found", clipID)
	}
	if err := effects.Validate(); err != nil {
		return fmt.Errorf("invalid effects: %w", err)
	}

	clip.Effects = effects.clone()

	t.logger.Debug().Str("clip", clipID).Msg("effects replaced")
	return nil
}

// Retrim changes the clip's source interval and recomputes the timeline duration
func (t *Timeline) Retrim(clipID string, trimStart, trimEnd float64) error {
	clip, ok := t.clipsByID[clipID]
	if !ok {
		return fmt.Errorf("clip %s not found", clipID)
	}
	if trimStart < 0 {
		return fmt.Errorf("trim start %.2fs cannot be negative", trimStart)
	}
	if trimEnd > clip.Asset.DurationSeconds {
		return fmt.Errorf("trim end %.2fs exceeds asset duration %.2fs", trimEnd, clip.Asset.DurationSeconds)
	}
	if trimEnd <= trimStart {
		return fmt.Errorf("trim end must be after trim start")
	}

	clip.TrimStart = trimStart
	clip.TrimEnd = trimEnd
	t.recomputeDuration()
	return nil
}

// MoveClip repositions a clip on the timeline
func (t *Timeline) MoveClip(clipID string, timelinePosition float64) error {
	clip, ok := t.clipsByID[clipID]
	if !ok {
		return fmt.Errorf("clip %s not found", clipID)
	}
	if timelinePosition < 0 {
		return fmt.Errorf("timeline position %.2fs cannot be negative", timelinePosition)
	}

	clip.TimelinePosition = timelinePosition
	t.recomputeDuration()
	return nil
}

// RemoveClip deletes a clip. Removing an unknown id is a no-op; callers
// that need to distinguish should check FindClip first.
func (t *Timeline) RemoveClip(clipID string) {
	if _, ok := t.clipsByID[clipID]; !ok {
		return
	}

	delete(t.clipsByID, clipID)
	for i, clip := range t.clips {
		if clip.ID == clipID {
			t.clips = append(t.clips[:i], t.clips[i+1:]...)
			break
		}
	}
	t.recomputeDuration()

	t.logger.Info().Str("clip", clipID).Msg("clip removed")
}

// FindClip returns the clip with the given id, or nil
func (t *Timeline) FindClip(clipID string) *Clip {
	return t.clipsByID[clipID]
}

// Clips returns the clips in insertion order
func (t *Timeline) Clips() []*Clip {
	out := make([]*Clip, len(t.clips))
	copy(out, t.clips)
	return out
}

// TextLayerParams carries validated input for a new text layer
type TextLayerParams struct {
	Text      string
	X         int
	Y         int
	FontSize  int
	Color     string
	StartTime float64
	EndTime   float64
}

// AddTextLayer appends a text layer to the overlay sequence
func (t *Timeline) AddTextLayer(params TextLayerParams) (*TextLayer, error) {
	if params.Text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if params.EndTime <= params.StartTime {
		return nil, fmt.Errorf("text layer end %.2fs must be after start %.2fs", params.EndTime, params.StartTime)
	}

	layer := &TextLayer{
		ID:        uuid.NewString(),
		Text:      params.Text,
		X:         params.X,
		Y:         params.Y,
		FontSize:  params.FontSize,
		Color:     params.Color,
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
	}
	if layer.FontSize <= 0 {
		layer.FontSize = 48
	}
	if layer.Color == "" {
		layer.Color = "white"
	}

	t.textLayers = append(t.textLayers, layer)

	t.bridge.AddTextLayer(layer.Text, layer.X, layer.Y, layer.FontSize, layer.Color, layer.StartTime, layer.EndTime)

	t.logger.Info().
		Str("layer", layer.ID).
		Float64("start", layer.StartTime).
		Float64("end", layer.EndTime).
		Msg("text layer added")

	return layer, nil
}

// RemoveTextLayer deletes a text layer; unknown ids are a no-op
func (t *Timeline) RemoveTextLayer(layerID string) {
	for i, layer := range t.textLayers {
		if layer.ID == layerID {
			t.textLayers = append(t.textLayers[:i], t.textLayers[i+1:]...)
			return
		}
	}
}

// TextLayers returns the overlay sequence in order
func (t *Timeline) TextLayers() []*TextLayer {
	out := make([]*TextLayer, len(t.textLayers))
	copy(out, t.textLayers)
	return out
}

// Duration is the derived timeline length in seconds
func (t *Timeline) Duration() float64 {
	return t.duration
}

func (t *Timeline) recomputeDuration() {
	t.duration = 0
	for _, clip := range t.clips {
		if end := clip.TimelinePosition + clip.Duration(); end > t.duration {
			t.duration = end
		}
	}
}

// Snapshot is an immutable copy of timeline state taken at export
// start. Later edits never affect an in-flight export.
type Snapshot struct {
	Clips      []Clip
	TextLayers []TextLayer
	Duration   float64
}

// Snapshot deep-copies the current clips and text layers
func (t *Timeline) Snapshot() Snapshot {
	snap := Snapshot{
		Clips:      make([]Clip, 0, len(t.clips)),
		TextLayers: make([]TextLayer, 0, len(t.textLayers)),
		Duration:   t.duration,
	}
	for _, clip := range t.clips {
		copied := *clip
		copied.Effects = clip.Effects.clone()
		snap.Clips = append(snap.Clips, copied)
	}
	for _, layer := range t.textLayers {
		snap.TextLayers = append(snap.TextLayers, *layer)
	}
	return snap
}
