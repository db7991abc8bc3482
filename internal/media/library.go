package media

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Library holds every registered asset for the session. Assets are
// registered by the UI layer and looked up by clips at export time.
type Library struct {
	logger zerolog.Logger
	assets []*Asset
	byID   map[string]*Asset
}

// NewLibrary creates an empty media library
func NewLibrary(logger zerolog.Logger) *Library {
	return &Library{
		logger: logger.With().Str("component", "media").Logger(),
		assets: make([]*Asset, 0),
		byID:   make(map[string]*Asset),
	}
}

// Register adds a new asset and assigns it an id
func (l *Library) Register(name, sourceHandle string, durationSeconds float64, width, height int) (*Asset, error) {
	if durationSeconds <= 0 {
		return nil, fmt.Errorf("asset %q has non-positive duration", name)
	}

	asset := &Asset{
		ID:              uuid.NewString(),
		Name:            name,
		SourceHandle:    sourceHandle,
		DurationSeconds: durationSeconds,
		Width:           width,
		Height:          height,
	}

	l.assets = append(l.assets, asset)
	l.byID[asset.ID] = asset

	l.logger.Info().
		Str("asset", asset.ID).
		Str("name", name).
		Float64("duration", durationSeconds).
		Int("width", width).
		Int("height", height).
		Msg("asset registered")

	return asset, nil
}

// Find returns the asset with the given id, or nil
func (l *Library) Find(id string) *Asset {
	return l.byID[id]
}

// All returns assets in registration order
func (l *Library) All() []*Asset {
	out := make([]*Asset, len(l.assets))
	copy(out, l.assets)
	return out
}
