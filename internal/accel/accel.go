// Package accel mirrors timeline state changes to an optional native
// acceleration module. Calls are fire-and-forget: no return value is
// consumed and the core never depends on the bridge being present.
package accel

import "github.com/rs/zerolog"

// Bridge receives timeline state changes for external bookkeeping.
type Bridge interface {
	InitProject(width, height int, frameRate float64)
	AddClip(filename string, trimStart, trimEnd, timelinePosition float64, trackIndex int)
	AddTextLayer(text string, x, y, fontSize int, color string, startTime, endTime float64)
}

// Nop is the bridge used when no acceleration module is loaded.
type Nop struct{}

func (Nop) InitProject(int, int, float64)                                {}
func (Nop) AddClip(string, float64, float64, float64, int)               {}
func (Nop) AddTextLayer(string, int, int, int, string, float64, float64) {}

// Logging records every bridge call through the logger. It stands in
// for the native module in environments where one is not available.
type Logging struct {
	logger zerolog.Logger
}

// NewLogging creates a logging bridge
func NewLogging(logger zerolog.Logger) *Logging {
	return &Logging{logger: logger.With().Str("component", "accel").Logger()}
}

func (b *Logging) InitProject(width, height int, frameRate float64) {
	b.logger.Debug().
		Int("width", width).
		Int("height", height).
		Float64("fps", frameRate).
		Msg("project initialized")
}

func (b *Logging) AddClip(filename string, trimStart, trimEnd, timelinePosition float64, trackIndex int) {
	b.logger.Debug().
		Str("filename", filename).
		Float64("trim_start", trimStart).
		Float64("trim_end", trimEnd).
		Float64("position", timelinePosition).
		Int("track", trackIndex).
		Msg("clip mirrored")
}

func (b *Logging) AddTextLayer(text string, x, y, fontSize int, color string, startTime, endTime float64) {
	b.logger.Debug().
		Str("text", text).
		Int("x", x).
		Int("y", y).
		Int("font_size", fontSize).
		Str("color", color).
		Float64("start", startTime).
		Float64("end", endTime).
		Msg("text layer mirrored")
}
