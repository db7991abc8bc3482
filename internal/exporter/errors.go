package exporter

import (
	"errors"
	"fmt"
)

// ErrExportInFlight is returned when a start request arrives while a
// run is active. Requests are rejected, not queued.
var ErrExportInFlight = errors.New("an export is already in flight")

// ErrNoClips is returned when export is attempted on an empty timeline.
var ErrNoClips = errors.New("no clips to export, add videos to the timeline first")

// EngineLoadError reports that the processing engine failed to load.
// Fatal for the run, not for the process.
type EngineLoadError struct {
	Err error
}

func (e *EngineLoadError) Error() string {
	return fmt.Sprintf("failed to load processing engine: %v", e.Err)
}

func (e *EngineLoadError) Unwrap() error { return e.Err }

// StagingError reports a failure writing one clip's media into the
// engine's input space.
type StagingError struct {
	ClipIndex int
	Err       error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("failed to stage input for clip %d: %v", e.ClipIndex, e.Err)
}

func (e *StagingError) Unwrap() error { return e.Err }

// ProcessingError reports that the engine produced no usable output.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed: %v", e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// OutputMissingError reports an expected output file absent after
// processing. A missing file is a failed run, never a partial success.
type OutputMissingError struct {
	Name string
}

func (e *OutputMissingError) Error() string {
	return fmt.Sprintf("expected output %q was not created", e.Name)
}
