// Package engine abstracts the external processing engine: a file
// space for staged inputs and outputs plus a submit call that runs a
// compiled pipeline description. Production uses the ffmpeg CLI; tests
// substitute a fake.
package engine

import "context"

// ProgressFunc receives fractional completion events in [0,1] while a
// submission executes. Events may arrive out of order or repeat.
type ProgressFunc func(ratio float64)

// LogFunc receives raw engine log lines as they are emitted.
type LogFunc func(line string)

// SubmitRequest carries one compiled pipeline plus the argv-style
// encoding and output parameters for a run.
type SubmitRequest struct {
	// InputNames are the staged input files, in clip order.
	InputNames []string
	// FilterComplex is the serialized pipeline description.
	FilterComplex string
	// OutputArgs are the encoding and output-shape arguments,
	// including the output file name(s), in engine argv form.
	OutputArgs []string
	// ExpectedSeconds is the output duration used to derive progress
	// ratios from the engine's time reports.
	ExpectedSeconds float64

	Progress ProgressFunc
	Log      LogFunc
}

// Engine is the external processing engine contract. Load must succeed
// once before any other call; it is idempotent and safe for concurrent
// callers.
type Engine interface {
	Load(ctx context.Context) error
	Write(name string, data []byte) error
	Read(name string) ([]byte, error)
	List() ([]string, error)
	Remove(name string) error
	Submit(ctx context.Context, req SubmitRequest) error
}
