// Package exporter drives the export state machine: it snapshots the
// timeline, stages inputs into the engine's file space, compiles the
// filter graph, submits the run and packages the resulting artifacts.
package exporter

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clipforge/internal/config"
	"clipforge/internal/engine"
	"clipforge/internal/filtergraph"
	"clipforge/internal/timeline"
)

// Stage identifies where in the export state machine a job is.
type Stage string

const (
	StageIdle       Stage = "idle"
	StagePreparing  Stage = "preparing"
	StageStaging    Stage = "staging-inputs"
	StageCompiling  Stage = "compiling"
	StageProcessing Stage = "processing"
	StageFinalizing Stage = "finalizing"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// TroubleshootingTips is the static guidance surfaced with a failed run.
var TroubleshootingTips = []string{
	"Try removing all effects and export with defaults",
	"Remove extra clips and try exporting just one",
	"Remove text overlays, they can cause filter issues",
	"Try changing the export format to MP4",
	"Start with a basic clip with no trim or effects",
}

// Artifact is one downloadable output file.
type Artifact struct {
	Name string
	Size int
}

// Request selects the deliverable shape and quality of an export.
type Request struct {
	Format  Format
	Quality Quality
}

// Job is the observable state of one export attempt.
type Job struct {
	ID         string
	Format     Format
	Quality    Quality
	Stage      Stage
	Progress   int
	Artifacts  []Artifact
	Err        string
	LogTail    []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Terminal reports whether the job has reached Completed or Failed
func (j Job) Terminal() bool {
	return j.Stage == StageCompleted || j.Stage == StageFailed
}

// Exporter runs at most one export at a time. Start requests while a
// run is in flight are rejected, not queued.
type Exporter struct {
	logger  zerolog.Logger
	engine  engine.Engine
	cfg     config.ExportConfig
	tracker *Tracker
	logs    *LogBuffer

	mu      sync.Mutex
	running bool
	job     *Job
	done    chan struct{}
}

// New creates an exporter bound to a processing engine
func New(logger zerolog.Logger, eng engine.Engine, cfg config.ExportConfig) *Exporter {
	if cfg.SegmentSeconds <= 0 {
		cfg.SegmentSeconds = 10
	}
	return &Exporter{
		logger:  logger.With().Str("component", "exporter").Logger(),
		engine:  eng,
		cfg:     cfg,
		tracker: &Tracker{},
		logs:    NewLogBuffer(cfg.LogTailLines),
	}
}

// Start begins an export against the given timeline snapshot. The
// snapshot is taken by the caller at export start; later timeline edits
// never affect the run. Returns the job for polling.
func (e *Exporter) Start(ctx context.Context, snap timeline.Snapshot, req Request) (Job, error) {
	if !req.Format.Valid() {
		return Job{}, fmt.Errorf("unknown export format %q", req.Format)
	}
	if !req.Quality.Valid() {
		return Job{}, fmt.Errorf("unknown export quality %q", req.Quality)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return Job{}, ErrExportInFlight
	}

	job := &Job{
		ID:        uuid.NewString(),
		Format:    req.Format,
		Quality:   req.Quality,
		Stage:     StageIdle,
		StartedAt: time.Now(),
	}

	// An empty timeline fails before any engine interaction. The
	// tracker is reset so the failed job never shows a previous run's
	// progress.
	if len(snap.Clips) == 0 {
		job.Stage = StageFailed
		job.Err = ErrNoClips.Error()
		job.FinishedAt = time.Now()
		e.job = job
		e.tracker.Reset()
		return *job, ErrNoClips
	}

	e.running = true
	e.job = job
	e.done = make(chan struct{})
	e.tracker.Reset()

	go e.run(ctx, snap, req)

	return *job, nil
}

// Job returns a copy of the most recent job state
func (e *Exporter) Job() (Job, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.job == nil {
		return Job{}, false
	}
	job := *e.job
	job.Progress = e.tracker.Percent()
	return job, true
}

// Wait blocks until the current run reaches a terminal state
func (e *Exporter) Wait(ctx context.Context) (Job, error) {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return Job{}, ctx.Err()
		}
	}

	job, ok := e.Job()
	if !ok {
		return Job{}, fmt.Errorf("no export has been started")
	}
	return job, nil
}

// ReadArtifact returns the bytes of a completed run's output file
func (e *Exporter) ReadArtifact(name string) ([]byte, error) {
	job, ok := e.Job()
	if !ok || job.Stage != StageCompleted {
		return nil, fmt.Errorf("no completed export available")
	}
	for _, artifact := range job.Artifacts {
		if artifact.Name == name {
			return e.engine.Read(name)
		}
	}
	return nil, fmt.Errorf("unknown artifact %q", name)
}

func (e *Exporter) run(ctx context.Context, snap timeline.Snapshot, req Request) {
	var staged []string
	defer func() {
		// Best-effort cleanup on both outcomes; individual deletion
		// failures never mask the run's result.
		for _, name := range staged {
			if err := e.engine.Remove(name); err != nil {
				e.logger.Debug().Str("input", name).Err(err).Msg("cleanup skipped staged input")
			}
		}

		e.mu.Lock()
		e.running = false
		close(e.done)
		e.mu.Unlock()
	}()

	e.setStage(StagePreparing, percentPreparing)
	if err := e.engine.Load(ctx); err != nil {
		e.fail(&EngineLoadError{Err: err})
		return
	}

	e.setStage(StageStaging, percentStaging)
	for i, clip := range snap.Clips {
		data, err := os.ReadFile(clip.Asset.SourceHandle)
		if err != nil {
			e.fail(&StagingError{ClipIndex: i, Err: err})
			return
		}
		name := fmt.Sprintf("input%d.mp4", i)
		if err := e.engine.Write(name, data); err != nil {
			e.fail(&StagingError{ClipIndex: i, Err: err})
			return
		}
		staged = append(staged, name)
		e.logger.Debug().Int("clip", i).Str("input", name).Msg("input staged")
	}

	e.setStage(StageCompiling, percentCompiling)
	graph, err := filtergraph.Compile(snap.Clips, snap.TextLayers)
	if err != nil {
		e.fail(fmt.Errorf("pipeline compilation failed: %w", err))
		return
	}
	description := graph.Serialize()
	e.logger.Debug().Str("filter_complex", description).Msg("pipeline compiled")

	e.setStage(StageProcessing, percentProcessing)
	var expected float64
	for _, clip := range snap.Clips {
		expected += clip.Duration()
	}
	submit := engine.SubmitRequest{
		InputNames:      staged,
		FilterComplex:   description,
		OutputArgs:      outputArgs(req.Format, req.Quality, e.cfg.SegmentSeconds),
		ExpectedSeconds: expected,
		Progress:        e.tracker.FromRatio,
		Log:             e.logs.Append,
	}
	if err := e.engine.Submit(ctx, submit); err != nil {
		e.fail(&ProcessingError{Err: err})
		return
	}

	e.setStage(StageFinalizing, percentFinalizing)
	artifacts, err := e.collectArtifacts(req.Format)
	if err != nil {
		e.fail(err)
		return
	}

	e.mu.Lock()
	e.job.Stage = StageCompleted
	e.job.Artifacts = artifacts
	e.job.FinishedAt = time.Now()
	jobID := e.job.ID
	e.mu.Unlock()
	e.tracker.Set(percentDone)
	e.logs.Clear()

	e.logger.Info().
		Str("job", jobID).
		Int("artifacts", len(artifacts)).
		Msg("export completed")
}

// collectArtifacts reads back every expected output file. Any missing
// file fails the run; there is no partial success.
func (e *Exporter) collectArtifacts(format Format) ([]Artifact, error) {
	if format == FormatMP4 {
		data, err := e.engine.Read(singleFileName)
		if err != nil {
			return nil, &OutputMissingError{Name: singleFileName}
		}
		return []Artifact{{Name: singleFileName, Size: len(data)}}, nil
	}

	playlist, err := e.engine.Read(playlistName)
	if err != nil {
		return nil, &OutputMissingError{Name: playlistName}
	}
	artifacts := []Artifact{{Name: playlistName, Size: len(playlist)}}

	names, err := e.engine.List()
	if err != nil {
		return nil, &ProcessingError{Err: err}
	}
	segments := 0
	for _, name := range names {
		if strings.HasPrefix(name, segmentPrefix) && strings.HasSuffix(name, segmentSuffix) {
			data, err := e.engine.Read(name)
			if err != nil {
				return nil, &OutputMissingError{Name: name}
			}
			artifacts = append(artifacts, Artifact{Name: name, Size: len(data)})
			segments++
		}
	}
	if segments == 0 {
		return nil, &OutputMissingError{Name: fmt.Sprintf(segmentPattern, 0)}
	}

	return artifacts, nil
}

func (e *Exporter) setStage(stage Stage, percent int) {
	e.mu.Lock()
	e.job.Stage = stage
	e.mu.Unlock()
	e.tracker.Set(percent)

	e.logger.Info().Str("stage", string(stage)).Msg("export stage")
}

func (e *Exporter) fail(err error) {
	tail := e.logs.Tail()
	e.logs.Clear()

	e.mu.Lock()
	e.job.Stage = StageFailed
	e.job.Err = err.Error()
	e.job.LogTail = tail
	e.job.FinishedAt = time.Now()
	e.mu.Unlock()

	e.logger.Error().Err(err).Msg("export failed")
}
