package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"clipforge/internal/config"
	"clipforge/pkg/util"
)

// FFmpeg runs pipeline submissions through the ffmpeg CLI. A working
// directory serves as the engine's file space for staged inputs and
// produced outputs.
type FFmpeg struct {
	logger      zerolog.Logger
	cfg         config.EngineConfig
	dir         string
	mu          sync.Mutex
	loaded      bool
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpeg creates an ffmpeg engine rooted at dir. The binaries are
// resolved on Load, not here.
func NewFFmpeg(logger zerolog.Logger, cfg config.EngineConfig, dir string) *FFmpeg {
	return &FFmpeg{
		logger: logger.With().Str("component", "engine").Logger(),
		cfg:    cfg,
		dir:    dir,
	}
}

// Load resolves the ffmpeg and ffprobe binaries and prepares the file
// space. Safe to call repeatedly; a failed load is retried on the next
// call rather than latched for the process lifetime.
func (f *FFmpeg) Load(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loaded {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ffmpegPath, err := exec.LookPath(f.cfg.FFmpegPath)
	if err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	ffprobePath, err := exec.LookPath(f.cfg.FFprobePath)
	if err != nil {
		return fmt.Errorf("ffprobe not found: %w", err)
	}
	if err := util.EnsureDir(f.dir); err != nil {
		return fmt.Errorf("failed to create engine workspace: %w", err)
	}

	f.ffmpegPath = ffmpegPath
	f.ffprobePath = ffprobePath
	f.loaded = true

	f.logger.Debug().
		Str("ffmpeg", ffmpegPath).
		Str("ffprobe", ffprobePath).
		Str("dir", f.dir).
		Msg("engine loaded")

	return nil
}

func (f *FFmpeg) requireLoaded() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loaded {
		return fmt.Errorf("engine not loaded")
	}
	return nil
}

func (f *FFmpeg) path(name string) string {
	return filepath.Join(f.dir, filepath.Base(name))
}

// Write stages a file into the engine's file space
func (f *FFmpeg) Write(name string, data []byte) error {
	if err := f.requireLoaded(); err != nil {
		return err
	}
	return os.WriteFile(f.path(name), data, 0644)
}

// Read returns a file from the engine's file space
func (f *FFmpeg) Read(name string) ([]byte, error) {
	if err := f.requireLoaded(); err != nil {
		return nil, err
	}
	return os.ReadFile(f.path(name))
}

// List returns the names present in the engine's file space
func (f *FFmpeg) List() ([]string, error) {
	if err := f.requireLoaded(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Remove deletes a file from the engine's file space
func (f *FFmpeg) Remove(name string) error {
	if err := f.requireLoaded(); err != nil {
		return err
	}
	return os.Remove(f.path(name))
}

// Submit executes one compiled pipeline and streams progress and log
// events until the run completes.
func (f *FFmpeg) Submit(ctx context.Context, req SubmitRequest) error {
	if err := f.requireLoaded(); err != nil {
		return err
	}
	if req.FilterComplex == "" {
		return fmt.Errorf("no pipeline description provided")
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "info"}
	if f.cfg.Threads > 0 {
		args = append(args, "-threads", fmt.Sprintf("%d", f.cfg.Threads))
	}
	args = append(args, "-progress", "pipe:1", "-nostats")
	for _, name := range req.InputNames {
		args = append(args, "-i", name)
	}
	args = append(args, "-filter_complex", req.FilterComplex)
	args = append(args, "-map", "[final]")
	args = append(args, req.OutputArgs...)

	f.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("submitting pipeline")

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	cmd.Dir = f.dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		f.streamProgress(stdout, req)
	}()

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			if req.Log != nil {
				req.Log(line)
			}
		}
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	f.logger.Debug().Msg("pipeline submission completed")
	return nil
}

// streamProgress parses ffmpeg key=value progress blocks and reports a
// completion ratio at the end of each block.
func (f *FFmpeg) streamProgress(r io.Reader, req SubmitRequest) {
	scanner := bufio.NewScanner(r)
	var elapsed float64

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "out_time=") {
			value := strings.TrimPrefix(line, "out_time=")
			if d, err := util.ParseTimestamp(value); err == nil {
				elapsed = d.Seconds()
			}
		} else if strings.HasPrefix(line, "progress=") {
			if req.Progress == nil {
				continue
			}
			if strings.TrimPrefix(line, "progress=") == "end" {
				req.Progress(1)
				continue
			}
			if req.ExpectedSeconds > 0 {
				ratio := elapsed / req.ExpectedSeconds
				if ratio > 1 {
					ratio = 1
				}
				req.Progress(ratio)
			}
		}
	}
}
