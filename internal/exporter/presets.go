package exporter

import "fmt"

// Format selects the deliverable shape of an export.
type Format string

const (
	// FormatMP4 produces one single-file media blob.
	FormatMP4 Format = "mp4"
	// FormatHLS produces a playlist plus fixed-duration segments.
	FormatHLS Format = "hls"
)

// Quality selects an encoder effort / quality-target preset.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

const (
	playlistName   = "output.m3u8"
	singleFileName = "output.mp4"
	segmentPattern = "segment%03d.ts"
	segmentPrefix  = "segment"
	segmentSuffix  = ".ts"
)

// Valid reports whether the format is a known value
func (f Format) Valid() bool {
	return f == FormatMP4 || f == FormatHLS
}

// Valid reports whether the quality is a known value
func (q Quality) Valid() bool {
	return q == QualityLow || q == QualityMedium || q == QualityHigh
}

// encoderArgs maps a quality preset to concrete encoder effort and
// quality-target values.
func encoderArgs(quality Quality) []string {
	switch quality {
	case QualityHigh:
		return []string{"-c:v", "libx264", "-preset", "medium", "-crf", "18"}
	case QualityMedium:
		return []string{"-c:v", "libx264", "-preset", "fast", "-crf", "23"}
	default:
		return []string{"-c:v", "libx264", "-preset", "veryfast", "-crf", "28"}
	}
}

// outputArgs builds the argv-style encoding and output-shape parameters
// for a submission, including the output file name.
func outputArgs(format Format, quality Quality, segmentSeconds int) []string {
	args := encoderArgs(quality)

	if format == FormatHLS {
		args = append(args,
			"-hls_time", fmt.Sprintf("%d", segmentSeconds),
			"-hls_list_size", "0",
			"-hls_segment_filename", segmentPattern,
			"-f", "hls",
			playlistName,
		)
		return args
	}

	return append(args, singleFileName)
}
