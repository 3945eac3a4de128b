package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Result is the parsed output of an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// DurationSeconds returns the container duration in seconds, or 0 when
// ffprobe could not determine one.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// Prober inspects media files with ffprobe.
//
// Downloaded segments and merged recordings are both verified the same
// way: the file must decode to at least one audio stream with a
// positive duration. A blank or truncated platform response fails this
// check even when the HTTP transfer itself succeeded.
//
// Example:
//
//	prober := audio.NewProber("")
//	if err := prober.VerifyAudio(ctx, path); err != nil {
//	    // not a playable recording
//	}
type Prober struct {
	binary string
}

// NewProber creates a Prober. An empty binary falls back to "ffprobe"
// on PATH.
func NewProber(binary string) *Prober {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// Inspect executes ffprobe against path and decodes the JSON response.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return parseResult(output)
}

// VerifyAudio checks that path decodes to playable audio.
func (p *Prober) VerifyAudio(ctx context.Context, path string) error {
	result, err := p.Inspect(ctx, path)
	if err != nil {
		return err
	}
	return Verify(result)
}

// Verify applies the audio sanity checks to an inspection result.
func Verify(result Result) error {
	if result.AudioStreamCount() < 1 {
		return errors.New("no audio stream in file")
	}
	if d := result.DurationSeconds(); d <= 0 {
		return fmt.Errorf("non-positive duration %.2fs", d)
	}
	return nil
}

func parseResult(raw []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}
