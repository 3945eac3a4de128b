package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Merger concatenates downloaded segment files into one recording
// using ffmpeg's concat demuxer.
//
// Segments are hour-long MP3 files cut from the same broadcast, so a
// stream copy concat is lossless and fast. The input order is the
// playback order; Merger never reorders.
//
// Example:
//
//	merger := audio.NewMerger("", 9000)
//	err := merger.Merge(ctx, segmentPaths, "/shows/2024-01-08.mp3")
type Merger struct {
	binary     string
	maxSeconds int
}

// NewMerger creates a Merger.
//
// An empty binary falls back to "ffmpeg" on PATH. maxSeconds caps the
// merged output's duration; zero or negative means uncapped. The cap
// guards against duplicated trailing audio when the platform pads the
// final segment.
func NewMerger(binary string, maxSeconds int) *Merger {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Merger{
		binary:     binary,
		maxSeconds: maxSeconds,
	}
}

// Merge concatenates the given files, in order, into outputPath.
//
// A concat list file is written next to the first input and handed to
// ffmpeg. On success the list file is removed; on failure it is left in
// place together with the inputs so the operator can retry by hand.
func (m *Merger) Merge(ctx context.Context, paths []string, outputPath string) error {
	if len(paths) == 0 {
		return errors.New("no segments to merge")
	}

	listPath := filepath.Join(filepath.Dir(paths[0]), "file_list.txt")
	if err := os.WriteFile(listPath, []byte(concatList(paths)), 0644); err != nil {
		return fmt.Errorf("could not write concat list: %w", err)
	}

	cmd := exec.CommandContext(ctx, m.binary, concatArgs(listPath, outputPath, m.maxSeconds)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat: %w: %s", err, strings.TrimSpace(string(output)))
	}

	os.Remove(listPath)
	return nil
}

// concatList renders the concat demuxer input list, one line per file:
//
//	file '/shows/tmp/2024-01-08/BSR-24-01-08-22-00.mp3'
//
// Single quotes inside a path close the quote, emit an escaped quote,
// and reopen, per the demuxer's quoting rules.
func concatList(paths []string) string {
	var sb strings.Builder
	for _, path := range paths {
		escaped := strings.ReplaceAll(path, `'`, `'\''`)
		sb.WriteString("file '" + escaped + "'\n")
	}
	return sb.String()
}

// concatArgs builds the ffmpeg argument list for a stream-copy concat.
func concatArgs(listPath, outputPath string, maxSeconds int) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
	}
	if maxSeconds > 0 {
		args = append(args, "-t", strconv.Itoa(maxSeconds))
	}
	return append(args, "-c", "copy", outputPath)
}
