package download

import (
	"fmt"

	"github.com/handiism/djb-downloader/internal/model"
)

// ErrorKind classifies why a segment download failed.
//
// All kinds are non-fatal to the batch: they mark one SegmentResult as
// failed and the run moves on.
type ErrorKind int

const (
	// KindNone means the segment succeeded.
	KindNone ErrorKind = iota

	// KindPrimingFailed means the index page request that makes the
	// segment's date retrievable kept failing.
	KindPrimingFailed

	// KindEmptyResponse means the platform answered the media request
	// with a blank or undersized body even after re-priming.
	KindEmptyResponse

	// KindHTTPError means the media request itself failed (non-200,
	// transport error or timeout) through the whole retry budget.
	KindHTTPError

	// KindDecodeFailed means the downloaded bytes do not decode to
	// playable audio. The file is kept on disk for inspection.
	KindDecodeFailed
)

var errorKindNames = [...]string{
	"none",
	"priming failed",
	"empty response",
	"http error",
	"decode verification failed",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// SegmentResult is the outcome of one segment fetch.
type SegmentResult struct {
	Segment *model.Segment

	// Path of the downloaded file. Set when bytes reached disk, even
	// if verification failed afterwards.
	Path string

	// Bytes written to disk.
	Bytes int64

	Success bool
	Kind    ErrorKind
	Err     error
}

// AiringResult is the outcome of one airing: its segment results plus
// the merge and verification state.
type AiringResult struct {
	Airing   *model.Airing
	Segments []SegmentResult

	// OutputPath of the merged recording, empty when no merge happened.
	OutputPath string

	// Merged reports whether ffmpeg produced an output file.
	Merged bool

	// Verified reports whether the merged output passed the second,
	// independent decode check. Temp segments are only removed for
	// verified outputs.
	Verified bool

	// Duration of the verified output in seconds, 0 when unknown.
	Duration float64

	// MergeErr holds the concatenation failure, if any.
	MergeErr error
}

// SuccessCount returns how many of the airing's segments downloaded.
func (r *AiringResult) SuccessCount() int {
	count := 0
	for _, seg := range r.Segments {
		if seg.Success {
			count++
		}
	}
	return count
}

// SuccessPaths returns the downloaded segment paths in playback order.
func (r *AiringResult) SuccessPaths() []string {
	var paths []string
	for _, seg := range r.Segments {
		if seg.Success {
			paths = append(paths, seg.Path)
		}
	}
	return paths
}

// Complete reports a fully successful airing: every segment downloaded,
// merge succeeded and the output verified.
func (r *AiringResult) Complete() bool {
	return r.Merged && r.Verified && r.SuccessCount() == len(r.Segments)
}

// Summary aggregates a batch run's outcomes.
type Summary struct {
	Airings int

	// FullyMerged counts airings where every segment downloaded and
	// the merged output verified.
	FullyMerged int

	// PartiallyMerged counts airings that produced an output file with
	// segments missing or verification pending.
	PartiallyMerged int

	// Failed counts airings with no output file at all.
	Failed int

	SegmentsAttempted int
	SegmentsSucceeded int
}

// Summarize classifies a run's airing results into batch totals.
func Summarize(results []*AiringResult) *Summary {
	summary := &Summary{Airings: len(results)}
	for _, r := range results {
		summary.SegmentsAttempted += len(r.Segments)
		summary.SegmentsSucceeded += r.SuccessCount()

		switch {
		case r.Complete():
			summary.FullyMerged++
		case r.Merged:
			summary.PartiallyMerged++
		default:
			summary.Failed++
		}
	}
	return summary
}

// String renders the final batch line, e.g.
// "5 airings: 3 merged, 1 partial, 1 failed (14/15 segments)".
func (s *Summary) String() string {
	return fmt.Sprintf("%d airings: %d merged, %d partial, %d failed (%d/%d segments)",
		s.Airings, s.FullyMerged, s.PartiallyMerged, s.Failed,
		s.SegmentsSucceeded, s.SegmentsAttempted)
}
