package download

import (
	"errors"
	"testing"
	"time"

	"github.com/handiism/djb-downloader/internal/model"
)

func resultWithSegments(successes, failures int) *AiringResult {
	cfg := &model.PathConfig{OutputDir: "/shows", StationCode: "BSR"}
	var hours []int
	for h := 0; h < successes+failures; h++ {
		hours = append(hours, h+1)
	}
	airing := model.NewAiring(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), hours, cfg)

	result := &AiringResult{Airing: airing}
	for i, seg := range airing.Segments {
		if i < successes {
			result.Segments = append(result.Segments, SegmentResult{
				Segment: seg, Path: seg.Path, Bytes: 1024, Success: true,
			})
		} else {
			result.Segments = append(result.Segments, SegmentResult{
				Segment: seg, Kind: KindHTTPError, Err: errors.New("HTTP 500"),
			})
		}
	}
	return result
}

func TestSummarize(t *testing.T) {
	complete := resultWithSegments(3, 0)
	complete.Merged = true
	complete.Verified = true
	complete.OutputPath = "/shows/2024-01-08.mp3"

	partial := resultWithSegments(2, 1)
	partial.Merged = true
	partial.Verified = true
	partial.OutputPath = "/shows/2024-01-15.mp3"

	unverified := resultWithSegments(3, 0)
	unverified.Merged = true

	failed := resultWithSegments(0, 3)

	summary := Summarize([]*AiringResult{complete, partial, unverified, failed})

	if summary.Airings != 4 {
		t.Errorf("Airings = %d, want 4", summary.Airings)
	}
	if summary.FullyMerged != 1 {
		t.Errorf("FullyMerged = %d, want 1", summary.FullyMerged)
	}
	if summary.PartiallyMerged != 2 {
		t.Errorf("PartiallyMerged = %d, want 2", summary.PartiallyMerged)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if summary.SegmentsAttempted != 12 {
		t.Errorf("SegmentsAttempted = %d, want 12", summary.SegmentsAttempted)
	}
	if summary.SegmentsSucceeded != 8 {
		t.Errorf("SegmentsSucceeded = %d, want 8", summary.SegmentsSucceeded)
	}

	want := "4 airings: 1 merged, 2 partial, 1 failed (8/12 segments)"
	if got := summary.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestAiringResult_SuccessPathsPreserveOrder(t *testing.T) {
	result := resultWithSegments(3, 0)
	// Fail the middle segment; the remaining paths must keep playback order.
	result.Segments[1].Success = false
	result.Segments[1].Path = ""
	result.Segments[1].Kind = KindEmptyResponse

	paths := result.SuccessPaths()
	if len(paths) != 2 {
		t.Fatalf("SuccessPaths len = %d, want 2", len(paths))
	}
	if paths[0] != result.Segments[0].Path || paths[1] != result.Segments[2].Path {
		t.Errorf("SuccessPaths = %v, out of playback order", paths)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindNone, "none"},
		{KindPrimingFailed, "priming failed"},
		{KindEmptyResponse, "empty response"},
		{KindHTTPError, "http error"},
		{KindDecodeFailed, "decode verification failed"},
		{ErrorKind(42), "ErrorKind(42)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
