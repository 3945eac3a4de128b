package download

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/handiism/djb-downloader/internal/djb"
	"github.com/handiism/djb-downloader/internal/model"
)

// MediaClient is the authenticated HTTP surface the fetcher needs.
// *http.Client satisfies it.
type MediaClient interface {
	Get(ctx context.Context, url string) ([]byte, error)
	DownloadFile(ctx context.Context, url, destPath string, headers map[string]string, onProgress func(written, total int64)) (int64, string, error)
}

// SegmentVerifier confirms a downloaded file decodes to audio.
// *audio.Prober satisfies it.
type SegmentVerifier interface {
	VerifyAudio(ctx context.Context, path string) error
}

// FetcherConfig carries the per-run constants a Fetcher needs.
type FetcherConfig struct {
	BaseURL     string
	StationCode int // numeric c= selector for index URLs

	MaxRetries    int
	RetryCooldown float64 // seconds before the first retry
	RetryExponent float64 // cooldown multiplier per retry

	RequestTimeout  time.Duration // priming/index requests
	DownloadTimeout time.Duration // media requests

	// MinSegmentBytes is the blank-response threshold: a 200 smaller
	// than this is treated as an unprimed response, not audio.
	MinSegmentBytes int64
}

// Fetcher downloads one segment at a time through the platform's
// prime-then-fetch protocol.
//
// The protocol order is mandatory: the segment date's index page must
// be requested before its media URL answers with audio. The Fetcher
// consults a PrimeTracker so each date is primed once per run, and a
// blank media response triggers exactly one re-prime cycle before the
// segment is declared failed.
//
// Every failure mode becomes a classified SegmentResult; FetchSegment
// never aborts the batch.
type Fetcher struct {
	client   MediaClient
	verifier SegmentVerifier
	tracker  *PrimeTracker
	cfg      FetcherConfig
}

// NewFetcher creates a Fetcher. A nil verifier skips the per-segment
// decode check.
func NewFetcher(client MediaClient, verifier SegmentVerifier, tracker *PrimeTracker, cfg FetcherConfig) *Fetcher {
	return &Fetcher{
		client:   client,
		verifier: verifier,
		tracker:  tracker,
		cfg:      cfg,
	}
}

// SetStationCode updates the station selector used in priming and
// Referer URLs. Must be called before fetching starts when the code
// came from callsign auto-detection rather than configuration.
func (f *Fetcher) SetStationCode(code int) {
	f.cfg.StationCode = code
}

// FetchSegment downloads one segment into its temp path.
//
// Order of operations: prime the segment's date, stream the media URL
// to disk, then verify the file decodes. onBytes, when non-nil,
// receives streaming progress for the media transfer.
func (f *Fetcher) FetchSegment(ctx context.Context, seg *model.Segment, onBytes func(written, total int64)) SegmentResult {
	result := SegmentResult{Segment: seg}

	if err := f.ensurePrimed(ctx, seg.Date); err != nil {
		result.Kind = KindPrimingFailed
		result.Err = err
		return result
	}

	mediaURL := djb.MediaURL(f.cfg.BaseURL, seg.Filename)
	headers := map[string]string{
		"Referer": djb.MediaReferer(f.cfg.BaseURL, f.cfg.StationCode, seg.Date, seg.Hour),
	}

	var (
		written  int64
		failures int
		reprimed bool
	)
	for {
		dctx, cancel := context.WithTimeout(ctx, f.cfg.DownloadTimeout)
		w, contentType, err := f.client.DownloadFile(dctx, mediaURL, seg.Path, headers, onBytes)
		cancel()

		if err != nil {
			failures++
			if failures >= f.cfg.MaxRetries || ctx.Err() != nil {
				result.Kind = KindHTTPError
				result.Err = err
				return result
			}
			f.waitForRetry(ctx, failures-1)
			continue
		}

		if w < f.cfg.MinSegmentBytes || !strings.HasPrefix(contentType, "audio") {
			// An unprimed date comes back as a tiny non-audio 200.
			os.Remove(seg.Path)
			if reprimed {
				result.Kind = KindEmptyResponse
				result.Err = fmt.Errorf("blank response (%d bytes, %q) after re-priming", w, contentType)
				return result
			}
			f.tracker.Reset(seg.Date)
			if err := f.ensurePrimed(ctx, seg.Date); err != nil {
				result.Kind = KindPrimingFailed
				result.Err = err
				return result
			}
			reprimed = true
			continue
		}

		written = w
		break
	}

	result.Path = seg.Path
	result.Bytes = written

	if f.verifier != nil {
		if err := f.verifier.VerifyAudio(ctx, seg.Path); err != nil {
			// The file stays on disk for inspection.
			result.Kind = KindDecodeFailed
			result.Err = err
			return result
		}
	}

	f.tracker.MarkFetched(seg.Date)
	result.Success = true
	return result
}

// ensurePrimed fetches the index page for the segment's date unless the
// tracker already saw it primed this run. The response body is
// discarded; only the session-side effect matters.
func (f *Fetcher) ensurePrimed(ctx context.Context, date time.Time) error {
	if f.tracker.State(date) != Unprimed {
		return nil
	}

	primeURL := djb.IndexURL(f.cfg.BaseURL, f.cfg.StationCode, date)

	var err error
	for tries := 0; tries < f.cfg.MaxRetries; tries++ {
		rctx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout)
		_, err = f.client.Get(rctx, primeURL)
		cancel()

		if err == nil {
			f.tracker.MarkPrimed(date)
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		f.waitForRetry(ctx, tries)
	}
	return fmt.Errorf("priming %s failed after %d attempts: %w",
		date.Format("2006-01-02"), f.cfg.MaxRetries, err)
}

func (f *Fetcher) waitForRetry(ctx context.Context, tries int) {
	cooldown := f.cfg.RetryCooldown * math.Pow(f.cfg.RetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}
