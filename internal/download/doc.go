// Package download provides the batch orchestration logic for fetching
// broadcast recordings from the archive platform.
//
// # Manager
//
// The Manager coordinates one batch run:
//
//  1. Authenticate the session (once per run)
//  2. Resolve the station callsign (configured or auto-detected)
//  3. Expand schedules into dated airings and hourly segments
//  4. Download each airing's segments sequentially
//  5. Merge segments with ffmpeg and verify the result with ffprobe
//  6. Tag merged recordings and generate a playlist (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(settings, logger, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := manager.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(summary)
//
// # Sequential Fetching
//
// Segments are fetched strictly in playback order, one at a time. The
// merged file's correctness depends on that order, and the platform's
// priming handshake is per-session state that parallel fetches would
// race on. Only the standalone archive verification (VerifyArchive)
// runs concurrently.
//
// # Priming
//
// The platform serves a media file only after the session has viewed
// the day's index page. The PrimeTracker records which dates were
// primed; a blank media response resets the date and triggers exactly
// one re-prime cycle before the segment is declared missing.
//
// # Failure Containment
//
// A failed segment fails only itself; the airing merges whatever
// succeeded. A failed airing never halts the batch. Each segment
// failure carries an ErrorKind so the summary can tell a priming
// problem from a missing recording or a transport error.
//
// # Retry Logic
//
// Failed requests are retried with exponential backoff, configurable
// via settings.DownloadMaxRetries, DownloadRetryCooldown and
// DownloadRetryExponent.
package download
