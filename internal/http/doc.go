// Package http provides an HTTP client configured for the DJB archive
// platform.
//
// The Client in this package handles:
//   - Session authentication (the platform's three-step index.php login)
//   - Cookie persistence across all requests of a run
//   - The browser User-Agent the platform insists on
//   - File downloads with progress tracking
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(60 * time.Second)
//
//	// Authenticate once; the cookie jar carries the session afterwards
//	if err := client.Login(ctx, baseURL, username, password); err != nil {
//	    // errors.Is(err, http.ErrLoginFailed)
//	}
//
//	// Fetch an archive index page
//	html, err := client.GetString(ctx, indexURL)
//
//	// Download a media file with a Referer header and progress callback
//	written, ctype, err := client.DownloadFile(ctx, mediaURL, dest, headers, onProgress)
//
// # Sessions
//
// There is exactly one login per run. The platform expires sessions
// server-side; an expired session shows up as failed downloads, which the
// download package retries and records like any other failure rather than
// re-authenticating mid-batch.
package http
