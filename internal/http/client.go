package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"
)

// ErrLoginFailed is returned when the archive does not accept the supplied
// credentials, or when a login step fails outright.
//
// There is no recovery short of new credentials: every later request depends
// on the session cookies this login establishes.
var ErrLoginFailed = errors.New("archive login failed")

// userAgent is sent on every request. The platform serves a degraded page
// to clients it does not recognize as a browser.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/605.1.15 (KHTML, like Gecko) " +
	"Chrome/117.0.5938.150 Safari/605.1.15"

// Client wraps HTTP operations with DJB-specific configuration.
//
// Client provides:
//   - A cookie jar holding the authenticated session for the whole run
//   - A browser User-Agent the platform accepts
//   - Timeout handling
//   - File download with progress tracking
//
// One Client is shared across all requests of a run. Authenticate once with
// Login; the platform binds the session to cookies, so the same Client must
// perform every subsequent priming and media request.
//
// Example usage:
//
//	client := http.NewClient(60 * time.Second)
//	if err := client.Login(ctx, baseURL, user, pass); err != nil {
//	    return err // ErrLoginFailed: nothing else will work
//	}
//	html, err := client.GetString(ctx, indexURL)
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new HTTP client configured for the DJB platform.
//
// timeout bounds every request including the response body read; callers
// with shorter needs (priming probes) pass a context deadline instead.
func NewClient(timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// Login authenticates against the archive and finalizes session state.
//
// The platform's login is a three-step dance, all against the index.php
// entry point:
//
//  1. GET {base}?pp=1 to fetch the login form (sets the initial cookie)
//  2. POST {base} with pp=1, pn=<user>, ps=<pass> to submit credentials
//  3. GET {base}?pc=3 to visit the landing page, which finalizes the session
//
// A non-2xx response on any step, or a finalize page that still contains
// the login form's password field, fails with an error wrapping
// ErrLoginFailed. One successful Login per run is all the session handling
// there is; if the session later expires, downloads fail and are retried or
// recorded like any other failure.
func (c *Client) Login(ctx context.Context, baseURL, username, password string) error {
	if _, err := c.fetch(ctx, baseURL+"?pp=1", nil); err != nil {
		return fmt.Errorf("%w: fetching login form: %v", ErrLoginFailed, err)
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("%w: bad base URL %q: %v", ErrLoginFailed, baseURL, err)
	}
	origin := parsed.Scheme + "://" + parsed.Host

	form := url.Values{
		"pp": {"1"},
		"pn": {username},
		"ps": {password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", baseURL+"?pp=1")
	req.Header.Set("Origin", origin)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: submitting credentials: %v", ErrLoginFailed, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: credential POST returned HTTP %d", ErrLoginFailed, resp.StatusCode)
	}

	landing, err := c.fetch(ctx, baseURL+"?pc=3", nil)
	if err != nil {
		return fmt.Errorf("%w: finalizing session: %v", ErrLoginFailed, err)
	}

	// If the landing page still carries the password field, the POST was
	// swallowed without authenticating (wrong credentials come back 200).
	if strings.Contains(string(landing), `name="ps"`) {
		return fmt.Errorf("%w: archive still shows the login form (check credentials)", ErrLoginFailed)
	}

	return nil
}

// Get performs a GET request and returns the response body as bytes.
//
// The request includes the configured User-Agent header and the session
// cookies. Returns an error if the request fails, the response status is
// not 200 OK, or reading the body fails.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.fetch(ctx, url, nil)
}

// GetString performs a GET request and returns the response body as a string.
//
// This is a convenience wrapper around Get for fetching text content like
// the archive's index pages.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.fetch(ctx, url, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// fetch is the shared GET path: UA header, optional extra headers, 200 check.
func (c *Client) fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// DownloadFile downloads a URL to the specified path, streaming to disk.
//
// headers are added to the request (the media endpoint wants the archive
// page as Referer). The file is created or truncated. Returns the bytes
// written and the response Content-Type so callers can apply their own
// sanity checks; a non-200 status is an error and writes nothing.
//
// Example:
//
//	written, ctype, err := client.DownloadFile(ctx, mediaURL, dest,
//	    map[string]string{"Referer": referer}, func(written, total int64) {
//	        // update progress display
//	    })
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, headers map[string]string, onProgress func(written, total int64)) (int64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, resp.Header.Get("Content-Type"), fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, "", err
	}
	defer file.Close()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	written, err := io.Copy(writer, resp.Body)
	return written, resp.Header.Get("Content-Type"), err
}
