package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/handiism/djb-downloader/internal/audio"
	"github.com/handiism/djb-downloader/internal/config"
	djbhttp "github.com/handiism/djb-downloader/internal/http"
	"github.com/handiism/djb-downloader/internal/model"
)

// fakeArchive simulates the platform behind an httptest server: the
// three-step login, index pages (priming and station detection) and the
// media endpoint.
type fakeArchive struct {
	mu sync.Mutex

	rejectLogin bool
	stationHTML string // index page body, empty for a plain day page
	mediaBody   []byte // nil means the media endpoint 404s

	loginPosts int
	primes     []string // raw queries of index page requests
	mediaFiles []string // f= values of media requests
}

func (a *fakeArchive) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		defer a.mu.Unlock()
		q := r.URL.Query()

		switch {
		case r.Method == http.MethodPost:
			a.loginPosts++
		case q.Get("pp") == "1":
			fmt.Fprint(w, `<form><input name="pn"><input name="ps"></form>`)
		case q.Get("pc") == "3":
			if a.rejectLogin {
				fmt.Fprint(w, `<form><input name="ps"></form>`)
				return
			}
			fmt.Fprint(w, "<html>archive home</html>")
		case q.Get("f") != "":
			a.mediaFiles = append(a.mediaFiles, q.Get("f"))
			if a.mediaBody == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write(a.mediaBody)
		case q.Get("d") != "":
			a.primes = append(a.primes, r.URL.RawQuery)
			if a.stationHTML != "" {
				fmt.Fprint(w, a.stationHTML)
				return
			}
			fmt.Fprint(w, "<html>day index</html>")
		}
	}
}

// stubMerger records merge calls; unless err is set it writes a small
// output file like ffmpeg would.
type stubMerger struct {
	err   error
	calls [][]string
}

func (s *stubMerger) Merge(ctx context.Context, paths []string, outputPath string) error {
	s.calls = append(s.calls, append([]string(nil), paths...))
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(outputPath, []byte("merged"), 0644)
}

type stubInspector struct {
	result audio.Result
	err    error
}

func (s *stubInspector) Inspect(ctx context.Context, path string) (audio.Result, error) {
	return s.result, s.err
}

func playableResult(duration string) audio.Result {
	return audio.Result{
		Streams: []audio.Stream{{CodecType: "audio", CodecName: "mp3"}},
		Format:  audio.Format{Duration: duration},
	}
}

// testSettings covers a single Monday airing (2024-01-08) with two
// evening segments.
func testSettings(baseURL, outputDir string) *config.Settings {
	return &config.Settings{
		BaseURL:         baseURL,
		Username:        "listener",
		Password:        "hunter2",
		StationCode:     "BSR",
		StationSelector: 2,
		OutputDir:       outputDir,
		Schedules: []model.Schedule{{
			Start:   model.Date{Time: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
			End:     model.Date{Time: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
			Weekday: model.Monday,
			Hours:   []int{22, 23},
		}},
		DownloadMaxRetries:     2,
		DownloadRetryCooldown:  0,
		DownloadRetryExponent:  2,
		RequestTimeoutSeconds:  5,
		DownloadTimeoutSeconds: 5,
		MinSegmentBytes:        8,
		MaxShowSeconds:         9000,
		KeepSegmentsOnFailure:  true,
		PlaylistName:           "shows.m3u",
		M3UExtended:            true,
	}
}

func testManager(t *testing.T, settings *config.Settings, merger Merger, inspector Inspector) *Manager {
	t.Helper()
	m := NewManager(settings, zerolog.Nop(), nil)
	m.merger = merger
	m.inspector = inspector
	m.fetcher.verifier = nil // the per-segment decode check shells out to ffprobe
	return m
}

func TestManager_Run(t *testing.T) {
	archive := &fakeArchive{mediaBody: []byte(strings.Repeat("x", 64))}
	server := httptest.NewServer(archive.handler())
	defer server.Close()

	outputDir := t.TempDir()
	settings := testSettings(server.URL+"/index.php", outputDir)
	merger := &stubMerger{}
	m := testManager(t, settings, merger, &stubInspector{result: playableResult("7200.00")})

	ctx := context.Background()
	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := m.Station().Callsign; got != "BSR" {
		t.Errorf("Station = %q, want BSR", got)
	}
	if len(m.Plan()) != 1 {
		t.Fatalf("planned airings = %d, want 1", len(m.Plan()))
	}

	summary, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.FullyMerged != 1 || summary.SegmentsSucceeded != 2 {
		t.Errorf("summary = %v, want 1 fully merged airing with 2/2 segments", summary)
	}

	if len(archive.primes) != 1 || archive.primes[0] != "c=2&d=08&m=01&y=2024" {
		t.Errorf("priming requests = %v, want one for c=2 on 2024-01-08", archive.primes)
	}

	if len(merger.calls) != 1 {
		t.Fatalf("merge calls = %d, want 1", len(merger.calls))
	}
	var names []string
	for _, p := range merger.calls[0] {
		names = append(names, filepath.Base(p))
	}
	want := []string{"BSR-24-01-08-22-00.mp3", "BSR-24-01-08-23-00.mp3"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("merged %v, want %v (playback order)", names, want)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "2024-01-08.mp3")); err != nil {
		t.Errorf("merged output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "tmp", "2024-01-08")); !os.IsNotExist(err) {
		t.Error("temp dir still present after verified merge")
	}

	results := m.Results()
	if len(results) != 1 || results[0].Duration != 7200 {
		t.Errorf("results = %+v, want one airing with duration 7200", results)
	}

	done, total, bytes := m.GetProgress()
	if done != 2 || total != 2 {
		t.Errorf("progress = %d/%d segments, want 2/2", done, total)
	}
	if bytes != 128 {
		t.Errorf("bytes received = %d, want 128", bytes)
	}
}

func TestManager_MergeFailureKeepsSegments(t *testing.T) {
	archive := &fakeArchive{mediaBody: []byte(strings.Repeat("x", 64))}
	server := httptest.NewServer(archive.handler())
	defer server.Close()

	outputDir := t.TempDir()
	settings := testSettings(server.URL+"/index.php", outputDir)
	merger := &stubMerger{err: errors.New("ffmpeg concat: exit status 1")}
	m := testManager(t, settings, merger, &stubInspector{result: playableResult("7200.00")})

	ctx := context.Background()
	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	summary, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Failed != 1 {
		t.Errorf("summary = %v, want 1 failed airing", summary)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "2024-01-08.mp3")); !os.IsNotExist(err) {
		t.Error("output file present despite merge failure")
	}

	entries, err := os.ReadDir(filepath.Join(outputDir, "tmp", "2024-01-08"))
	if err != nil {
		t.Fatalf("temp dir gone after merge failure: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("temp dir holds %d files, want 2 kept for retry", len(entries))
	}
}

func TestManager_CleanupOnFailureWhenRequested(t *testing.T) {
	archive := &fakeArchive{mediaBody: []byte(strings.Repeat("x", 64))}
	server := httptest.NewServer(archive.handler())
	defer server.Close()

	outputDir := t.TempDir()
	settings := testSettings(server.URL+"/index.php", outputDir)
	settings.KeepSegmentsOnFailure = false
	merger := &stubMerger{err: errors.New("ffmpeg concat: exit status 1")}
	m := testManager(t, settings, merger, &stubInspector{result: playableResult("7200.00")})

	ctx := context.Background()
	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := m.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "tmp", "2024-01-08")); !os.IsNotExist(err) {
		t.Error("temp dir kept although cleanup on failure was requested")
	}
}

func TestManager_AllSegmentsFailedSkipsMerge(t *testing.T) {
	archive := &fakeArchive{} // media endpoint 404s
	server := httptest.NewServer(archive.handler())
	defer server.Close()

	outputDir := t.TempDir()
	settings := testSettings(server.URL+"/index.php", outputDir)
	merger := &stubMerger{}
	m := testManager(t, settings, merger, &stubInspector{result: playableResult("7200.00")})

	ctx := context.Background()
	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	summary, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Failed != 1 || summary.SegmentsSucceeded != 0 {
		t.Errorf("summary = %v, want 1 failed airing with 0 segments", summary)
	}
	if len(merger.calls) != 0 {
		t.Errorf("merge calls = %d, want none without segments", len(merger.calls))
	}
	for _, r := range m.Results() {
		for _, seg := range r.Segments {
			if seg.Kind != KindHTTPError {
				t.Errorf("segment %s kind = %v, want KindHTTPError", seg.Segment.Filename, seg.Kind)
			}
		}
	}
}

func TestManager_UnverifiedMergeKeepsSegments(t *testing.T) {
	archive := &fakeArchive{mediaBody: []byte(strings.Repeat("x", 64))}
	server := httptest.NewServer(archive.handler())
	defer server.Close()

	outputDir := t.TempDir()
	settings := testSettings(server.URL+"/index.php", outputDir)
	merger := &stubMerger{}
	inspector := &stubInspector{err: errors.New("ffprobe inspect: exit status 1")}
	m := testManager(t, settings, merger, inspector)

	ctx := context.Background()
	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	summary, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.PartiallyMerged != 1 {
		t.Errorf("summary = %v, want 1 partially merged airing", summary)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "tmp", "2024-01-08")); err != nil {
		t.Errorf("temp dir gone although the merged output never verified: %v", err)
	}
}

func TestManager_LoginFailureIsFatal(t *testing.T) {
	archive := &fakeArchive{rejectLogin: true}
	server := httptest.NewServer(archive.handler())
	defer server.Close()

	settings := testSettings(server.URL+"/index.php", t.TempDir())
	m := testManager(t, settings, &stubMerger{}, &stubInspector{})

	err := m.Initialize(context.Background())
	if err == nil {
		t.Fatal("Initialize succeeded with rejected credentials")
	}
	if !errors.Is(err, djbhttp.ErrLoginFailed) {
		t.Errorf("error = %v, want ErrLoginFailed", err)
	}
}

func TestManager_AmbiguousStationSelection(t *testing.T) {
	archive := &fakeArchive{
		mediaBody: []byte(strings.Repeat("x", 64)),
		stationHTML: `<table>
			<tr><td><a href="index.php?d=08&m=01&y=2024&c=2">BSR</a></td></tr>
			<tr><td><a href="index.php?d=08&m=01&y=2024&c=7">WXPN</a></td></tr>
		</table>`,
	}
	server := httptest.NewServer(archive.handler())
	defer server.Close()

	outputDir := t.TempDir()
	settings := testSettings(server.URL+"/index.php", outputDir)
	settings.StationCode = "" // force auto-detection
	merger := &stubMerger{}
	m := testManager(t, settings, merger, &stubInspector{result: playableResult("7200.00")})

	ctx := context.Background()
	err := m.Initialize(ctx)
	var ambiguous *StationAmbiguousError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("Initialize error = %v, want StationAmbiguousError", err)
	}
	if len(ambiguous.Candidates) != 2 || ambiguous.Candidates[0].Callsign != "BSR" {
		t.Fatalf("candidates = %+v, want BSR and WXPN", ambiguous.Candidates)
	}

	m.SetStation(ambiguous.Candidates[0])
	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize after SetStation: %v", err)
	}
	if archive.loginPosts != 1 {
		t.Errorf("login POSTs = %d, want 1 (session survives re-initialization)", archive.loginPosts)
	}

	summary, err := m.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.FullyMerged != 1 {
		t.Errorf("summary = %v, want 1 fully merged airing", summary)
	}

	// Both the priming selector and the filenames come from the choice.
	foundPrime := false
	for _, q := range archive.primes {
		if strings.HasPrefix(q, "c=2&") {
			foundPrime = true
		}
	}
	if !foundPrime {
		t.Errorf("priming requests = %v, none used the selected station code", archive.primes)
	}
	if len(archive.mediaFiles) == 0 || !strings.HasPrefix(archive.mediaFiles[0], "BSR-") {
		t.Errorf("media files = %v, want BSR-prefixed names", archive.mediaFiles)
	}
}

func TestManager_WritesPlaylist(t *testing.T) {
	archive := &fakeArchive{mediaBody: []byte(strings.Repeat("x", 64))}
	server := httptest.NewServer(archive.handler())
	defer server.Close()

	outputDir := t.TempDir()
	settings := testSettings(server.URL+"/index.php", outputDir)
	settings.CreatePlaylist = true
	merger := &stubMerger{}
	m := testManager(t, settings, merger, &stubInspector{result: playableResult("7200.00")})

	ctx := context.Background()
	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := m.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(outputDir, "shows.m3u"))
	if err != nil {
		t.Fatalf("playlist missing: %v", err)
	}
	content := string(raw)
	for _, want := range []string{"#EXTM3U", "#EXTINF:7200,BSR 2024-01-08", "2024-01-08.mp3"} {
		if !strings.Contains(content, want) {
			t.Errorf("playlist missing %q:\n%s", want, content)
		}
	}
}

func TestManager_RunHonorsCancellation(t *testing.T) {
	archive := &fakeArchive{mediaBody: []byte(strings.Repeat("x", 64))}
	server := httptest.NewServer(archive.handler())
	defer server.Close()

	settings := testSettings(server.URL+"/index.php", t.TempDir())
	m := testManager(t, settings, &stubMerger{}, &stubInspector{result: playableResult("7200.00")})

	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := m.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
	if summary.Airings != 0 {
		t.Errorf("summary = %v, want no processed airings", summary)
	}
}
