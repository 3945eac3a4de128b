package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/handiism/djb-downloader/internal/audio"
	"github.com/handiism/djb-downloader/internal/config"
	"github.com/handiism/djb-downloader/internal/djb"
	"github.com/handiism/djb-downloader/internal/http"
	ioutils "github.com/handiism/djb-downloader/internal/io"
	"github.com/handiism/djb-downloader/internal/model"
	"github.com/handiism/djb-downloader/internal/schedule"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// StationAmbiguousError is returned by Initialize when the archive
// lists several stations. The boundary (CLI prompt or TUI list) picks
// one, calls SetStation and re-runs Initialize.
type StationAmbiguousError struct {
	Candidates []djb.Station
	IndexURL   string
}

func (e *StationAmbiguousError) Error() string {
	return fmt.Sprintf("%d station callsigns detected, selection required", len(e.Candidates))
}

// StationUnresolvedError is returned by Initialize when no callsign
// could be detected. RawHTML carries the fetched page for diagnostics;
// the boundary must obtain a callsign, call SetStation and re-run
// Initialize.
type StationUnresolvedError struct {
	RawHTML  string
	IndexURL string
}

func (e *StationUnresolvedError) Error() string {
	return "could not auto-detect station callsign"
}

// Merger produces one output file from ordered segment paths.
// *audio.Merger satisfies it.
type Merger interface {
	Merge(ctx context.Context, paths []string, outputPath string) error
}

// Inspector probes a media file's streams and duration.
// *audio.Prober satisfies it.
type Inspector interface {
	Inspect(ctx context.Context, path string) (audio.Result, error)
}

// Manager coordinates a whole batch run: login, station resolution,
// schedule expansion, sequential segment fetching, per-airing merge and
// verification, tagging and the archive playlist.
type Manager struct {
	settings     *config.Settings
	logger       zerolog.Logger
	httpClient   *http.Client
	resolver     *djb.Resolver
	tracker      *PrimeTracker
	fetcher      *Fetcher
	merger       Merger
	inspector    Inspector
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	loggedIn   bool
	stationSet bool
	station    djb.Station
	artwork    []byte

	airings []*model.Airing
	results []*AiringResult

	totalSegments int32
	doneSegments  int32
	receivedBytes int64
	currentBytes  int64

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewManager creates a Manager wired to the real platform client and
// audio tools. onProgress may be nil.
func NewManager(settings *config.Settings, logger zerolog.Logger, onProgress func(ProgressEvent)) *Manager {
	client := http.NewClient(settings.DownloadTimeout())
	prober := audio.NewProber(settings.FFprobePath)

	m := &Manager{
		settings:     settings,
		logger:       logger,
		httpClient:   client,
		resolver:     djb.NewResolver(client, settings.BaseURL),
		tracker:      NewPrimeTracker(),
		merger:       audio.NewMerger(settings.FFmpegPath, settings.MaxShowSeconds),
		inspector:    prober,
		tagger:       audio.NewTagger(audio.DefaultTagConfig()),
		playlist:     audio.NewPlaylistCreator(audio.FormatFromPath(settings.PlaylistName), settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
	}

	m.fetcher = NewFetcher(client, prober, m.tracker, FetcherConfig{
		BaseURL:         settings.BaseURL,
		StationCode:     settings.StationSelector,
		MaxRetries:      settings.DownloadMaxRetries,
		RetryCooldown:   settings.DownloadRetryCooldown,
		RetryExponent:   settings.DownloadRetryExponent,
		RequestTimeout:  settings.RequestTimeout(),
		DownloadTimeout: settings.DownloadTimeout(),
		MinSegmentBytes: settings.MinSegmentBytes,
	})
	return m
}

// SetStation fixes the station after a boundary interaction resolved an
// ambiguous or undetected callsign. The callsign is sanitized because
// it lands in every filename.
func (m *Manager) SetStation(station djb.Station) {
	station.Callsign = ioutils.SanitizeFileName(station.Callsign)
	m.mu.Lock()
	m.station = station
	m.stationSet = true
	m.mu.Unlock()
	m.fetcher.SetStationCode(station.Code)
}

// Station returns the station the run is using. Only meaningful after
// a successful Initialize.
func (m *Manager) Station() djb.Station {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.station
}

// Plan returns the expanded airing list. Only meaningful after a
// successful Initialize.
func (m *Manager) Plan() []*model.Airing {
	return m.airings
}

// Results returns the airing results collected so far.
func (m *Manager) Results() []*AiringResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*AiringResult(nil), m.results...)
}

// Initialize authenticates, resolves the station and expands the
// schedules into the run plan.
//
// Station ambiguity or detection failure comes back as a typed error
// (StationAmbiguousError, StationUnresolvedError); the caller resolves
// it, calls SetStation and runs Initialize again. The session from the
// first call is kept, so no second login happens.
func (m *Manager) Initialize(ctx context.Context) error {
	if err := m.login(ctx); err != nil {
		return err
	}
	if err := m.resolveStation(ctx); err != nil {
		return err
	}
	m.loadArtwork(ctx)
	m.expandPlan()
	return nil
}

// login authenticates once per run. An authentication failure is fatal
// to the batch; an expiring session later is not re-authenticated and
// shows up as failed downloads instead.
func (m *Manager) login(ctx context.Context) error {
	if m.loggedIn {
		return nil
	}

	m.progress(ProgressEvent{Message: "Logging in...", Level: LevelVerbose})
	if err := m.httpClient.Login(ctx, m.settings.BaseURL, m.settings.Username, m.settings.Password); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	m.loggedIn = true
	m.progress(ProgressEvent{Message: "Logged in successfully", Level: LevelSuccess})
	return nil
}

// resolveStation determines the callsign: configuration wins, then the
// detection chain on the archive index page.
func (m *Manager) resolveStation(ctx context.Context) error {
	if m.stationSet {
		return nil
	}

	if m.settings.StationCode != "" {
		m.SetStation(djb.Station{
			Code:     m.settings.StationSelector,
			Callsign: m.settings.StationCode,
		})
		return nil
	}

	m.progress(ProgressEvent{Message: "No station callsign configured, auto-detecting...", Level: LevelInfo})
	res, err := m.resolver.Resolve(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("callsign detection failed: %w", err)
	}

	switch res.State {
	case djb.StateResolved:
		m.SetStation(res.Station)
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Auto-detected station callsign: %s", res.Station.Callsign),
			Level:   LevelSuccess,
		})
		return nil
	case djb.StateAmbiguous:
		return &StationAmbiguousError{Candidates: res.Candidates, IndexURL: res.IndexURL}
	default:
		return &StationUnresolvedError{RawHTML: res.RawHTML, IndexURL: res.IndexURL}
	}
}

// loadArtwork reads and prepares the station cover art once per run.
// Missing or broken artwork downgrades to untagged covers, never a
// failed batch.
func (m *Manager) loadArtwork(ctx context.Context) {
	if m.artwork != nil || m.settings.StationArtPath == "" || !m.settings.ModifyTags {
		return
	}

	art, err := m.imageService.LoadStationArt(ctx, m.settings.StationArtPath,
		m.settings.ArtMaxSize, m.settings.ConvertArtToJPG)
	if err != nil {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Station artwork unavailable: %v", err),
			Level:   LevelWarning,
		})
		return
	}
	m.artwork = art
}

// expandPlan runs schedule expansion with the resolved callsign and the
// configured resume cutoff.
func (m *Manager) expandPlan() {
	pathCfg := m.settings.ToPathConfig()
	pathCfg.StationCode = m.station.Callsign

	m.airings = schedule.Expand(m.settings.Schedules, pathCfg, m.settings.StartDate.Time)

	var segments int32
	for _, airing := range m.airings {
		segments += int32(len(airing.Segments))
	}
	atomic.StoreInt32(&m.totalSegments, segments)

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Planned %d airings (%d segments)", len(m.airings), segments),
		Level:   LevelInfo,
	})
}

// Run processes every planned airing strictly in order and returns the
// batch summary. Individual airing failures never halt the run; only a
// canceled context stops it early.
func (m *Manager) Run(ctx context.Context) (*Summary, error) {
	if len(m.airings) == 0 {
		m.progress(ProgressEvent{Message: "Nothing to download: no airings in range", Level: LevelWarning})
		return &Summary{}, nil
	}

	for _, airing := range m.airings {
		if ctx.Err() != nil {
			return Summarize(m.Results()), ctx.Err()
		}

		result := m.processAiring(ctx, airing)

		m.mu.Lock()
		m.results = append(m.results, result)
		m.mu.Unlock()
	}

	if m.settings.CreatePlaylist {
		m.writePlaylist(ctx)
	}

	summary := Summarize(m.Results())
	m.progress(ProgressEvent{Message: summary.String(), Level: LevelSuccess})
	return summary, nil
}

// processAiring fetches an airing's segments sequentially, merges what
// succeeded and verifies the output. Segment order is playback order;
// fetches are never reordered or parallelized.
func (m *Manager) processAiring(ctx context.Context, airing *model.Airing) *AiringResult {
	result := &AiringResult{Airing: airing}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Processing %s (%d segments)", airing.DateString(), len(airing.Segments)),
		Level:   LevelInfo,
	})

	if err := ioutils.EnsureDir(airing.TempDir); err != nil {
		result.MergeErr = fmt.Errorf("could not create temp dir: %w", err)
		m.progress(ProgressEvent{Message: result.MergeErr.Error(), Level: LevelError})
		return result
	}

	for i, seg := range airing.Segments {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Downloading %s (segment %d/%d)", seg.Filename, i+1, len(airing.Segments)),
			Level:   LevelVerbose,
		})

		segResult := m.fetcher.FetchSegment(ctx, seg, m.trackBytes)
		result.Segments = append(result.Segments, segResult)

		atomic.AddInt32(&m.doneSegments, 1)
		atomic.AddInt64(&m.receivedBytes, segResult.Bytes)
		atomic.StoreInt64(&m.currentBytes, 0)

		if segResult.Success {
			m.logger.Debug().
				Str("file", seg.Filename).
				Int64("bytes", segResult.Bytes).
				Msg("segment downloaded")
		} else {
			m.progress(ProgressEvent{
				Message: fmt.Sprintf("Segment %s failed (%s): %v", seg.Filename, segResult.Kind, segResult.Err),
				Level:   LevelWarning,
			})
		}
	}

	m.mergeAiring(ctx, airing, result)

	if result.Verified || !m.settings.KeepSegmentsOnFailure {
		m.cleanupTemp(airing)
	} else {
		// Remove the dir only if nothing was left behind to inspect.
		os.Remove(airing.TempDir)
	}
	return result
}

// mergeAiring concatenates the airing's successful segments and runs
// the post-merge verification.
func (m *Manager) mergeAiring(ctx context.Context, airing *model.Airing, result *AiringResult) {
	paths := result.SuccessPaths()
	if len(paths) == 0 {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("All segments failed for %s, skipping merge", airing.DateString()),
			Level:   LevelError,
		})
		return
	}
	if len(paths) < len(airing.Segments) {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Merging %s with %d/%d segments", airing.DateString(), len(paths), len(airing.Segments)),
			Level:   LevelWarning,
		})
	}

	if err := m.merger.Merge(ctx, paths, airing.OutputPath); err != nil {
		result.MergeErr = err
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Merge failed for %s: %v", airing.DateString(), err),
			Level:   LevelError,
		})
		return
	}
	result.Merged = true
	result.OutputPath = airing.OutputPath

	inspection, err := m.inspector.Inspect(ctx, airing.OutputPath)
	if err == nil {
		err = audio.Verify(inspection)
	}
	if err != nil {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Merged %s but verification failed: %v", airing.DateString(), err),
			Level:   LevelWarning,
		})
		return
	}

	result.Verified = true
	result.Duration = inspection.DurationSeconds()

	m.tagRecording(ctx, airing)
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Created %s", filepath.Base(airing.OutputPath)),
		Level:   LevelSuccess,
	})
}

// tagRecording writes show metadata and cover art onto the merged file.
func (m *Manager) tagRecording(ctx context.Context, airing *model.Airing) {
	if !m.settings.ModifyTags {
		return
	}

	info := audio.ShowInfo{
		Station: m.settings.StationName,
		Show:    m.settings.ShowName,
	}
	if info.Station == "" {
		info.Station = m.station.Callsign
	}

	if err := m.tagger.SaveTags(airing.OutputPath, airing.Date, info, m.artwork); err != nil {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Error tagging %s: %v", filepath.Base(airing.OutputPath), err),
			Level:   LevelWarning,
		})
	}
}

// writePlaylist generates the archive playlist over everything merged
// in this run.
func (m *Manager) writePlaylist(ctx context.Context) {
	title := m.settings.ShowName
	if title == "" {
		title = m.station.Callsign
	}
	stationName := m.settings.StationName
	if stationName == "" {
		stationName = m.station.Callsign
	}

	var entries []audio.Entry
	for _, result := range m.Results() {
		if !result.Merged {
			continue
		}
		entries = append(entries, audio.Entry{
			Path:     result.OutputPath,
			Title:    fmt.Sprintf("%s %s", title, result.Airing.DateString()),
			Duration: result.Duration,
		})
	}
	if len(entries) == 0 {
		return
	}

	content := m.playlist.CreatePlaylist(&audio.Playlist{
		Title:   title,
		Station: stationName,
		Entries: entries,
	})
	path := filepath.Join(m.settings.OutputDir, m.settings.PlaylistName)
	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", m.settings.PlaylistName), Level: LevelSuccess})
}

// cleanupTemp removes an airing's temp directory and everything in it.
func (m *Manager) cleanupTemp(airing *model.Airing) {
	if err := os.RemoveAll(airing.TempDir); err != nil {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Could not remove %s: %v", airing.TempDir, err),
			Level:   LevelWarning,
		})
	}
}

// GetProgress returns current batch progress for polling UIs.
func (m *Manager) GetProgress() (segmentsDone, segmentsTotal int32, bytesReceived int64) {
	return atomic.LoadInt32(&m.doneSegments), atomic.LoadInt32(&m.totalSegments),
		atomic.LoadInt64(&m.receivedBytes) + atomic.LoadInt64(&m.currentBytes)
}

// trackBytes feeds streaming progress from the current transfer into
// GetProgress.
func (m *Manager) trackBytes(written, total int64) {
	atomic.StoreInt64(&m.currentBytes, written)
}

func (m *Manager) progress(event ProgressEvent) {
	switch event.Level {
	case LevelError:
		m.logger.Error().Msg(event.Message)
	case LevelWarning:
		m.logger.Warn().Msg(event.Message)
	case LevelVerbose:
		m.logger.Debug().Msg(event.Message)
	default:
		m.logger.Info().Msg(event.Message)
	}

	if m.onProgress != nil {
		m.onProgress(event)
	}
}
