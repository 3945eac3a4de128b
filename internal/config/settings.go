package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/djb-downloader/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Platform settings
	BaseURL         string `json:"base_url"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	StationCode     string `json:"station_code"`     // empty: auto-detect after login
	StationSelector int    `json:"station_selector"` // numeric c= code; 0 works for single-station accounts

	// Output settings
	OutputDir string     `json:"output_dir"`
	StartDate model.Date `json:"start_date"` // resume cutoff; zero: process everything

	// Show schedules
	Schedules []model.Schedule `json:"schedules"`

	// Download settings
	DownloadMaxRetries     int     `json:"download_max_retries"`
	DownloadRetryCooldown  float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent  float64 `json:"download_retry_exponent"`
	RequestTimeoutSeconds  int     `json:"request_timeout_seconds"`
	DownloadTimeoutSeconds int     `json:"download_timeout_seconds"`
	MinSegmentBytes        int64   `json:"min_segment_bytes"`

	// Merge settings
	MaxShowSeconds        int    `json:"max_show_seconds"`
	KeepSegmentsOnFailure bool   `json:"keep_segments_on_failure"`
	FFmpegPath            string `json:"ffmpeg_path"`
	FFprobePath           string `json:"ffprobe_path"`

	// Tag settings
	ModifyTags      bool   `json:"modify_tags"`
	ShowName        string `json:"show_name"`
	StationName     string `json:"station_name"`
	StationArtPath  string `json:"station_art_path"`
	ArtMaxSize      int    `json:"art_max_size"`
	ConvertArtToJPG bool   `json:"convert_art_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistName   string `json:"playlist_name"`
	M3UExtended    bool   `json:"m3u_extended"`

	// Logging settings
	LogPath  string `json:"log_path"`
	LogLevel string `json:"log_level"` // debug, info, warn, error
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		OutputDir: filepath.Join(homeDir, "Music", "Shows"),

		DownloadMaxRetries:     3,
		DownloadRetryCooldown:  1.0,
		DownloadRetryExponent:  2.0,
		RequestTimeoutSeconds:  30,
		DownloadTimeoutSeconds: 60,
		MinSegmentBytes:        32 * 1024,

		MaxShowSeconds:        9000,
		KeepSegmentsOnFailure: true,
		FFmpegPath:            "ffmpeg",
		FFprobePath:           "ffprobe",

		ModifyTags:      true,
		ArtMaxSize:      1000,
		ConvertArtToJPG: true,

		CreatePlaylist: false,
		PlaylistName:   "shows.m3u",
		M3UExtended:    true,

		LogLevel: "info",
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Normalize cleans up user-supplied values and restores defaults for
// numeric options that were zeroed or set to nonsense.
//
// The base URL gets the treatment users expect from pasting a browser
// address: a missing scheme becomes https, and the platform's index.php
// entry point is appended when absent, so "archive.example.com" turns into
// "https://archive.example.com/index.php".
func (s *Settings) Normalize() {
	s.BaseURL = strings.TrimSpace(s.BaseURL)
	if s.BaseURL != "" {
		lower := strings.ToLower(s.BaseURL)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			s.BaseURL = "https://" + s.BaseURL
		}
		if !strings.HasSuffix(strings.ToLower(s.BaseURL), "index.php") {
			s.BaseURL = strings.TrimRight(s.BaseURL, "/") + "/index.php"
		}
	}

	s.StationCode = strings.TrimSpace(s.StationCode)

	defaults := DefaultSettings()
	if s.DownloadMaxRetries <= 0 {
		s.DownloadMaxRetries = defaults.DownloadMaxRetries
	}
	if s.DownloadRetryCooldown <= 0 {
		s.DownloadRetryCooldown = defaults.DownloadRetryCooldown
	}
	if s.DownloadRetryExponent < 1 {
		s.DownloadRetryExponent = defaults.DownloadRetryExponent
	}
	if s.RequestTimeoutSeconds <= 0 {
		s.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
	}
	if s.DownloadTimeoutSeconds <= 0 {
		s.DownloadTimeoutSeconds = defaults.DownloadTimeoutSeconds
	}
	if s.MinSegmentBytes <= 0 {
		s.MinSegmentBytes = defaults.MinSegmentBytes
	}
	if s.MaxShowSeconds <= 0 {
		s.MaxShowSeconds = defaults.MaxShowSeconds
	}
	if strings.TrimSpace(s.FFmpegPath) == "" {
		s.FFmpegPath = defaults.FFmpegPath
	}
	if strings.TrimSpace(s.FFprobePath) == "" {
		s.FFprobePath = defaults.FFprobePath
	}
	if s.ArtMaxSize <= 0 {
		s.ArtMaxSize = defaults.ArtMaxSize
	}
	if strings.TrimSpace(s.PlaylistName) == "" {
		s.PlaylistName = defaults.PlaylistName
	}
	if strings.TrimSpace(s.LogLevel) == "" {
		s.LogLevel = defaults.LogLevel
	}
}

// Validate reports the first problem that would prevent a run: a missing
// base URL or output directory, or an invalid schedule. Credentials are not
// checked here; they may still be prompted for at the boundary.
func (s *Settings) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("no archive base URL configured")
	}
	if s.OutputDir == "" {
		return fmt.Errorf("no output directory configured")
	}
	if len(s.Schedules) == 0 {
		return fmt.Errorf("no show schedules configured")
	}
	for i := range s.Schedules {
		if err := s.Schedules[i].Validate(); err != nil {
			return fmt.Errorf("schedule %d: %w", i+1, err)
		}
	}
	return nil
}

// RequestTimeout returns the timeout for index/priming requests.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// DownloadTimeout returns the timeout for media downloads.
func (s *Settings) DownloadTimeout() time.Duration {
	return time.Duration(s.DownloadTimeoutSeconds) * time.Second
}

// ToPathConfig converts settings to a model.PathConfig.
//
// Call this after the station code is known; airings built from a
// PathConfig with an empty StationCode would produce broken filenames.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		OutputDir:   s.OutputDir,
		StationCode: s.StationCode,
	}
}
