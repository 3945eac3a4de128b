// Package config provides configuration management for djb-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Base URL and option normalization
//   - Conversion to model.PathConfig for path computation
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Music/Shows
//	// 3 retries with exponential backoff
//	// ffmpeg/ffprobe resolved from PATH
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Normalization
//
// Normalize() makes pasted values usable: a schemeless base URL gains
// https://, the platform's index.php entry point is appended when missing,
// and zeroed numeric options fall back to their defaults:
//
//	settings.BaseURL = "archive.example.com"
//	settings.Normalize()
//	// settings.BaseURL == "https://archive.example.com/index.php"
//
// # Schedules
//
// Recurring shows are declared inline in the settings file and validated
// before a run:
//
//	"schedules": [
//	  {"start": "2024-09-01", "end": "2025-05-01", "weekday": 0, "hours": [22, 23, 0]}
//	]
package config
