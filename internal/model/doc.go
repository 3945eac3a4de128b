// Package model defines the core data structures used throughout
// the djb-downloader application.
//
// # Schedule
//
// Schedule declares a recurring show in the settings file: a date range,
// a weekday (Monday-first, matching the platform), and the archive hours
// to fetch per airing:
//
//	{"start": "2024-09-01", "end": "2025-05-01", "weekday": 0, "hours": [22, 23, 0]}
//
// # Airing and Segment
//
// An Airing is one concrete occurrence of a show: the date that matched the
// schedule's weekday plus its hourly segments in playback order. Paths are
// computed at construction from a PathConfig:
//
//	airing := model.NewAiring(date, []int{22, 23, 0}, cfg)
//	airing.OutputPath           // {OutputDir}/2024-01-08.mp3
//	airing.Segments[2].Filename // BSR-24-01-09-00-00.mp3 (hour 0 → next day)
//
// The hour-0 rollover is the one subtle rule here: the platform files a
// past-midnight segment under the next calendar date, so the last hour of a
// 10pm-1am show carries a different date than its airing.
//
// # Wire formats
//
// Date ("YYYY-MM-DD") and Weekday (0=Monday .. 6=Sunday, or a day name)
// implement json.Unmarshaler for use in the settings file.
package model
