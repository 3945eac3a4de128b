package model

import (
	"path/filepath"
	"time"
)

// PathConfig holds the values needed to compute local paths and remote
// filenames for airings and their segments.
//
// Example:
//
//	cfg := &model.PathConfig{OutputDir: "/srv/shows", StationCode: "BSR"}
//	airing := model.NewAiring(date, []int{22, 23, 0}, cfg)
//	// airing.OutputPath = "/srv/shows/2024-01-08.mp3"
//	// airing.TempDir    = "/srv/shows/tmp/2024-01-08"
type PathConfig struct {
	// OutputDir is where merged recordings are written. Temporary segment
	// directories live under OutputDir/tmp.
	OutputDir string

	// StationCode is the station callsign embedded in remote filenames
	// (e.g. "BSR"). Must be resolved before airings are built; segment
	// filenames are meaningless without it.
	StationCode string
}

// Airing is one concrete occurrence of a show: a specific calendar date plus
// the ordered hourly segments that make up the broadcast.
//
// The airing date is the date that matched the schedule's weekday. A show
// that runs past midnight still has a single airing dated on its start day;
// the hour-0 segment carries the next calendar date (see NewSegment).
//
// Example:
//
//	airing := model.NewAiring(monday, []int{22, 23, 0}, cfg)
//	for _, seg := range airing.Segments {
//	    fmt.Println(seg.Filename) // BSR-24-01-08-22-00.mp3, ..., BSR-24-01-09-00-00.mp3
//	}
type Airing struct {
	// Date is the calendar date the airing started on.
	Date time.Time

	// Segments are the hourly files in playback order. Concatenation must
	// preserve this order.
	Segments []*Segment

	// OutputPath is the merged recording destination: {OutputDir}/{YYYY-MM-DD}.mp3.
	OutputPath string

	// TempDir holds the downloaded segments until a verified merge:
	// {OutputDir}/tmp/{YYYY-MM-DD}.
	TempDir string
}

// NewAiring creates an Airing for date with one segment per hour, in the
// given hour order.
func NewAiring(date time.Time, hours []int, cfg *PathConfig) *Airing {
	name := date.Format("2006-01-02")
	airing := &Airing{
		Date:       date,
		OutputPath: filepath.Join(cfg.OutputDir, name+".mp3"),
		TempDir:    filepath.Join(cfg.OutputDir, "tmp", name),
	}

	for i, hour := range hours {
		airing.Segments = append(airing.Segments, NewSegment(airing, i+1, hour, cfg))
	}

	return airing
}

// DateString returns the airing date as "YYYY-MM-DD", the name used for the
// merged output file and the temp directory.
func (a *Airing) DateString() string {
	return a.Date.Format("2006-01-02")
}
