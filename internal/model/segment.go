package model

import (
	"fmt"
	"path/filepath"
	"time"
)

// Segment is one hourly media file belonging to an airing.
//
// Segment carries both halves of the platform contract:
//   - Date and Hour key the index page that must be primed before the media
//     endpoint serves this file.
//   - Filename is the remote name, which doubles as the local name inside
//     the airing's temp directory.
//
// The platform files shows under the hour they aired, so an hour-0 segment
// (just past midnight) is filed under the day after the airing date. NewSegment
// applies that rollover; everything downstream just reads Segment.Date.
type Segment struct {
	// Airing is the occurrence this segment belongs to.
	Airing *Airing

	// Index is the 1-based position within the airing, in playback order.
	Index int

	// Date is the calendar date the platform files this segment under.
	// Equal to the airing date except for hour 0, which uses the next day.
	Date time.Time

	// Hour is the archive hour in [0, 23].
	Hour int

	// Filename is the remote media filename: {CALLSIGN}-{YY}-{MM}-{DD}-{HH}-00.mp3.
	Filename string

	// Path is where the downloaded segment is stored: {TempDir}/{Filename}.
	Path string
}

// NewSegment creates the segment for one archive hour of an airing,
// applying the hour-0 next-day rollover.
func NewSegment(airing *Airing, index, hour int, cfg *PathConfig) *Segment {
	date := airing.Date
	if hour == 0 {
		date = date.AddDate(0, 0, 1)
	}

	seg := &Segment{
		Airing:   airing,
		Index:    index,
		Date:     date,
		Hour:     hour,
		Filename: fmt.Sprintf("%s-%s-%02d-00.mp3", cfg.StationCode, date.Format("06-01-02"), hour),
	}
	seg.Path = filepath.Join(airing.TempDir, seg.Filename)

	return seg
}
