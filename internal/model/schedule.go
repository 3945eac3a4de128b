package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date that marshals to and from "YYYY-MM-DD".
//
// The DJB settings file stores schedule boundaries as plain dates with no
// time or zone component. Date embeds time.Time so callers can use the full
// time API (AddDate, Weekday, Format) on it directly.
//
// Example:
//
//	var d model.Date
//	json.Unmarshal([]byte(`"2024-09-01"`), &d)
//	d.Format("2006-01-02") // "2024-09-01"
type Date struct {
	time.Time
}

// UnmarshalJSON parses a "YYYY-MM-DD" date string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("unable to parse date %q (want YYYY-MM-DD)", s)
	}
	d.Time = t
	return nil
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format("2006-01-02"))
}

// Weekday identifies the day of week a show airs on.
//
// The archive platform counts days Monday-first: 0=Monday .. 6=Sunday.
// This differs from time.Weekday (Sunday-first); use Go or Matches instead
// of comparing raw values against time.Weekday.
//
// In JSON a Weekday may be written as the platform's number or as an English
// day name ("monday", "Mon", ...), mirroring how Date accepts its one format
// strictly but Weekday tolerates the spellings people actually type.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// String returns the English day name.
func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	name := weekdayNames[w]
	return strings.ToUpper(name[:1]) + name[1:]
}

// Go converts the platform weekday to the time package's Sunday-first one.
func (w Weekday) Go() time.Weekday {
	return time.Weekday((int(w) + 1) % 7)
}

// Matches reports whether t falls on this weekday.
func (w Weekday) Matches(t time.Time) bool {
	return t.Weekday() == w.Go()
}

// UnmarshalJSON accepts either the platform number (0=Monday .. 6=Sunday)
// or an English day name, full or three-letter ("wednesday", "wed").
func (w *Weekday) UnmarshalJSON(data []byte) error {
	// json.Unmarshal treats null as a no-op for ints, which would
	// silently read as Monday.
	if string(data) == "null" {
		return fmt.Errorf("weekday must be a number or day name")
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 || n > 6 {
			return fmt.Errorf("weekday %d out of range [0,6]", n)
		}
		*w = Weekday(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("weekday must be a number or day name")
	}

	lower := strings.ToLower(strings.TrimSpace(s))
	for i, name := range weekdayNames {
		if lower == name || (len(lower) == 3 && strings.HasPrefix(name, lower)) {
			*w = Weekday(i)
			return nil
		}
	}
	return fmt.Errorf("unknown weekday %q", s)
}

// MarshalJSON renders the platform number.
func (w Weekday) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(w))
}

// Schedule declares one recurring show: every Weekday between Start and End
// (both inclusive), record the listed archive hours.
//
// Hours are in airing order and must match real chronological playback:
// a show running 10pm-1am is Hours [22, 23, 0], where hour 0 belongs to the
// next calendar day (see Segment).
//
// Example settings entry:
//
//	{"start": "2024-09-01", "end": "2025-05-01", "weekday": 0, "hours": [22, 23, 0]}
type Schedule struct {
	// Start is the first calendar date considered (inclusive).
	Start Date `json:"start"`

	// End is the last calendar date considered (inclusive).
	End Date `json:"end"`

	// Weekday selects which day of week in [Start, End] the show airs.
	Weekday Weekday `json:"weekday"`

	// Hours lists the archive hours to fetch per airing, in playback order.
	// Each value is in [0, 23]; hour 0 rolls over to the next calendar day.
	Hours []int `json:"hours"`
}

// Validate checks the schedule invariants: both dates set, Start not after
// End, weekday in range, and a non-empty hour list with every hour in [0,23].
func (s *Schedule) Validate() error {
	if s.Start.IsZero() || s.End.IsZero() {
		return fmt.Errorf("schedule missing start or end date")
	}
	if s.Start.After(s.End.Time) {
		return fmt.Errorf("schedule start %s is after end %s",
			s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"))
	}
	if s.Weekday < Monday || s.Weekday > Sunday {
		return fmt.Errorf("schedule weekday %d out of range [0,6]", int(s.Weekday))
	}
	if len(s.Hours) == 0 {
		return fmt.Errorf("schedule has no hours")
	}
	for _, h := range s.Hours {
		if h < 0 || h > 23 {
			return fmt.Errorf("schedule hour %d out of range [0,23]", h)
		}
	}
	return nil
}
