package djb

import (
	"fmt"
	"time"
)

// IndexURL builds the archive index page URL for a station selector code
// and a calendar date.
//
// The same URL serves two purposes: callsign detection (fetching it and
// parsing the markup) and priming (the platform only serves media for a
// date after its index page has been requested in the current session).
//
// Day and month are zero-padded, the year is four digits:
//
//	https://archive.example.com/index.php?c=0&d=08&m=01&y=2024
func IndexURL(baseURL string, code int, date time.Time) string {
	return fmt.Sprintf("%s?c=%d&d=%02d&m=%02d&y=%d",
		baseURL, code, date.Day(), int(date.Month()), date.Year())
}

// MediaURL builds the download URL for a remote segment filename.
//
// The platform serves media through the same index.php endpoint with an
// action parameter:
//
//	https://archive.example.com/index.php?f=BSR-24-01-08-22-00.mp3&action=10
func MediaURL(baseURL, filename string) string {
	return fmt.Sprintf("%s?f=%s&action=10", baseURL, filename)
}

// MediaReferer builds the Referer header value sent with a media request.
//
// It is the priming index URL for the segment's date extended with the
// segment's hour. The platform checks it, so media requests without this
// header come back blank.
func MediaReferer(baseURL string, code int, date time.Time, hour int) string {
	return fmt.Sprintf("%s&p=%02d", IndexURL(baseURL, code, date), hour)
}
